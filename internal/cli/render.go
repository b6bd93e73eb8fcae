package cli

import (
	"context"
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

// renderCommand creates the render command for generating artifacts.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		noCache    bool
		refresh    bool
		wall       *wallFlags
	)
	opts := c.defaultOptions()

	cmd := &cobra.Command{
		Use:   "render [items.json | layout.json]",
		Short: "Render a wall to JSON, SVG, HTML or text",
		Long: `Render a wall to JSON, SVG, HTML or text.

The input is either an items file, which is laid out first, or a layout file
written by 'layout', which is rendered as is. Layout flags only apply to
items files.

With a single format, -o names the output file. With several, -o is a base
path and each format gets its own extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wall.apply(cmd, &opts)
			opts.Formats = parseFormats(formatsStr)
			opts.Refresh = refresh
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, html, text (comma-separated)")
	cmd.Flags().StringVar(&opts.Style, "style", opts.Style, "svg style: simple (default), outline")
	cmd.Flags().BoolVar(&opts.NoLabels, "no-labels", false, "omit item labels (svg)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "page title (html)")
	cmd.Flags().IntVar(&opts.TextWidth, "text-width", opts.TextWidth, "width in cells (text)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	wall = addWallFlags(cmd, &opts)
	addViewportFlags(cmd, &opts)

	return cmd
}

// runRender loads the input, lays it out when needed, and writes artifacts.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	if err := validateOutput(output); err != nil {
		return err
	}
	items, l, err := readInput(input)
	if err != nil {
		return fmt.Errorf("load %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache, nil)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = loggerFromContext(ctx)
	prog := newProgress(opts.Logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d items...", len(items)))
	spinner.Start()

	var (
		artifacts map[string][]byte
		lay       layout.Layout
		cached    bool
	)
	if l != nil {
		lay = *l
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, lay, opts)
	} else {
		var result *pipeline.Result
		result, err = runner.Execute(ctx, items, opts)
		if err == nil {
			lay, artifacts = result.Layout, result.Artifacts
			cached = result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit
		}
	}
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Render complete")
	formats := slices.Clone(opts.Formats)
	slices.Sort(formats)
	for _, format := range formats {
		path := outputPath(input, output, format, len(formats))
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(len(lay.Columns), lay.Cursor, len(items), cached)
	prog.done(fmt.Sprintf("Rendered %d artifacts", len(formats)))

	return nil
}
