package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

// layoutCommand creates the layout command for simulating a wall.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		refresh bool
		wall    *wallFlags
	)
	opts := c.defaultOptions()

	cmd := &cobra.Command{
		Use:   "layout [items.json]",
		Short: "Simulate a wall over an items file",
		Long: `Simulate a wall over an items file and write the resulting layout.

Items are placed one at a time into the column that currently ends highest,
exactly as a browser would fill the wall. With --page-size, only the first
page is available up front and further pages are appended whenever the wall
asks for more while scrolled to the bottom.

The output is a layout.json file that 'render' turns into SVG, HTML or text.
Use "-" to read items from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wall.apply(cmd, &opts)
			opts.Refresh = refresh
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")
	wall = addWallFlags(cmd, &opts)
	addViewportFlags(cmd, &opts)

	return cmd
}

// runLayout loads the items, simulates the wall, and writes the layout.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	if err := validateOutput(output); err != nil {
		return err
	}
	items, _, err := readInput(input)
	if err != nil {
		return fmt.Errorf("load items %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache, nil)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()
	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d items...", len(items)))
	spinner.Start()

	l, cacheHit, err := runner.LayoutWithCacheInfo(ctx, items, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = outputBase(input) + ".layout.json"
	}
	data, err := layout.Marshal(l)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(l.Columns), l.Cursor, len(items), cacheHit)
	printNewline()
	printNextStep("Render", appName+" render "+outputPath)

	return nil
}
