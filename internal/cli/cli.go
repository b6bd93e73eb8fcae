package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/masonry/pkg/buildinfo"
	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/config"
	"github.com/matzehuels/masonry/pkg/errors"
	mio "github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "masonry"

	// stdinPath reads input from standard input.
	stdinPath = "-"

	// serverKeyPrefix scopes the HTTP server's cache entries so they stay
	// apart from CLI renders sharing the same backend.
	serverKeyPrefix = "api:"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Flag defaults come from the config file, so it is loaded here.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Masonry lays out items in balanced columns",
		Long: `Masonry lays out a list of items in balanced columns: each item goes into
the column that currently ends highest, and the column count follows the
container width. It simulates the wall headlessly, renders it to JSON, SVG,
HTML or the terminal, and serves the same pipeline over HTTP.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config returns the loaded config file, falling back to the defaults when
// the file is broken.
func (c *CLI) config() *config.Config {
	if c.cfg != nil {
		return c.cfg
	}
	cfg, err := config.Load()
	if err != nil {
		c.Logger.Warn("ignoring config file", "err", err)
		cfg = config.Default()
	}
	c.cfg = cfg
	return cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
// A nil keyer uses the default cache keys.
func (c *CLI) newRunner(ctx context.Context, noCache bool, keyer cache.Keyer) (*pipeline.Runner, error) {
	cfg := c.config()
	cc := cfg.CacheConfig()
	if noCache {
		cc.Backend = cache.BackendNone
	}
	store, err := cache.Open(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cc.Backend, err)
	}
	runner := pipeline.NewRunner(store, keyer, loggerFromContext(ctx))
	runner.TTL = cfg.CacheTTL()
	return runner, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// defaultOptions returns pipeline options seeded from the config file.
func (c *CLI) defaultOptions() pipeline.Options {
	cfg := c.config()
	opts := pipeline.Options{
		Wall:           cfg.WallOptions(),
		Hint:           cfg.SSR.Columns,
		ViewportWidth:  cfg.Viewport.Width,
		ViewportHeight: cfg.Viewport.Height,
		Style:          pipeline.DefaultStyle,
		TextWidth:      pipeline.DefaultTextWidth,
	}
	opts.Wall = opts.Wall.Normalize()
	return opts
}

// wallFlags holds flags that need post-processing into masonry.Options.
type wallFlags struct {
	padding    float64
	noThrottle bool
}

// addWallFlags binds the wall option flags.
func addWallFlags(cmd *cobra.Command, opts *pipeline.Options) *wallFlags {
	f := &wallFlags{padding: opts.Wall.Padding.Resolve(0)}
	cmd.Flags().Float64Var(&opts.Wall.Width, "column-width", opts.Wall.Width, "target column width in pixels")
	cmd.Flags().Float64Var(&f.padding, "padding", f.padding, "uniform padding in pixels (overrides the config file)")
	cmd.Flags().DurationVar(&opts.Wall.Throttle, "throttle", opts.Wall.Throttle, "minimum interval between visibility evaluations")
	cmd.Flags().BoolVar(&f.noThrottle, "no-throttle", false, "evaluate visibility on every change")
	return f
}

// apply writes the post-processed flags into opts.
func (f *wallFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("padding") {
		opts.Wall.Padding = masonry.UniformPadding(f.padding)
	}
	if f.noThrottle {
		opts.Wall.Throttle = masonry.NoThrottle
	}
}

// addViewportFlags binds the simulation flags.
func addViewportFlags(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().Float64Var(&opts.ViewportWidth, "viewport-width", opts.ViewportWidth, "container width in pixels")
	cmd.Flags().Float64Var(&opts.ViewportHeight, "viewport-height", opts.ViewportHeight, "window height in pixels")
	cmd.Flags().IntVar(&opts.Hint, "ssr-columns", opts.Hint, "server-side column count to seed the wall with")
	cmd.Flags().BoolVar(&opts.Static, "static", opts.Static, "simulate a pre-render without a measurable container")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", opts.PageSize, "reveal items in pages, appending on scroll")
	cmd.Flags().IntVar(&opts.MaxScrolls, "max-scrolls", opts.MaxScrolls, "stop paging after this many scrolls")
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Input / Output
// =============================================================================

// formatExt maps formats to output file extensions.
var formatExt = map[string]string{
	pipeline.FormatJSON: ".wall.json",
	pipeline.FormatSVG:  ".svg",
	pipeline.FormatHTML: ".html",
	pipeline.FormatText: ".txt",
}

// readFile reads path, or standard input for "-".
func readFile(path string) ([]byte, error) {
	if path == stdinPath {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// readInput reads an items document or a layout document.
func readInput(path string) (mio.Items, *layout.Layout, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, nil, err
	}
	if isLayout(data) {
		l, err := layout.Unmarshal(data)
		if err != nil {
			return nil, nil, err
		}
		return l.Items, &l, nil
	}
	items, err := mio.DecodeJSON(data)
	return items, nil, err
}

// isLayout reports whether data looks like a layout document rather than
// an items document.
func isLayout(data []byte) bool {
	var probe struct {
		Columns  json.RawMessage `json:"columns"`
		Geometry json.RawMessage `json:"geometry"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe.Columns != nil && probe.Geometry != nil
}

// outputBase returns the base path for outputs derived from input.
func outputBase(input string) string {
	if input == stdinPath {
		return appName
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	base = strings.TrimSuffix(base, ".layout")
	return base
}

// validateOutput checks an -o path before any work is done. An empty path
// selects the default output.
func validateOutput(output string) error {
	if output == "" {
		return nil
	}
	return errors.ValidatePath(output)
}

// outputPath returns the file an artifact is written to. A single format
// honors the -o path verbatim; several formats treat it as a base path.
func outputPath(input, output, format string, formats int) string {
	if output != "" && formats == 1 {
		return output
	}
	base := output
	if base == "" {
		base = outputBase(input)
	}
	return base + formatExt[format]
}
