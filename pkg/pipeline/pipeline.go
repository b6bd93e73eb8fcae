// Package pipeline runs the items → layout → render pipeline shared by the
// CLI and the HTTP API.
//
// # Architecture
//
// The pipeline has two stages:
//
//  1. Layout: mount a [masonry.Wall] on a headless [surface.Surface] and run
//     the event loop until the wall settles, optionally revealing items a
//     page at a time and scrolling to the bottom the way an infinite-scroll
//     page would
//  2. Render: produce artifacts (JSON, SVG, HTML, text) from the layout
//
// Both stages are cached through a [cache.Cache] by the [Runner].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, items, pipeline.Options{
//	    ViewportWidth: 1200,
//	    Formats:       []string{"svg", "html"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	l, err := pipeline.Simulate(ctx, items, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/loop"
	"github.com/matzehuels/masonry/pkg/masonry"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultViewportWidth is the simulated container width in pixels.
	DefaultViewportWidth = 1200.0

	// DefaultViewportHeight is the simulated viewport height in pixels.
	DefaultViewportHeight = 900.0

	// DefaultMaxScrolls bounds scroll passes when paging.
	DefaultMaxScrolls = 100

	// DefaultTextWidth is the width of text renderings in cells.
	DefaultTextWidth = 100

	// DefaultStyle is the default SVG style.
	DefaultStyle = StyleSimple
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatHTML = "html"
	FormatText = "text"
)

// Style constants for SVG output.
const (
	StyleSimple  = "simple"
	StyleOutline = "outline"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatHTML: true,
	FormatText: true,
}

// ValidStyles is the set of supported SVG styles.
var ValidStyles = map[string]bool{
	StyleSimple:  true,
	StyleOutline: true,
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatSVG:  "image/svg+xml",
	FormatHTML: "text/html; charset=utf-8",
	FormatText: "text/plain; charset=utf-8",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Wall           masonry.Options `json:"wall"`
	Hint           int             `json:"ssr_columns,omitempty"`     // server-side column count
	Static         bool            `json:"static,omitempty"`          // no live width, as in a server pre-render
	ViewportWidth  float64         `json:"viewport_width,omitempty"`  // container width
	ViewportHeight float64         `json:"viewport_height,omitempty"` // window height
	PageSize       int             `json:"page_size,omitempty"`       // reveal items in pages of this size
	MaxScrolls     int             `json:"max_scrolls,omitempty"`
	Budget         int             `json:"-"` // event-loop task limit per run

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Style     string   `json:"style,omitempty"`
	NoLabels  bool     `json:"no_labels,omitempty"`
	TextWidth int      `json:"text_width,omitempty"`
	Title     string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Refresh bool        `json:"-"`
	Logger  *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the settled wall.
	Layout layout.Layout

	// ItemsHash is the content hash of the input items.
	ItemsHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ItemCount  int
	Columns    int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(sortedKeys(ValidFormats), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if !ValidStyles[style] {
		return errors.New(errors.ErrCodeInvalidOptions, "invalid style: %q (must be one of: %s)", style, strings.Join(sortedKeys(ValidStyles), ", "))
	}
	return nil
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks all fields and applies defaults for the full
// pipeline. Calling it more than once has no further effect.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	o.Wall = o.Wall.Normalize()
	if o.ViewportWidth == 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.ViewportHeight == 0 {
		o.ViewportHeight = DefaultViewportHeight
	}
	if o.Budget <= 0 {
		o.Budget = loop.DefaultBudget
	}
	if o.PageSize > 0 && o.MaxScrolls == 0 {
		o.MaxScrolls = DefaultMaxScrolls
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := o.Wall.Validate(); err != nil {
		return err
	}
	if err := errors.ValidateNonNegative("viewport_width", o.ViewportWidth); err != nil {
		return err
	}
	if err := errors.ValidateWidth("viewport_height", o.ViewportHeight); err != nil {
		return err
	}
	if o.Hint < 0 || o.PageSize < 0 || o.MaxScrolls < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "ssr_columns, page_size and max_scrolls cannot be negative")
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.TextWidth == 0 {
		o.TextWidth = DefaultTextWidth
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	return ValidateStyle(o.Style)
}

// Clone returns a copy of o with its own Formats slice that has not been
// validated yet.
func (o Options) Clone() Options {
	o.Formats = append([]string(nil), o.Formats...)
	o.validated = false
	return o
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	padding, _ := json.Marshal(o.Wall.Padding)
	return cache.LayoutKeyOpts{
		ColumnWidth:    o.Wall.Width,
		Padding:        string(padding),
		ThrottleMs:     float64(o.Wall.Throttle) / float64(time.Millisecond),
		ViewportWidth:  o.ViewportWidth,
		ViewportHeight: o.ViewportHeight,
		Hint:           o.Hint,
		PageSize:       o.PageSize,
		MaxScrolls:     o.MaxScrolls,
		Static:         o.Static,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG:
		k.Style = o.Style
		k.Labels = !o.NoLabels
	case FormatText:
		k.Width = o.TextWidth
	case FormatHTML:
		k.Style = o.Title
	}
	return k
}

func (o Options) String() string {
	return fmt.Sprintf("viewport=%gx%g width=%g hint=%d page=%d formats=%v",
		o.ViewportWidth, o.ViewportHeight, o.Wall.Width, o.Hint, o.PageSize, o.Formats)
}
