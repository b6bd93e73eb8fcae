package pipeline

import (
	"fmt"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/sink"
)

// Render generates output artifacts in the requested formats.
func Render(l layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(l, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat generates a single artifact.
func RenderFormat(l layout.Layout, format string, opts Options) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = sink.RenderJSON(l, sink.WithJSONCSS(), sink.WithJSONMeta())
	case FormatSVG:
		data = sink.RenderSVG(l, svgOptions(opts)...)
	case FormatHTML:
		var hopts []sink.HTMLOption
		if opts.Title != "" {
			hopts = append(hopts, sink.WithHTMLTitle(opts.Title))
		}
		data, err = sink.RenderHTML(l, hopts...)
	case FormatText:
		data = []byte(sink.RenderText(l, sink.WithTextWidth(opts.TextWidth)))
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}
	return data, nil
}

func svgOptions(opts Options) []sink.SVGOption {
	var out []sink.SVGOption
	switch opts.Style {
	case StyleOutline:
		out = append(out, sink.WithSVGStyle(sink.Outline{}))
	default:
		out = append(out, sink.WithSVGStyle(sink.Simple{Palette: sink.DefaultPalette}))
	}
	if opts.NoLabels {
		out = append(out, sink.WithoutSVGLabels())
	}
	return out
}
