package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/masonry/pkg/layout"
)

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style      Style
	labels     bool
	background string
	lanes      bool
}

// WithSVGStyle sets the visual style. Defaults to [Simple].
func WithSVGStyle(s Style) SVGOption { return func(r *svgRenderer) { r.style = s } }

// WithoutSVGLabels omits item labels.
func WithoutSVGLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithSVGBackground fills the canvas with the given color.
func WithSVGBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithSVGLanes draws the lane boundaries.
func WithSVGLanes() SVGOption { return func(r *svgRenderer) { r.lanes = true } }

// RenderSVG draws the layout's item boxes on a canvas as wide as the
// container and as tall as the tallest column.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{style: Simple{}, labels: true}
	for _, opt := range opts {
		opt(&r)
	}

	g := l.Geometry
	width, height := max(g.Width, 1), max(g.Height, 1)
	blocks := buildBlocks(l)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	r.style.RenderDefs(&buf)
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", EscapeXML(r.background))
	}
	if r.lanes {
		for c := 1; c < g.Columns; c++ {
			x := float64(c)*g.LaneWidth - g.Padding
			fmt.Fprintf(&buf, `  <line class="lane" x1="%.1f" y1="0" x2="%.1f" y2="%.1f" stroke="#ccc" stroke-dasharray="2 4"/>`+"\n", x, x, height)
		}
	}
	for _, b := range blocks {
		r.style.RenderBlock(&buf, b)
	}
	if r.labels {
		for _, b := range blocks {
			r.style.RenderText(&buf, b)
		}
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func buildBlocks(l layout.Layout) []Block {
	boxes := sortedBoxes(l.Geometry.Boxes)
	blocks := make([]Block, 0, len(boxes))
	for _, b := range boxes {
		blk := Block{
			Index:  b.Index,
			Label:  l.Label(b.Index),
			Column: b.Column,
			X:      b.X, Y: b.Y,
			W: b.W, H: b.H,
		}
		if it, ok := l.Item(b.Index); ok {
			blk.ID = it.ID
		}
		blocks = append(blocks, blk)
	}
	return blocks
}
