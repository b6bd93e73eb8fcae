package sink

import (
	"bytes"
	"fmt"
)

// Style defines the visual appearance of an SVG wall.
type Style interface {
	// RenderDefs writes SVG <defs> content.
	RenderDefs(buf *bytes.Buffer)
	// RenderBlock writes the shape of one item.
	RenderBlock(buf *bytes.Buffer, b Block)
	// RenderText writes an item's label.
	RenderText(buf *bytes.Buffer, b Block)
}

// Block is one item as drawn.
type Block struct {
	Index      int
	ID         string
	Label      string
	Column     int
	X, Y, W, H float64
}

const (
	fontHeightRatio = 0.6
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 18.0
	fontFamily      = `system-ui, -apple-system, "Segoe UI", sans-serif`
)

// FontSize is the label size that fits the block.
func FontSize(b Block) float64 {
	n := max(1, len([]rune(b.Label)))
	byHeight := b.H * fontHeightRatio
	byWidth := (b.W * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

// fitLabel truncates the label to what fits at the minimum font size.
func fitLabel(b Block) string {
	size := FontSize(b)
	chars := int(b.W * fontWidthRatio / (size * fontCharWidth))
	return truncate(b.Label, max(chars, 3))
}

// DefaultPalette fills items column by column.
var DefaultPalette = []string{"#f4a261", "#2a9d8f", "#e9c46a", "#8ab17d", "#e76f51", "#6d98ba"}

// Simple draws filled rounded rectangles.
type Simple struct {
	Palette []string
}

func (s Simple) fill(b Block) string {
	p := s.Palette
	if len(p) == 0 {
		p = DefaultPalette
	}
	return p[b.Index%len(p)]
}

func (Simple) RenderDefs(buf *bytes.Buffer) {
	buf.WriteString(`  <defs><filter id="shadow" x="-10%" y="-10%" width="120%" height="130%">` +
		`<feDropShadow dx="0" dy="1" stdDeviation="1.5" flood-opacity="0.25"/></filter></defs>` + "\n")
}

func (s Simple) RenderBlock(buf *bytes.Buffer, b Block) {
	fmt.Fprintf(buf, `  <rect id="item-%d" class="item" data-column="%d" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6" fill="%s" filter="url(#shadow)"/>`+"\n",
		b.Index, b.Column, b.X, b.Y, b.W, b.H, s.fill(b))
}

func (Simple) RenderText(buf *bytes.Buffer, b Block) {
	renderCenteredText(buf, b, "#1d1d1f")
}

// Outline draws unfilled rectangles, like a wireframe.
type Outline struct{}

func (Outline) RenderDefs(*bytes.Buffer) {}

func (Outline) RenderBlock(buf *bytes.Buffer, b Block) {
	fmt.Fprintf(buf, `  <rect id="item-%d" class="item" data-column="%d" x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="none" stroke="#333" stroke-width="1.5" stroke-dasharray="4 3"/>`+"\n",
		b.Index, b.Column, b.X, b.Y, b.W, b.H)
}

func (Outline) RenderText(buf *bytes.Buffer, b Block) {
	renderCenteredText(buf, b, "#333")
}

func renderCenteredText(buf *bytes.Buffer, b Block, color string) {
	if b.Label == "" || b.H < fontSizeMin {
		return
	}
	fmt.Fprintf(buf, `  <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family='%s' font-size="%.1f" fill="%s">%s</text>`+"\n",
		b.X+b.W/2, b.Y+b.H/2, fontFamily, FontSize(b), color, EscapeXML(fitLabel(b)))
}
