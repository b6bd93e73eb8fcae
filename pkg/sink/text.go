package sink

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/masonry/pkg/layout"
)

// TextOption configures terminal rendering via [RenderText].
type TextOption func(*textRenderer)

type textRenderer struct {
	width    int
	scale    float64
	colors []lipgloss.Color
}

// WithTextWidth sets the total width in cells. Defaults to 80.
func WithTextWidth(cells int) TextOption {
	return func(r *textRenderer) {
		if cells > 0 {
			r.width = cells
		}
	}
}

// WithTextScale sets how many pixels one terminal row represents.
// Defaults to 40.
func WithTextScale(px float64) TextOption {
	return func(r *textRenderer) {
		if px > 0 {
			r.scale = px
		}
	}
}

// WithTextColors sets the border colors, cycled by item index.
func WithTextColors(colors ...lipgloss.Color) TextOption {
	return func(r *textRenderer) { r.colors = colors }
}

var defaultTextColors = []lipgloss.Color{"209", "36", "221", "108", "203", "67"}

// RenderText draws the wall for a terminal: lanes side by side, each item a
// rounded box whose height follows the item's pixel height. An empty wall
// renders as an empty string.
func RenderText(l layout.Layout, opts ...TextOption) string {
	r := textRenderer{width: 80, scale: 40, colors: defaultTextColors}
	for _, opt := range opts {
		opt(&r)
	}
	n := len(l.Columns)
	if n == 0 {
		return ""
	}

	heights := make(map[int]float64, len(l.Geometry.Boxes))
	for _, b := range l.Geometry.Boxes {
		heights[b.Index] = b.H
	}

	laneWidth := max(r.width/n, 5)
	lanes := make([]string, n)
	for c, col := range l.Columns {
		boxes := make([]string, 0, len(col.Indexes))
		for _, idx := range col.Indexes {
			boxes = append(boxes, r.box(l.Label(idx), idx, heights[idx], laneWidth))
		}
		lanes[c] = lipgloss.NewStyle().Width(laneWidth).Render(lipgloss.JoinVertical(lipgloss.Left, boxes...))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, lanes...)
}

// Rows returns how many terminal rows an item of h pixels occupies.
func Rows(h, scale float64) int {
	if scale <= 0 {
		scale = 40
	}
	return max(1, int(math.Round(h/scale)))
}

func (r textRenderer) box(label string, index int, h float64, laneWidth int) string {
	inner := laneWidth - 2
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Width(inner).
		Height(Rows(h, r.scale)).
		Align(lipgloss.Center, lipgloss.Center)
	if len(r.colors) > 0 {
		style = style.BorderForeground(r.colors[index%len(r.colors)])
	}
	return style.Render(truncate(strings.TrimSpace(label), max(inner, 1)))
}
