package surface

import (
	"math"

	"github.com/matzehuels/masonry/pkg/masonry"
)

// Sentinel geometry. Each column ends in a sentinel region that stretches
// to the bottom of the wall, is at least MinSentinel tall and reaches
// Overlap pixels up into the column's content, so filling starts before the
// column end scrolls into view.
const (
	MinSentinel = 100.0
	Overlap     = 300.0
)

// HeightFunc returns the content height of the item at index when rendered
// width pixels wide.
type HeightFunc func(index int, width float64) float64

// Source is the placement a surface renders. *masonry.Wall implements it.
type Source interface {
	ColumnCount() int
	Lane(column int) []int
	Style() masonry.Style
}

// Box is the content rectangle of one placed item, relative to the wall
// container's top-left corner.
type Box struct {
	Index  int     `json:"index"`
	Column int     `json:"column"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	W      float64 `json:"w"`
	H      float64 `json:"h"`
}

// Geometry is the rendered layout of a placement.
type Geometry struct {
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Columns   int       `json:"columns"`
	LaneWidth float64   `json:"lane_width"`
	ItemWidth float64   `json:"item_width"`
	Padding   float64   `json:"padding"`
	Content   []float64 `json:"content"` // per-column stacked block height
	Boxes     []Box     `json:"boxes"`
}

// lane widths for a container of width w split into n lanes with padding p.
// The wall's negative margin widens it by p on each side, and each lane pads
// its content by p on each side.
func laneWidths(w float64, n int, p float64) (lane, item float64) {
	if n < 1 {
		n = 1
	}
	lane = (w + 2*p) / float64(n)
	item = lane - 2*p
	if item < 1 || math.IsNaN(item) {
		item = 1
	}
	return lane, item
}

// blockHeight is an item's height including its vertical padding.
func blockHeight(h HeightFunc, index int, itemWidth, p float64) float64 {
	v := h(index, itemWidth)
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return v + 2*p
}

// Measure lays out src inside a container of the given width.
func Measure(src Source, width float64, h HeightFunc) Geometry {
	n := src.ColumnCount()
	p := src.Style().Lane.PaddingLeft
	lane, item := laneWidths(width, n, p)

	g := Geometry{
		Width:     width,
		Columns:   n,
		LaneWidth: lane,
		ItemWidth: item,
		Padding:   p,
		Content:   make([]float64, n),
	}
	for c := 0; c < n; c++ {
		y := 0.0
		for _, i := range src.Lane(c) {
			b := blockHeight(h, i, item, p)
			g.Boxes = append(g.Boxes, Box{
				Index:  i,
				Column: c,
				X:      float64(c) * lane,
				Y:      y,
				W:      item,
				H:      b - 2*p,
			})
			y += b
		}
		g.Content[c] = y
		if bottom := y - 2*p; bottom > g.Height {
			g.Height = bottom
		}
	}
	return g
}
