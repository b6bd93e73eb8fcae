// Package layout defines the layout document: a wall's placement together
// with the geometry it renders to and the items it holds.
//
// A Layout is what the pipeline produces, what caches store and what every
// sink renders. It is plain data and survives a JSON round trip.
package layout

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/surface"
)

// Viewport is the simulated browser window.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Stats records how a layout came about.
type Stats struct {
	Steps   int `json:"steps"`   // event-loop tasks run
	Appends int `json:"appends"` // append requests raised by the wall
	Pages   int `json:"pages"`   // pages revealed, including the first
	Scrolls int `json:"scrolls"` // scroll-to-bottom passes
}

// Layout is a rendered wall.
type Layout struct {
	ID       string           `json:"id"`
	Options  masonry.Options  `json:"options"`
	Viewport Viewport         `json:"viewport"`
	Hint     int              `json:"ssr_columns,omitempty"`
	Columns  masonry.Columns  `json:"columns"`
	Cursor   int              `json:"cursor"`
	Ready    bool             `json:"ready"`
	State    masonry.State    `json:"state"`
	Style    masonry.Style    `json:"style"`
	Geometry surface.Geometry `json:"geometry"`
	Items    io.Items         `json:"items"`
	Stats    Stats            `json:"stats"`
}

// New builds a layout from a wall snapshot, the geometry it renders to and
// the backlog it was filled from. Only placed items are kept.
func New(snap masonry.Snapshot, opts masonry.Options, g surface.Geometry, items io.Items) Layout {
	placed := items
	if snap.Cursor < len(placed) {
		placed = placed[:snap.Cursor]
	}
	return Layout{
		Options:  opts,
		Columns:  snap.Columns,
		Cursor:   snap.Cursor,
		Ready:    snap.Ready,
		State:    snap.State,
		Style:    snap.Style,
		Geometry: g,
		Items:    append(io.Items(nil), placed...),
	}
}

// Item returns the item at index, or false when the layout does not hold it.
func (l Layout) Item(index int) (io.Item, bool) {
	if index < 0 || index >= len(l.Items) {
		return io.Item{}, false
	}
	return l.Items[index], true
}

// Label returns the display name of the item at index.
func (l Layout) Label(index int) string {
	if it, ok := l.Item(index); ok && it.Name() != "" {
		return it.Name()
	}
	return fmt.Sprintf("#%d", index)
}

// Verify checks the placement invariants: every item before the cursor is
// placed exactly once and the geometry covers every placed item.
func (l Layout) Verify() error {
	if err := l.Columns.Verify(l.Cursor); err != nil {
		return err
	}
	if len(l.Geometry.Boxes) != l.Cursor {
		return fmt.Errorf("geometry has %d boxes for %d placed items", len(l.Geometry.Boxes), l.Cursor)
	}
	return nil
}

// Marshal encodes a layout as JSON.
func Marshal(l Layout) ([]byte, error) {
	return json.Marshal(l)
}

// Unmarshal decodes a layout produced by [Marshal].
func Unmarshal(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	return l, nil
}
