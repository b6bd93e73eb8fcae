package sink

import (
	"encoding/json"

	"github.com/matzehuels/masonry/pkg/layout"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	css    bool
	meta   bool
	indent bool
}

// WithJSONCSS includes the CSS declarations of the wall, lane and item
// style records.
func WithJSONCSS() JSONOption { return func(r *jsonRenderer) { r.css = true } }

// WithJSONMeta includes item metadata in each block.
func WithJSONMeta() JSONOption { return func(r *jsonRenderer) { r.meta = true } }

// WithJSONCompact disables indentation.
func WithJSONCompact() JSONOption { return func(r *jsonRenderer) { r.indent = false } }

type jsonOutput struct {
	ID        string      `json:"id,omitempty"`
	Width     float64     `json:"width"`
	Height    float64     `json:"height"`
	Columns   int         `json:"columns"`
	LaneWidth float64     `json:"lane_width"`
	ItemWidth float64     `json:"item_width"`
	Padding   float64     `json:"padding"`
	Cursor    int         `json:"cursor"`
	Ready     bool        `json:"ready"`
	Lanes     [][]int     `json:"lanes"`
	Blocks    []jsonBlock `json:"blocks"`
	CSS       *jsonCSS    `json:"css,omitempty"`
	Stats     jsonStats   `json:"stats"`
}

type jsonBlock struct {
	Index  int            `json:"index"`
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Column int            `json:"column"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Width  float64        `json:"width"`
	Height float64        `json:"height"`
	Meta   map[string]any `json:"meta,omitempty"`
}

type jsonCSS struct {
	Wall map[string]string `json:"wall"`
	Lane map[string]string `json:"lane"`
	Item map[string]string `json:"item"`
}

type jsonStats struct {
	Appends int `json:"appends"`
	Pages   int `json:"pages"`
	Scrolls int `json:"scrolls"`
}

// RenderJSON exports the layout's blocks, lanes and sizing as a JSON
// document. Blocks are ordered by item index.
func RenderJSON(l layout.Layout, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{indent: true}
	for _, opt := range opts {
		opt(&r)
	}

	g := l.Geometry
	out := jsonOutput{
		ID:        l.ID,
		Width:     g.Width,
		Height:    g.Height,
		Columns:   len(l.Columns),
		LaneWidth: g.LaneWidth,
		ItemWidth: g.ItemWidth,
		Padding:   g.Padding,
		Cursor:    l.Cursor,
		Ready:     l.Ready,
		Lanes:     make([][]int, len(l.Columns)),
		Blocks:    make([]jsonBlock, 0, len(g.Boxes)),
		Stats:     jsonStats{Appends: l.Stats.Appends, Pages: l.Stats.Pages, Scrolls: l.Stats.Scrolls},
	}
	for i, col := range l.Columns {
		out.Lanes[i] = append([]int{}, col.Indexes...)
	}
	for _, b := range sortedBoxes(g.Boxes) {
		jb := jsonBlock{
			Index:  b.Index,
			Label:  l.Label(b.Index),
			Column: b.Column,
			X:      b.X,
			Y:      b.Y,
			Width:  b.W,
			Height: b.H,
		}
		if it, ok := l.Item(b.Index); ok {
			jb.ID = it.ID
			if r.meta {
				jb.Meta = it.Meta
			}
		}
		out.Blocks = append(out.Blocks, jb)
	}
	if r.css {
		out.CSS = &jsonCSS{
			Wall: l.Style.Wall.CSS(),
			Lane: l.Style.Lane.CSS(),
			Item: l.Style.Item.CSS(),
		}
	}

	if !r.indent {
		return json.Marshal(out)
	}
	return json.MarshalIndent(out, "", "  ")
}
