package sink

import (
	"bytes"
	"html/template"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/surface"
)

// HTMLOption configures HTML rendering via [RenderHTML].
type HTMLOption func(*htmlRenderer)

type htmlRenderer struct {
	title    string
	fragment bool
}

// WithHTMLTitle sets the page title.
func WithHTMLTitle(title string) HTMLOption { return func(r *htmlRenderer) { r.title = title } }

// WithHTMLFragment emits only the wall element, without the page around it.
func WithHTMLFragment() HTMLOption { return func(r *htmlRenderer) { r.fragment = true } }

// sentinelCSS reproduces the trailing region that stretches to the bottom of
// each lane and reaches up into its last items.
var sentinelCSS = ".masonry-bottom { flex-grow: 1; margin-top: -" + strconv.FormatFloat(surface.Overlap, 'f', -1, 64) +
	"px; padding-top: " + strconv.FormatFloat(surface.Overlap, 'f', -1, 64) +
	"px; min-height: " + strconv.FormatFloat(surface.MinSentinel, 'f', -1, 64) + "px; }"

const baseCSS = `
    .masonry-wall { display: flex; visibility: hidden; }
    .masonry-wall.ready { visibility: visible; }
    .masonry-lane { flex: 1 1 0; display: flex; flex-direction: column; min-width: 0; box-sizing: border-box; }
    .masonry-item { box-sizing: border-box; }
    .masonry-content { background: #eee; border-radius: 6px; display: flex; align-items: center; justify-content: center; overflow: hidden; font-family: system-ui, sans-serif; }
    `

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>{{.CSS}}</style>
</head>
<body>
{{template "wall" .}}
</body>
</html>
`))

var wallTemplate = template.Must(pageTemplate.New("wall").Parse(`<div class="masonry-wall{{if .Ready}} ready{{end}}" style="{{.WallStyle}}" data-columns="{{len .Lanes}}">
{{- range .Lanes}}
  <div class="masonry-lane" data-column="{{.Column}}" style="{{$.LaneStyle}}">
  {{- range .Items}}
    <div class="masonry-item" data-index="{{.Index}}" data-id="{{.ID}}" style="{{$.ItemStyle}}">
      <div class="masonry-content" style="height: {{.Height}}">{{.Label}}</div>
    </div>
  {{- end}}
    <div class="masonry-bottom" data-column="{{.Column}}"></div>
  </div>
{{- end}}
</div>`))

type htmlPage struct {
	Title     string
	CSS       template.CSS
	Ready     bool
	WallStyle template.CSS
	LaneStyle template.CSS
	ItemStyle template.CSS
	Lanes     []htmlLane
}

type htmlLane struct {
	Column int
	Items  []htmlItem
}

type htmlItem struct {
	Index  int
	ID     string
	Label  string
	Height string
}

// RenderHTML produces a page with the wall's DOM structure: one lane per
// column holding its items in placement order, followed by the lane's
// sentinel. The wall carries the "ready" class only when the layout is
// ready, so an unready wall stays hidden.
func RenderHTML(l layout.Layout, opts ...HTMLOption) ([]byte, error) {
	r := htmlRenderer{title: "masonry"}
	for _, opt := range opts {
		opt(&r)
	}

	heights := make(map[int]float64, len(l.Geometry.Boxes))
	for _, b := range l.Geometry.Boxes {
		heights[b.Index] = b.H
	}

	page := htmlPage{
		Title:     r.title,
		CSS:       template.CSS(baseCSS + sentinelCSS + "\n  "),
		Ready:     l.Ready,
		WallStyle: declarations(l.Style.Wall.CSS()),
		LaneStyle: declarations(l.Style.Lane.CSS()),
		ItemStyle: declarations(l.Style.Item.CSS()),
		Lanes:     make([]htmlLane, len(l.Columns)),
	}
	for i, col := range l.Columns {
		lane := htmlLane{Column: col.ID, Items: make([]htmlItem, 0, len(col.Indexes))}
		for _, idx := range col.Indexes {
			it := htmlItem{Index: idx, Label: l.Label(idx), Height: masonry.Px(heights[idx])}
			if item, ok := l.Item(idx); ok {
				it.ID = item.ID
			}
			lane.Items = append(lane.Items, it)
		}
		page.Lanes[i] = lane
	}

	name := "page"
	if r.fragment {
		name = "wall"
	}
	var buf bytes.Buffer
	if err := wallTemplate.ExecuteTemplate(&buf, name, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// declarations formats CSS declarations in a stable order.
func declarations(css map[string]string) template.CSS {
	parts := make([]string, 0, len(css))
	for _, k := range slices.Sorted(maps.Keys(css)) {
		parts = append(parts, k+": "+css[k])
	}
	return template.CSS(strings.Join(parts, "; "))
}
