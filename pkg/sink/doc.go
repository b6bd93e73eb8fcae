// Package sink renders layout documents.
//
// A "sink" transforms a computed [layout.Layout] into a final output format:
//
//   - JSON: item boxes, lanes and resolved styles for external tools
//   - SVG: a static picture of the wall, one rectangle per item
//   - HTML: a standalone page reproducing the wall's DOM structure with the
//     wall, lane and item styles inline and the trailing sentinel per lane
//   - Text: a terminal rendering with lipgloss, one bordered box per item
//
// Each renderer takes functional options:
//
//	svg := sink.RenderSVG(l, sink.WithSVGStyle(sink.Outline{}))
//	txt := sink.RenderText(l, sink.WithTextWidth(120))
//
// Renderers never modify the layout and are safe to call concurrently.
//
// [layout.Layout]: github.com/matzehuels/masonry/pkg/layout.Layout
package sink
