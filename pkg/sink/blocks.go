package sink

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"slices"

	"github.com/matzehuels/masonry/pkg/surface"
)

// sortedBoxes returns a copy of boxes ordered by item index.
func sortedBoxes(boxes []surface.Box) []surface.Box {
	out := slices.Clone(boxes)
	slices.SortFunc(out, func(a, b surface.Box) int { return cmp.Compare(a.Index, b.Index) })
	return out
}

// EscapeXML escapes s for use in XML and HTML text and attribute values.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// truncate shortens s to at most n runes, marking the cut with "..".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n < 3 {
		return string(r[:max(n, 0)])
	}
	return string(r[:n-2]) + ".."
}
