package masonry

import "strconv"

// Style holds the presentation parameters for the wall, its lanes and its
// items. All values are pixels.
type Style struct {
	Wall WallStyle `json:"wall"`
	Lane LaneStyle `json:"lane"`
	Item ItemStyle `json:"item"`
}

// WallStyle offsets the outer padding added by the lanes so the wall's edges
// sit flush with its container.
type WallStyle struct {
	Margin float64 `json:"margin"`
}

// LaneStyle is the horizontal gap around each column.
type LaneStyle struct {
	PaddingLeft  float64 `json:"padding_left"`
	PaddingRight float64 `json:"padding_right"`
}

// ItemStyle is the vertical gap around each item.
type ItemStyle struct {
	PaddingTop    float64 `json:"padding_top"`
	PaddingBottom float64 `json:"padding_bottom"`
}

// ResolveStyle derives the style records for the given column count.
func ResolveStyle(opts Options, columns int) Style {
	p := opts.Padding.Resolve(columns)
	return Style{
		Wall: WallStyle{Margin: -p},
		Lane: LaneStyle{PaddingLeft: p, PaddingRight: p},
		Item: ItemStyle{PaddingTop: p, PaddingBottom: p},
	}
}

// Px formats v as a CSS pixel length, e.g. "-12px".
func Px(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of negative zero
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// CSS returns the wall's declarations.
func (s WallStyle) CSS() map[string]string {
	return map[string]string{"margin": Px(s.Margin)}
}

// CSS returns the lane's declarations.
func (s LaneStyle) CSS() map[string]string {
	return map[string]string{
		"padding-left":  Px(s.PaddingLeft),
		"padding-right": Px(s.PaddingRight),
	}
}

// CSS returns the item's declarations.
func (s ItemStyle) CSS() map[string]string {
	return map[string]string{
		"padding-top":    Px(s.PaddingTop),
		"padding-bottom": Px(s.PaddingBottom),
	}
}
