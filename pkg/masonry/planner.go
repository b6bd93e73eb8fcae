package masonry

import "math"

// maxColumns bounds ColumnCount for absurd width ratios.
const maxColumns = 1 << 16

// ColumnCount returns how many columns of roughly columnWidth fit into
// containerWidth: the ratio rounded half-up, never less than 1.
//
// Zero, negative or non-finite inputs (a hidden container, a bad option)
// yield a single column.
func ColumnCount(containerWidth, columnWidth float64) int {
	if !(columnWidth > 0) || math.IsInf(columnWidth, 0) {
		return 1
	}
	ratio := containerWidth / columnWidth
	if math.IsNaN(ratio) || ratio < 1 {
		return 1
	}
	n := math.Floor(ratio + 0.5)
	if n > maxColumns {
		return maxColumns
	}
	return int(n)
}
