package masonry

import (
	"math"
	"testing"
)

func TestColumnCount(t *testing.T) {
	tests := []struct {
		container, width float64
		want             int
	}{
		{600, 300, 2},
		{1000, 300, 3},
		{1050, 300, 4}, // 3.5 rounds half up
		{1049, 300, 3},
		{449, 300, 1},
		{450, 300, 2},
		{200, 300, 1},
		{0, 300, 1},
		{-50, 300, 1},
		{600, 0, 1},
		{600, -10, 1},
		{math.NaN(), 300, 1},
		{600, math.NaN(), 1},
		{math.Inf(1), 300, maxColumns},
		{600, math.Inf(1), 1},
	}
	for _, tt := range tests {
		if got := ColumnCount(tt.container, tt.width); got != tt.want {
			t.Errorf("ColumnCount(%v, %v) = %d, want %d", tt.container, tt.width, got, tt.want)
		}
	}
}
