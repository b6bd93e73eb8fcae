package io

import (
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
)

// DefaultHeight is the content height of items without a height or aspect.
const DefaultHeight = 200.0

// Item is one entry of the wall's backlog.
type Item struct {
	ID     string         `json:"id,omitempty"`
	Label  string         `json:"label,omitempty"`
	Height float64        `json:"height,omitempty"`
	Aspect float64        `json:"aspect,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

// Items is an ordered backlog. It implements masonry.Backlog.
type Items []Item

// Len returns the number of items.
func (it Items) Len() int { return len(it) }

// Height returns the content height of item i rendered width pixels wide.
// Out-of-range indexes measure zero.
func (it Items) Height(i int, width float64) float64 {
	if i < 0 || i >= len(it) {
		return 0
	}
	return it[i].ContentHeight(width)
}

// ContentHeight returns the item's height at the given width.
func (i Item) ContentHeight(width float64) float64 {
	switch {
	case i.Height > 0:
		return i.Height
	case i.Aspect > 0:
		return width * i.Aspect
	default:
		return DefaultHeight
	}
}

// Name returns the label, falling back to the id.
func (i Item) Name() string {
	if i.Label != "" {
		return i.Label
	}
	return i.ID
}

// normalize fills missing ids with the item's index.
func (it Items) normalize() {
	for i := range it {
		if it[i].ID == "" {
			it[i].ID = strconv.Itoa(i)
		}
	}
}

func (it Items) validate() error {
	for i, item := range it {
		if !validSize(item.Height) {
			return fmt.Errorf("item %d (%s): height must be a non-negative number, got %v", i, item.ID, item.Height)
		}
		if !validSize(item.Aspect) {
			return fmt.Errorf("item %d (%s): aspect must be a non-negative number, got %v", i, item.ID, item.Aspect)
		}
	}
	return nil
}

func validSize(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// Sample returns n deterministic placeholder items numbered from start.
// Heights vary between 120 and 420 pixels; every third item uses an aspect
// ratio instead so it scales with the column width.
func Sample(start, n int) Items {
	out := make(Items, 0, max(n, 0))
	for i := start; i < start+n; i++ {
		h := fnv.New32a()
		fmt.Fprintf(h, "item-%d", i)
		v := h.Sum32()
		item := Item{
			ID:    strconv.Itoa(i),
			Label: fmt.Sprintf("Item %d", i+1),
		}
		if i%3 == 2 {
			item.Aspect = 0.5 + float64(v%100)/100
		} else {
			item.Height = 120 + float64(v%301)
		}
		out = append(out, item)
	}
	return out
}
