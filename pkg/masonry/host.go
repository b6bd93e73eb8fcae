package masonry

// Measurer reads geometry from the rendering surface.
type Measurer interface {
	// ContainerWidth returns the wall container's width in pixels. ok is
	// false when no live surface exists, e.g. during a server pre-render.
	ContainerWidth() (width float64, ok bool)

	// SentinelHeight returns the rendered height of the region trailing the
	// given column's last item.
	SentinelHeight(column int) float64
}

// Observer delivers notifications from the rendering surface.
// Both registrations return a function that cancels them.
type Observer interface {
	// OnVisible registers fn for visibility transitions of a column's
	// sentinel region.
	OnVisible(column int, fn func(visible bool)) (cancel func())

	// OnResize registers fn for viewport resizes.
	OnResize(fn func()) (cancel func())
}

// Settler defers work until the surface has caught up with every column
// mutation made so far. fn must run later on the same event loop, never
// concurrently with other wall calls.
type Settler interface {
	AwaitLayoutSettle(fn func())
}

// Host is everything a wall needs from its environment.
type Host interface {
	Measurer
	Observer
	Settler
}

// Backlog is the caller's item sequence. The wall only reads its length;
// callers may grow or shrink it between event-loop callbacks.
type Backlog interface {
	Len() int
}

// BacklogFunc adapts a length function to a Backlog.
type BacklogFunc func() int

// Len calls f.
func (f BacklogFunc) Len() int { return f() }

// SliceBacklog returns a Backlog tracking the current length of *items.
func SliceBacklog[T any](items *[]T) Backlog {
	return BacklogFunc(func() int { return len(*items) })
}
