package masonry

import (
	"math"

	"github.com/matzehuels/masonry/pkg/loop"
)

// fakeHost is a scripted surface. Sentinel heights shrink as a column's
// content grows, so the tallest sentinel marks the shortest column.
type fakeHost struct {
	width  float64
	live   bool
	height func(index int) float64

	wall    *Wall
	loop    *loop.Loop
	visible map[int]func(bool)
	subs    []*subscription
	resize  []func()
	nan     map[int]bool
}

// subscription is one OnVisible registration. Every live one is notified.
type subscription struct {
	column int
	fn     func(bool)
	live   bool
}

func newFakeHost(width float64) *fakeHost {
	return &fakeHost{
		width:   width,
		live:    true,
		height:  func(int) float64 { return 100 },
		loop:    loop.New(),
		visible: map[int]func(bool){},
		nan:     map[int]bool{},
	}
}

func (h *fakeHost) ContainerWidth() (float64, bool) { return h.width, h.live }

func (h *fakeHost) SentinelHeight(column int) float64 {
	if h.nan[column] {
		return math.NaN()
	}
	content := 0.0
	for _, i := range h.wall.Lane(column) {
		content += h.height(i)
	}
	return 1e6 - content
}

func (h *fakeHost) OnVisible(column int, fn func(bool)) func() {
	sub := &subscription{column: column, fn: fn, live: true}
	h.subs = append(h.subs, sub)
	h.visible[column] = fn
	return func() {
		sub.live = false
		if h.observers(column) == 0 {
			delete(h.visible, column)
		}
	}
}

// observers counts the live registrations for column.
func (h *fakeHost) observers(column int) int {
	n := 0
	for _, sub := range h.subs {
		if sub.live && sub.column == column {
			n++
		}
	}
	return n
}

func (h *fakeHost) OnResize(fn func()) func() {
	h.resize = append(h.resize, fn)
	idx := len(h.resize) - 1
	return func() { h.resize[idx] = nil }
}

func (h *fakeHost) AwaitLayoutSettle(fn func()) { h.loop.Post(fn) }

func (h *fakeHost) fireResize() {
	for _, fn := range h.resize {
		if fn != nil {
			fn()
		}
	}
}

func (h *fakeHost) show(column int) {
	for _, sub := range h.subs {
		if sub.live && sub.column == column {
			sub.fn(true)
		}
	}
}

func (h *fakeHost) drain() int {
	n, err := h.loop.Run(0)
	if err != nil {
		panic(err)
	}
	return n
}

type wallRecorder struct {
	redraws []int
	assigns [][2]int
	appends []int
	resizes [][3]int
}

func (r *wallRecorder) OnRedraw(columns, _ int) { r.redraws = append(r.redraws, columns) }
func (r *wallRecorder) OnAssign(column, index int) {
	r.assigns = append(r.assigns, [2]int{column, index})
}
func (r *wallRecorder) OnAppend(cursor int) { r.appends = append(r.appends, cursor) }
func (r *wallRecorder) OnResize(from, to int, redraw bool) {
	b := 0
	if redraw {
		b = 1
	}
	r.resizes = append(r.resizes, [3]int{from, to, b})
}
