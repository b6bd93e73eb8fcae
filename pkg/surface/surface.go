// Package surface is a headless rendering surface for masonry walls.
//
// A Surface computes the geometry a browser would produce for a wall (lane
// widths, stacked item heights and the trailing sentinel of every column)
// from item heights, a viewport and a scroll offset. It implements the
// measurement, observation and settle capabilities a [masonry.Wall] needs,
// on top of a [loop.Loop]:
//
//   - layout-settle continuations are posted to the loop;
//   - sentinel visibility is evaluated whenever the loop goes idle, and
//     transitions (plus the first observation) are delivered as tasks;
//   - viewport resizes are delivered as tasks.
//
// Time is virtual (see [Clock]); [Surface.Run] drains the loop and fires
// due timers until nothing is left to do.
package surface

import (
	"maps"
	"slices"
	"time"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/loop"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/throttle"
)

// Surface simulates the page a wall is rendered on.
type Surface struct {
	loop   *loop.Loop
	clock  *Clock
	height HeightFunc
	src    Source

	width     float64
	viewport  float64
	scrollTop float64
	live      bool

	watches map[int]*watch
	resizes map[int]func()
	nextID  int

	cache []laneCache
}

type watch struct {
	column int
	fn     func(bool)
	seen   bool
	last   bool
}

// laneCache memoizes the stacked height of a column's first n items.
type laneCache struct {
	n     int
	last  int
	sum   float64
	item  float64
	pad   float64
	valid bool
}

// Option configures a Surface.
type Option func(*Surface)

// WithLoop runs the surface on an existing loop.
func WithLoop(l *loop.Loop) Option {
	return func(s *Surface) {
		if l != nil {
			s.loop = l
		}
	}
}

// WithClock sets the virtual clock.
func WithClock(c *Clock) Option {
	return func(s *Surface) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithoutLiveWidth makes ContainerWidth report no measurement, as during a
// server pre-render.
func WithoutLiveWidth() Option {
	return func(s *Surface) { s.live = false }
}

// New returns a surface with the given container width and viewport height.
func New(width, viewport float64, height HeightFunc, opts ...Option) *Surface {
	s := &Surface{
		loop:     loop.New(),
		clock:    NewClock(),
		height:   height,
		width:    width,
		viewport: viewport,
		live:     true,
		watches:  map[int]*watch{},
		resizes:  map[int]func(){},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.height == nil {
		s.height = func(int, float64) float64 { return 0 }
	}
	s.loop.OnIdle(s.observe)
	return s
}

// Attach sets the placement the surface measures. It must be called before
// the wall is mounted.
func (s *Surface) Attach(src Source) { s.src = src }

// Loop returns the event loop the surface posts to.
func (s *Surface) Loop() *loop.Loop { return s.loop }

// Clock returns the surface's virtual clock.
func (s *Surface) Clock() *Clock { return s.clock }

// Host returns the surface as a wall host whose visibility notifications are
// throttled to one per interval per column. A non-positive interval
// disables throttling.
func (s *Surface) Host(interval time.Duration) masonry.Host {
	return &host{
		Surface: s,
		obs: throttle.Wrap(s, interval,
			throttle.WithClock(s.clock.Now),
			throttle.WithScheduler(func(d time.Duration, fn func()) {
				s.clock.After(d, func() { s.loop.Post(fn) })
			}),
		),
	}
}

type host struct {
	*Surface
	obs throttle.Observer
}

func (h *host) OnVisible(column int, fn func(bool)) func() { return h.obs.OnVisible(column, fn) }
func (h *host) OnResize(fn func()) func()                  { return h.obs.OnResize(fn) }

// =============================================================================
// Measurer
// =============================================================================

// ContainerWidth returns the container width, or false without a live width.
func (s *Surface) ContainerWidth() (float64, bool) {
	if !s.live {
		return 0, false
	}
	return s.width, true
}

// SentinelHeight returns the height of the column's sentinel: from Overlap
// pixels above the column's content end down to the wall's bottom.
func (s *Surface) SentinelHeight(column int) float64 {
	if s.src == nil || column < 0 || column >= s.src.ColumnCount() {
		return 0
	}
	return s.wallHeight() - s.content(column) + Overlap
}

// wallHeight is the height shared by every lane: the tallest column's
// content plus the minimum sentinel.
func (s *Surface) wallHeight() float64 {
	h := 0.0
	for c := 0; c < s.src.ColumnCount(); c++ {
		if v := s.content(c) + MinSentinel; v > h {
			h = v
		}
	}
	return h
}

// content returns the stacked block height of a column, extending the
// cached prefix when only new items were appended.
func (s *Surface) content(column int) float64 {
	n := s.src.ColumnCount()
	if len(s.cache) != n {
		s.cache = make([]laneCache, n)
	}
	p := s.src.Style().Lane.PaddingLeft
	_, item := laneWidths(s.width, n, p)

	lane := s.src.Lane(column)
	lc := &s.cache[column]
	if !lc.valid || lc.item != item || lc.pad != p || lc.n > len(lane) || (lc.n > 0 && lane[lc.n-1] != lc.last) {
		*lc = laneCache{item: item, pad: p, valid: true}
	}
	for _, i := range lane[lc.n:] {
		lc.sum += blockHeight(s.height, i, item, p)
		lc.last = i
	}
	lc.n = len(lane)
	return lc.sum
}

// Geometry lays out the attached placement at the current width.
func (s *Surface) Geometry() Geometry {
	if s.src == nil {
		return Geometry{Width: s.width}
	}
	return Measure(s.src, s.width, s.height)
}

// =============================================================================
// Observer
// =============================================================================

// OnVisible watches a column's sentinel. The first evaluation after
// registration is always delivered.
func (s *Surface) OnVisible(column int, fn func(bool)) func() {
	id := s.nextID
	s.nextID++
	s.watches[id] = &watch{column: column, fn: fn}
	return func() { delete(s.watches, id) }
}

// OnResize registers fn for viewport resizes.
func (s *Surface) OnResize(fn func()) func() {
	id := s.nextID
	s.nextID++
	s.resizes[id] = fn
	return func() { delete(s.resizes, id) }
}

// Visible reports whether a column's sentinel intersects the viewport.
func (s *Surface) Visible(column int) bool {
	if s.src == nil || column < 0 || column >= s.src.ColumnCount() {
		return false
	}
	top := s.content(column) - Overlap
	bottom := s.wallHeight()
	return top < s.scrollTop+s.viewport && bottom > s.scrollTop
}

// AnyVisible reports whether any column's sentinel intersects the viewport,
// i.e. whether the page would show empty space below the wall.
func (s *Surface) AnyVisible() bool {
	if s.src == nil {
		return false
	}
	for c := 0; c < s.src.ColumnCount(); c++ {
		if s.Visible(c) {
			return true
		}
	}
	return false
}

// observe delivers visibility transitions. It runs when the loop is idle.
func (s *Surface) observe() {
	for _, id := range slices.Sorted(maps.Keys(s.watches)) {
		w, ok := s.watches[id]
		if !ok {
			continue
		}
		v := s.Visible(w.column)
		if w.seen && w.last == v {
			continue
		}
		w.seen, w.last = true, v
		fn := w.fn
		s.loop.Post(func() {
			if _, ok := s.watches[id]; ok {
				fn(v)
			}
		})
	}
}

// =============================================================================
// Settler
// =============================================================================

// AwaitLayoutSettle posts fn. Geometry is computed on demand, so the layout
// has settled by the time any posted task runs.
func (s *Surface) AwaitLayoutSettle(fn func()) { s.loop.Post(fn) }

// =============================================================================
// Driving
// =============================================================================

// Resize changes the container width and viewport height and notifies
// resize listeners.
func (s *Surface) Resize(width, viewport float64) {
	s.width, s.viewport = width, viewport
	s.live = true
	for _, id := range slices.Sorted(maps.Keys(s.resizes)) {
		s.loop.Post(s.resizes[id])
	}
}

// Scroll moves the viewport top to y, clamped to the scrollable range.
func (s *Surface) Scroll(y float64) {
	s.scrollTop = y
	s.clampScroll()
}

// ScrollBy moves the viewport by dy pixels.
func (s *Surface) ScrollBy(dy float64) { s.Scroll(s.scrollTop + dy) }

// ScrollToBottom moves the viewport to the end of the wall.
func (s *Surface) ScrollToBottom() { s.Scroll(s.maxScroll()) }

// ScrollTop returns the viewport's top offset.
func (s *Surface) ScrollTop() float64 { return s.scrollTop }

// Viewport returns the viewport height.
func (s *Surface) Viewport() float64 { return s.viewport }

// Width returns the container width.
func (s *Surface) Width() float64 { return s.width }

func (s *Surface) maxScroll() float64 {
	if s.src == nil {
		return 0
	}
	return max(0, s.wallHeight()-s.viewport)
}

func (s *Surface) clampScroll() {
	s.scrollTop = min(max(s.scrollTop, 0), s.maxScroll())
}

// Run drains the loop, advancing the virtual clock whenever the loop is idle
// and a timer is pending. It returns the number of tasks run, or an error
// once budget tasks ran without the surface going quiet.
func (s *Surface) Run(budget int) (int, error) {
	if budget <= 0 {
		budget = loop.DefaultBudget
	}
	total := 0
	for {
		n, err := s.loop.Run(budget - total)
		total += n
		if err != nil {
			return total, err
		}
		if !s.clock.Advance() {
			return total, nil
		}
		if total >= budget {
			return total, errors.New(errors.ErrCodeInternal, "surface still busy after %d tasks", budget)
		}
	}
}
