package masonry

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/observability"
)

// State is a wall's lifecycle stage.
type State int

const (
	StateUninitialized State = iota
	StateSeeded
	StateMeasuring
	StateReady
	StateFilling
	StateResizing
	StateDestroyed
)

var stateNames = [...]string{
	StateUninitialized: "uninitialized",
	StateSeeded:        "seeded",
	StateMeasuring:     "measuring",
	StateReady:         "ready",
	StateFilling:       "filling",
	StateResizing:      "resizing",
	StateDestroyed:     "destroyed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown wall state %q", b)
}

// Wall places backlog items into columns and keeps them in sync with the
// surface it is mounted on.
//
// A Wall is not safe for concurrent use. All methods, and all callbacks the
// host delivers to it, must run on one event loop.
type Wall struct {
	backlog  Backlog
	host     Host
	opts     Options
	hint     int
	onAppend func()
	logger   *log.Logger

	columns  Columns
	cursor   int
	ready    bool
	state    State
	mounted  bool
	inflight int

	cancelResize  func()
	cancelVisible []func()
}

// WallOption configures a Wall.
type WallOption func(*Wall)

// WithOptions sets the layout options. Zero fields take their defaults.
func WithOptions(o Options) WallOption { return func(w *Wall) { w.opts = o } }

// WithServerHint seeds the wall with columns columns when the container
// cannot be measured yet. Non-positive values are ignored.
func WithServerHint(columns int) WallOption { return func(w *Wall) { w.hint = columns } }

// WithAppendHandler sets the function called whenever the backlog is
// drained and the wall wants more items.
func WithAppendHandler(fn func()) WallOption { return func(w *Wall) { w.onAppend = fn } }

// WithLogger sets the logger for debug output. Defaults to discarding.
func WithLogger(l *log.Logger) WallOption {
	return func(w *Wall) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a wall over backlog, hosted by host. The wall does nothing
// until [Wall.Mount] is called, except seeding from a server hint.
func New(backlog Backlog, host Host, opts ...WallOption) *Wall {
	w := &Wall{
		backlog: backlog,
		host:    host,
		opts:    DefaultOptions(),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.opts = w.opts.Normalize()

	if w.hint > 0 {
		n := backlog.Len()
		w.columns = SeedRoundRobin(w.hint, n)
		w.cursor = n
	} else {
		w.columns = Columns{}
	}
	w.state = StateSeeded
	return w
}

// Mount measures the container, redraws if the column count differs from the
// current one, marks the wall ready and starts listening for resizes.
// Calling Mount again, or after Destroy, does nothing.
func (w *Wall) Mount() {
	if w.mounted || w.state == StateDestroyed {
		return
	}
	w.mounted = true
	w.observeSentinels()

	w.measure()
	if !w.ready {
		w.ready = true
	}
	w.cancelResize = w.host.OnResize(w.Resize)
	w.settleState()
}

// Resize re-measures the container and redraws only if the column count
// changed. It is what the host's resize notification calls.
func (w *Wall) Resize() {
	if !w.mounted || w.state == StateDestroyed {
		return
	}
	from := len(w.columns)
	w.state = StateResizing
	to, redrawn := w.measure()
	observability.Wall().OnResize(from, to, redrawn)
	w.settleState()
}

// Redraw discards all placements and refills from the first item using the
// currently measured column count. It does nothing before Mount.
func (w *Wall) Redraw() {
	if !w.mounted || w.state == StateDestroyed {
		return
	}
	w.redraw(w.targetColumns())
}

// Fill resumes draining the backlog, e.g. after the caller appended items in
// response to an append request. It is a no-op while the wall is not ready.
func (w *Wall) Fill() {
	w.fill()
}

// Destroy stops listening to the host and aborts pending fill steps.
func (w *Wall) Destroy() {
	if w.state == StateDestroyed {
		return
	}
	if w.cancelResize != nil {
		w.cancelResize()
		w.cancelResize = nil
	}
	w.unobserveSentinels()
	w.ready = false
	w.state = StateDestroyed
	w.logger.Debug("wall destroyed", "cursor", w.cursor)
}

// measure computes the target column count and redraws when it differs from
// the current count.
func (w *Wall) measure() (target int, redrawn bool) {
	w.state = StateMeasuring
	target = w.targetColumns()
	if target == len(w.columns) {
		return target, false
	}
	w.redraw(target)
	return target, true
}

// targetColumns is the column count for the current container. Without a
// live measurement an existing (server-hinted) placement is kept.
func (w *Wall) targetColumns() int {
	width, ok := w.host.ContainerWidth()
	if !ok && len(w.columns) > 0 {
		return len(w.columns)
	}
	return ColumnCount(width, w.opts.Width)
}

func (w *Wall) redraw(count int) {
	w.ready = false
	w.unobserveSentinels()
	w.columns = NewColumns(count)
	w.cursor = 0
	w.ready = true
	w.observeSentinels()

	w.logger.Debug("redraw", "columns", count, "items", w.backlog.Len())
	observability.Wall().OnRedraw(count, w.backlog.Len())
	w.fill()
}

// observeSentinels replaces any existing registrations with one per column.
func (w *Wall) observeSentinels() {
	w.unobserveSentinels()
	for i := range w.columns {
		if cancel := w.host.OnVisible(i, w.onSentinelVisibility); cancel != nil {
			w.cancelVisible = append(w.cancelVisible, cancel)
		}
	}
}

func (w *Wall) unobserveSentinels() {
	for _, cancel := range w.cancelVisible {
		cancel()
	}
	w.cancelVisible = nil
}

// onSentinelVisibility starts a fill when a sentinel scrolls into view.
func (w *Wall) onSentinelVisibility(visible bool) {
	if visible {
		w.fill()
	}
}

func (w *Wall) settleState() {
	switch {
	case w.state == StateDestroyed:
	case w.inflight > 0:
		w.state = StateFilling
	case w.ready:
		w.state = StateReady
	default:
		w.state = StateSeeded
	}
}

// =============================================================================
// Render contract
// =============================================================================

// Snapshot is a copy of everything a renderer needs.
type Snapshot struct {
	Columns Columns `json:"columns"`
	Cursor  int     `json:"cursor"`
	Ready   bool    `json:"ready"`
	State   State   `json:"state"`
	Style   Style   `json:"style"`
}

// Snapshot returns a copy of the wall's current placement.
func (w *Wall) Snapshot() Snapshot {
	return Snapshot{
		Columns: w.columns.Clone(),
		Cursor:  w.cursor,
		Ready:   w.ready,
		State:   w.state,
		Style:   w.Style(),
	}
}

// Columns returns a copy of the column store.
func (w *Wall) Columns() Columns { return w.columns.Clone() }

// ColumnCount returns the current number of columns.
func (w *Wall) ColumnCount() int { return len(w.columns) }

// Lane returns the indexes of one column without copying. Callers must not
// modify the returned slice. It returns nil for unknown columns.
func (w *Wall) Lane(column int) []int {
	if column < 0 || column >= len(w.columns) {
		return nil
	}
	return w.columns[column].Indexes
}

// Cursor returns the index of the next unplaced item.
func (w *Wall) Cursor() int { return w.cursor }

// Ready reports whether a stable column set exists. Renderers keep the wall
// hidden until it is.
func (w *Wall) Ready() bool { return w.ready }

// State returns the lifecycle stage.
func (w *Wall) State() State { return w.state }

// Options returns the normalized options.
func (w *Wall) Options() Options { return w.opts }

// Style resolves the style records for the current column count.
func (w *Wall) Style() Style { return ResolveStyle(w.opts, len(w.columns)) }
