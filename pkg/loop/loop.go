// Package loop provides a single-threaded cooperative task queue.
//
// A Loop plays the role of a UI event loop for headless hosts: visibility
// callbacks, resize notifications and layout-settle continuations are posted
// as tasks and run one at a time, in order, on the caller's goroutine. Idle
// hooks run whenever the queue drains; this is where a surface publishes
// observations (visibility transitions) that may post further tasks.
//
// A Loop is not safe for concurrent use.
package loop

import (
	"github.com/matzehuels/masonry/pkg/errors"
)

// DefaultBudget bounds [Loop.Run] when no explicit budget is given.
const DefaultBudget = 1_000_000

// Loop is a FIFO task queue with idle hooks.
type Loop struct {
	tasks []func()
	idle  []func()
	steps int
}

// New returns an empty loop.
func New() *Loop {
	return &Loop{}
}

// Post schedules fn after every task already queued.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		return
	}
	l.tasks = append(l.tasks, fn)
}

// AwaitLayoutSettle posts fn. Hosts whose geometry is always current can use
// the loop itself as their settle point.
func (l *Loop) AwaitLayoutSettle(fn func()) {
	l.Post(fn)
}

// OnIdle registers fn to run each time the queue drains.
func (l *Loop) OnIdle(fn func()) {
	if fn != nil {
		l.idle = append(l.idle, fn)
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	return len(l.tasks)
}

// Steps returns the number of tasks run so far.
func (l *Loop) Steps() int {
	return l.steps
}

// Step runs the oldest queued task. With an empty queue it runs the idle
// hooks instead. It reports whether more work is queued afterwards.
func (l *Loop) Step() bool {
	if len(l.tasks) == 0 {
		for _, fn := range l.idle {
			fn()
		}
		return len(l.tasks) > 0
	}

	fn := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	l.steps++
	fn()
	return true
}

// Run steps until the queue drains and the idle hooks post nothing new.
// It returns the number of tasks run and an ErrCodeInternal error if budget
// tasks ran without reaching quiescence. A non-positive budget uses
// DefaultBudget.
func (l *Loop) Run(budget int) (int, error) {
	if budget <= 0 {
		budget = DefaultBudget
	}
	start := l.steps
	for l.Step() {
		if l.steps-start >= budget {
			return l.steps - start, errors.New(errors.ErrCodeInternal, "event loop still busy after %d tasks", budget)
		}
	}
	return l.steps - start, nil
}
