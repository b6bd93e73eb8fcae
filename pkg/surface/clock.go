package surface

import (
	"sort"
	"time"
)

// Clock is a virtual clock. Time only moves when the surface runs out of
// work and a timer is due, which keeps simulations deterministic.
type Clock struct {
	now    time.Time
	timers []timer
	seq    int
}

type timer struct {
	at  time.Time
	seq int
	fn  func()
}

// NewClock returns a clock starting at the Unix epoch.
func NewClock() *Clock {
	return &Clock{now: time.Unix(0, 0).UTC()}
}

// Now returns the current virtual time.
func (c *Clock) Now() time.Time { return c.now }

// After registers fn to fire d after now.
func (c *Clock) After(d time.Duration, fn func()) {
	if d < 0 {
		d = 0
	}
	c.seq++
	c.timers = append(c.timers, timer{at: c.now.Add(d), seq: c.seq, fn: fn})
}

// Pending returns the number of timers not yet fired.
func (c *Clock) Pending() int { return len(c.timers) }

// Advance jumps to the earliest timer and fires every timer due at that
// instant, in registration order. It reports false when no timer is pending.
func (c *Clock) Advance() bool {
	if len(c.timers) == 0 {
		return false
	}
	sort.SliceStable(c.timers, func(i, j int) bool {
		if !c.timers[i].at.Equal(c.timers[j].at) {
			return c.timers[i].at.Before(c.timers[j].at)
		}
		return c.timers[i].seq < c.timers[j].seq
	})
	if c.timers[0].at.After(c.now) {
		c.now = c.timers[0].at
	}

	var due []timer
	rest := c.timers[:0]
	for _, t := range c.timers {
		if !t.at.After(c.now) {
			due = append(due, t)
		} else {
			rest = append(rest, t)
		}
	}
	c.timers = rest
	for _, t := range due {
		t.fn()
	}
	return true
}

// NextDue returns how long until the earliest pending timer fires.
func (c *Clock) NextDue() (time.Duration, bool) {
	if len(c.timers) == 0 {
		return 0, false
	}
	next := c.timers[0].at
	for _, t := range c.timers[1:] {
		if t.at.Before(next) {
			next = t.at
		}
	}
	return max(next.Sub(c.now), 0), true
}

// AdvanceTo moves the clock forward to t, firing every timer due by then in
// time order. Moving backwards is ignored.
func (c *Clock) AdvanceTo(t time.Time) {
	for {
		d, ok := c.NextDue()
		if !ok || c.now.Add(d).After(t) {
			break
		}
		c.Advance()
	}
	if t.After(c.now) {
		c.now = t
	}
}
