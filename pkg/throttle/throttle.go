// Package throttle rate-limits visibility notifications at the observer
// boundary.
//
// Each column's callback gets its own token bucket (golang.org/x/time/rate)
// refilled once per interval. A notification arriving while the bucket is
// empty is not dropped: the latest state is delivered once the interval has
// elapsed, through the host's scheduler so it still runs on the host's event
// loop. Without a scheduler, throttled notifications are dropped.
package throttle

import (
	"time"

	"golang.org/x/time/rate"
)

// Observer is the notification source being throttled. Its method set
// matches masonry.Observer.
type Observer interface {
	OnVisible(column int, fn func(visible bool)) (cancel func())
	OnResize(fn func()) (cancel func())
}

// Scheduler runs fn on the host's event loop after d.
type Scheduler func(d time.Duration, fn func())

// Option configures a throttled observer.
type Option func(*observer)

// WithClock overrides the time source. Tests use it with a fake clock.
func WithClock(now func() time.Time) Option {
	return func(o *observer) {
		if now != nil {
			o.now = now
		}
	}
}

// WithScheduler sets how trailing notifications are delivered.
func WithScheduler(s Scheduler) Option {
	return func(o *observer) { o.after = s }
}

type observer struct {
	inner    Observer
	interval time.Duration
	now      func() time.Time
	after    Scheduler
}

// Wrap returns an Observer whose visibility callbacks fire at most once per
// interval per column. Resize notifications pass through unchanged. A
// non-positive interval returns inner as is.
func Wrap(inner Observer, interval time.Duration, opts ...Option) Observer {
	if interval <= 0 {
		return inner
	}
	o := &observer{inner: inner, interval: interval, now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *observer) OnResize(fn func()) func() {
	return o.inner.OnResize(fn)
}

func (o *observer) OnVisible(column int, fn func(visible bool)) func() {
	g := &gate{
		limiter: rate.NewLimiter(rate.Every(o.interval), 1),
		now:     o.now,
		after:   o.after,
		deliver: fn,
	}
	cancel := o.inner.OnVisible(column, g.notify)
	return func() {
		g.canceled = true
		if cancel != nil {
			cancel()
		}
	}
}

// gate throttles one column's notifications.
type gate struct {
	limiter  *rate.Limiter
	now      func() time.Time
	after    Scheduler
	deliver  func(bool)
	latest   bool
	pending  bool
	canceled bool
}

func (g *gate) notify(visible bool) {
	if g.canceled {
		return
	}
	g.latest = visible
	if g.pending {
		return
	}

	now := g.now()
	if g.limiter.AllowN(now, 1) {
		g.deliver(visible)
		return
	}
	if g.after == nil {
		return
	}

	r := g.limiter.ReserveN(now, 1)
	if !r.OK() {
		return
	}
	g.pending = true
	g.after(r.DelayFrom(now), func() {
		g.pending = false
		if !g.canceled {
			g.deliver(g.latest)
		}
	})
}
