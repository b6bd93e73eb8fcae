package throttle

import (
	"slices"
	"testing"
	"time"
)

type fakeObserver struct {
	visible map[int]func(bool)
	resize  []func()
}

func newFakeObserver() *fakeObserver {
	return &fakeObserver{visible: map[int]func(bool){}}
}

func (f *fakeObserver) OnVisible(column int, fn func(bool)) func() {
	f.visible[column] = fn
	return func() { delete(f.visible, column) }
}

func (f *fakeObserver) OnResize(fn func()) func() {
	f.resize = append(f.resize, fn)
	return func() {}
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type timer struct {
	delay time.Duration
	fn    func()
}

func TestWrapZeroIntervalIsPassThrough(t *testing.T) {
	inner := newFakeObserver()
	for _, d := range []time.Duration{0, -1} {
		if got := Wrap(inner, d); got != Observer(inner) {
			t.Errorf("Wrap(inner, %v) = %T, want the inner observer", d, got)
		}
	}
}

func TestFirstNotificationPassesImmediately(t *testing.T) {
	inner := newFakeObserver()
	clock := &fakeClock{t: time.Unix(0, 0)}
	obs := Wrap(inner, 300*time.Millisecond, WithClock(clock.now))

	var got []bool
	obs.OnVisible(0, func(v bool) { got = append(got, v) })
	inner.visible[0](true)

	if want := []bool{true}; !slices.Equal(got, want) {
		t.Errorf("delivered = %v, want %v", got, want)
	}
}

func TestBurstCollapsesToTrailingLatestState(t *testing.T) {
	inner := newFakeObserver()
	clock := &fakeClock{t: time.Unix(0, 0)}
	var timers []timer
	obs := Wrap(inner, 300*time.Millisecond,
		WithClock(clock.now),
		WithScheduler(func(d time.Duration, fn func()) { timers = append(timers, timer{d, fn}) }),
	)

	var got []bool
	obs.OnVisible(2, func(v bool) { got = append(got, v) })

	inner.visible[2](true)
	clock.advance(100 * time.Millisecond)
	inner.visible[2](false)
	inner.visible[2](true)

	if want := []bool{true}; !slices.Equal(got, want) {
		t.Errorf("delivered = %v, want %v (only the leading notification)", got, want)
	}
	if len(timers) != 1 {
		t.Fatalf("scheduled timers = %d, want 1", len(timers))
	}
	if d := timers[0].delay; (d - 200*time.Millisecond).Abs() > time.Millisecond {
		t.Errorf("trailing delay = %v, want about 200ms", d)
	}

	timers[0].fn()
	if want := []bool{true, true}; !slices.Equal(got, want) {
		t.Errorf("delivered = %v, want %v", got, want)
	}
}

func TestNotificationAfterIntervalPasses(t *testing.T) {
	inner := newFakeObserver()
	clock := &fakeClock{t: time.Unix(0, 0)}
	obs := Wrap(inner, 300*time.Millisecond, WithClock(clock.now))

	var got []bool
	obs.OnVisible(0, func(v bool) { got = append(got, v) })
	inner.visible[0](true)
	clock.advance(301 * time.Millisecond)
	inner.visible[0](false)

	if want := []bool{true, false}; !slices.Equal(got, want) {
		t.Errorf("delivered = %v, want %v", got, want)
	}
}

func TestThrottledWithoutSchedulerDrops(t *testing.T) {
	inner := newFakeObserver()
	clock := &fakeClock{t: time.Unix(0, 0)}
	obs := Wrap(inner, time.Second, WithClock(clock.now))

	var got []bool
	obs.OnVisible(0, func(v bool) { got = append(got, v) })
	inner.visible[0](true)
	inner.visible[0](false)

	if want := []bool{true}; !slices.Equal(got, want) {
		t.Errorf("delivered = %v, want %v", got, want)
	}
}

func TestColumnsAreThrottledIndependently(t *testing.T) {
	inner := newFakeObserver()
	clock := &fakeClock{t: time.Unix(0, 0)}
	obs := Wrap(inner, time.Second, WithClock(clock.now))

	var got []int
	obs.OnVisible(0, func(bool) { got = append(got, 0) })
	obs.OnVisible(1, func(bool) { got = append(got, 1) })
	inner.visible[0](true)
	inner.visible[1](true)

	if want := []int{0, 1}; !slices.Equal(got, want) {
		t.Errorf("delivered = %v, want %v", got, want)
	}
}

func TestCancelStopsTrailingDelivery(t *testing.T) {
	inner := newFakeObserver()
	clock := &fakeClock{t: time.Unix(0, 0)}
	var timers []timer
	obs := Wrap(inner, time.Second,
		WithClock(clock.now),
		WithScheduler(func(d time.Duration, fn func()) { timers = append(timers, timer{d, fn}) }),
	)

	var got []bool
	cancel := obs.OnVisible(0, func(v bool) { got = append(got, v) })
	notify := inner.visible[0]
	notify(true)
	notify(true)
	cancel()

	if len(timers) != 1 {
		t.Fatalf("scheduled timers = %d, want 1", len(timers))
	}
	timers[0].fn()
	if want := []bool{true}; !slices.Equal(got, want) {
		t.Errorf("delivered = %v, want %v", got, want)
	}
	if len(inner.visible) != 0 {
		t.Errorf("inner registrations = %d, want 0", len(inner.visible))
	}
}

func TestResizePassesThrough(t *testing.T) {
	inner := newFakeObserver()
	obs := Wrap(inner, time.Second)
	calls := 0
	obs.OnResize(func() { calls++ })
	if len(inner.resize) != 1 {
		t.Fatalf("inner resize listeners = %d, want 1", len(inner.resize))
	}
	inner.resize[0]()
	inner.resize[0]()
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
