package knotty

import "time"

// Timer is a scoped helper to time a span of code and record the elapsed
// duration into a Histogram. The canonical usage guarantees exactly one
// observation on every exit path, including panics and early returns:
//
//	defer knotty.NewTimer(h).ObserveDuration()
//	// ... measured span ...
type Timer struct {
	h    Histogram
	t    time.Time
	u    time.Duration
	now  func() time.Time
	done bool
}

// NewTimer wraps the given histogram and records the current time. Durations
// are observed in seconds unless changed with Unit.
func NewTimer(h Histogram) *Timer {
	return &Timer{
		h:   h,
		t:   time.Now(),
		u:   time.Second,
		now: time.Now,
	}
}

// ObserveDuration records the elapsed time since construction into the
// wrapped histogram. Repeated calls are no-ops, so a deferred call composes
// with an explicit one on an early path.
func (t *Timer) ObserveDuration() {
	if t.done {
		return
	}
	t.done = true
	d := t.now().Sub(t.t).Seconds() * float64(time.Second) / float64(t.u)
	if d < 0 {
		d = 0
	}
	t.h.Observe(d)
}

// Unit sets the duration unit of observations, e.g. time.Millisecond for a
// statsd timing.
func (t *Timer) Unit(u time.Duration) {
	t.u = u
}
