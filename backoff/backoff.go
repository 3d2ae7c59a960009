// Package backoff provides the jittered exponential wait policy used
// between push-exporter retry attempts.
package backoff

import (
	"context"
	"math/rand"
	"time"
)

const (
	DefaultInterval    = 100 * time.Millisecond
	DefaultMaxInterval = 10 * time.Second
)

// Exponential provides jittered exponential durations for the purpose of
// avoiding flooding a service with requests.
//
// An Exponential is not safe for concurrent use; each push scheduler owns
// its own instance.
type Exponential struct {
	Interval time.Duration
	Max      time.Duration

	current time.Duration
}

// New creates a new Exponential instance with the default values.
func New() *Exponential {
	b := &Exponential{
		Interval: DefaultInterval,
		Max:      DefaultMaxInterval,
	}
	b.Reset()
	return b
}

// Reset should be called after a request succeeds, or at the start of each
// retry sequence.
func (b *Exponential) Reset() {
	b.current = b.Interval
}

// Wait blocks for the next backoff duration, or until the context is
// canceled, whichever comes first. It returns the context error on
// cancellation.
func (b *Exponential) Wait(ctx context.Context) error {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next updates the current interval and returns the updated value.
func (b *Exponential) Next() time.Duration {
	d := b.next()
	if d > b.Max {
		d = b.Max
	}
	b.current = d
	return d
}

// next provides the exponential jittered backoff value. See
// https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
// for rationale.
func (b *Exponential) next() time.Duration {
	if b.current <= 0 {
		b.current = DefaultInterval
	}
	d := float64(b.current * 2)
	jitter := rand.Float64() + 0.5
	return time.Duration(d * jitter)
}
