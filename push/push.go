// Package push drives periodic transmission of snapshots to a remote
// backend. An Emitter ticks on a fixed interval; each tick takes a fresh
// Snapshot, renders it with the configured format, and sends the bytes over
// a Transport, retrying a bounded number of times with jittered exponential
// backoff before recording the tick as failed. Failures are isolated per
// tick and never reach the measurement path.
package push

import (
	"bytes"
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/go-kit/log"

	"github.com/knottyio/knotty"
	"github.com/knottyio/knotty/backoff"
	"github.com/knottyio/knotty/conn"
)

// Snapshotter yields point-in-time captures of a metric registry.
// *registry.Registry satisfies it.
type Snapshotter interface {
	Snapshot() *knotty.Snapshot
}

// Renderer encodes one Snapshot into a backend wire format. Render must be a
// pure function of the Snapshot and the Renderer's configuration: no side
// effects, byte-identical output for the same input.
type Renderer interface {
	Render(w io.Writer, s *knotty.Snapshot) error
}

// DefaultRetryLimit is the maximum number of send attempts per tick.
const DefaultRetryLimit = 3

// Emitter periodically snapshots a registry and pushes the rendered bytes to
// a Transport.
type Emitter struct {
	src      Snapshotter
	renderer Renderer

	transport conn.Transport
	interval  time.Duration
	limit     int
	policy    *backoff.Exponential
	logger    log.Logger

	pushes   uint64
	failures uint64
}

// Option changes some behavior of an Emitter.
type Option func(*Emitter)

// WithRetryLimit sets the maximum number of send attempts per tick,
// including the first. The default is DefaultRetryLimit.
func WithRetryLimit(n int) Option {
	return func(e *Emitter) {
		if n >= 1 {
			e.limit = n
		}
	}
}

// WithBackoff replaces the retry wait policy.
func WithBackoff(b *backoff.Exponential) Option {
	return func(e *Emitter) { e.policy = b }
}

// NewEmitter returns an idle Emitter. Call Run to start pushing. The logger
// reports per-tick failures; it is the operator-facing observability hook
// and is distinct from the measured metrics.
func NewEmitter(src Snapshotter, r Renderer, t conn.Transport, interval time.Duration, logger log.Logger, options ...Option) *Emitter {
	e := &Emitter{
		src:       src,
		renderer:  r,
		transport: t,
		interval:  interval,
		limit:     DefaultRetryLimit,
		policy:    backoff.New(),
		logger:    logger,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// Run ticks until the context is canceled. On cancellation any in-flight
// send is abandoned via its context and no further ticks are scheduled. Run
// blocks; start it in its own goroutine.
func (e *Emitter) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := e.Flush(ctx); err != nil {
				e.logger.Log("during", "flush", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Flush performs one push cycle: snapshot, render, then send with bounded
// retries. It returns the last send error when every attempt failed. A
// render problem never corrupts registry state; a send problem never blocks
// beyond the transport's timeout.
func (e *Emitter) Flush(ctx context.Context) error {
	s := e.src.Snapshot()

	var buf bytes.Buffer
	if err := e.renderer.Render(&buf, s); err != nil {
		atomic.AddUint64(&e.failures, 1)
		return err
	}
	payload := buf.Bytes()

	e.policy.Reset()
	for attempt := 1; ; attempt++ {
		err := e.transport.Send(ctx, payload)
		if err == nil {
			atomic.AddUint64(&e.pushes, 1)
			return nil
		}
		if attempt >= e.limit || ctx.Err() != nil {
			atomic.AddUint64(&e.failures, 1)
			return err
		}
		e.logger.Log("during", "send", "attempt", attempt, "err", err)
		if err := e.policy.Wait(ctx); err != nil {
			atomic.AddUint64(&e.failures, 1)
			return err
		}
	}
}

// Stats reports how many ticks have been pushed successfully and how many
// were dropped after exhausting their retries. It is the metrics-about-
// metrics hook for operators.
func (e *Emitter) Stats() (pushes, failures uint64) {
	return atomic.LoadUint64(&e.pushes), atomic.LoadUint64(&e.failures)
}
