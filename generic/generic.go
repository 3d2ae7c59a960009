// Package generic implements in-memory versions of each of the metric
// primitives. They are created and owned by a registry.Registry, but can
// also be used standalone.
package generic

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/knottyio/knotty"
	"github.com/knottyio/knotty/internal/reservoir"
)

// Counter is an in-memory implementation of a Counter. Updates are a
// compare-and-swap loop on the float64 bit pattern: lock-free, constant
// time, no lost updates under concurrent writers.
type Counter struct {
	bits uint64
}

// NewCounter returns a new, usable Counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Add implements Counter. Negative (or NaN) deltas fail with
// ErrNegativeCounterDelta and leave the value untouched.
func (c *Counter) Add(delta float64) error {
	if delta < 0 || math.IsNaN(delta) {
		return knotty.ErrNegativeCounterDelta
	}
	for {
		var (
			old  = atomic.LoadUint64(&c.bits)
			newf = math.Float64frombits(old) + delta
			newb = math.Float64bits(newf)
		)
		if atomic.CompareAndSwapUint64(&c.bits, old, newb) {
			return nil
		}
	}
}

// Value returns the current value of the counter.
func (c *Counter) Value() float64 {
	return math.Float64frombits(atomic.LoadUint64(&c.bits))
}

// Gauge is an in-memory implementation of a Gauge.
type Gauge struct {
	bits uint64
}

// NewGauge returns a new, usable Gauge.
func NewGauge() *Gauge {
	return &Gauge{}
}

// Set implements Gauge.
func (g *Gauge) Set(value float64) {
	atomic.StoreUint64(&g.bits, math.Float64bits(value))
}

// Add implements Gauge. Deltas may be negative.
func (g *Gauge) Add(delta float64) {
	for {
		var (
			old  = atomic.LoadUint64(&g.bits)
			newf = math.Float64frombits(old) + delta
			newb = math.Float64bits(newf)
		)
		if atomic.CompareAndSwapUint64(&g.bits, old, newb) {
			return
		}
	}
}

// Value returns the current value of the gauge.
func (g *Gauge) Value() float64 {
	return math.Float64frombits(atomic.LoadUint64(&g.bits))
}

// Histogram is an in-memory implementation of a streaming histogram, backed
// by a forward-decay reservoir so quantile estimates favor recent
// observations. It additionally tracks exact count, sum, min, and max.
//
// All state is guarded by a histogram-local mutex held only for the O(log K)
// reservoir insertion or the O(K) read copy, never across I/O and never
// shared with any other metric.
type Histogram struct {
	mtx sync.Mutex
	now func() time.Time

	count uint64
	sum   float64
	min   float64
	max   float64
	res   *reservoir.Sample
}

// HistogramOption changes some behavior of a Histogram.
type HistogramOption func(*histogramConfig)

type histogramConfig struct {
	size  int
	alpha float64
	now   func() time.Time
}

// WithReservoirSize sets the reservoir capacity K. The default is
// reservoir.DefaultSize.
func WithReservoirSize(size int) HistogramOption {
	return func(c *histogramConfig) { c.size = size }
}

// WithDecayAlpha sets the forward-decay rate. The default is
// reservoir.DefaultAlpha.
func WithDecayAlpha(alpha float64) HistogramOption {
	return func(c *histogramConfig) { c.alpha = alpha }
}

// WithClock sets the wall-clock source used to weight observations.
// Primarily useful for tests.
func WithClock(now func() time.Time) HistogramOption {
	return func(c *histogramConfig) { c.now = now }
}

// NewHistogram returns a new, usable Histogram.
func NewHistogram(options ...HistogramOption) *Histogram {
	cfg := histogramConfig{
		size:  reservoir.DefaultSize,
		alpha: reservoir.DefaultAlpha,
		now:   time.Now,
	}
	for _, option := range options {
		option(&cfg)
	}
	return &Histogram{
		now: cfg.now,
		res: reservoir.New(cfg.size, cfg.alpha, cfg.now()),
	}
}

// Observe implements Histogram.
func (h *Histogram) Observe(value float64) {
	now := h.now()
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.count++
	h.sum += value
	if h.count == 1 || value < h.min {
		h.min = value
	}
	if h.count == 1 || value > h.max {
		h.max = value
	}
	h.res.Update(value, now)
}

// Quantile estimates the value of the quantile q, 0 < q < 1.
func (h *Histogram) Quantile(q float64) float64 {
	d := h.Read([]float64{q})
	return d.Quantiles[0].Value
}

// Count returns the number of observations.
func (h *Histogram) Count() uint64 {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.count
}

// Read captures a consistent distribution summary with the requested
// quantiles. The lock is held only to copy state; sorting and interpolation
// happen outside it.
func (h *Histogram) Read(qs []float64) knotty.Distribution {
	h.mtx.Lock()
	d := knotty.Distribution{
		Count: h.count,
		Sum:   h.sum,
		Min:   h.min,
		Max:   h.max,
	}
	values := h.res.Values()
	h.mtx.Unlock()

	estimates := reservoir.Quantiles(values, qs)
	d.Quantiles = make([]knotty.QuantileValue, len(qs))
	for i, q := range qs {
		d.Quantiles[i] = knotty.QuantileValue{Quantile: q, Value: estimates[i]}
	}
	return d
}
