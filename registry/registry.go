// Package registry owns the live metrics of a process. A Registry maps
// metric identities to handles, enforces identity uniqueness and kind
// consistency, and produces point-in-time Snapshots for the exporter
// packages.
//
// The intended lifecycle is one Registry per process: created at startup,
// passed explicitly to instrumented components and exporters, torn down at
// shutdown. There is deliberately no package-global instance.
package registry

import (
	"sync"
	"time"

	"github.com/knottyio/knotty"
	"github.com/knottyio/knotty/generic"
)

// DefaultQuantiles are the quantiles captured into snapshots unless
// overridden with WithQuantiles.
var DefaultQuantiles = []float64{0.50, 0.75, 0.95, 0.99}

// Handle is a registered metric: its identity, its kind tag, and exactly one
// of the concrete primitives. Handles are owned by the Registry; application
// code keeps the reference returned from registration for the process
// lifetime.
type Handle struct {
	id   knotty.Identity
	kind knotty.Kind

	counter   *generic.Counter
	gauge     *generic.Gauge
	histogram *generic.Histogram
}

// Identity returns the handle's canonical identity.
func (h *Handle) Identity() knotty.Identity { return h.id }

// Kind returns the handle's metric kind.
func (h *Handle) Kind() knotty.Kind { return h.kind }

// Counter returns the underlying counter, or nil for other kinds.
func (h *Handle) Counter() *generic.Counter { return h.counter }

// Gauge returns the underlying gauge, or nil for other kinds.
func (h *Handle) Gauge() *generic.Gauge { return h.gauge }

// Histogram returns the underlying histogram, or nil for other kinds.
func (h *Handle) Histogram() *generic.Histogram { return h.histogram }

// Registry is a concurrency-safe mapping from metric identities to handles.
// Registration and unregistration serialize on a registry-wide write lock
// (the write-rare path); lookup, iteration, and snapshotting take only the
// read lock and never block on a slow metric update.
type Registry struct {
	mtx     sync.RWMutex
	metrics map[string]*Handle

	now       func() time.Time
	quantiles []float64
	globals   []string
	histOpts  []generic.HistogramOption
}

// Option changes some behavior of a Registry.
type Option func(*Registry)

// WithClock sets the wall-clock source used for snapshot capture times and
// histogram decay weighting.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithQuantiles sets the quantiles captured into snapshots, each in (0,1).
func WithQuantiles(qs ...float64) Option {
	return func(r *Registry) { r.quantiles = qs }
}

// WithGlobalLabels attaches the given label pairs to every snapshot entry,
// e.g. process or host identity. Metric-local labels win on key collision.
func WithGlobalLabels(labelPairs ...string) Option {
	return func(r *Registry) { r.globals = labelPairs }
}

// WithHistogramOptions forwards options to every histogram the registry
// constructs, e.g. generic.WithReservoirSize.
func WithHistogramOptions(options ...generic.HistogramOption) Option {
	return func(r *Registry) { r.histOpts = options }
}

// New returns an empty Registry.
func New(options ...Option) *Registry {
	r := &Registry{
		metrics:   map[string]*Handle{},
		now:       time.Now,
		quantiles: DefaultQuantiles,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Register returns the handle for the given identity, creating it with
// zeroed state on first registration. Re-registering an identity with the
// same kind returns the existing handle; with a different kind it fails with
// a TypeConflictError.
func (r *Registry) Register(id knotty.Identity, kind knotty.Kind) (*Handle, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if existing, ok := r.metrics[id.String()]; ok {
		if existing.kind != kind {
			return nil, &knotty.TypeConflictError{Identity: id, Existing: existing.kind, Requested: kind}
		}
		return existing, nil
	}

	h := &Handle{id: id, kind: kind}
	switch kind {
	case knotty.KindCounter:
		h.counter = generic.NewCounter()
	case knotty.KindGauge:
		h.gauge = generic.NewGauge()
	case knotty.KindHistogram:
		opts := append([]generic.HistogramOption{generic.WithClock(r.now)}, r.histOpts...)
		h.histogram = generic.NewHistogram(opts...)
	}
	r.metrics[id.String()] = h
	return h, nil
}

// Lookup returns the handle for the given identity, or ErrNotFound.
func (r *Registry) Lookup(id knotty.Identity) (*Handle, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	h, ok := r.metrics[id.String()]
	if !ok {
		return nil, knotty.ErrNotFound
	}
	return h, nil
}

// Unregister removes the identity from the registry, so subsequent lookups
// fail with ErrNotFound. In-flight updates through previously obtained
// handles still complete but are no longer visible via the registry. It is
// intended for tests and teardown; metrics normally live for the process
// lifetime.
func (r *Registry) Unregister(id knotty.Identity) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if _, ok := r.metrics[id.String()]; !ok {
		return knotty.ErrNotFound
	}
	delete(r.metrics, id.String())
	return nil
}

// Handles returns the currently registered handles in no guaranteed order.
// The returned slice is a private copy: it can be iterated any number of
// times, concurrently with registration.
func (r *Registry) Handles() []*Handle {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	out := make([]*Handle, 0, len(r.metrics))
	for _, h := range r.metrics {
		out = append(out, h)
	}
	return out
}

// NewCounter registers (or finds) a counter with the given name and label
// pairs and returns it.
func (r *Registry) NewCounter(name string, labelPairs ...string) (*generic.Counter, error) {
	id, err := knotty.NewIdentity(name, labelPairs...)
	if err != nil {
		return nil, err
	}
	h, err := r.Register(id, knotty.KindCounter)
	if err != nil {
		return nil, err
	}
	return h.counter, nil
}

// NewGauge registers (or finds) a gauge with the given name and label pairs
// and returns it.
func (r *Registry) NewGauge(name string, labelPairs ...string) (*generic.Gauge, error) {
	id, err := knotty.NewIdentity(name, labelPairs...)
	if err != nil {
		return nil, err
	}
	h, err := r.Register(id, knotty.KindGauge)
	if err != nil {
		return nil, err
	}
	return h.gauge, nil
}

// NewHistogram registers (or finds) a histogram with the given name and
// label pairs and returns it.
func (r *Registry) NewHistogram(name string, labelPairs ...string) (*generic.Histogram, error) {
	id, err := knotty.NewIdentity(name, labelPairs...)
	if err != nil {
		return nil, err
	}
	h, err := r.Register(id, knotty.KindHistogram)
	if err != nil {
		return nil, err
	}
	return h.histogram, nil
}
