package knotty

import "time"

// Snapshot is an immutable capture of every registered metric's value at one
// instant. It is safe to share across goroutines and is never mutated after
// creation.
//
// A Snapshot is not a single atomic cut across all metrics: each metric is
// read consistently on its own, but metric A may be observed a moment later
// than metric B. See the registry package for the rationale.
type Snapshot struct {
	TakenAt    time.Time
	Counters   []CounterValue
	Gauges     []GaugeValue
	Histograms []HistogramValue
}

// CounterValue is one counter's identity and accumulated value.
type CounterValue struct {
	Identity Identity
	Value    float64
}

// GaugeValue is one gauge's identity and last-set value.
type GaugeValue struct {
	Identity Identity
	Value    float64
}

// QuantileValue pairs a requested quantile in (0,1) with its estimated value.
type QuantileValue struct {
	Quantile float64
	Value    float64
}

// HistogramValue is one histogram's identity and distribution summary. With
// zero observations Count is 0 and the remaining fields are 0.
type HistogramValue struct {
	Identity  Identity
	Count     uint64
	Sum       float64
	Min       float64
	Max       float64
	Quantiles []QuantileValue
}

// Distribution is the summary a histogram yields when read: count, sum, min,
// max, and the values at the requested quantiles, in request order.
type Distribution struct {
	Count     uint64
	Sum       float64
	Min       float64
	Max       float64
	Quantiles []QuantileValue
}
