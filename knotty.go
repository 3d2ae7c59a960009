package knotty

// Counter describes a metric that accumulates values monotonically.
// An example of a counter is the number of received HTTP requests.
type Counter interface {
	// Add increments the counter by the given delta. A negative delta is
	// rejected with ErrNegativeCounterDelta and leaves the value unchanged.
	Add(delta float64) error
	Value() float64
}

// Gauge describes a metric that takes specific values over time.
// An example of a gauge is the current depth of a job queue.
type Gauge interface {
	Set(value float64)
	Add(delta float64)
	Value() float64
}

// Histogram describes a metric that takes repeated observations of the same
// kind of thing, and produces a statistical summary of those observations,
// typically expressed as quantiles. An example of a histogram is HTTP
// request latencies.
type Histogram interface {
	Observe(value float64)
}

// Kind enumerates the closed set of metric primitives. Exporters switch
// exhaustively over it.
type Kind int

const (
	KindCounter Kind = iota
	KindGauge
	KindHistogram
)

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	case KindHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}
