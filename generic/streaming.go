package generic

import (
	"sync"

	"github.com/VividCortex/gohistogram"
)

// StreamingHistogram is an alternative Histogram implementation based on
// VividCortex/gohistogram. It approximates the full lifetime distribution
// with a fixed number of buckets and no recency decay, which suits
// short-lived processes or offline analysis. It is not owned by a registry
// and does not appear in snapshots.
type StreamingHistogram struct {
	mtx sync.Mutex
	h   *gohistogram.NumericHistogram
}

// NewStreamingHistogram returns a streaming histogram with the given number
// of buckets. 50 is a good default.
func NewStreamingHistogram(buckets int) *StreamingHistogram {
	return &StreamingHistogram{
		h: gohistogram.NewHistogram(buckets),
	}
}

// Observe implements Histogram.
func (h *StreamingHistogram) Observe(value float64) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.h.Add(value)
}

// Quantile returns the estimated value of the quantile q, 0 < q < 1.
func (h *StreamingHistogram) Quantile(q float64) float64 {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.h.Quantile(q)
}

// Count returns the number of observations.
func (h *StreamingHistogram) Count() uint64 {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return uint64(h.h.Count())
}
