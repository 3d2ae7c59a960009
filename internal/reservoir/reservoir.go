// Package reservoir implements a forward-decayed weighted random sample of
// an unbounded stream, after Cormode, Shkapenyuk, Srivastava & Xu, "Forward
// Decay: A Practical Time Decay Model for Streaming Systems". The sample
// uses O(K) memory regardless of stream length and is biased toward recent
// observations, so a long-running process reports current behavior rather
// than lifetime history.
//
// A Sample is not safe for concurrent use; the owning histogram serializes
// access under its own lock.
package reservoir

import (
	"container/heap"
	"math"
	"math/rand"
	"sort"
	"time"
)

const (
	// DefaultSize is a reservoir capacity giving quantile estimates within a
	// few percent for typical workloads.
	DefaultSize = 1028

	// DefaultAlpha is the decay rate: the weight of an observation grows by
	// e^alpha per second since the landmark time.
	DefaultAlpha = 0.015

	// RescaleInterval bounds how long weights may grow before they are
	// renormalized against a new landmark, preventing float64 overflow.
	RescaleInterval = time.Hour
)

type entry struct {
	value    float64
	priority float64
}

// entryHeap is a min-heap on priority, so the lowest-priority entry is the
// eviction candidate at index 0.
type entryHeap []entry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Sample is a fixed-capacity forward-decay reservoir.
type Sample struct {
	size    int
	alpha   float64
	t0      time.Time
	rescale time.Time
	entries entryHeap
	rnd     *rand.Rand
}

// New returns an empty reservoir of the given capacity and decay rate, with
// its landmark set to now.
func New(size int, alpha float64, now time.Time) *Sample {
	if size <= 0 {
		size = DefaultSize
	}
	if alpha <= 0 {
		alpha = DefaultAlpha
	}
	return &Sample{
		size:    size,
		alpha:   alpha,
		t0:      now,
		rescale: now.Add(RescaleInterval),
		entries: make(entryHeap, 0, size),
		rnd:     rand.New(rand.NewSource(now.UnixNano())),
	}
}

// Update offers one observation to the reservoir. Each observation gets
// weight w = e^(alpha*(t-t0)) and priority w/u for u uniform in (0,1]; while
// the reservoir has room every observation is kept, and afterwards an
// observation displaces the minimum-priority entry iff its own priority is
// higher. Runs in O(log K).
func (s *Sample) Update(v float64, now time.Time) {
	if !now.Before(s.rescale) {
		s.Rescale(now)
	}
	w := math.Exp(s.alpha * now.Sub(s.t0).Seconds())
	u := 1 - s.rnd.Float64() // uniform in (0, 1]
	e := entry{value: v, priority: w / u}
	if len(s.entries) < s.size {
		heap.Push(&s.entries, e)
		return
	}
	if e.priority > s.entries[0].priority {
		s.entries[0] = e
		heap.Fix(&s.entries, 0)
	}
}

// Rescale renormalizes every stored priority against a new landmark t0=now.
// All priorities shrink by the same factor e^(-alpha*(now-t0)), so relative
// order is unchanged and an immediate redundant rescale is a no-op.
func (s *Sample) Rescale(now time.Time) {
	factor := math.Exp(-s.alpha * now.Sub(s.t0).Seconds())
	for i := range s.entries {
		s.entries[i].priority *= factor
	}
	s.t0 = now
	s.rescale = now.Add(RescaleInterval)
}

// Len returns the number of stored observations, at most the capacity.
func (s *Sample) Len() int { return len(s.entries) }

// Values returns a copy of the stored observation values, in no particular
// order.
func (s *Sample) Values() []float64 {
	out := make([]float64, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.value
	}
	return out
}

// Quantiles estimates the requested quantiles from a set of sampled values
// by sorting and linearly interpolating at rank q*(n-1). An empty set
// reports every quantile as 0; a single value reports every quantile as that
// value. The input slice is sorted in place.
func Quantiles(values []float64, qs []float64) []float64 {
	out := make([]float64, len(qs))
	if len(values) == 0 {
		return out
	}
	sort.Float64s(values)
	for i, q := range qs {
		out[i] = quantile(values, q)
	}
	return out
}

func quantile(sorted []float64, q float64) float64 {
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	rank := q * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
