package registry

import (
	"sort"

	"github.com/knottyio/knotty"
)

// Snapshot walks the registered handles and captures every metric's current
// value. Counter and gauge reads are single atomic loads; each histogram is
// read under its own lock just long enough to copy its state. No
// registry-wide exclusive lock is taken, so the capture is consistent per
// metric but not across metrics: that is the documented trade-off for never
// blocking writers for longer than one bounded critical section.
//
// Configured global labels are merged into every entry's identity, with
// metric-local labels winning on key collision. Entries are sorted by
// canonical identity, so a Snapshot renders deterministically.
func (r *Registry) Snapshot() *knotty.Snapshot {
	handles := r.Handles()
	s := &knotty.Snapshot{TakenAt: r.now()}

	for _, h := range handles {
		id := h.id
		if len(r.globals) > 0 {
			if merged, err := id.With(r.globals...); err == nil {
				id = merged
			}
		}
		switch h.kind {
		case knotty.KindCounter:
			s.Counters = append(s.Counters, knotty.CounterValue{
				Identity: id,
				Value:    h.counter.Value(),
			})
		case knotty.KindGauge:
			s.Gauges = append(s.Gauges, knotty.GaugeValue{
				Identity: id,
				Value:    h.gauge.Value(),
			})
		case knotty.KindHistogram:
			d := h.histogram.Read(r.quantiles)
			s.Histograms = append(s.Histograms, knotty.HistogramValue{
				Identity:  id,
				Count:     d.Count,
				Sum:       d.Sum,
				Min:       d.Min,
				Max:       d.Max,
				Quantiles: d.Quantiles,
			})
		}
	}

	sort.Slice(s.Counters, func(i, j int) bool {
		return s.Counters[i].Identity.String() < s.Counters[j].Identity.String()
	})
	sort.Slice(s.Gauges, func(i, j int) bool {
		return s.Gauges[i].Identity.String() < s.Gauges[j].Identity.String()
	})
	sort.Slice(s.Histograms, func(i, j int) bool {
		return s.Histograms[i].Identity.String() < s.Histograms[j].Identity.String()
	})
	return s
}
