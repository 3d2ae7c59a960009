// Package statsd renders snapshots in the plaintext statsd protocol and
// pushes them over a transport on a schedule.
//
// Statsd buckets are dot-delimited paths with no label concept, so metric
// labels are flattened into the bucket path as key.value segments. Counters
// emit their cumulative value as "|c", gauges as "|g". Histograms explode
// into one "|h" bucket per captured quantile plus min and max, a "|c" count,
// and a "|g" sum; timers should be recorded in milliseconds.
package statsd

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-kit/log"

	"github.com/knottyio/knotty"
	"github.com/knottyio/knotty/internal/names"
)

// Renderer encodes snapshots as statsd lines:
//
//	bucket.path:value|type[|@rate]
type Renderer struct {
	prefix string
	rate   float64
	logger log.Logger
}

// Option changes some behavior of a Renderer.
type Option func(*Renderer)

// WithSampleRate annotates every line with the "|@rate" suffix, advising the
// backend that observations were sampled upstream. The renderer itself never
// drops lines: it is a pure function of the Snapshot.
func WithSampleRate(rate float64) Option {
	return func(r *Renderer) {
		if rate > 0 && rate < 1 {
			r.rate = rate
		}
	}
}

// NewRenderer returns a Renderer that prefixes all bucket paths with the
// given prefix, e.g. "myapp.". The logger reports non-finite sample values,
// which are replaced by 0.
func NewRenderer(prefix string, logger log.Logger, options ...Option) *Renderer {
	r := &Renderer{
		prefix: prefix,
		rate:   1.0,
		logger: logger,
	}
	for _, option := range options {
		option(r)
	}
	return r
}

// Render implements the exporter contract: a pure function of the Snapshot.
func (r *Renderer) Render(w io.Writer, s *knotty.Snapshot) error {
	suffix := ""
	if r.rate < 1.0 {
		suffix = "|@" + strconv.FormatFloat(r.rate, 'g', -1, 64)
	}

	for _, c := range s.Counters {
		if err := r.line(w, r.bucket(c.Identity), c.Identity, c.Value, "c", suffix); err != nil {
			return err
		}
	}
	for _, g := range s.Gauges {
		if err := r.line(w, r.bucket(g.Identity), g.Identity, g.Value, "g", suffix); err != nil {
			return err
		}
	}
	for _, h := range s.Histograms {
		base := r.bucket(h.Identity)
		for _, qv := range h.Quantiles {
			if err := r.line(w, base+"."+names.QuantileSuffix(qv.Quantile), h.Identity, qv.Value, "h", suffix); err != nil {
				return err
			}
		}
		if err := r.line(w, base+".min", h.Identity, h.Min, "h", suffix); err != nil {
			return err
		}
		if err := r.line(w, base+".max", h.Identity, h.Max, "h", suffix); err != nil {
			return err
		}
		if err := r.line(w, base+".count", h.Identity, float64(h.Count), "c", suffix); err != nil {
			return err
		}
		if err := r.line(w, base+".sum", h.Identity, h.Sum, "g", suffix); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) bucket(id knotty.Identity) string {
	return names.Path(r.prefix+id.Name(), id.LabelPairs()...)
}

func (r *Renderer) line(w io.Writer, bucket string, id knotty.Identity, value float64, typ, suffix string) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		r.logger.Log("during", "render", "metric", id.String(), "err", "non-finite value", "value", value)
		value = 0
	}
	_, err := fmt.Fprintf(w, "%s:%s|%s%s\n", bucket, strconv.FormatFloat(value, 'f', -1, 64), typ, suffix)
	return err
}
