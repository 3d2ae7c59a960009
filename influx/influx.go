// Package influx renders snapshots in the InfluxDB line protocol and pushes
// them over a transport on a schedule.
//
// Influx is a general purpose time-series database with no native concepts
// of counters, gauges, or histograms. Counters and gauges are modeled as one
// point per tick with a single "value" field. Histograms are modeled as one
// point per tick carrying count, sum, min, max, and one field per captured
// quantile (p50, p95, ...). Metric labels become Influx tags.
package influx

import (
	"fmt"
	"io"
	"math"

	"github.com/go-kit/log"
	influxdb "github.com/influxdata/influxdb1-client/v2"

	"github.com/knottyio/knotty"
	"github.com/knottyio/knotty/internal/names"
)

// Renderer encodes snapshots as line protocol, one line per metric:
//
//	measurement,tag=value field=value[,field=value...] timestamp_ns
//
// Timestamps come from the Snapshot's capture time, and tag and field keys
// are emitted in sorted order, so rendering the same Snapshot twice is
// byte-identical.
type Renderer struct {
	logger log.Logger
}

// NewRenderer returns a Renderer. The logger reports non-finite sample
// values, which are replaced by 0.
func NewRenderer(logger log.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render implements the exporter contract: a pure function of the Snapshot.
func (r *Renderer) Render(w io.Writer, s *knotty.Snapshot) error {
	for _, c := range s.Counters {
		fields := map[string]interface{}{"value": r.sanitize(c.Identity, c.Value)}
		if err := r.point(w, c.Identity, fields, s); err != nil {
			return err
		}
	}
	for _, g := range s.Gauges {
		fields := map[string]interface{}{"value": r.sanitize(g.Identity, g.Value)}
		if err := r.point(w, g.Identity, fields, s); err != nil {
			return err
		}
	}
	for _, h := range s.Histograms {
		fields := map[string]interface{}{
			"count": float64(h.Count),
			"sum":   r.sanitize(h.Identity, h.Sum),
			"min":   r.sanitize(h.Identity, h.Min),
			"max":   r.sanitize(h.Identity, h.Max),
		}
		for _, qv := range h.Quantiles {
			fields[names.QuantileSuffix(qv.Quantile)] = r.sanitize(h.Identity, qv.Value)
		}
		if err := r.point(w, h.Identity, fields, s); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) point(w io.Writer, id knotty.Identity, fields map[string]interface{}, s *knotty.Snapshot) error {
	tags := map[string]string{}
	for _, l := range id.Labels() {
		tags[l.Key] = l.Value
	}
	pt, err := influxdb.NewPoint(id.Name(), tags, fields, s.TakenAt)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", id, err)
	}
	_, err = fmt.Fprintln(w, pt.String())
	return err
}

func (r *Renderer) sanitize(id knotty.Identity, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		r.logger.Log("during", "render", "metric", id.String(), "err", "non-finite value", "value", v)
		return 0
	}
	return v
}
