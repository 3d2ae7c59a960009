// Package graphite renders snapshots in the Graphite plaintext protocol and
// pushes them over a transport on a schedule.
//
// Graphite paths are dot-delimited with no label concept, so metric labels
// are flattened into the path as key.value segments. Histograms explode into
// count, sum, min, max, and one path per captured quantile.
package graphite

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-kit/log"

	"github.com/knottyio/knotty"
	"github.com/knottyio/knotty/internal/names"
)

// Renderer encodes snapshots as plaintext lines:
//
//	path value unix_timestamp
//
// The timestamp is the Snapshot's capture time, so rendering the same
// Snapshot twice is byte-identical.
type Renderer struct {
	prefix string
	logger log.Logger
}

// NewRenderer returns a Renderer that prefixes all paths with the given
// prefix, e.g. "myapp.". The logger reports non-finite sample values, which
// are replaced by 0.
func NewRenderer(prefix string, logger log.Logger) *Renderer {
	return &Renderer{prefix: prefix, logger: logger}
}

// Render implements the exporter contract: a pure function of the Snapshot.
func (r *Renderer) Render(w io.Writer, s *knotty.Snapshot) error {
	ts := s.TakenAt.Unix()

	for _, c := range s.Counters {
		if err := r.line(w, r.path(c.Identity), c.Identity, c.Value, ts); err != nil {
			return err
		}
	}
	for _, g := range s.Gauges {
		if err := r.line(w, r.path(g.Identity), g.Identity, g.Value, ts); err != nil {
			return err
		}
	}
	for _, h := range s.Histograms {
		base := r.path(h.Identity)
		if err := r.line(w, base+".count", h.Identity, float64(h.Count), ts); err != nil {
			return err
		}
		if err := r.line(w, base+".sum", h.Identity, h.Sum, ts); err != nil {
			return err
		}
		if err := r.line(w, base+".min", h.Identity, h.Min, ts); err != nil {
			return err
		}
		if err := r.line(w, base+".max", h.Identity, h.Max, ts); err != nil {
			return err
		}
		for _, qv := range h.Quantiles {
			if err := r.line(w, base+"."+names.QuantileSuffix(qv.Quantile), h.Identity, qv.Value, ts); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) path(id knotty.Identity) string {
	return names.Path(r.prefix+id.Name(), id.LabelPairs()...)
}

func (r *Renderer) line(w io.Writer, path string, id knotty.Identity, value float64, ts int64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		r.logger.Log("during", "render", "metric", id.String(), "err", "non-finite value", "value", value)
		value = 0
	}
	_, err := fmt.Fprintf(w, "%s %s %d\n", path, strconv.FormatFloat(value, 'f', -1, 64), ts)
	return err
}
