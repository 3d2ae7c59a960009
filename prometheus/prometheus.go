// Package prometheus renders snapshots in the Prometheus text exposition
// format and serves them to scrapers. It also provides a Pushgateway
// transport for push-based delivery of the same format.
package prometheus

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-kit/log"

	"github.com/knottyio/knotty"
)

// Renderer encodes snapshots as text exposition: one `name{labels} value`
// line per sample, with `# TYPE` headers per metric family. Histograms emit
// one line per captured quantile plus `_sum` and `_count` lines. Output is
// deterministic: entries arrive sorted from the snapshotter, and label sets
// are canonically sorted by key.
type Renderer struct {
	logger log.Logger
}

// NewRenderer returns a Renderer. The logger reports malformed sample values
// (NaN or infinity), which are replaced by 0 rather than aborting the whole
// export.
func NewRenderer(logger log.Logger) *Renderer {
	return &Renderer{logger: logger}
}

// Render implements the exporter contract: a pure function of the Snapshot.
func (r *Renderer) Render(w io.Writer, s *knotty.Snapshot) error {
	var lastFamily string

	for _, c := range s.Counters {
		if err := r.family(w, &lastFamily, c.Identity.Name(), "counter"); err != nil {
			return err
		}
		if err := r.sample(w, c.Identity, c.Value); err != nil {
			return err
		}
	}

	for _, g := range s.Gauges {
		if err := r.family(w, &lastFamily, g.Identity.Name(), "gauge"); err != nil {
			return err
		}
		if err := r.sample(w, g.Identity, g.Value); err != nil {
			return err
		}
	}

	for _, h := range s.Histograms {
		if err := r.family(w, &lastFamily, h.Identity.Name(), "histogram"); err != nil {
			return err
		}
		pairs := h.Identity.LabelPairs()
		for _, qv := range h.Quantiles {
			qstr := strconv.FormatFloat(qv.Quantile, 'g', -1, 64)
			id, err := knotty.NewIdentity(h.Identity.Name(), append(append([]string{}, pairs...), "quantile", qstr)...)
			if err != nil {
				return err
			}
			if err := r.sample(w, id, qv.Value); err != nil {
				return err
			}
		}
		sum, err := knotty.NewIdentity(h.Identity.Name()+"_sum", pairs...)
		if err != nil {
			return err
		}
		if err := r.sample(w, sum, h.Sum); err != nil {
			return err
		}
		count, err := knotty.NewIdentity(h.Identity.Name()+"_count", pairs...)
		if err != nil {
			return err
		}
		if err := r.sample(w, count, float64(h.Count)); err != nil {
			return err
		}
	}

	return nil
}

// family writes a `# TYPE` header when the metric family changes. Samples of
// one family arrive consecutively because snapshot entries are sorted by
// canonical identity, which starts with the name.
func (r *Renderer) family(w io.Writer, last *string, name, kind string) error {
	if name == *last {
		return nil
	}
	*last = name
	_, err := fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	return err
}

func (r *Renderer) sample(w io.Writer, id knotty.Identity, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		r.logger.Log("during", "render", "metric", id.String(), "err", "non-finite value", "value", value)
		value = 0
	}
	_, err := fmt.Fprintf(w, "%s %s\n", id.String(), strconv.FormatFloat(value, 'g', -1, 64))
	return err
}
