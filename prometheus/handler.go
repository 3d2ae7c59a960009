package prometheus

import (
	"bytes"
	"net/http"

	"github.com/go-kit/log"

	"github.com/knottyio/knotty"
)

// Snapshotter yields point-in-time captures of a metric registry.
// *registry.Registry satisfies it.
type Snapshotter interface {
	Snapshot() *knotty.Snapshot
}

type handler struct {
	src      Snapshotter
	renderer *Renderer
	logger   log.Logger
}

// NewHandler returns an http.Handler serving the text exposition of src.
// Every request takes its own fresh Snapshot, so concurrent scrapes never
// share mutable render state, and a slow or failed render cannot corrupt
// registry state. A canceled request context aborts the response without
// side effects.
func NewHandler(src Snapshotter, logger log.Logger) http.Handler {
	return &handler{
		src:      src,
		renderer: NewRenderer(logger),
		logger:   logger,
	}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s := h.src.Snapshot()

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, s); err != nil {
		h.logger.Log("during", "scrape", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	if r.Context().Err() != nil {
		return // client gone, nothing to write
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.Write(buf.Bytes())
}
