package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-kit/log"

	"github.com/knottyio/knotty/registry"
)

func TestHandlerServesExposition(t *testing.T) {
	r := registry.New()
	counter, err := r.NewCounter("http_requests_total", "method", "GET", "code", "200")
	if err != nil {
		t.Fatal(err)
	}
	counter.Add(42)

	srv := httptest.NewServer(NewHandler(r, log.NewNopLogger()))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	if want, have := "text/plain; version=0.0.4; charset=utf-8", resp.Header.Get("Content-Type"); want != have {
		t.Errorf("Content-Type: want %q, have %q", want, have)
	}
	if want := `http_requests_total{code="200",method="GET"} 42`; !strings.Contains(string(body), want) {
		t.Errorf("body missing %q:\n%s", want, body)
	}
}

func TestHandlerConcurrentScrapes(t *testing.T) {
	r := registry.New()
	counter, err := r.NewCounter("requests_total")
	if err != nil {
		t.Fatal(err)
	}

	h := NewHandler(r, log.NewNopLogger())
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				counter.Add(1)
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
				if rec.Code != http.StatusOK {
					t.Errorf("status %d", rec.Code)
					return
				}
			}
		}()
	}
	wg.Wait()
}
