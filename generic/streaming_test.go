package generic

import (
	"testing"

	"github.com/knottyio/knotty/teststat"
)

func TestStreamingHistogram(t *testing.T) {
	histogram := NewStreamingHistogram(50)
	quantiles := func() (float64, float64, float64, float64) {
		return histogram.Quantile(0.50), histogram.Quantile(0.90), histogram.Quantile(0.95), histogram.Quantile(0.99)
	}
	if err := teststat.TestHistogram(histogram, quantiles, 0.05); err != nil {
		t.Fatal(err)
	}
}

func TestStreamingHistogramCount(t *testing.T) {
	histogram := NewStreamingHistogram(10)
	for i := 0; i < 100; i++ {
		histogram.Observe(float64(i))
	}
	if want, have := uint64(100), histogram.Count(); want != have {
		t.Fatalf("want %d, have %d", want, have)
	}
}
