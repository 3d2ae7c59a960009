package generic

import (
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/knottyio/knotty"
	"github.com/knottyio/knotty/teststat"
)

func TestCounter(t *testing.T) {
	counter := NewCounter()
	value := func() float64 { return counter.Value() }
	if err := teststat.TestCounter(counter, value); err != nil {
		t.Fatal(err)
	}
}

func TestCounterConcurrency(t *testing.T) {
	const (
		writers    = 32
		iterations = 10000
	)
	counter := NewCounter()
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				if err := counter.Add(1); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if want, have := float64(writers*iterations), counter.Value(); want != have {
		t.Fatalf("lost updates: want %f, have %f", want, have)
	}
}

func TestCounterRejectsNegativeDelta(t *testing.T) {
	counter := NewCounter()
	if err := counter.Add(10); err != nil {
		t.Fatal(err)
	}
	if err := counter.Add(-1); !errors.Is(err, knotty.ErrNegativeCounterDelta) {
		t.Fatalf("want ErrNegativeCounterDelta, have %v", err)
	}
	if want, have := 10.0, counter.Value(); want != have {
		t.Fatalf("value changed after failed Add: want %f, have %f", want, have)
	}
}

func TestGauge(t *testing.T) {
	gauge := NewGauge()
	value := func() float64 { return gauge.Value() }
	if err := teststat.TestGauge(gauge, value); err != nil {
		t.Fatal(err)
	}
}

func TestGaugeSignedAdd(t *testing.T) {
	gauge := NewGauge()
	gauge.Set(10)
	gauge.Add(-25)
	if want, have := -15.0, gauge.Value(); want != have {
		t.Fatalf("want %f, have %f", want, have)
	}
}

func TestHistogramQuantiles(t *testing.T) {
	histogram := NewHistogram()
	quantiles := func() (float64, float64, float64, float64) {
		d := histogram.Read([]float64{0.50, 0.90, 0.95, 0.99})
		return d.Quantiles[0].Value, d.Quantiles[1].Value, d.Quantiles[2].Value, d.Quantiles[3].Value
	}
	if err := teststat.TestHistogram(histogram, quantiles, 0.05); err != nil {
		t.Fatal(err)
	}
}

func TestHistogramSummary(t *testing.T) {
	histogram := NewHistogram()
	for _, v := range []float64{3, 1, 4, 1, 5} {
		histogram.Observe(v)
	}
	d := histogram.Read(nil)
	if want, have := uint64(5), d.Count; want != have {
		t.Errorf("count: want %d, have %d", want, have)
	}
	if want, have := 14.0, d.Sum; want != have {
		t.Errorf("sum: want %f, have %f", want, have)
	}
	if want, have := 1.0, d.Min; want != have {
		t.Errorf("min: want %f, have %f", want, have)
	}
	if want, have := 5.0, d.Max; want != have {
		t.Errorf("max: want %f, have %f", want, have)
	}
}

func TestHistogramEmptyRead(t *testing.T) {
	histogram := NewHistogram()
	d := histogram.Read([]float64{0.5, 0.99})
	if d.Count != 0 || d.Sum != 0 || d.Min != 0 || d.Max != 0 {
		t.Fatalf("empty histogram should read all zeros, have %+v", d)
	}
	for _, qv := range d.Quantiles {
		if qv.Value != 0 {
			t.Errorf("empty histogram quantile %v: want 0, have %f", qv.Quantile, qv.Value)
		}
	}
}

func TestHistogramConcurrentObserve(t *testing.T) {
	histogram := NewHistogram(WithReservoirSize(256))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			for j := 0; j < 5000; j++ {
				histogram.Observe(r.Float64() * 100)
			}
		}(int64(i))
	}
	wg.Wait()
	if want, have := uint64(40000), histogram.Count(); want != have {
		t.Fatalf("count: want %d, have %d", want, have)
	}
}

func TestHistogramClockInjection(t *testing.T) {
	now := time.Unix(1700000000, 0)
	histogram := NewHistogram(WithClock(func() time.Time { return now }))
	histogram.Observe(1)
	now = now.Add(time.Minute)
	histogram.Observe(2)
	if want, have := uint64(2), histogram.Count(); want != have {
		t.Fatalf("count: want %d, have %d", want, have)
	}
}
