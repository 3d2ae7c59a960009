// Package teststat provides helper functions for statistical testing of
// metrics implementations.
package teststat

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/knottyio/knotty"
)

const population = 1234

// TestCounter feeds a counter a deterministic series of non-negative deltas
// and checks that the read-back value is their exact sum.
func TestCounter(counter knotty.Counter, value func() float64) error {
	want := FillCounter(counter)
	if have := value(); want != have {
		return fmt.Errorf("want %f, have %f", want, have)
	}
	return nil
}

// FillCounter puts some deltas through the counter and returns the expected
// final value.
func FillCounter(counter knotty.Counter) float64 {
	a := rand.New(rand.NewSource(7)).Perm(100)
	n := a[rand.Intn(len(a))]
	var want float64
	for i := 0; i < n; i++ {
		f := float64(a[i])
		if err := counter.Add(f); err != nil {
			panic(err)
		}
		want += f
	}
	return want
}

// TestGauge puts some values through the gauge and checks the read-back
// value after each mutation.
func TestGauge(gauge knotty.Gauge, value func() float64) error {
	a := rand.Perm(100)
	n := a[rand.Intn(len(a))]
	var want float64
	for i := 0; i < n; i++ {
		f := float64(a[i])
		gauge.Set(f)
		want = f
		if have := value(); want != have {
			return fmt.Errorf("after Set(%f): want %f, have %f", f, want, have)
		}
		gauge.Add(-f)
		want = 0
		if have := value(); want != have {
			return fmt.Errorf("after Add(%f): want %f, have %f", -f, want, have)
		}
	}
	return nil
}

// TestHistogram populates the histogram with a normal distribution and
// checks that the estimated quantiles land within tolerance (a fraction,
// e.g. 0.05) of the analytic values.
func TestHistogram(histogram knotty.Histogram, quantiles func() (p50, p90, p95, p99 float64), tolerance float64) error {
	PopulateNormalHistogram(histogram, rand.Int())

	p50, p90, p95, p99 := quantiles()
	for _, tc := range []struct {
		quantile int
		have     float64
	}{
		{50, p50},
		{90, p90},
		{95, p95},
		{99, p99},
	} {
		want := normalValueAtQuantile(mean, stdev, tc.quantile)
		if math.Abs(tc.have-want)/want > tolerance {
			return fmt.Errorf("p%d: want %.2f, have %.2f (tolerance %.1f%%)", tc.quantile, want, tc.have, 100*tolerance)
		}
	}
	return nil
}

const (
	mean  = 500.0
	stdev = 25.0
)

// PopulateNormalHistogram populates the Histogram with a normal distribution
// of observations.
func PopulateNormalHistogram(h knotty.Histogram, seed int) {
	r := rand.New(rand.NewSource(int64(seed)))
	for i := 0; i < population; i++ {
		sample := r.NormFloat64()*stdev + mean
		if sample < 0 {
			sample = 0
		}
		h.Observe(sample)
	}
}

// https://en.wikipedia.org/wiki/Normal_distribution#Quantile_function
func normalValueAtQuantile(mean, stdev float64, quantile int) float64 {
	return mean + stdev*math.Sqrt2*erfinv(2*(float64(quantile)/100)-1)
}

// https://stackoverflow.com/questions/5971830/need-code-for-inverse-error-function
func erfinv(y float64) float64 {
	if y < -1.0 || y > 1.0 {
		panic("invalid input")
	}

	var (
		a = [4]float64{0.886226899, -1.645349621, 0.914624893, -0.140543331}
		b = [4]float64{-2.118377725, 1.442710462, -0.329097515, 0.012229801}
		c = [4]float64{-1.970840454, -1.624906493, 3.429567803, 1.641345311}
		d = [2]float64{3.543889200, 1.637067800}
	)

	const y0 = 0.7
	var x, z float64

	if math.Abs(y) == 1.0 {
		x = -y * math.Log(0.0)
	} else if y < -y0 {
		z = math.Sqrt(-math.Log((1.0 + y) / 2.0))
		x = -(((c[3]*z+c[2])*z+c[1])*z + c[0]) / ((d[1]*z+d[0])*z + 1.0)
	} else {
		if y < y0 {
			z = y * y
			x = y * (((a[3]*z+a[2])*z+a[1])*z + a[0]) / ((((b[3]*z+b[2])*z+b[1])*z+b[0])*z + 1.0)
		} else {
			z = math.Sqrt(-math.Log((1.0 - y) / 2.0))
			x = (((c[3]*z+c[2])*z+c[1])*z + c[0]) / ((d[1]*z+d[0])*z + 1.0)
		}
		x = x - (math.Erf(x)-y)/(2.0/math.SqrtPi*math.Exp(-x*x))
		x = x - (math.Erf(x)-y)/(2.0/math.SqrtPi*math.Exp(-x*x))
	}

	return x
}
