package statsd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"

	"github.com/knottyio/knotty"
)

func TestCounterLine(t *testing.T) {
	s := &knotty.Snapshot{
		TakenAt: time.Unix(1700000000, 0),
		Counters: []knotty.CounterValue{
			{Identity: knotty.MustIdentity("requests_total", "region", "east"), Value: 42},
		},
	}
	var buf bytes.Buffer
	if err := NewRenderer("myapp.", log.NewNopLogger()).Render(&buf, s); err != nil {
		t.Fatal(err)
	}
	want := "myapp.requests_total.region.east:42|c\n"
	if have := buf.String(); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}

func TestGaugeLine(t *testing.T) {
	s := &knotty.Snapshot{
		Gauges: []knotty.GaugeValue{
			{Identity: knotty.MustIdentity("queue_depth"), Value: -3.5},
		},
	}
	var buf bytes.Buffer
	if err := NewRenderer("", log.NewNopLogger()).Render(&buf, s); err != nil {
		t.Fatal(err)
	}
	want := "queue_depth:-3.5|g\n"
	if have := buf.String(); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}

func TestHistogramLines(t *testing.T) {
	s := &knotty.Snapshot{
		Histograms: []knotty.HistogramValue{{
			Identity: knotty.MustIdentity("latency_ms", "handler", "root"),
			Count:    10,
			Sum:      120,
			Min:      2,
			Max:      40,
			Quantiles: []knotty.QuantileValue{
				{Quantile: 0.5, Value: 9},
				{Quantile: 0.99, Value: 38},
			},
		}},
	}
	var buf bytes.Buffer
	if err := NewRenderer("", log.NewNopLogger()).Render(&buf, s); err != nil {
		t.Fatal(err)
	}
	want := strings.Join([]string{
		"latency_ms.handler.root.p50:9|h",
		"latency_ms.handler.root.p99:38|h",
		"latency_ms.handler.root.min:2|h",
		"latency_ms.handler.root.max:40|h",
		"latency_ms.handler.root.count:10|c",
		"latency_ms.handler.root.sum:120|g",
		"",
	}, "\n")
	if have := buf.String(); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}

func TestSampleRateSuffix(t *testing.T) {
	s := &knotty.Snapshot{
		Counters: []knotty.CounterValue{
			{Identity: knotty.MustIdentity("requests_total"), Value: 7},
		},
	}
	var buf bytes.Buffer
	r := NewRenderer("", log.NewNopLogger(), WithSampleRate(0.25))
	if err := r.Render(&buf, s); err != nil {
		t.Fatal(err)
	}
	want := "requests_total:7|c|@0.25\n"
	if have := buf.String(); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}

func TestSampleRateOutOfRangeIgnored(t *testing.T) {
	s := &knotty.Snapshot{
		Counters: []knotty.CounterValue{
			{Identity: knotty.MustIdentity("requests_total"), Value: 7},
		},
	}
	var buf bytes.Buffer
	r := NewRenderer("", log.NewNopLogger(), WithSampleRate(1.5))
	if err := r.Render(&buf, s); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "|@") {
		t.Errorf("unexpected sample rate suffix in %q", buf.String())
	}
}

func TestPathSanitization(t *testing.T) {
	s := &knotty.Snapshot{
		Gauges: []knotty.GaugeValue{
			{Identity: knotty.MustIdentity("disk_free", "mount", "/var/log")},
		},
	}
	var buf bytes.Buffer
	if err := NewRenderer("", log.NewNopLogger()).Render(&buf, s); err != nil {
		t.Fatal(err)
	}
	want := "disk_free.mount.var.log:0|g\n"
	if have := buf.String(); want != have {
		t.Errorf("want %q, have %q", want, have)
	}
}
