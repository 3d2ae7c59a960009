package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/knottyio/knotty"
)

func TestRegisterIsIdempotent(t *testing.T) {
	r := New()
	id := knotty.MustIdentity("requests_total", "method", "GET")

	first, err := r.Register(id, knotty.KindCounter)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Register(id, knotty.KindCounter)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatal("re-registration returned a different handle")
	}

	// the handles share state
	if err := first.Counter().Add(3); err != nil {
		t.Fatal(err)
	}
	if want, have := 3.0, second.Counter().Value(); want != have {
		t.Fatalf("want %f, have %f", want, have)
	}
}

func TestRegisterTypeConflict(t *testing.T) {
	r := New()
	id := knotty.MustIdentity("queue_depth")
	if _, err := r.Register(id, knotty.KindGauge); err != nil {
		t.Fatal(err)
	}
	_, err := r.Register(id, knotty.KindCounter)
	var conflict *knotty.TypeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("want TypeConflictError, have %v", err)
	}
	if conflict.Existing != knotty.KindGauge || conflict.Requested != knotty.KindCounter {
		t.Fatalf("unexpected conflict detail: %+v", conflict)
	}
}

func TestSameNameDifferentLabelsAreDistinct(t *testing.T) {
	r := New()
	get, err := r.NewCounter("requests_total", "method", "GET")
	if err != nil {
		t.Fatal(err)
	}
	post, err := r.NewCounter("requests_total", "method", "POST")
	if err != nil {
		t.Fatal(err)
	}
	if get == post {
		t.Fatal("distinct label sets must yield distinct counters")
	}
}

func TestLookup(t *testing.T) {
	r := New()
	id := knotty.MustIdentity("requests_total")
	if _, err := r.Lookup(id); !errors.Is(err, knotty.ErrNotFound) {
		t.Fatalf("want ErrNotFound, have %v", err)
	}
	if _, err := r.Register(id, knotty.KindCounter); err != nil {
		t.Fatal(err)
	}
	h, err := r.Lookup(id)
	if err != nil {
		t.Fatal(err)
	}
	if h.Kind() != knotty.KindCounter || !h.Identity().Equal(id) {
		t.Fatalf("unexpected handle: %v %v", h.Kind(), h.Identity())
	}
}

func TestUnregister(t *testing.T) {
	r := New()
	counter, err := r.NewCounter("requests_total")
	if err != nil {
		t.Fatal(err)
	}
	id := knotty.MustIdentity("requests_total")
	if err := r.Unregister(id); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Lookup(id); !errors.Is(err, knotty.ErrNotFound) {
		t.Fatalf("want ErrNotFound after unregister, have %v", err)
	}
	if err := r.Unregister(id); !errors.Is(err, knotty.ErrNotFound) {
		t.Fatalf("want ErrNotFound on double unregister, have %v", err)
	}

	// in-flight updates through the old handle still complete, they're just
	// no longer visible via the registry
	if err := counter.Add(1); err != nil {
		t.Fatal(err)
	}
	if s := r.Snapshot(); len(s.Counters) != 0 {
		t.Fatalf("unregistered metric still visible: %+v", s.Counters)
	}
}

func TestInvalidNameFailsRegistration(t *testing.T) {
	r := New()
	var invalid *knotty.InvalidNameError
	if _, err := r.NewCounter("not-a-name"); !errors.As(err, &invalid) {
		t.Fatalf("want InvalidNameError, have %v", err)
	}
}

func TestConcurrentRegistration(t *testing.T) {
	r := New()
	const writers = 16
	var wg sync.WaitGroup
	counters := make([]interface{}, writers)
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			c, err := r.NewCounter("shared_total")
			if err != nil {
				t.Error(err)
				return
			}
			counters[i] = c
		}(i)
	}
	wg.Wait()
	for i := 1; i < writers; i++ {
		if counters[i] != counters[0] {
			t.Fatal("concurrent registrations returned different handles")
		}
	}
}

func TestHandlesConcurrentWithRegistration(t *testing.T) {
	r := New()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			if _, err := r.NewGauge(fmt.Sprintf("g%d", i)); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	for i := 0; i < 100; i++ {
		for range r.Handles() {
		}
	}
	<-done
	if want, have := 1000, len(r.Handles()); want != have {
		t.Fatalf("want %d handles, have %d", want, have)
	}
}
