package knotty

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by registry lookups and unregistrations for
// identities that have never been registered, or have been unregistered.
var ErrNotFound = errors.New("metric not found")

// ErrNegativeCounterDelta is returned by Counter.Add when the delta is
// negative. Counters are monotonic by contract; the counter value is
// unchanged after a failed Add.
var ErrNegativeCounterDelta = errors.New("counter delta must be non-negative")

// TypeConflictError is returned when an identity is registered a second time
// with a different metric kind.
type TypeConflictError struct {
	Identity  Identity
	Existing  Kind
	Requested Kind
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("%s already registered as %s, requested %s", e.Identity, e.Existing, e.Requested)
}

// InvalidNameError is returned when a metric name or label key doesn't match
// [a-zA-Z_][a-zA-Z0-9_]*.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid metric identifier %q", e.Name)
}
