package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCapacityExceeded is matched by every CapacityError.
var ErrCapacityExceeded = errors.New("capacity exceeded")

// CapacityError is returned when a gate is full. It is never retried.
type CapacityError struct {
	Gate    string
	Ceiling int64
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%s: gate %q is at its ceiling of %d in-flight operations", ErrCapacityExceeded, e.Gate, e.Ceiling)
}

func (e *CapacityError) Unwrap() error {
	return ErrCapacityExceeded
}

// CircuitOpenError is returned when a breaker rejects a call without
// invoking the wrapped operation.
type CircuitOpenError struct {
	Breaker    string
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("circuit %q is open, retry after %s", e.Breaker, e.RetryAfter.Round(time.Millisecond))
}

// OperationFailedError is returned once the retry budget is exhausted.
type OperationFailedError struct {
	Op           string
	Attempts     int
	BreakerState State
	Err          error
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("operation %s failed after %d attempt(s) (breaker %s): %v", e.Op, e.Attempts, e.BreakerState, e.Err)
}

func (e *OperationFailedError) Unwrap() error {
	return e.Err
}

// TimeoutError is returned when an operation outlives its soft deadline.
// The underlying work may still be running; the caller simply stopped
// waiting for it.
type TimeoutError struct {
	Op       string
	Deadline time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s exceeded its deadline of %s; try a shorter input", e.Op, e.Deadline)
}

func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// retryable is implemented by errors that know whether retrying can help.
type retryable interface {
	Retryable() bool
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var open *CircuitOpenError
	if errors.As(err, &open) {
		return false
	}
	if errors.Is(err, ErrCapacityExceeded) {
		return false
	}
	var r retryable
	if errors.As(err, &r) {
		return r.Retryable()
	}
	return true
}
