package resilience

import (
	"context"
	"errors"
	"time"
)

// Policy controls the retry loop.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// OnRetry, when set, is called before each backoff sleep.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns the reference retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// Backoff returns the delay after the given zero-based failed attempt:
// BaseDelay * 2^attempt, capped at MaxDelay when MaxDelay is positive.
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d < 0 || (p.MaxDelay > 0 && d > p.MaxDelay) {
		return p.MaxDelay
	}
	return d
}

// Do calls fn through the breaker until it succeeds or the attempt budget
// is spent. A circuit rejection, a non-retryable error or a cancelled
// context ends the loop at once and is returned unwrapped. Exhausting the
// budget yields an *OperationFailedError carrying the last error.
func Do[T any](ctx context.Context, op string, p Policy, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		var result T
		call := func() error {
			var err error
			result, err = fn(ctx)
			return err
		}

		var err error
		if b != nil {
			err = b.Execute(call)
		} else {
			err = call()
		}
		if err == nil {
			return result, nil
		}
		lastErr = err

		var open *CircuitOpenError
		if errors.As(err, &open) || !IsRetryable(err) {
			return zero, err
		}

		if attempt == attempts-1 {
			break
		}
		delay := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt+1, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	state := StateClosed
	if b != nil {
		state = b.State()
	}
	return zero, &OperationFailedError{
		Op:           op,
		Attempts:     attempts,
		BreakerState: state,
		Err:          lastErr,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
