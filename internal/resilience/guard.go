package resilience

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// GuardConfig holds the per-operation soft deadline and retry policy.
type GuardConfig struct {
	Deadline time.Duration
	Retry    Policy
}

// Guard composes the concurrency gate, the soft deadline and the
// retry/breaker loop around one externally visible operation.
type Guard struct {
	gate     *Gate
	cfg      GuardConfig
	now      func() time.Time
	observer Observer
	logger   *zap.Logger
}

// NewGuard creates a guard admitting operations through gate.
func NewGuard(gate *Gate, cfg GuardConfig, opts ...Option) *Guard {
	o := buildOptions(opts)
	return &Guard{
		gate:     gate,
		cfg:      cfg,
		now:      o.now,
		observer: o.observer,
		logger:   o.logger,
	}
}

// Gate returns the underlying gate.
func (g *Guard) Gate() *Gate {
	return g.gate
}

type outcome[T any] struct {
	value T
	err   error
}

// Run executes fn as operation op. When the deadline passes first, Run
// stops waiting and reports a *TimeoutError; fn observes the cancelled
// context and is expected to return on its own. The gate slot is held
// until fn has actually returned, so abandoned work still counts against
// the ceiling.
func Run[T any](ctx context.Context, g *Guard, op string, b *Breaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	start := g.now()

	release, err := g.gate.Acquire()
	if err != nil {
		g.finish(op, start, err)
		return zero, err
	}

	runCtx := ctx
	if g.cfg.Deadline > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, g.cfg.Deadline)
		defer cancel()
	}

	policy := g.cfg.Retry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		g.observer.RetryAttempt(op, attempt, err)
		g.logger.Debug("retrying operation",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	done := make(chan outcome[T], 1)
	go func() {
		v, err := Do(runCtx, op, policy, b, fn)
		release()
		done <- outcome[T]{value: v, err: err}
	}()

	select {
	case res := <-done:
		err := res.err
		if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			err = &TimeoutError{Op: op, Deadline: g.cfg.Deadline}
		}
		g.finish(op, start, err)
		if err != nil {
			return zero, err
		}
		return res.value, nil
	case <-runCtx.Done():
		err := ctx.Err()
		if err == nil {
			err = &TimeoutError{Op: op, Deadline: g.cfg.Deadline}
		}
		g.finish(op, start, err)
		return zero, err
	}
}

func (g *Guard) finish(op string, start time.Time, err error) {
	elapsed := g.now().Sub(start)
	result := Classify(err)
	g.observer.OperationDone(op, result, elapsed)
	if err != nil {
		g.logger.Warn("operation did not complete",
			zap.String("op", op),
			zap.String("outcome", result),
			zap.Duration("elapsed", elapsed),
			zap.Error(err))
	}
}

// Classify maps an error returned by Run to an outcome label.
func Classify(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var (
		open    *CircuitOpenError
		timeout *TimeoutError
		r       retryable
	)
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		return OutcomeRejected
	case errors.As(err, &open):
		return OutcomeCircuitOpen
	case errors.As(err, &timeout):
		return OutcomeTimeout
	case errors.As(err, &r) && !r.Retryable():
		return OutcomeInvalid
	default:
		return OutcomeFailed
	}
}
