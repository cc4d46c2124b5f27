// Package resilience provides the primitives that wrap every externally
// visible pipeline operation: a TTL cache, a fail-fast concurrency gate,
// a circuit breaker, retry with exponential backoff, and a guard that
// composes them under a soft deadline.
package resilience

import (
	"time"

	"go.uber.org/zap"
)

// Option configures a resilience primitive.
type Option func(*options)

type options struct {
	now      func() time.Time
	observer Observer
	logger   *zap.Logger
}

func buildOptions(opts []Option) options {
	o := options{
		now:      time.Now,
		observer: NopObserver{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces the wall clock. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithObserver attaches an observer that receives instrumentation events.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
