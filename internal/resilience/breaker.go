package resilience

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the circuit breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the state name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name written by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{StateClosed, StateOpen, StateHalfOpen} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown breaker state %q", text)
}

// BreakerConfig holds the trip threshold and the recovery timeout.
type BreakerConfig struct {
	Threshold       int
	RecoveryTimeout time.Duration
}

// DefaultBreakerConfig returns the reference thresholds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Threshold:       5,
		RecoveryTimeout: 30 * time.Second,
	}
}

// Breaker is a three-state circuit breaker. The failure counter only
// resets when a call succeeds in HALF_OPEN.
type Breaker struct {
	name     string
	cfg      BreakerConfig
	now      func() time.Time
	observer Observer
	logger   *zap.Logger

	mu          sync.Mutex
	state       State
	failures    int
	lastFailure time.Time
}

// BreakerSnapshot is a point-in-time view for status reporting.
type BreakerSnapshot struct {
	Name        string    `json:"name"`
	State       State     `json:"state"`
	Failures    int       `json:"failures"`
	LastFailure time.Time `json:"last_failure,omitzero"`
}

// NewBreaker creates a closed breaker.
func NewBreaker(name string, cfg BreakerConfig, opts ...Option) *Breaker {
	if cfg.Threshold < 1 {
		cfg.Threshold = DefaultBreakerConfig().Threshold
	}
	o := buildOptions(opts)
	return &Breaker{
		name:     name,
		cfg:      cfg,
		now:      o.now,
		observer: o.observer,
		logger:   o.logger,
	}
}

// Name returns the breaker name.
func (b *Breaker) Name() string {
	return b.name
}

// Execute runs fn unless the circuit is open, and records the outcome.
func (b *Breaker) Execute(fn func() error) error {
	if err := b.allow(); err != nil {
		return err
	}
	err := fn()
	b.record(err)
	return err
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Snapshot returns the state, failure count and last failure time.
func (b *Breaker) Snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerSnapshot{
		Name:        b.name,
		State:       b.state,
		Failures:    b.failures,
		LastFailure: b.lastFailure,
	}
}

func (b *Breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}
	elapsed := b.now().Sub(b.lastFailure)
	if elapsed > b.cfg.RecoveryTimeout {
		b.transition(StateHalfOpen)
		return nil
	}
	return &CircuitOpenError{Breaker: b.name, RetryAfter: b.cfg.RecoveryTimeout - elapsed}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.state == StateHalfOpen {
			b.failures = 0
			b.transition(StateClosed)
		}
		return
	}
	if !countsAsFailure(err) {
		return
	}

	b.failures++
	b.lastFailure = b.now()
	switch {
	case b.state == StateHalfOpen:
		b.transition(StateOpen)
	case b.state == StateClosed && b.failures >= b.cfg.Threshold:
		b.transition(StateOpen)
	}
}

// transition must be called with mu held.
func (b *Breaker) transition(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.logger.Info("circuit breaker transition",
		zap.String("breaker", b.name),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
		zap.Int("failures", b.failures))
	b.observer.BreakerTransition(b.name, from, to)
}

// countsAsFailure excludes caller mistakes and cancellations, which say
// nothing about the health of the wrapped operation.
func countsAsFailure(err error) bool {
	return IsRetryable(err)
}
