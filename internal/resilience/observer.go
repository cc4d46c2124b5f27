package resilience

import "time"

// Operation outcomes reported to Observer.OperationDone.
const (
	OutcomeSuccess     = "success"
	OutcomeRejected    = "rejected"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeFailed      = "failed"
	OutcomeTimeout     = "timeout"
	OutcomeInvalid     = "invalid"
)

// Observer receives instrumentation events from caches, gates, breakers,
// the retry loop and the guard. Implementations must be safe for
// concurrent use.
type Observer interface {
	CacheLookup(cache string, hit bool)
	GateRejected(gate string)
	BreakerTransition(breaker string, from, to State)
	RetryAttempt(op string, attempt int, err error)
	OperationDone(op, outcome string, elapsed time.Duration)
}

// NopObserver discards all events.
type NopObserver struct{}

func (NopObserver) CacheLookup(string, bool) {}
func (NopObserver) GateRejected(string) {}
func (NopObserver) BreakerTransition(string, State, State) {}
func (NopObserver) RetryAttempt(string, int, error) {}
func (NopObserver) OperationDone(string, string, time.Duration) {}
