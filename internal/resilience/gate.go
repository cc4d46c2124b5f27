package resilience

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Gate bounds the number of in-flight operations. A caller that would
// exceed the ceiling is rejected immediately instead of queued.
type Gate struct {
	name     string
	ceiling  int64
	sem      *semaphore.Weighted
	inFlight atomic.Int64
	observer Observer
}

// NewGate creates a gate admitting at most ceiling concurrent operations.
func NewGate(name string, ceiling int, opts ...Option) *Gate {
	if ceiling < 1 {
		ceiling = 1
	}
	o := buildOptions(opts)
	return &Gate{
		name:     name,
		ceiling:  int64(ceiling),
		sem:      semaphore.NewWeighted(int64(ceiling)),
		observer: o.observer,
	}
}

// Acquire claims a slot. The returned release func must be called on
// every exit path; calling it more than once is harmless.
func (g *Gate) Acquire() (release func(), err error) {
	if !g.sem.TryAcquire(1) {
		g.observer.GateRejected(g.name)
		return nil, &CapacityError{Gate: g.name, Ceiling: g.ceiling}
	}
	g.inFlight.Add(1)

	var once sync.Once
	return func() {
		once.Do(func() {
			g.inFlight.Add(-1)
			g.sem.Release(1)
		})
	}, nil
}

// InFlight returns the number of currently admitted operations.
func (g *Gate) InFlight() int64 {
	return g.inFlight.Load()
}

// Ceiling returns the configured maximum.
func (g *Gate) Ceiling() int64 {
	return g.ceiling
}
