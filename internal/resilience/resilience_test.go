package resilience

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type permanentError struct{}

func (permanentError) Error() string   { return "bad input" }
func (permanentError) Retryable() bool { return false }

type recordingObserver struct {
	NopObserver
	mu          sync.Mutex
	hits        int
	misses      int
	rejections  int
	transitions []string
	outcomes    []string
}

func (o *recordingObserver) CacheLookup(_ string, hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

func (o *recordingObserver) GateRejected(string) {
	o.mu.Lock()
	o.rejections++
	o.mu.Unlock()
}

func (o *recordingObserver) BreakerTransition(_ string, from, to State) {
	o.mu.Lock()
	o.transitions = append(o.transitions, from.String()+"->"+to.String())
	o.mu.Unlock()
}

func (o *recordingObserver) OperationDone(_ string, outcome string, _ time.Duration) {
	o.mu.Lock()
	o.outcomes = append(o.outcomes, outcome)
	o.mu.Unlock()
}

func TestCache_GetWithinTTL(t *testing.T) {
	clock := newFakeClock()
	obs := &recordingObserver{}
	c := NewCache[string]("test", time.Minute, WithClock(clock.Now), WithObserver(obs))

	c.Set("k", "v")
	clock.Advance(59 * time.Second)

	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
	assert.Equal(t, 1, obs.hits)
}

func TestCache_ExpiredEntryIsEvictedOnRead(t *testing.T) {
	clock := newFakeClock()
	c := NewCache[int]("test", time.Minute, WithClock(clock.Now))

	c.Set("k", 42)
	c.Set("other", 7)
	clock.Advance(time.Minute)

	assert.Equal(t, 2, c.Len(), "eviction is lazy")
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCache_ZeroTTLStoresNothing(t *testing.T) {
	c := NewCache[int]("test", 0)
	c.Set("k", 1)
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_NilIsUsable(t *testing.T) {
	var c *Cache[string]
	c.Set("k", "v")
	_, ok := c.Get("k")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("extract", "python"), Key("extract", "python"))
	assert.NotEqual(t, Key("extract", "python"), Key("score", "python"))
	assert.NotEqual(t, Key("score", "ab", "c"), Key("score", "a", "bc"))
	assert.Contains(t, Key("score", "x"), "score:")
}

func TestGate_ExactlyOneRejection(t *testing.T) {
	g := NewGate("test", 2)

	var (
		attempted  sync.WaitGroup
		finished   sync.WaitGroup
		rejections atomic.Int32
	)
	hold := make(chan struct{})
	attempted.Add(3)
	finished.Add(3)
	for i := 0; i < 3; i++ {
		go func() {
			defer finished.Done()
			release, err := g.Acquire()
			attempted.Done()
			if err != nil {
				assert.ErrorIs(t, err, ErrCapacityExceeded)
				rejections.Add(1)
				return
			}
			<-hold
			release()
		}()
	}

	attempted.Wait()
	assert.Equal(t, int64(2), g.InFlight())
	close(hold)
	finished.Wait()

	assert.Equal(t, int32(1), rejections.Load())
	assert.Equal(t, int64(0), g.InFlight())
}

func TestGate_ReleaseIsIdempotent(t *testing.T) {
	g := NewGate("test", 1)

	release, err := g.Acquire()
	require.NoError(t, err)
	release()
	release()
	assert.Equal(t, int64(0), g.InFlight())

	release, err = g.Acquire()
	require.NoError(t, err)
	_, err = g.Acquire()
	var capErr *CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, int64(1), capErr.Ceiling)
	release()
}

func TestBreaker_OpenHalfOpenClosedCycle(t *testing.T) {
	clock := newFakeClock()
	obs := &recordingObserver{}
	b := NewBreaker("test", BreakerConfig{Threshold: 3, RecoveryTimeout: 10 * time.Second},
		WithClock(clock.Now), WithObserver(obs))

	boom := errors.New("boom")
	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, b.Execute(func() error { return boom }), boom)
	}
	assert.Equal(t, StateOpen, b.State())

	invoked := false
	err := b.Execute(func() error { invoked = true; return nil })
	var open *CircuitOpenError
	require.ErrorAs(t, err, &open)
	assert.False(t, invoked, "open circuit must not invoke the operation")
	assert.Equal(t, "test", open.Breaker)

	clock.Advance(11 * time.Second)
	var stateDuringCall State
	err = b.Execute(func() error {
		invoked = true
		stateDuringCall = b.State()
		return nil
	})
	require.NoError(t, err)
	assert.True(t, invoked)
	assert.Equal(t, StateHalfOpen, stateDuringCall)
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 0, b.Snapshot().Failures)
	assert.Equal(t, []string{"CLOSED->OPEN", "OPEN->HALF_OPEN", "HALF_OPEN->CLOSED"}, obs.transitions)
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker("test", BreakerConfig{Threshold: 1, RecoveryTimeout: time.Second}, WithClock(clock.Now))

	_ = b.Execute(func() error { return errors.New("boom") })
	require.Equal(t, StateOpen, b.State())

	clock.Advance(2 * time.Second)
	_ = b.Execute(func() error { return errors.New("still broken") })
	assert.Equal(t, StateOpen, b.State())

	err := b.Execute(func() error { return nil })
	var open *CircuitOpenError
	assert.ErrorAs(t, err, &open)
}

func TestBreaker_RecoveryRequiresStrictlyElapsedTimeout(t *testing.T) {
	clock := newFakeClock()
	b := NewBreaker("test", BreakerConfig{Threshold: 1, RecoveryTimeout: time.Second}, WithClock(clock.Now))

	_ = b.Execute(func() error { return errors.New("boom") })
	clock.Advance(time.Second)

	var open *CircuitOpenError
	assert.ErrorAs(t, b.Execute(func() error { return nil }), &open)
}

func TestBreaker_SuccessWhileClosedKeepsCount(t *testing.T) {
	b := NewBreaker("test", BreakerConfig{Threshold: 3, RecoveryTimeout: time.Second})

	_ = b.Execute(func() error { return errors.New("a") })
	_ = b.Execute(func() error { return nil })
	_ = b.Execute(func() error { return errors.New("b") })

	assert.Equal(t, 2, b.Snapshot().Failures)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_IgnoresNonRetryableErrors(t *testing.T) {
	b := NewBreaker("test", BreakerConfig{Threshold: 1, RecoveryTimeout: time.Second})

	_ = b.Execute(func() error { return permanentError{} })
	_ = b.Execute(func() error { return context.Canceled })

	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, 0, b.Snapshot().Failures)
}

func TestBreakers_AreIndependent(t *testing.T) {
	extraction := NewBreaker("extraction", BreakerConfig{Threshold: 1, RecoveryTimeout: time.Minute})
	scoring := NewBreaker("scoring", BreakerConfig{Threshold: 1, RecoveryTimeout: time.Minute})

	_ = extraction.Execute(func() error { return errors.New("boom") })

	assert.Equal(t, StateOpen, extraction.State())
	assert.Equal(t, StateClosed, scoring.State())
	assert.NoError(t, scoring.Execute(func() error { return nil }))
}

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, p.Backoff(0))
	assert.Equal(t, 200*time.Millisecond, p.Backoff(1))
	assert.Equal(t, 300*time.Millisecond, p.Backoff(2))

	uncapped := Policy{BaseDelay: time.Millisecond}
	assert.Equal(t, 8*time.Millisecond, uncapped.Backoff(3))
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	v, err := Do(context.Background(), "op", p, nil, func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("transient")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustionReportsAttemptsAndState(t *testing.T) {
	b := NewBreaker("scoring", BreakerConfig{Threshold: 10, RecoveryTimeout: time.Second})
	retries := 0
	p := Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		OnRetry:     func(int, time.Duration, error) { retries++ },
	}
	boom := errors.New("boom")

	_, err := Do(context.Background(), "score", p, b, func(context.Context) (int, error) {
		return 0, boom
	})

	var failed *OperationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, "score", failed.Op)
	assert.Equal(t, 3, failed.Attempts)
	assert.Equal(t, StateClosed, failed.BreakerState)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, retries)
}

func TestDo_DoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), "op", Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}, nil,
		func(context.Context) (int, error) {
			calls++
			return 0, permanentError{}
		})

	assert.ErrorIs(t, err, permanentError{})
	assert.Equal(t, 1, calls)
}

func TestDo_StopsWhenCircuitOpens(t *testing.T) {
	b := NewBreaker("test", BreakerConfig{Threshold: 2, RecoveryTimeout: time.Minute})
	calls := 0

	_, err := Do(context.Background(), "op", Policy{MaxAttempts: 5, BaseDelay: time.Millisecond}, b,
		func(context.Context) (int, error) {
			calls++
			return 0, errors.New("boom")
		})

	var open *CircuitOpenError
	require.ErrorAs(t, err, &open)
	assert.Equal(t, 2, calls)
}

func TestDo_HonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := Do(ctx, "op", DefaultPolicy(), nil, func(context.Context) (int, error) {
		calls++
		return 1, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestRun_Success(t *testing.T) {
	obs := &recordingObserver{}
	g := NewGuard(NewGate("test", 1), GuardConfig{Deadline: time.Second, Retry: DefaultPolicy()}, WithObserver(obs))

	v, err := Run(context.Background(), g, "extract", nil, func(context.Context) ([]string, error) {
		return []string{"Go"}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, v)
	assert.Equal(t, []string{OutcomeSuccess}, obs.outcomes)
	assert.Equal(t, int64(0), g.Gate().InFlight())
}

func TestRun_SoftDeadline(t *testing.T) {
	g := NewGuard(NewGate("test", 1), GuardConfig{Deadline: 20 * time.Millisecond, Retry: DefaultPolicy()})

	_, err := Run(context.Background(), g, "score", nil, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})

	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, "score", timeout.Op)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Eventually(t, func() bool { return g.Gate().InFlight() == 0 }, time.Second, time.Millisecond)
}

func TestRun_AbandonedWorkKeepsSlotUntilItReturns(t *testing.T) {
	g := NewGuard(NewGate("test", 1), GuardConfig{Deadline: 10 * time.Millisecond, Retry: Policy{MaxAttempts: 1}})

	unblock := make(chan struct{})
	_, err := Run(context.Background(), g, "extract", nil, func(context.Context) (int, error) {
		<-unblock
		return 1, nil
	})
	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, int64(1), g.Gate().InFlight())

	_, err = Run(context.Background(), g, "extract", nil, func(context.Context) (int, error) {
		return 2, nil
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	close(unblock)
	assert.Eventually(t, func() bool { return g.Gate().InFlight() == 0 }, time.Second, time.Millisecond)

	v, err := Run(context.Background(), g, "extract", nil, func(context.Context) (int, error) {
		return 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestRun_RejectsWhenGateFull(t *testing.T) {
	obs := &recordingObserver{}
	gate := NewGate("test", 1, WithObserver(obs))
	g := NewGuard(gate, GuardConfig{Deadline: time.Second}, WithObserver(obs))

	release, err := gate.Acquire()
	require.NoError(t, err)
	defer release()

	called := false
	_, err = Run(context.Background(), g, "score", nil, func(context.Context) (int, error) {
		called = true
		return 1, nil
	})

	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.False(t, called)
	assert.Equal(t, 1, obs.rejections)
	assert.Equal(t, []string{OutcomeRejected}, obs.outcomes)
}

func TestRun_ReleasesSlotOnFailure(t *testing.T) {
	g := NewGuard(NewGate("test", 1), GuardConfig{Deadline: time.Second, Retry: Policy{MaxAttempts: 1}})

	_, err := Run(context.Background(), g, "score", nil, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})

	var failed *OperationFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, int64(0), g.Gate().InFlight())
}

func TestClassify(t *testing.T) {
	assert.Equal(t, OutcomeSuccess, Classify(nil))
	assert.Equal(t, OutcomeRejected, Classify(&CapacityError{Gate: "g", Ceiling: 1}))
	assert.Equal(t, OutcomeCircuitOpen, Classify(&CircuitOpenError{Breaker: "b"}))
	assert.Equal(t, OutcomeTimeout, Classify(&TimeoutError{Op: "x"}))
	assert.Equal(t, OutcomeInvalid, Classify(permanentError{}))
	assert.Equal(t, OutcomeFailed, Classify(&OperationFailedError{Op: "x", Err: errors.New("boom")}))
}

func TestState_TextRoundTrip(t *testing.T) {
	for _, st := range []State{StateClosed, StateOpen, StateHalfOpen} {
		text, err := st.MarshalText()
		require.NoError(t, err)

		var got State
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, st, got)
	}

	var s State
	assert.Error(t, s.UnmarshalText([]byte("AJAR")))
}
