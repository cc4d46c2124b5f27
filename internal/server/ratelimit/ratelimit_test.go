package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(limit int, window time.Duration) (*Limiter, *clock) {
	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cfg := NewConfig(limit, window)
	cfg.CleanupInterval = 0
	cfg.Now = c.Now
	return NewLimiter(cfg), c
}

func TestLimiter_Allow(t *testing.T) {
	l, _ := newTestLimiter(3, time.Minute)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		ok, info := l.Allow("10.0.0.1", "/score", "POST")
		require.True(t, ok, "request %d", i)
		assert.Equal(t, 3, info.Limit)
		assert.Equal(t, 2-i, info.Remaining)
	}

	ok, info := l.Allow("10.0.0.1", "/score", "POST")
	assert.False(t, ok)
	assert.InDelta(t, 20*time.Second, info.RetryAfter, float64(time.Millisecond))
}

func TestLimiter_Refill(t *testing.T) {
	l, c := newTestLimiter(2, time.Minute)
	defer l.Stop()

	l.Allow("a", "/score", "POST")
	l.Allow("a", "/score", "POST")
	ok, _ := l.Allow("a", "/score", "POST")
	require.False(t, ok)

	c.Advance(30 * time.Second)
	ok, _ = l.Allow("a", "/score", "POST")
	assert.True(t, ok)
}

func TestLimiter_ClientsAndEndpointsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	defer l.Stop()

	ok, _ := l.Allow("a", "/score", "POST")
	require.True(t, ok)
	ok, _ = l.Allow("a", "/score", "POST")
	require.False(t, ok)

	ok, _ = l.Allow("b", "/score", "POST")
	assert.True(t, ok)
	ok, _ = l.Allow("a", "/extract", "POST")
	assert.True(t, ok)
}

func TestLimiter_OptimizeIsStricter(t *testing.T) {
	l, _ := newTestLimiter(4, time.Minute)
	defer l.Stop()

	ok, info := l.Allow("a", "/optimize", "POST")
	require.True(t, ok)
	assert.Equal(t, 2, info.Limit)
	ok, _ = l.Allow("a", "/optimize", "POST")
	assert.False(t, ok)
}

func TestLimiter_UnlimitedPaths(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)
	defer l.Stop()

	for i := 0; i < 5; i++ {
		ok, info := l.Allow("a", "/health", "GET")
		assert.True(t, ok)
		assert.Zero(t, info.Limit)
		ok, _ = l.Allow("a", "/metrics", "GET")
		assert.True(t, ok)
	}
}

func TestLimiter_DisabledAndWhitelist(t *testing.T) {
	l := NewLimiter(NewConfig(0, time.Minute))
	for i := 0; i < 10; i++ {
		ok, _ := l.Allow("a", "/score", "POST")
		assert.True(t, ok)
	}

	cfg := NewConfig(1, time.Minute, "127.0.0.1")
	cfg.CleanupInterval = 0
	wl := NewLimiter(cfg)
	for i := 0; i < 10; i++ {
		ok, _ := wl.Allow("127.0.0.1", "/score", "POST")
		assert.True(t, ok)
	}
	assert.Zero(t, wl.Len())
}

func TestLimiter_CleanupDropsIdleBuckets(t *testing.T) {
	l, c := newTestLimiter(5, time.Minute)
	defer l.Stop()

	l.Allow("a", "/score", "POST")
	c.Advance(2 * time.Hour)
	l.Allow("b", "/score", "POST")
	require.Equal(t, 2, l.Len())

	l.cleanupBuckets(c.Now().Add(-time.Hour))
	assert.Equal(t, 1, l.Len())
}

func TestLimiter_StopIsIdempotent(t *testing.T) {
	l := NewLimiter(NewConfig(5, time.Minute))
	l.Stop()
	l.Stop()
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/optimize", Method: "POST", Limit: 1},
		{Path: "/batch/", Method: "POST", Limit: 2},
	}
	assert.Equal(t, 1, MatchEndpoint("/optimize", "POST", configs).Limit)
	assert.Equal(t, 2, MatchEndpoint("/batch/x", "POST", configs).Limit)
	assert.Nil(t, MatchEndpoint("/optimize", "GET", configs))
	assert.Zero(t, MatchEndpoint("/health", "GET", configs).Limit)
}
