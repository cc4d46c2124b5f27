package ratelimit

import (
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig

	// Now replaces time.Now in tests.
	Now func() time.Time
}

// EndpointConfig is the limit for one endpoint. Paths ending in "/" match
// by prefix.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// NewConfig returns a configuration allowing limit requests per window for
// each client on ordinary endpoints. Optimization, the most expensive
// operation, gets half the budget. A non-positive limit disables limiting.
func NewConfig(limit int, window time.Duration, whitelist ...string) *Config {
	if limit <= 0 || window <= 0 {
		return &Config{Enabled: false}
	}
	wl := make(map[string]bool, len(whitelist))
	for _, ip := range whitelist {
		wl[ip] = true
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    limit,
		DefaultWindow:   window,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       wl,
		EndpointConfigs: DefaultEndpointConfigs(limit, window),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific limits.
func DefaultEndpointConfigs(limit int, window time.Duration) []EndpointConfig {
	expensive := max(1, limit/2)
	return []EndpointConfig{
		{Path: "/optimize", Method: "POST", Limit: expensive, Window: window, Burst: max(1, expensive/2)},
		{Path: "/optimize/stream", Method: "POST", Limit: expensive, Window: window, Burst: max(1, expensive/2)},
	}
}
