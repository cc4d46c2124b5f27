package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.InDelta(t, 1.0, cfg.Scoring.Weights.Sum(), 1e-9)
	assert.Equal(t, 25, cfg.Scoring.MaxKeywords)
	assert.False(t, cfg.Fetch.Browser)
}

func TestWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		wantErr string
	}{
		{"reference", DefaultWeights(), ""},
		{"under one", Weights{Keyword: 0.5, Content: 0.2}, ""},
		{"all five", Weights{Keyword: 0.4, Formatting: 0.15, Content: 0.15, Structure: 0.15, Length: 0.15}, ""},
		{"over one", Weights{Keyword: 0.8, Formatting: 0.1, Content: 0.2}, "sum to at most 1.0"},
		{"negative", Weights{Keyword: -0.1}, "between 0 and 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_RejectsBadRanges(t *testing.T) {
	cfg := Default()
	cfg.Concurrency.MaxInFlight = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MaxInFlight")

	cfg = Default()
	cfg.Retry.BaseDelay = time.Second
	cfg.Retry.MaxDelay = time.Millisecond
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max-delay")
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	want := Default()
	assert.Equal(t, want.Server.Addr, cfg.Server.Addr)
	assert.Equal(t, want.Cache, cfg.Cache)
	assert.Equal(t, want.Concurrency, cfg.Concurrency)
	assert.Equal(t, want.Breaker, cfg.Breaker)
	assert.Equal(t, want.Retry, cfg.Retry)
	assert.Equal(t, want.Scoring, cfg.Scoring)
	assert.Equal(t, want.Limits, cfg.Limits)
}

func TestLoad_YAMLFile(t *testing.T) {
	content := `
server:
  addr: ":9090"
cache:
  ttl: 5m
breaker:
  threshold: 2
  recovery-timeout: 10s
scoring:
  max-keywords: 30
  weights:
    keyword: 0.5
    formatting: 0.1
    content: 0.1
    structure: 0.15
    length: 0.15
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 2, cfg.Breaker.Threshold)
	assert.Equal(t, 10*time.Second, cfg.Breaker.RecoveryTimeout)
	assert.Equal(t, 30, cfg.Scoring.MaxKeywords)
	assert.InDelta(t, 0.15, cfg.Scoring.Weights.Length, 1e-9)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts, "unset keys keep defaults")
}

func TestLoad_RejectsInvalidWeights(t *testing.T) {
	content := `{"scoring": {"weights": {"keyword": 0.9, "content": 0.3}}}`
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sum to at most 1.0")
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ATS_CONCURRENCY_MAX_IN_FLIGHT", "4")
	t.Setenv("ATS_CACHE_TTL", "90s")
	t.Setenv("ATS_CONCURRENCY_DEADLINE", "5s")
	t.Setenv("ATS_FETCH_BROWSER", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Concurrency.MaxInFlight)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 5*time.Second, cfg.Concurrency.Deadline)
	assert.True(t, cfg.Fetch.Browser)
	assert.Equal(t, 15*time.Second, cfg.Fetch.BrowserTimeout)
}

func TestLoader_BindFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("addr", ":8080", "listen address")
	require.NoError(t, fs.Parse([]string{"--addr", ":7000"}))

	l := NewLoader()
	require.NoError(t, l.BindFlag("server.addr", fs.Lookup("addr")))
	require.Error(t, l.BindFlag("server.addr", fs.Lookup("missing")))

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}
