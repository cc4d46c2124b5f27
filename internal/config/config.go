// Package config provides configuration loading and validation for the
// CLI, the HTTP server and the MCP server.
//
// Values come from, in increasing priority: built-in defaults, an optional
// YAML or JSON file, ATS_-prefixed environment variables, and flags bound
// by the caller.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "ATS"

// DefaultFileName is looked up in the working directory when no config
// file is given explicitly.
const DefaultFileName = "resume-tailor"

// Config is the complete, validated configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Concurrency ConcurrencyConfig `mapstructure:"concurrency"`
	Breaker     BreakerConfig     `mapstructure:"breaker"`
	Retry       RetryConfig       `mapstructure:"retry"`
	Scoring     ScoringConfig     `mapstructure:"scoring"`
	Limits      LimitsConfig      `mapstructure:"limits"`
	Fetch       FetchConfig       `mapstructure:"fetch"`
	Log         LogConfig         `mapstructure:"log"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr        string        `mapstructure:"addr" validate:"required"`
	CORSOrigins []string      `mapstructure:"cors-origins"`
	RateLimit   int           `mapstructure:"rate-limit" validate:"gte=0"`
	RateWindow  time.Duration `mapstructure:"rate-window" validate:"gt=0"`
}

// CacheConfig configures the extraction and scoring caches.
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl" validate:"gte=0"`
}

// ConcurrencyConfig bounds in-flight work.
type ConcurrencyConfig struct {
	MaxInFlight int           `mapstructure:"max-in-flight" validate:"gte=1"`
	Deadline    time.Duration `mapstructure:"deadline" validate:"gt=0"`
	Workers     int           `mapstructure:"workers" validate:"gte=1,lte=32"`
}

// BreakerConfig configures both circuit breakers.
type BreakerConfig struct {
	Threshold       int           `mapstructure:"threshold" validate:"gte=1"`
	RecoveryTimeout time.Duration `mapstructure:"recovery-timeout" validate:"gt=0"`
}

// RetryConfig configures the retry loop.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max-attempts" validate:"gte=1,lte=10"`
	BaseDelay   time.Duration `mapstructure:"base-delay" validate:"gte=0"`
	MaxDelay    time.Duration `mapstructure:"max-delay" validate:"gte=0"`
}

// ScoringConfig configures the scoring engine.
type ScoringConfig struct {
	Weights     Weights `mapstructure:"weights"`
	MaxKeywords int     `mapstructure:"max-keywords" validate:"gte=1,lte=200"`
}

// Weights is the subscore weight table. Weights must each be in [0, 1]
// and sum to at most 1.
type Weights struct {
	Keyword    float64 `mapstructure:"keyword" json:"keyword" validate:"gte=0,lte=1"`
	Formatting float64 `mapstructure:"formatting" json:"formatting" validate:"gte=0,lte=1"`
	Content    float64 `mapstructure:"content" json:"content" validate:"gte=0,lte=1"`
	Structure  float64 `mapstructure:"structure" json:"structure" validate:"gte=0,lte=1"`
	Length     float64 `mapstructure:"length" json:"length" validate:"gte=0,lte=1"`
}

// LimitsConfig bounds input sizes.
type LimitsConfig struct {
	MaxJobDescriptionLength int `mapstructure:"max-job-description-length" validate:"gte=1"`
	MaxResumeLength         int `mapstructure:"max-resume-length" validate:"gte=1"`
}

// FetchConfig configures job posting downloads. Browser enables the
// headless Chrome fallback for pages whose static HTML has too little
// text; it needs Chrome or Chromium on the host.
type FetchConfig struct {
	Browser        bool          `mapstructure:"browser"`
	BrowserTimeout time.Duration `mapstructure:"browser-timeout" validate:"gt=0"`
}

// LogConfig configures the logger.
type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// weightSumTolerance absorbs float rounding in sums such as 0.7+0.1+0.2.
const weightSumTolerance = 1e-9

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Keyword + w.Formatting + w.Content + w.Structure + w.Length
}

// Validate checks the range of every weight and the sum invariant.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"keyword":    w.Keyword,
		"formatting": w.Formatting,
		"content":    w.Content,
		"structure":  w.Structure,
		"length":     w.Length,
	} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return fmt.Errorf("config error: weight %q must be between 0 and 1, got %v", name, v)
		}
	}
	if sum := w.Sum(); sum > 1+weightSumTolerance {
		return fmt.Errorf("config error: scoring weights must sum to at most 1.0, got %.3f", sum)
	}
	return nil
}

// DefaultWeights returns the reference weight table: keyword match
// dominates, structure and length are disabled.
func DefaultWeights() Weights {
	return Weights{
		Keyword:    0.70,
		Formatting: 0.10,
		Content:    0.20,
		Structure:  0,
		Length:     0,
	}
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":8080",
			RateLimit:  60,
			RateWindow: time.Minute,
		},
		Cache: CacheConfig{TTL: time.Hour},
		Concurrency: ConcurrencyConfig{
			MaxInFlight: 10,
			Deadline:    20 * time.Second,
			Workers:     3,
		},
		Breaker: BreakerConfig{
			Threshold:       5,
			RecoveryTimeout: 30 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   100 * time.Millisecond,
			MaxDelay:    2 * time.Second,
		},
		Scoring: ScoringConfig{
			Weights:     DefaultWeights(),
			MaxKeywords: 25,
		},
		Limits: LimitsConfig{
			MaxJobDescriptionLength: 20000,
			MaxResumeLength:         100000,
		},
		Fetch: FetchConfig{BrowserTimeout: 15 * time.Second},
	}
}

// Validate checks struct tags and cross-field invariants.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config error: %s failed %q (%s)", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Scoring.Weights.Validate(); err != nil {
		return err
	}
	if c.Retry.MaxDelay > 0 && c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("config error: retry.max-delay must not be below retry.base-delay")
	}
	return nil
}

// Loader wraps a viper instance seeded with defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with defaults and environment binding.
func NewLoader() *Loader {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// BindFlag makes a command-line flag override the given config key, e.g.
// BindFlag("server.addr", cmd.Flags().Lookup("addr")).
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("cannot bind %s: flag not defined", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads the optional config file, applies the environment and
// returns the validated configuration. An empty path looks for
// resume-tailor.{yaml,json} in the working directory and tolerates its
// absence.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		l.v.SetConfigName(DefaultFileName)
		l.v.AddConfigPath(".")
		if err := l.v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed returns the path of the file that was read, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Load is shorthand for NewLoader().Load(path).
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.cors-origins", d.Server.CORSOrigins)
	v.SetDefault("server.rate-limit", d.Server.RateLimit)
	v.SetDefault("server.rate-window", d.Server.RateWindow)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("concurrency.max-in-flight", d.Concurrency.MaxInFlight)
	v.SetDefault("concurrency.deadline", d.Concurrency.Deadline)
	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("breaker.threshold", d.Breaker.Threshold)
	v.SetDefault("breaker.recovery-timeout", d.Breaker.RecoveryTimeout)
	v.SetDefault("retry.max-attempts", d.Retry.MaxAttempts)
	v.SetDefault("retry.base-delay", d.Retry.BaseDelay)
	v.SetDefault("retry.max-delay", d.Retry.MaxDelay)
	v.SetDefault("scoring.weights.keyword", d.Scoring.Weights.Keyword)
	v.SetDefault("scoring.weights.formatting", d.Scoring.Weights.Formatting)
	v.SetDefault("scoring.weights.content", d.Scoring.Weights.Content)
	v.SetDefault("scoring.weights.structure", d.Scoring.Weights.Structure)
	v.SetDefault("scoring.weights.length", d.Scoring.Weights.Length)
	v.SetDefault("scoring.max-keywords", d.Scoring.MaxKeywords)
	v.SetDefault("limits.max-job-description-length", d.Limits.MaxJobDescriptionLength)
	v.SetDefault("limits.max-resume-length", d.Limits.MaxResumeLength)
	v.SetDefault("fetch.browser", d.Fetch.Browser)
	v.SetDefault("fetch.browser-timeout", d.Fetch.BrowserTimeout)
	v.SetDefault("log.json", d.Log.JSON)
	v.SetDefault("log.debug", d.Log.Debug)
}
