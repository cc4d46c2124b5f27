// Package pipeline wires extraction, classification, scoring and merging
// behind the resilience layer. Every exported operation is admitted by the
// shared concurrency gate, bounded by the soft deadline and retried
// through its own circuit breaker.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/catalog"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/extraction"
	"github.com/jonathan/resume-tailor/internal/industry"
	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/resilience"
	"github.com/jonathan/resume-tailor/internal/scoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Operation names, used for breakers, metrics and logs.
const (
	OpExtract  = "extract"
	OpScore    = "score"
	OpSuggest  = "suggest"
	OpOptimize = "optimize"
	OpFetch    = "fetch"
)

// Breaker names.
const (
	BreakerExtraction = "extraction"
	BreakerScoring    = "scoring"
	BreakerFetch      = "fetch"
)

// ProgressEvent reports one step of a multi-step operation.
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback receives progress events. It may be nil.
type ProgressCallback func(ProgressEvent)

func emit(cb ProgressCallback, step, message string, content any) {
	if cb != nil {
		cb(ProgressEvent{Step: step, Message: message, Content: content})
	}
}

// Option configures a Service.
type Option func(*serviceOptions)

type serviceOptions struct {
	logger   *zap.Logger
	observer resilience.Observer
	now      func() time.Time
	catalog  *catalog.Catalog
	profiles []industry.Profile
	client   *http.Client
	renderer ingestion.Renderer
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *serviceOptions) { o.logger = l }
}

// WithObserver reports cache, gate, breaker and operation events.
func WithObserver(obs resilience.Observer) Option {
	return func(o *serviceOptions) { o.observer = obs }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// WithCatalog replaces the embedded keyword catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *serviceOptions) { o.catalog = c }
}

// WithHTTPClient sets the client used to fetch job postings.
func WithHTTPClient(c *http.Client) Option {
	return func(o *serviceOptions) { o.client = c }
}

// WithRenderer sets the browser fallback for thin job posting pages,
// overriding the fetch.browser setting.
func WithRenderer(r ingestion.Renderer) Option {
	return func(o *serviceOptions) { o.renderer = r }
}

// WithProfiles replaces the built-in industry profiles.
func WithProfiles(p []industry.Profile) Option {
	return func(o *serviceOptions) { o.profiles = p }
}

// Service is the entry point used by the HTTP server, the MCP server and
// the CLI. It is safe for concurrent use.
type Service struct {
	cfg        *config.Config
	catalog    *catalog.Catalog
	extractor  *extraction.Extractor
	classifier *industry.Classifier
	engine     *scoring.Engine
	fetcher    *ingestion.Fetcher

	extractCache *resilience.Cache[[]extraction.Match]
	scoreCache   *resilience.Cache[scoring.Analysis]
	fetchCache   *resilience.Cache[fetchedPage]

	guard          *resilience.Guard
	extractBreaker *resilience.Breaker
	scoreBreaker   *resilience.Breaker
	fetchBreaker   *resilience.Breaker

	logger  *zap.Logger
	now     func() time.Time
	started time.Time
}

// New builds a Service from cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := serviceOptions{
		observer: resilience.NopObserver{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = logger.OrNop(o.logger)

	cat := o.catalog
	if cat == nil {
		var err error
		if cat, err = catalog.Default(); err != nil {
			return nil, fmt.Errorf("load keyword catalog: %w", err)
		}
	}

	if o.renderer == nil && cfg.Fetch.Browser {
		o.renderer = ingestion.BrowserRenderer(cfg.Fetch.BrowserTimeout)
	}
	fopts := []ingestion.FetcherOption{ingestion.WithFetchLogger(o.logger)}
	if o.renderer != nil {
		fopts = append(fopts, ingestion.WithRenderer(o.renderer))
	}

	ropts := []resilience.Option{
		resilience.WithClock(o.now),
		resilience.WithObserver(o.observer),
		resilience.WithLogger(o.logger),
	}

	s := &Service{
		cfg:          cfg,
		catalog:      cat,
		classifier:   industry.NewClassifier(o.profiles),
		fetcher:      ingestion.NewFetcher(o.client, fopts...),
		extractCache: resilience.NewCache[[]extraction.Match]("extraction", cfg.Cache.TTL, ropts...),
		scoreCache:   resilience.NewCache[scoring.Analysis]("score", cfg.Cache.TTL, ropts...),
		fetchCache:   resilience.NewCache[fetchedPage]("fetch", cfg.Cache.TTL, ropts...),
		logger:       o.logger,
		now:          o.now,
		started:      o.now(),
	}
	s.extractor = extraction.New(cat, s.extractCache)

	engine, err := scoring.New(s.extractor, s.classifier, scoring.Settings{
		Weights:     cfg.Scoring.Weights,
		MaxKeywords: cfg.Scoring.MaxKeywords,
		Workers:     cfg.Concurrency.Workers,
	}, scoring.WithCache(s.scoreCache), scoring.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	s.engine = engine

	breakerCfg := resilience.BreakerConfig{
		Threshold:       cfg.Breaker.Threshold,
		RecoveryTimeout: cfg.Breaker.RecoveryTimeout,
	}
	s.extractBreaker = resilience.NewBreaker(BreakerExtraction, breakerCfg, ropts...)
	s.scoreBreaker = resilience.NewBreaker(BreakerScoring, breakerCfg, ropts...)
	s.fetchBreaker = resilience.NewBreaker(BreakerFetch, breakerCfg, ropts...)

	gate := resilience.NewGate("pipeline", cfg.Concurrency.MaxInFlight, ropts...)
	s.guard = resilience.NewGuard(gate, resilience.GuardConfig{
		Deadline: cfg.Concurrency.Deadline,
		Retry: resilience.Policy{
			MaxAttempts: cfg.Retry.MaxAttempts,
			BaseDelay:   cfg.Retry.BaseDelay,
			MaxDelay:    cfg.Retry.MaxDelay,
		},
	}, ropts...)

	return s, nil
}

// Config returns the service configuration.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// Catalog returns the keyword catalog in use.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Extract returns the catalog keywords found in a job description.
func (s *Service) Extract(ctx context.Context, req types.ExtractRequest) (*types.ExtractResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLengths(req.JobDescription, ""); err != nil {
		return nil, err
	}

	return resilience.Run(ctx, s.guard, OpExtract, s.extractBreaker, func(ctx context.Context) (*types.ExtractResult, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		keywords := s.extractor.Extract(req.JobDescription)
		categories := make(map[string][]string)
		for cat, kws := range s.extractor.Categorize(keywords) {
			categories[string(cat)] = kws
		}
		profile := s.classifier.Classify(req.JobDescription)

		logger.ForContext(ctx, s.logger).Debug("keywords extracted",
			zap.Int("count", len(keywords)),
			zap.String(logger.FieldIndustry, profile.Name))

		return &types.ExtractResult{
			Keywords:   keywords,
			Categories: categories,
			Industry:   profile.Name,
			Count:      len(keywords),
		}, nil
	})
}

// Score returns the ATS score breakdown of a resume against a job.
func (s *Service) Score(ctx context.Context, req types.ScoreRequest) (types.ScoreBreakdown, error) {
	if err := req.Validate(); err != nil {
		return types.ScoreBreakdown{}, err
	}
	if err := s.checkLengths(req.JobDescription, req.ResumeText); err != nil {
		return types.ScoreBreakdown{}, err
	}
	return resilience.Run(ctx, s.guard, OpScore, s.scoreBreaker, func(ctx context.Context) (types.ScoreBreakdown, error) {
		return s.engine.Score(ctx, req.ResumeText, req.JobDescription, req.PriorScore)
	})
}

// Suggest reports matched and missing keywords with textual advice.
func (s *Service) Suggest(ctx context.Context, req types.SuggestRequest) (*types.SuggestResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLengths(req.JobDescription, req.ResumeText); err != nil {
		return nil, err
	}
	return resilience.Run(ctx, s.guard, OpSuggest, s.scoreBreaker, func(ctx context.Context) (*types.SuggestResult, error) {
		a, err := s.engine.Analyze(ctx, req.ResumeText, req.JobDescription, nil)
		if err != nil {
			return nil, err
		}
		return &types.SuggestResult{
			Score:             a.Breakdown,
			MatchedKeywords:   a.Matched,
			MissingKeywords:   a.Missing,
			MissingByCategory: groupByCategory(a.MissingTargets()),
			Issues:            a.Issues,
			Suggestions:       scoring.Suggestions(a),
		}, nil
	})
}

// IndustryCategory groups missing industry terms that are not in the
// keyword catalog.
const IndustryCategory = "industry"

func groupByCategory(targets []scoring.Target) map[string][]string {
	out := make(map[string][]string)
	for _, t := range targets {
		cat := t.Category
		if cat == "" {
			cat = IndustryCategory
		}
		out[cat] = append(out[cat], t.Display)
	}
	return out
}

func (s *Service) checkLengths(job, resume string) error {
	if limit := s.cfg.Limits.MaxJobDescriptionLength; len(job) > limit {
		return types.NewValidationError("job_description", "must be at most %d bytes, got %d", limit, len(job))
	}
	if limit := s.cfg.Limits.MaxResumeLength; len(resume) > limit {
		return types.NewValidationError("resume_text", "must be at most %d bytes, got %d", limit, len(resume))
	}
	return nil
}
