// Package scoring computes ATS compatibility scores for a document against
// a job posting.
package scoring

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/extraction"
	"github.com/jonathan/resume-tailor/internal/industry"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/resilience"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Target sources.
const (
	SourceJob      = "job"
	SourceIndustry = "industry"
)

// Target is one keyword the document is expected to contain.
type Target struct {
	Canonical string   `json:"canonical"`
	Display   string   `json:"display"`
	Category  string   `json:"category,omitempty"`
	Source    string   `json:"source"`
	Aliases   []string `json:"aliases,omitempty"`
}

func (t Target) presentIn(docLower string) bool {
	if extraction.ContainsFolded(docLower, t.Canonical) {
		return true
	}
	for _, a := range t.Aliases {
		if extraction.ContainsFolded(docLower, a) {
			return true
		}
	}
	return false
}

// Analysis is a breakdown together with the evidence behind it.
type Analysis struct {
	Breakdown types.ScoreBreakdown `json:"breakdown"`
	Targets   []Target             `json:"targets"`
	Matched   []string             `json:"matched_keywords"`
	Missing   []string             `json:"missing_keywords"`
	Issues    []string             `json:"issues"`
	Sections  []document.Section   `json:"sections"`
	WordCount int                  `json:"word_count"`

	// Cached is set when the analysis was served from the cache.
	Cached bool `json:"-"`
}

func (a Analysis) clone() Analysis {
	a.Targets = slices.Clone(a.Targets)
	a.Matched = slices.Clone(a.Matched)
	a.Missing = slices.Clone(a.Missing)
	a.Issues = slices.Clone(a.Issues)
	a.Sections = slices.Clone(a.Sections)
	return a
}

// MissingTargets returns the targets the document does not contain.
func (a *Analysis) MissingTargets() []Target {
	missing := make(map[string]bool, len(a.Missing))
	for _, m := range a.Missing {
		missing[m] = true
	}
	var out []Target
	for _, t := range a.Targets {
		if missing[t.Display] {
			out = append(out, t)
		}
	}
	return out
}

// Settings are the tunables of an Engine.
type Settings struct {
	Weights     config.Weights
	MaxKeywords int
	Workers     int
}

// DefaultSettings mirrors the defaults in config.Default.
func DefaultSettings() Settings {
	d := config.Default()
	return Settings{
		Weights:     d.Scoring.Weights,
		MaxKeywords: d.Scoring.MaxKeywords,
		Workers:     d.Concurrency.Workers,
	}
}

// Engine scores documents. It is safe for concurrent use.
type Engine struct {
	extractor  *extraction.Extractor
	classifier *industry.Classifier
	settings   Settings
	cache      *resilience.Cache[Analysis]
	logger     *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache memoizes analyses by document and job text.
func WithCache(c *resilience.Cache[Analysis]) Option {
	return func(e *Engine) { e.cache = c }
}

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger.OrNop(l) }
}

// New creates an Engine. The weight table is validated here so that a
// misconfigured engine never produces a score.
func New(ex *extraction.Extractor, cl *industry.Classifier, s Settings, opts ...Option) (*Engine, error) {
	if ex == nil || cl == nil {
		return nil, fmt.Errorf("scoring: extractor and classifier are required")
	}
	if err := s.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}
	if s.MaxKeywords <= 0 {
		return nil, fmt.Errorf("scoring: max keywords must be positive, got %d", s.MaxKeywords)
	}
	if s.Workers <= 0 {
		s.Workers = 1
	}
	e := &Engine{
		extractor:  ex,
		classifier: cl,
		settings:   s,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Settings returns the engine's tunables.
func (e *Engine) Settings() Settings {
	return e.settings
}

// Score returns only the breakdown of Analyze.
func (e *Engine) Score(ctx context.Context, doc, job string, prior *float64) (types.ScoreBreakdown, error) {
	a, err := e.Analyze(ctx, doc, job, prior)
	if err != nil {
		return types.ScoreBreakdown{}, err
	}
	return a.Breakdown, nil
}

// Analyze scores doc against job. When prior is non-nil the breakdown's
// Improvement is measured against it.
func (e *Engine) Analyze(ctx context.Context, doc, job string, prior *float64) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := resilience.Key("score", doc, job)
	if cached, ok := e.cache.Get(key); ok {
		a := cached.clone()
		a.Cached = true
		a.Breakdown = a.Breakdown.WithPrior(prior)
		return &a, nil
	}

	profile := e.classifier.Classify(job)
	targets := e.Targets(job, profile)
	docLower := extraction.Fold(doc)
	sections := document.Sections(doc)
	words := wordCount(doc)

	var (
		keyword, formatting, content, structure, length   float64
		matched, missing                                  []string
		fmtIssues, contentIssues, structIssues, lenIssues []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.settings.Workers)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		keyword, matched, missing = keywordScore(docLower, targets)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		formatting, fmtIssues = formattingScore(doc, sections)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		content, contentIssues = contentScore(docLower)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		structure, structIssues = structureScore(sections)
		length, lenIssues = lengthScore(words)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	w := e.settings.Weights
	if w.Structure == 0 {
		structure = defaultStructureScore
	}
	if w.Length == 0 {
		length = defaultLengthScore
	}
	total := w.Keyword*keyword +
		w.Formatting*formatting +
		w.Content*content +
		w.Structure*structure +
		w.Length*length

	a := Analysis{
		Breakdown: types.ScoreBreakdown{
			Total:           types.Round1(types.Clamp(total)),
			KeywordScore:    keyword,
			FormattingScore: formatting,
			ContentScore:    content,
			StructureScore:  structure,
			LengthScore:     length,
			Industry:        profile.Name,
		},
		Targets:   targets,
		Matched:   matched,
		Missing:   missing,
		Issues:    concatIssues(fmtIssues, contentIssues, structIssues, lenIssues),
		Sections:  sortedSections(sections),
		WordCount: words,
	}
	e.cache.Set(key, a.clone())

	e.logger.Debug("document scored",
		zap.String(logger.FieldIndustry, profile.Name),
		zap.Float64("total", a.Breakdown.Total),
		zap.Int("targets", len(targets)),
		zap.Int("matched", len(matched)),
	)

	a.Breakdown = a.Breakdown.WithPrior(prior)
	return &a, nil
}

// Targets builds the keyword targets for job: extracted catalog keywords
// first, then keywords of the job's industry profile that occur in the
// job text, deduplicated and capped at MaxKeywords.
func (e *Engine) Targets(job string, profile industry.Profile) []Target {
	limit := e.settings.MaxKeywords
	cat := e.extractor.Catalog()
	seen := make(map[string]bool)
	targets := make([]Target, 0, limit)

	for _, m := range e.extractor.Matches(job) {
		if len(targets) >= limit {
			return targets
		}
		if seen[m.Canonical] {
			continue
		}
		seen[m.Canonical] = true
		t := Target{
			Canonical: m.Canonical,
			Display:   m.Display,
			Category:  string(m.Category),
			Source:    SourceJob,
		}
		if kw, ok := cat.Lookup(m.Canonical); ok {
			t.Aliases = kw.Aliases
		}
		targets = append(targets, t)
	}

	for _, kw := range profile.Keywords {
		if len(targets) >= limit {
			break
		}
		canonical := strings.ToLower(kw)
		if resolved, ok := cat.Resolve(canonical); ok {
			canonical = resolved
		}
		if seen[canonical] {
			continue
		}
		display, ok := extraction.FindFirst(job, kw)
		if !ok {
			continue
		}
		seen[canonical] = true
		targets = append(targets, Target{
			Canonical: strings.ToLower(kw),
			Display:   display,
			Source:    SourceIndustry,
		})
	}
	return targets
}

func concatIssues(groups ...[]string) []string {
	out := []string{}
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func sortedSections(found map[document.Section]bool) []document.Section {
	out := make([]document.Section, 0, len(found))
	for s, ok := range found {
		if ok {
			out = append(out, s)
		}
	}
	slices.Sort(out)
	return out
}
