package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/extraction"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/merge"
	"github.com/jonathan/resume-tailor/internal/resilience"
	"github.com/jonathan/resume-tailor/internal/scoring"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Optimize steps reported to the progress callback.
const (
	StepScore    = "score"
	StepMerge    = "merge"
	StepRescore  = "rescore"
	StepComplete = "complete"
)

// Optimize scores the resume, merges the missing job keywords (plus any
// caller-supplied extras) into its skills section and scores the result
// against the original total.
func (s *Service) Optimize(ctx context.Context, req types.OptimizeRequest, progress ProgressCallback) (*types.OptimizeResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkLengths(req.JobDescription, req.ResumeText); err != nil {
		return nil, err
	}
	start := s.now()

	return resilience.Run(ctx, s.guard, OpOptimize, s.scoreBreaker, func(ctx context.Context) (*types.OptimizeResult, error) {
		emit(progress, StepScore, "Scoring original resume", nil)
		original, err := s.engine.Analyze(ctx, req.ResumeText, req.JobDescription, nil)
		if err != nil {
			return nil, err
		}

		missing := s.keywordsToAdd(original, req.ResumeText, req.ExtraKeywords)
		emit(progress, StepMerge, "Merging missing keywords", missing)

		doc := document.FromText(req.ResumeText)
		merged := merge.Merge(doc, missing)
		text := doc.Text()

		emit(progress, StepRescore, "Scoring optimized resume", merged.Added)
		prior := original.Breakdown.Total
		optimized, err := s.engine.Analyze(ctx, text, req.JobDescription, &prior)
		if err != nil {
			return nil, err
		}

		hits := 0
		for _, a := range []*scoring.Analysis{original, optimized} {
			if a.Cached {
				hits++
			}
		}
		added := merged.Added
		if added == nil {
			added = []string{}
		}

		result := &types.OptimizeResult{
			OriginalScore:  original.Breakdown,
			OptimizedScore: optimized.Breakdown,
			KeywordsAdded:  added,
			Section:        merged.Section,
			SectionCreated: merged.Created,
			OptimizedText:  text,
			Filename:       document.SafeFilename(req.Company, req.Role, ".txt"),
			Metrics: types.PerformanceMetrics{
				RequestID:        logger.RequestID(ctx),
				ProcessingTimeMS: float64(s.now().Sub(start).Microseconds()) / 1000,
				CacheHits:        hits,
			},
		}

		logger.ForContext(ctx, s.logger).Info("resume optimized",
			zap.Float64("original", original.Breakdown.Total),
			zap.Float64("optimized", optimized.Breakdown.Total),
			zap.Int("added", len(added)))
		emit(progress, StepComplete, "Optimization complete", result)
		return result, nil
	})
}

// keywordsToAdd returns the job keywords missing from the resume followed
// by the caller's extra keywords that the resume does not already contain.
func (s *Service) keywordsToAdd(a *scoring.Analysis, resume string, extra []string) []string {
	out := make([]string, 0, len(a.Missing)+len(extra))
	for _, t := range a.MissingTargets() {
		out = append(out, t.Display)
	}
	for _, kw := range extra {
		kw = strings.TrimSpace(kw)
		if kw == "" || extraction.Contains(resume, kw) {
			continue
		}
		if canonical, ok := s.catalog.Resolve(kw); ok && extraction.Contains(resume, canonical) {
			continue
		}
		out = append(out, kw)
	}
	return out
}
