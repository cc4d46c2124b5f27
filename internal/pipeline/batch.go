package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-tailor/internal/resilience"
	"github.com/jonathan/resume-tailor/internal/types"
)

// BatchItem is one resume in a batch.
type BatchItem struct {
	Name       string
	ResumeText string
}

// BatchResult is the outcome for one BatchItem. Err is set instead of the
// result fields when that item failed.
type BatchResult struct {
	Name    string
	Result  *types.SuggestResult
	Err     error
	Outcome string
}

// ScoreBatch analyzes every item against one job. Items run concurrently,
// limited by the worker count and the gate ceiling so a batch never
// rejects itself. A failing item does not stop the others; results keep
// input order.
func (s *Service) ScoreBatch(ctx context.Context, job string, items []BatchItem) ([]BatchResult, error) {
	if err := (&types.ExtractRequest{JobDescription: job}).Validate(); err != nil {
		return nil, err
	}

	results := make([]BatchResult, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(s.cfg.Concurrency.Workers, s.cfg.Concurrency.MaxInFlight))

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.Suggest(gctx, types.SuggestRequest{
				ResumeText:     item.ResumeText,
				JobDescription: job,
			})
			results[i] = BatchResult{Name: item.Name, Result: res, Err: err, Outcome: resilience.Classify(err)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
