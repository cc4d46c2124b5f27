package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/resilience"
	"github.com/jonathan/resume-tailor/internal/types"
)

type fetchedPage struct {
	text string
	meta *ingestion.Metadata
}

// FetchJob downloads a job posting and returns its text. Pages are cached
// by URL for the cache TTL. Transient failures (network errors, 5xx, 429)
// are retried through the fetch breaker.
func (s *Service) FetchJob(ctx context.Context, rawURL string) (string, *ingestion.Metadata, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", nil, types.NewValidationError("job_url", "is required")
	}

	key := resilience.Key(OpFetch, rawURL)
	if page, ok := s.fetchCache.Get(key); ok {
		return page.text, page.meta, nil
	}

	res, err := resilience.Run(ctx, s.guard, OpFetch, s.fetchBreaker, func(ctx context.Context) (fetchedPage, error) {
		text, meta, err := s.fetcher.FromURL(ctx, rawURL)
		return fetchedPage{text: text, meta: meta}, err
	})
	if err != nil {
		return "", nil, err
	}
	if strings.TrimSpace(res.text) == "" {
		return "", nil, types.NewValidationError("job_url", "page at %s has no readable text", rawURL)
	}
	if err := s.checkLengths(res.text, ""); err != nil {
		return "", nil, err
	}

	s.fetchCache.Set(key, res)
	logger.ForContext(ctx, s.logger).Debug("job posting fetched",
		zap.String("url", rawURL),
		zap.Int("bytes", res.meta.Bytes))
	return res.text, res.meta, nil
}
