package pipeline

import (
	"time"

	"github.com/jonathan/resume-tailor/internal/resilience"
)

// Health values.
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
)

// Status is a point-in-time view of the service.
type Status struct {
	Status        string                       `json:"status"`
	UptimeSeconds float64                      `json:"uptime_seconds"`
	InFlight      int64                        `json:"in_flight"`
	MaxInFlight   int64                        `json:"max_in_flight"`
	Breakers      []resilience.BreakerSnapshot `json:"breakers"`
	Caches        map[string]int               `json:"caches"`
	CatalogSize   int                          `json:"catalog_size"`
	Weights       map[string]float64           `json:"weights"`
}

// Health returns HealthDegraded while the extraction or scoring breaker is
// not closed. An unreachable job board does not degrade the service.
func (s *Service) Health() string {
	for _, b := range []*resilience.Breaker{s.extractBreaker, s.scoreBreaker} {
		if b.State() != resilience.StateClosed {
			return HealthDegraded
		}
	}
	return HealthOK
}

// Status reports uptime, load, breaker states and cache sizes.
func (s *Service) Status() Status {
	gate := s.guard.Gate()
	w := s.cfg.Scoring.Weights
	return Status{
		Status:        s.Health(),
		UptimeSeconds: s.now().Sub(s.started).Round(time.Millisecond).Seconds(),
		InFlight:      gate.InFlight(),
		MaxInFlight:   gate.Ceiling(),
		Breakers: []resilience.BreakerSnapshot{
			s.extractBreaker.Snapshot(),
			s.scoreBreaker.Snapshot(),
			s.fetchBreaker.Snapshot(),
		},
		Caches: map[string]int{
			s.extractCache.Name(): s.extractCache.Len(),
			s.scoreCache.Name():   s.scoreCache.Len(),
			s.fetchCache.Name():   s.fetchCache.Len(),
		},
		CatalogSize: s.catalog.Len(),
		Weights: map[string]float64{
			"keyword":    w.Keyword,
			"formatting": w.Formatting,
			"content":    w.Content,
			"structure":  w.Structure,
			"length":     w.Length,
		},
	}
}
