// Package types provides the value types shared by the extraction, scoring
// and optimization layers and their transports.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "math"

// ScoreBreakdown is the result of one ATS scoring call. Every subscore is
// in [0, 100]; Improvement is Total minus the prior total, or 0 when no
// prior was supplied.
type ScoreBreakdown struct {
	Total           float64 `json:"total_score"`
	KeywordScore    float64 `json:"keyword_score"`
	FormattingScore float64 `json:"formatting_score"`
	ContentScore    float64 `json:"content_score"`
	StructureScore  float64 `json:"structure_score"`
	LengthScore     float64 `json:"length_score"`
	Improvement     float64 `json:"improvement"`
	Industry        string  `json:"industry,omitempty"`
}

// WithPrior returns a copy whose Improvement is measured against prior.
func (s ScoreBreakdown) WithPrior(prior *float64) ScoreBreakdown {
	s.Improvement = 0
	if prior != nil {
		s.Improvement = Round1(s.Total - *prior)
	}
	return s
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Clamp limits v to the [0, 100] score range.
func Clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
