package types

// ExtractResult lists the keywords found in a job description.
type ExtractResult struct {
	Keywords   []string            `json:"keywords"`
	Categories map[string][]string `json:"categories"`
	Industry   string              `json:"industry"`
	Count      int                 `json:"count"`
}

// SuggestResult lists what the resume is missing.
type SuggestResult struct {
	Score             ScoreBreakdown      `json:"ats_score"`
	MatchedKeywords   []string            `json:"matched_keywords"`
	MissingKeywords   []string            `json:"missing_keywords"`
	MissingByCategory map[string][]string `json:"missing_by_category"`
	Issues            []string            `json:"issues"`
	Suggestions       []string            `json:"suggestions"`
}

// OptimizeResult is the outcome of merging missing keywords into a resume.
type OptimizeResult struct {
	OriginalScore  ScoreBreakdown     `json:"original_ats_score"`
	OptimizedScore ScoreBreakdown     `json:"optimized_ats_score"`
	KeywordsAdded  []string           `json:"keywords_added"`
	Section        string             `json:"section"`
	SectionCreated bool               `json:"section_created"`
	OptimizedText  string             `json:"optimized_text"`
	Filename       string             `json:"filename"`
	Metrics        PerformanceMetrics `json:"performance_metrics"`
}

// PerformanceMetrics describes how an optimization was served.
type PerformanceMetrics struct {
	RequestID        string  `json:"request_id,omitempty"`
	ProcessingTimeMS float64 `json:"processing_time_ms"`
	CacheHits        int     `json:"cache_hits"`
}
