package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/resilience"
	"github.com/jonathan/resume-tailor/internal/types"
)

func TestPrintScore(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintScore(types.ScoreBreakdown{
		Total:        72.5,
		KeywordScore: 70,
		Improvement:  12.5,
		Industry:     "technology",
	})
	output := buf.String()

	assert.Contains(t, output, "ATS SCORE")
	assert.Contains(t, output, " 72.5 / 100")
	assert.Contains(t, output, "(+12.5)")
	assert.Contains(t, output, "technology")
	assert.Contains(t, output, "██████████████░░░░░░  70.0")
}

func TestPrintBox_LinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	p.printBox("T", "short\n"+strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}

func TestPrintExtract(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintExtract(&types.ExtractResult{
		Keywords: []string{"Python", "React"},
		Categories: map[string][]string{
			"programming_languages": {"Python"},
			"web_technologies":      {"React"},
			"databases":             {},
		},
		Industry: "technology",
		Count:    2,
	})
	output := buf.String()

	assert.Contains(t, output, "JOB KEYWORDS")
	assert.Contains(t, output, "• Python")
	assert.Contains(t, output, "web_technologies:")
	assert.NotContains(t, output, "databases")
}

func TestPrintExtract_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintExtract(nil)
	assert.Empty(t, buf.String())
}

func TestPrintSuggest_TruncatesLongLists(t *testing.T) {
	var buf bytes.Buffer
	missing := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	NewPrinter(&buf).PrintSuggest(&types.SuggestResult{
		MissingKeywords: missing,
		Suggestions:     []string{"Add keywords"},
	})
	output := buf.String()

	assert.Contains(t, output, "Missing (10)")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "Add keywords")
}

func TestPrintOptimize(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintOptimize(&types.OptimizeResult{
		OriginalScore:  types.ScoreBreakdown{Total: 60},
		OptimizedScore: types.ScoreBreakdown{Total: 81, Improvement: 21},
		KeywordsAdded:  []string{"React"},
		Section:        "Skills:",
		SectionCreated: true,
		Filename:       "optimized_resume.txt",
	})
	output := buf.String()

	assert.Contains(t, output, "RESUME OPTIMIZED")
	assert.Contains(t, output, "+21.0")
	assert.Contains(t, output, "(new section)")
	assert.Contains(t, output, "• React")
	assert.Contains(t, output, "optimized_resume.txt")
}

func TestPrintStatus(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintStatus(pipeline.Status{
		Status:      pipeline.HealthDegraded,
		MaxInFlight: 10,
		Breakers: []resilience.BreakerSnapshot{
			{Name: "scoring", State: resilience.StateOpen, Failures: 5},
		},
		Caches: map[string]int{"score": 3},
	})
	output := buf.String()

	assert.Contains(t, output, "degraded")
	assert.Contains(t, output, "scoring      OPEN (failures: 5)")
	assert.Contains(t, output, "score        3 entries")
}
