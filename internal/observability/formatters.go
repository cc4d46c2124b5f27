// Package observability renders human-readable summaries for the CLI.
package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	// boxWidth is the width of the outer box, borders included.
	boxWidth = 60
	// maxItemsToShow caps list output per group.
	maxItemsToShow = 8
	barWidth       = 20
)

// Printer writes boxed summaries.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)
	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(line, inner))
	}
	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// pad truncates or right-pads s to exactly width runes.
func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		r := []rune(s)
		return string(r[:width-3]) + "..."
	}
	return s + strings.Repeat(" ", width-n)
}

func bar(score float64) string {
	filled := int(score/100*barWidth + 0.5)
	filled = max(0, min(barWidth, filled))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func writeList(sb *strings.Builder, items []string, limit int) {
	for i, it := range items {
		if i == limit {
			fmt.Fprintf(sb, "  ... and %d more\n", len(items)-limit)
			break
		}
		fmt.Fprintf(sb, "  • %s\n", it)
	}
}

func scoreLines(sb *strings.Builder, s types.ScoreBreakdown) {
	rows := []struct {
		label string
		value float64
	}{
		{"Keywords", s.KeywordScore},
		{"Formatting", s.FormattingScore},
		{"Content", s.ContentScore},
		{"Structure", s.StructureScore},
		{"Length", s.LengthScore},
	}
	fmt.Fprintf(sb, "Total:      %5.1f / 100", s.Total)
	if s.Improvement != 0 {
		fmt.Fprintf(sb, "  (%+.1f)", s.Improvement)
	}
	sb.WriteString("\n")
	if s.Industry != "" {
		fmt.Fprintf(sb, "Industry:   %s\n", s.Industry)
	}
	sb.WriteString("\n")
	for _, r := range rows {
		fmt.Fprintf(sb, "%-11s %s %5.1f\n", r.label, bar(r.value), r.value)
	}
}

// PrintScore outputs a score breakdown.
func (p *Printer) PrintScore(s types.ScoreBreakdown) {
	var sb strings.Builder
	scoreLines(&sb, s)
	p.printBox("ATS SCORE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExtract outputs extracted keywords grouped by category.
func (p *Printer) PrintExtract(res *types.ExtractResult) {
	if res == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Industry: %s\n", res.Industry)
	fmt.Fprintf(&sb, "Keywords: %d\n", res.Count)

	cats := make([]string, 0, len(res.Categories))
	for c, kws := range res.Categories {
		if len(kws) > 0 {
			cats = append(cats, c)
		}
	}
	slices.Sort(cats)
	for _, c := range cats {
		fmt.Fprintf(&sb, "\n%s:\n", c)
		writeList(&sb, res.Categories[c], maxItemsToShow)
	}
	p.printBox("JOB KEYWORDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSuggest outputs matched and missing keywords with advice.
func (p *Printer) PrintSuggest(res *types.SuggestResult) {
	if res == nil {
		return
	}
	var sb strings.Builder
	scoreLines(&sb, res.Score)

	fmt.Fprintf(&sb, "\nMatched (%d):\n", len(res.MatchedKeywords))
	writeList(&sb, res.MatchedKeywords, maxItemsToShow)
	fmt.Fprintf(&sb, "\nMissing (%d):\n", len(res.MissingKeywords))
	writeList(&sb, res.MissingKeywords, maxItemsToShow)
	if len(res.Suggestions) > 0 {
		sb.WriteString("\nSuggestions:\n")
		writeList(&sb, res.Suggestions, maxItemsToShow)
	}
	p.printBox("KEYWORD SUGGESTIONS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintOptimize outputs the before/after scores and the added keywords.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintOptimize(res *types.OptimizeResult) {
	if res == nil {
		return
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Before: %5.1f  %s\n", res.OriginalScore.Total, bar(res.OriginalScore.Total))
	fmt.Fprintf(&sb, "After:  %5.1f  %s\n", res.OptimizedScore.Total, bar(res.OptimizedScore.Total))
	fmt.Fprintf(&sb, "Change: %+.1f\n", res.OptimizedScore.Improvement)

	fmt.Fprintf(&sb, "\nAdded to %q", res.Section)
	if res.SectionCreated {
		sb.WriteString(" (new section)")
	}
	sb.WriteString(":\n")
	if len(res.KeywordsAdded) == 0 {
		sb.WriteString("  nothing to add\n")
	}
	writeList(&sb, res.KeywordsAdded, maxItemsToShow)

	fmt.Fprintf(&sb, "\nFile: %s\n", res.Filename)
	fmt.Fprintf(&sb, "Time: %.1f ms (cache hits: %d)", res.Metrics.ProcessingTimeMS, res.Metrics.CacheHits)
	p.printBox("RESUME OPTIMIZED", sb.String())
}

// PrintStatus outputs the service status.
func (p *Printer) PrintStatus(st pipeline.Status) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Status:    %s\n", st.Status)
	fmt.Fprintf(&sb, "In flight: %d / %d\n", st.InFlight, st.MaxInFlight)
	fmt.Fprintf(&sb, "Catalog:   %d keywords\n", st.CatalogSize)
	sb.WriteString("\nBreakers:\n")
	for _, b := range st.Breakers {
		fmt.Fprintf(&sb, "  • %-12s %s (failures: %d)\n", b.Name, b.State, b.Failures)
	}
	sb.WriteString("\nCaches:\n")
	names := make([]string, 0, len(st.Caches))
	for n := range st.Caches {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		fmt.Fprintf(&sb, "  • %-12s %d entries\n", n, st.Caches[n])
	}
	p.printBox("SERVICE STATUS", strings.TrimSuffix(sb.String(), "\n"))
}
