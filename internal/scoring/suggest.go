package scoring

import (
	"fmt"
	"strings"
)

const maxListedKeywords = 10

// Suggestions turns an analysis into advice, most impactful first.
func Suggestions(a *Analysis) []string {
	var out []string
	b := a.Breakdown

	if n := len(a.Missing); n > 0 {
		listed := a.Missing
		if n > maxListedKeywords {
			listed = listed[:maxListedKeywords]
		}
		out = append(out, fmt.Sprintf("Add these keywords from the job description: %s", strings.Join(listed, ", ")))
	}
	if b.KeywordScore < 70 {
		out = append(out, "Mirror the job posting's exact terminology in your skills and experience sections")
	}
	if b.FormattingScore < 80 {
		out = append(out, "Simplify formatting: use a single column, plain text and standard section headers")
	}
	if b.ContentScore < 80 {
		out = append(out, "Start bullets with action verbs and quantify results with numbers or percentages")
	}
	if b.StructureScore < 85 {
		out = append(out, "Include clearly labelled Experience, Education and Skills sections")
	}
	if b.LengthScore < 70 {
		out = append(out, "Adjust the length to roughly 400 to 800 words")
	}
	if len(out) == 0 {
		out = append(out, "Your resume is well aligned with this job description")
	}
	return out
}
