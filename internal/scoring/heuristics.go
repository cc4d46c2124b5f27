package scoring

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/extraction"
	"github.com/jonathan/resume-tailor/internal/types"
)

// Keyword score.
const (
	keywordNeutralScore = 50.0
	keywordFloorScore   = 50.0
)

// keywordSteps maps a match ratio to a score; the first step whose
// threshold the ratio reaches wins.
var keywordSteps = []struct {
	minRatio float64
	score    float64
}{
	{0.9, 100},
	{0.8, 95},
	{0.7, 90},
	{0.6, 85},
	{0.5, 80},
	{0.4, 75},
	{0.3, 70},
	{0.2, 65},
	{0.1, 60},
}

// Formatting score.
const (
	formattingBase        = 80.0
	formattingPenalty     = 10.0
	formattingSkillsBonus = 10.0
)

// Content score.
const (
	contentBase      = 70.0
	actionVerbPoints = 3.0
	actionVerbCap    = 15.0
	quantifiedPoints = 5.0
	quantifiedCap    = 15.0
)

// Structure and length scores, and the values reported when their weight
// is zero.
const (
	structureBase         = 40.0
	coreSectionPoints     = 15.0
	optionalSectionPoints = 5.0
	defaultStructureScore = 85.0
	defaultLengthScore    = 90.0
)

type pattern struct {
	re    *regexp.Regexp
	issue string
}

var problematicPatterns = []pattern{
	{regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(?:\s[^<>]*)?/?>`), "HTML or XML markup found; submit plain text"},
	{regexp.MustCompile(`(?m)^\s*\|.*\|\s*$`), "table layout found; ATS parsers often scramble tables"},
	{regexp.MustCompile(`(?m)\S\t+\S.*\t+\S`), "tab-separated columns found; use a single-column layout"},
	{regexp.MustCompile(`(?m)\S {6,}\S`), "space-aligned columns found; use a single-column layout"},
	{regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)|(?i)\[(?:image|photo|logo|graphic)\]`), "images or graphics found; ATS cannot read them"},
	{regexp.MustCompile(`[★☆✓✔➤►◆■●]`), "decorative symbols found; use plain bullets"},
}

var actionVerbs = []string{
	"achieved", "architected", "automated", "built", "coordinated", "created",
	"decreased", "delivered", "deployed", "designed", "developed", "drove",
	"established", "grew", "implemented", "improved", "increased", "launched",
	"led", "managed", "mentored", "migrated", "optimized", "owned", "reduced",
	"resolved", "scaled", "spearheaded", "streamlined",
}

var quantifiedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d+(?:\.\d+)?\s?%`),
	regexp.MustCompile(`[$€£]\s?\d[\d,]*(?:\.\d+)?\s?[kKmMbB]?`),
	regexp.MustCompile(`(?i)\b\d[\d,]*\+?\s?[kKmM]?\+?\s+(?:users|customers|clients|requests|transactions|projects|engineers|people|members|servers|services|downloads)\b`),
	regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?x\b`),
}

func keywordStepScore(ratio float64) float64 {
	for _, step := range keywordSteps {
		if ratio >= step.minRatio {
			return step.score
		}
	}
	return keywordFloorScore
}

// keywordScore matches targets against the folded document.
func keywordScore(docLower string, targets []Target) (score float64, matched, missing []string) {
	if len(targets) == 0 {
		return keywordNeutralScore, []string{}, []string{}
	}
	matched = []string{}
	missing = []string{}
	for _, t := range targets {
		if t.presentIn(docLower) {
			matched = append(matched, t.Display)
		} else {
			missing = append(missing, t.Display)
		}
	}
	ratio := float64(len(matched)) / float64(len(targets))
	return keywordStepScore(ratio), matched, missing
}

func formattingScore(doc string, sections map[document.Section]bool) (float64, []string) {
	score := formattingBase
	var issues []string
	for _, p := range problematicPatterns {
		if p.re.MatchString(doc) {
			score -= formattingPenalty
			issues = append(issues, p.issue)
		}
	}
	if sections[document.SectionSkills] {
		score += formattingSkillsBonus
	} else {
		issues = append(issues, "no skills section header found")
	}
	return types.Clamp(score), issues
}

func contentScore(docLower string) (float64, []string) {
	verbs := 0
	for _, v := range actionVerbs {
		if extraction.ContainsFolded(docLower, v) {
			verbs++
		}
	}
	quantified := 0
	for _, re := range quantifiedPatterns {
		quantified += len(re.FindAllStringIndex(docLower, -1))
	}

	score := contentBase +
		min(float64(verbs)*actionVerbPoints, actionVerbCap) +
		min(float64(quantified)*quantifiedPoints, quantifiedCap)

	var issues []string
	if verbs < 3 {
		issues = append(issues, "few action verbs; start bullets with verbs such as led, built or improved")
	}
	if quantified == 0 {
		issues = append(issues, "no quantified achievements; add numbers, percentages or amounts")
	}
	return types.Clamp(score), issues
}

func structureScore(sections map[document.Section]bool) (float64, []string) {
	score := structureBase
	var issues []string
	for _, s := range document.CoreSections {
		if sections[s] {
			score += coreSectionPoints
		} else {
			issues = append(issues, "missing "+string(s)+" section")
		}
	}
	for _, s := range document.OptionalSections {
		if sections[s] {
			score += optionalSectionPoints
		}
	}
	return types.Clamp(score), issues
}

func lengthScore(words int) (float64, []string) {
	switch {
	case words < 50:
		return 30, []string{"resume is very short"}
	case words >= 400 && words <= 800:
		return 100, nil
	case words >= 300 && words <= 1000:
		return 85, nil
	case words >= 200 && words <= 1200:
		return 70, nil
	case words > 1200:
		return 50, []string{"resume is long; aim for 400 to 800 words"}
	default:
		return 50, []string{"resume is short; aim for 400 to 800 words"}
	}
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}
