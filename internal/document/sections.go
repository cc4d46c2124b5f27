package document

import (
	"regexp"
	"strings"
)

// Section names a resume section.
type Section string

const (
	SectionSkills         Section = "skills"
	SectionExperience     Section = "experience"
	SectionEducation      Section = "education"
	SectionSummary        Section = "summary"
	SectionProjects       Section = "projects"
	SectionCertifications Section = "certifications"
)

// CoreSections are expected in every resume.
var CoreSections = []Section{SectionExperience, SectionEducation, SectionSkills}

// OptionalSections earn a smaller structure bonus.
var OptionalSections = []Section{SectionSummary, SectionProjects, SectionCertifications}

// maxHeaderLen keeps prose lines from being read as headers.
// maxNearExactWords bounds variants that are not a known spelling.
const (
	maxHeaderLen      = 40
	maxNearExactWords = 3
)

// Match is the strength of a header match.
type Match int

const (
	NoMatch Match = iota
	// NearMatch is a short variant built around a section word, such as
	// "Relevant Technical Skills".
	NearMatch
	// ExactMatch is a known spelling such as "Technical Skills".
	ExactMatch
)

var bulletLead = regexp.MustCompile(`^[-*•·▪]\s`)

var headerSpellings = map[string]Section{
	"skills":                      SectionSkills,
	"technical skills":            SectionSkills,
	"core skills":                 SectionSkills,
	"key skills":                  SectionSkills,
	"skills & tools":              SectionSkills,
	"skills and tools":            SectionSkills,
	"skills & technologies":       SectionSkills,
	"skills and technologies":     SectionSkills,
	"skills & abilities":          SectionSkills,
	"skills summary":              SectionSkills,
	"skill set":                   SectionSkills,
	"skillset":                    SectionSkills,
	"tools":                       SectionSkills,
	"technologies":                SectionSkills,
	"frameworks":                  SectionSkills,
	"tools & technologies":        SectionSkills,
	"tools and technologies":      SectionSkills,
	"technical proficiencies":     SectionSkills,
	"core competencies":           SectionSkills,
	"competencies":                SectionSkills,
	"tech stack":                  SectionSkills,
	"experience":                  SectionExperience,
	"work experience":             SectionExperience,
	"professional experience":     SectionExperience,
	"relevant experience":         SectionExperience,
	"employment":                  SectionExperience,
	"employment history":          SectionExperience,
	"work history":                SectionExperience,
	"career history":              SectionExperience,
	"education":                   SectionEducation,
	"education & training":        SectionEducation,
	"education and training":      SectionEducation,
	"academic background":         SectionEducation,
	"summary":                     SectionSummary,
	"professional summary":        SectionSummary,
	"profile":                     SectionSummary,
	"professional profile":        SectionSummary,
	"objective":                   SectionSummary,
	"career objective":            SectionSummary,
	"about me":                    SectionSummary,
	"projects":                    SectionProjects,
	"personal projects":           SectionProjects,
	"selected projects":           SectionProjects,
	"key projects":                SectionProjects,
	"certifications":              SectionCertifications,
	"certificates":                SectionCertifications,
	"licenses & certifications":   SectionCertifications,
	"licenses and certifications": SectionCertifications,
}

// nearExactRoots lets short variants such as "Relevant Technical Skills"
// or "Project Experience:" be recognised.
var nearExactRoots = []struct {
	word    string
	section Section
}{
	{"skills", SectionSkills},
	{"experience", SectionExperience},
	{"education", SectionEducation},
	{"projects", SectionProjects},
	{"certifications", SectionCertifications},
}

// normalizeHeader lowercases, drops decoration such as "##", "**" or a
// trailing colon, and collapses whitespace.
func normalizeHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "#*_=-~:|• \t")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// ClassifyHeader reports whether line is a section header on its own,
// either a known spelling or a near variant.
func ClassifyHeader(line string) (Section, bool) {
	section, m := MatchHeader(line)
	return section, m != NoMatch
}

// MatchHeader classifies a standalone header line and reports how
// strongly it matched.
func MatchHeader(line string) (Section, Match) {
	raw := strings.TrimSpace(line)
	return matchHeader(raw, strings.HasSuffix(raw, ":"))
}

// matchHeader accepts a near variant only when it has no list bullet, has
// at most three words and either ends in the section word or is followed
// by a colon.
func matchHeader(raw string, colon bool) (Section, Match) {
	if raw == "" || len(raw) > maxHeaderLen {
		return "", NoMatch
	}
	h := normalizeHeader(raw)
	if h == "" {
		return "", NoMatch
	}
	if s, ok := headerSpellings[h]; ok {
		return s, ExactMatch
	}
	if bulletLead.MatchString(raw) || strings.ContainsAny(h, ",.;0123456789") {
		return "", NoMatch
	}
	words := strings.Fields(h)
	if len(words) > maxNearExactWords {
		return "", NoMatch
	}
	for i, w := range words {
		for _, root := range nearExactRoots {
			if w == root.word && (colon || i == len(words)-1) {
				return root.section, NearMatch
			}
		}
	}
	return "", NoMatch
}

// InlineHeader splits lines such as "Skills: Python, Go" into the header
// label (including the colon and following space) and the list that
// follows it.
func InlineHeader(line string) (section Section, label, rest string, ok bool) {
	section, m, label, rest := inlineHeader(line)
	return section, label, rest, m != NoMatch
}

// MatchInlineHeader is MatchHeader for a header followed by its list on
// the same line.
func MatchInlineHeader(line string) (Section, Match) {
	section, m, _, _ := inlineHeader(line)
	return section, m
}

func inlineHeader(line string) (Section, Match, string, string) {
	idx := strings.Index(line, ":")
	if idx <= 0 {
		return "", NoMatch, "", ""
	}
	rest := strings.TrimSpace(line[idx+1:])
	if rest == "" {
		return "", NoMatch, "", ""
	}
	section, m := matchHeader(strings.TrimSpace(line[:idx]), true)
	if m == NoMatch {
		return "", NoMatch, "", ""
	}
	labelEnd := idx + 1
	for labelEnd < len(line) && (line[labelEnd] == ' ' || line[labelEnd] == '\t') {
		labelEnd++
	}
	return section, m, line[:labelEnd], rest
}

// Sections returns the set of sections whose headers appear in text,
// either on their own line or inline.
func Sections(text string) map[Section]bool {
	found := make(map[Section]bool)
	for _, line := range strings.Split(text, "\n") {
		if s, ok := ClassifyHeader(line); ok {
			found[s] = true
			continue
		}
		if s, _, _, ok := InlineHeader(line); ok {
			found[s] = true
		}
	}
	return found
}
