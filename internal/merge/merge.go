// Package merge inserts missing keywords into a resume's skills section,
// keeping the list style the resume already uses.
package merge

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-tailor/internal/document"
)

// NewSectionHeader is the header used when the document has no skills
// section.
const NewSectionHeader = "Skills:"

// Result describes what a merge changed.
type Result struct {
	Added          []string `json:"added"`
	Section        string   `json:"section"`
	Created        bool     `json:"created"`
	ParagraphIndex int      `json:"paragraph_index"`
}

// Final-item separators recognised in existing lists.
const (
	sepComma    = ", "
	sepAnd      = " and "
	sepCommaAnd = ", and "
	sepAmp      = " & "
)

var (
	// itemSeparator splits a list body. A bare "/" or "|" inside a term
	// such as "CI/CD" is not a separator; spaced forms are.
	itemSeparator = regexp.MustCompile(`\s*,\s*(?:and|&)\s+|\s+(?:and|&)\s+|\s*[,;•·]\s*|\s+[/|]\s+`)
	labelPrefix   = regexp.MustCompile(`^[A-Za-z][A-Za-z &/+-]{0,30}:\s*`)
	bulletPrefix  = regexp.MustCompile(`^\s*(?:[-*•·▪]\s+)?`)
	andWord       = regexp.MustCompile(`(?i)\band\b`)
)

// Merge adds the keywords in missing to the first skills section of doc.
// It is a no-op for an empty list and idempotent: keywords already in the
// target list, compared case-insensitively, are skipped.
func Merge(doc *document.Document, missing []string) Result {
	missing = dedupe(missing)
	if len(missing) == 0 {
		return Result{ParagraphIndex: -1}
	}

	header, inline := findSkillsHeader(doc)
	if header < 0 {
		return appendSection(doc, missing)
	}
	headerText := strings.TrimSpace(doc.Paragraphs[header].Text)

	target := header
	if !inline {
		target = findList(doc, header)
		if target < 0 {
			doc.InsertAfter(header, strings.Join(missing, sepComma))
			return Result{
				Added:          missing,
				Section:        headerText,
				ParagraphIndex: header + 1,
			}
		}
	}

	added := mergeInto(doc.Paragraphs[target], missing, inline)
	return Result{
		Added:          added,
		Section:        sectionLabel(headerText, inline),
		ParagraphIndex: target,
	}
}

// findSkillsHeader prefers a known skills spelling anywhere in the
// document over a near variant that appears earlier.
func findSkillsHeader(doc *document.Document) (index int, inline bool) {
	for _, want := range []document.Match{document.ExactMatch, document.NearMatch} {
		for i, p := range doc.Paragraphs {
			if s, m := document.MatchHeader(p.Text); m != document.NoMatch {
				if s == document.SectionSkills && m == want {
					return i, false
				}
				continue
			}
			if s, m := document.MatchInlineHeader(p.Text); s == document.SectionSkills && m == want {
				return i, true
			}
		}
	}
	return -1, false
}

// findList returns the nearest list-like paragraph after the header and
// before the next section, else the first non-empty one, else -1.
func findList(doc *document.Document, header int) int {
	fallback := -1
	for i := header + 1; i < doc.Len(); i++ {
		text := strings.TrimSpace(doc.Paragraphs[i].Text)
		if text == "" {
			continue
		}
		if _, ok := document.ClassifyHeader(text); ok {
			break
		}
		if s, _, _, ok := document.InlineHeader(text); ok && s != document.SectionSkills {
			break
		}
		if looksLikeList(text) {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

func looksLikeList(text string) bool {
	return strings.ContainsAny(text, ",/&") || andWord.MatchString(text)
}

func appendSection(doc *document.Document, missing []string) Result {
	if n := doc.Len(); n > 0 && strings.TrimSpace(doc.Paragraphs[n-1].Text) != "" {
		doc.Append("")
	}
	doc.Append(NewSectionHeader)
	doc.Append(strings.Join(missing, sepComma))
	return Result{
		Added:          missing,
		Section:        NewSectionHeader,
		Created:        true,
		ParagraphIndex: doc.Len() - 1,
	}
}

func mergeInto(p *document.Paragraph, missing []string, inline bool) []string {
	text := p.Text
	prefix := bulletPrefix.FindString(text)
	body := text[len(prefix):]

	if inline {
		_, label, rest, _ := document.InlineHeader(body)
		prefix += label
		body = rest
	} else if label := labelPrefix.FindString(body); label != "" && looksLikeList(body[len(label):]) {
		prefix += label
		body = body[len(label):]
	}

	body = strings.TrimRight(body, " \t")
	suffix := ""
	if strings.HasSuffix(body, ".") {
		suffix = "."
		body = strings.TrimSuffix(body, ".")
	}

	items, finalSep := splitList(body)
	present := make(map[string]bool, len(items))
	for _, it := range items {
		present[strings.ToLower(it)] = true
	}

	var added []string
	for _, kw := range missing {
		if present[strings.ToLower(kw)] {
			continue
		}
		present[strings.ToLower(kw)] = true
		items = append(items, kw)
		added = append(added, kw)
	}
	if len(added) == 0 {
		return nil
	}

	p.Text = prefix + joinList(items, finalSep) + suffix
	return added
}

// splitList returns the items of a list and the separator used before its
// last item.
func splitList(body string) ([]string, string) {
	var items []string
	finalSep := sepComma
	last := 0
	for _, loc := range itemSeparator.FindAllStringIndex(body, -1) {
		item := strings.TrimSpace(body[last:loc[0]])
		last = loc[1]
		if item == "" {
			continue
		}
		items = append(items, item)
		finalSep = classifySeparator(body[loc[0]:loc[1]])
	}
	if tail := strings.TrimSpace(body[last:]); tail != "" {
		items = append(items, tail)
	} else {
		finalSep = sepComma
	}
	if len(items) < 2 {
		finalSep = sepComma
	}
	return items, finalSep
}

func classifySeparator(sep string) string {
	s := strings.ToLower(strings.TrimSpace(sep))
	switch {
	case strings.HasPrefix(s, ",") && strings.Contains(s, "and"):
		return sepCommaAnd
	case strings.Contains(s, "and"):
		return sepAnd
	case strings.Contains(s, "&"):
		return sepAmp
	default:
		return sepComma
	}
}

func joinList(items []string, finalSep string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], sepComma) + finalSep + items[len(items)-1]
}

func sectionLabel(headerText string, inline bool) string {
	if !inline {
		return headerText
	}
	if idx := strings.Index(headerText, ":"); idx > 0 {
		return headerText[:idx+1]
	}
	return headerText
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
