// Package extraction finds catalog keywords in free text.
//
// Matching is case-insensitive and whole-word. When candidate phrases
// overlap, the leftmost occurrence wins and, among occurrences starting at
// the same byte, the longest one wins, so "SQL Server" yields only the
// "sql server" keyword. Results keep the casing first observed in the
// input and are ordered by first occurrence.
package extraction

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/resume-tailor/internal/catalog"
	"github.com/jonathan/resume-tailor/internal/resilience"
)

// Match is one extracted keyword.
type Match struct {
	Canonical string           `json:"canonical"`
	Display   string           `json:"display"`
	Category  catalog.Category `json:"category"`
	Offset    int              `json:"offset"`
}

// Extractor extracts catalog keywords from text. It is safe for
// concurrent use.
type Extractor struct {
	catalog *catalog.Catalog
	cache   *resilience.Cache[[]Match]
}

// New creates an extractor. cache may be nil.
func New(cat *catalog.Catalog, cache *resilience.Cache[[]Match]) *Extractor {
	return &Extractor{catalog: cat, cache: cache}
}

// Catalog returns the catalog the extractor matches against.
func (e *Extractor) Catalog() *catalog.Catalog {
	return e.catalog
}

// Extract returns the display forms of every keyword found in text,
// ordered by first occurrence.
func (e *Extractor) Extract(text string) []string {
	matches := e.Matches(text)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Display
	}
	return out
}

// Matches returns the keywords found in text with their canonical form,
// category and first offset. The result is a fresh slice owned by the
// caller.
func (e *Extractor) Matches(text string) []Match {
	if strings.TrimSpace(text) == "" {
		return []Match{}
	}

	key := resilience.Key("extract", text)
	if cached, ok := e.cache.Get(key); ok {
		return append([]Match(nil), cached...)
	}

	matches := e.match(text)
	e.cache.Set(key, matches)
	return append([]Match(nil), matches...)
}

type span struct {
	start, end int
	canonical  string
	viaAlias   bool
}

func (e *Extractor) match(text string) []Match {
	lower := foldASCII(text)
	tokens := tokenSet(lower)

	var spans []span
	for _, kw := range e.catalog.Keywords() {
		if isSimpleWord(kw.Canonical) {
			if _, ok := tokens[kw.Canonical]; !ok {
				continue
			}
		}
		for _, off := range findAll(lower, kw.Canonical) {
			spans = append(spans, span{start: off, end: off + len(kw.Canonical), canonical: kw.Canonical})
		}
	}
	spans = append(spans, e.leadInSpans(lower)...)

	sort.Slice(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.start != b.start {
			return a.start < b.start
		}
		if la, lb := a.end-a.start, b.end-b.start; la != lb {
			return la > lb
		}
		if a.viaAlias != b.viaAlias {
			return !a.viaAlias
		}
		return a.canonical < b.canonical
	})

	type found struct {
		offset  int
		display string
	}
	seen := make(map[string]*found)
	var order []string
	covered := 0
	for _, s := range spans {
		if s.start < covered {
			continue
		}
		covered = s.end

		f, ok := seen[s.canonical]
		if !ok {
			f = &found{offset: s.start}
			seen[s.canonical] = f
			order = append(order, s.canonical)
		}
		if f.display == "" && !s.viaAlias {
			f.display = text[s.start:s.end]
		}
	}

	out := make([]Match, 0, len(order))
	for _, canonical := range order {
		f := seen[canonical]
		kw, _ := e.catalog.Lookup(canonical)
		display := f.display
		if display == "" {
			display = e.catalog.DisplayName(canonical)
		}
		out = append(out, Match{
			Canonical: canonical,
			Display:   display,
			Category:  kw.Category,
			Offset:    f.offset,
		})
	}
	// spans are visited in offset order, so out is already ordered by
	// first occurrence.
	return out
}

var (
	leadInPattern = regexp.MustCompile(`\b(?:proficient in|experience with|knowledge of|skills?:|technologies?:|languages?:|frameworks?:|tools?:|platforms?:)\s*([^\n]*)`)
	sentenceEnd   = regexp.MustCompile(`[.!?](?:\s|$)`)
	listTerm      = regexp.MustCompile(`[^,;/&|\s]+`)
)

const termTrim = ".:()[]\"'"

// leadInSpans finds terms listed after phrases such as "experience with"
// or "Skills:" that name a keyword through one of its aliases. Terms that
// are canonicals themselves are already covered by the whole-text scan.
func (e *Extractor) leadInSpans(lower string) []span {
	var spans []span
	for _, m := range leadInPattern.FindAllStringSubmatchIndex(lower, -1) {
		tailStart, tailEnd := m[2], m[3]
		tail := lower[tailStart:tailEnd]
		if loc := sentenceEnd.FindStringIndex(tail); loc != nil {
			tail = tail[:loc[0]]
		}
		for _, t := range listTerm.FindAllStringIndex(tail, -1) {
			raw := tail[t[0]:t[1]]
			term := strings.Trim(raw, termTrim)
			if term == "" || term == "and" || e.catalog.Contains(term) {
				continue
			}
			canonical, ok := e.catalog.Resolve(term)
			if !ok {
				continue
			}
			start := tailStart + t[0] + strings.Index(raw, term)
			spans = append(spans, span{
				start:     start,
				end:       start + len(term),
				canonical: canonical,
				viaAlias:  true,
			})
		}
	}
	return spans
}

// Categorize groups extracted keywords by catalog category.
func (e *Extractor) Categorize(keywords []string) map[catalog.Category][]string {
	return e.catalog.Categorize(keywords)
}
