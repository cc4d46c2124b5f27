package extraction

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// foldASCII lowercases ASCII letters only, so byte offsets in the result
// line up with the input.
func foldASCII(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String()
}

// isWordRune reports whether r belongs to a word. Letters and digits of
// any script count, so accented names stay whole while typographic
// punctuation such as curly quotes, dashes and no-break spaces separates
// words.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSimpleWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !isWordRune(r) {
			return false
		}
	}
	return true
}

// tokenSet collects the lowercase words of an already-folded text.
func tokenSet(lower string) map[string]struct{} {
	set := make(map[string]struct{})
	start := -1
	for i, r := range lower {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			set[lower[start:i]] = struct{}{}
			start = -1
		}
	}
	if start >= 0 {
		set[lower[start:]] = struct{}{}
	}
	return set
}

// findAll returns the start offsets of every occurrence of phrase in lower
// that is not glued to a neighbouring word character.
func findAll(lower, phrase string) []int {
	if phrase == "" {
		return nil
	}
	var offsets []int
	for pos := 0; pos <= len(lower)-len(phrase); {
		idx := strings.Index(lower[pos:], phrase)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(phrase)
		if boundaryAt(lower, start, end) {
			offsets = append(offsets, start)
		}
		pos = start + 1
	}
	return offsets
}

// boundaryAt reports whether s[start:end] is not glued to a word on
// either side. A phrase edge that is itself punctuation, like the end of
// "c++", never glues.
func boundaryAt(s string, start, end int) bool {
	if start > 0 {
		before, _ := utf8.DecodeLastRuneInString(s[:start])
		first, _ := utf8.DecodeRuneInString(s[start:])
		if isWordRune(before) && isWordRune(first) {
			return false
		}
	}
	if end < len(s) {
		last, _ := utf8.DecodeLastRuneInString(s[:end])
		after, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(last) && isWordRune(after) {
			return false
		}
	}
	return true
}

// Contains reports whether phrase occurs in text as a whole word or
// phrase, ignoring ASCII case.
func Contains(text, phrase string) bool {
	return ContainsFolded(foldASCII(text), foldASCII(phrase))
}

// ContainsFolded is Contains for inputs that are already lowercased.
func ContainsFolded(lower, phrase string) bool {
	if phrase == "" {
		return false
	}
	for pos := 0; pos <= len(lower)-len(phrase); {
		idx := strings.Index(lower[pos:], phrase)
		if idx < 0 {
			return false
		}
		start := pos + idx
		if boundaryAt(lower, start, start+len(phrase)) {
			return true
		}
		pos = start + 1
	}
	return false
}

// Fold exposes the offset-preserving lowercase used for matching.
func Fold(s string) string {
	return foldASCII(s)
}

// FindFirst returns the text of the first whole-word occurrence of phrase,
// in its original casing.
func FindFirst(text, phrase string) (string, bool) {
	p := foldASCII(phrase)
	offsets := findAll(foldASCII(text), p)
	if len(offsets) == 0 {
		return "", false
	}
	return text[offsets[0] : offsets[0]+len(p)], true
}
