// Package ingestion turns raw resume and job posting sources (plain text,
// markdown, HTML files or job board URLs) into normalized text.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpace  = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	blankLines  = regexp.MustCompile(`\n{3,}`)
	zeroWidth   = strings.NewReplacer("\u200b", "", "\u200c", "", "\u200d", "", "\ufeff", "")
	bulletGlyph = regexp.MustCompile(`^([ \t]*)[•·▪◦‣∙]\s*`)
)

// CleanText normalizes line endings and whitespace while keeping the line
// structure that header and list detection depend on. Bullet glyphs are
// rewritten to "- " so downstream list handling sees one form.
func CleanText(content string) string {
	if content == "" {
		return ""
	}
	content = zeroWidth.Replace(content)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}
	out := blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(out)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t\u00a0")
	if strings.TrimSpace(line) == "" {
		return ""
	}
	trimmed := strings.TrimLeft(line, " \t")
	indent := line[:len(line)-len(trimmed)]

	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}
	if m := bulletGlyph.FindStringSubmatch(line); m != nil {
		return m[1] + "- " + innerSpace.ReplaceAllString(line[len(m[0]):], " ")
	}
	// Tabs inside a line are kept: they are a formatting signal for scoring.
	if strings.Contains(trimmed, "\t") {
		return indent + trimmed
	}
	return indent + innerSpace.ReplaceAllString(trimmed, " ")
}

// IsBulletLine reports whether line is a list item.
func IsBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, p := range []string{"- ", "* ", "• ", "· ", "▪ "} {
		if strings.HasPrefix(trimmed, p) {
			return true
		}
	}
	return false
}
