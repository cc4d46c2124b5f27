// Package document holds the in-memory paragraph model that keyword merges
// operate on, plus helpers to recognise resume section headers.
package document

import (
	"strings"
	"unicode"
)

// Paragraph is a single mutable text run.
type Paragraph struct {
	Text string
}

// Document is an ordered list of paragraphs.
type Document struct {
	Paragraphs []*Paragraph
}

// FromText splits plain text into one paragraph per line. CRLF and CR
// line endings are normalized; empty lines are kept as empty paragraphs.
// An empty or whitespace-only text yields an empty document.
func FromText(text string) *Document {
	doc := &Document{}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if strings.TrimSpace(text) == "" {
		return doc
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		doc.Paragraphs = append(doc.Paragraphs, &Paragraph{Text: line})
	}
	return doc
}

// Text joins the paragraphs with newlines.
func (d *Document) Text() string {
	lines := make([]string, len(d.Paragraphs))
	for i, p := range d.Paragraphs {
		lines[i] = p.Text
	}
	return strings.Join(lines, "\n")
}

// Len returns the number of paragraphs.
func (d *Document) Len() int {
	return len(d.Paragraphs)
}

// Append adds a paragraph at the end.
func (d *Document) Append(text string) *Paragraph {
	p := &Paragraph{Text: text}
	d.Paragraphs = append(d.Paragraphs, p)
	return p
}

// InsertAfter inserts a paragraph right after index i. An index past the
// end appends.
func (d *Document) InsertAfter(i int, text string) *Paragraph {
	if i >= len(d.Paragraphs)-1 {
		return d.Append(text)
	}
	p := &Paragraph{Text: text}
	d.Paragraphs = append(d.Paragraphs, nil)
	copy(d.Paragraphs[i+2:], d.Paragraphs[i+1:])
	d.Paragraphs[i+1] = p
	return p
}

// Clone returns a deep copy.
func (d *Document) Clone() *Document {
	out := &Document{Paragraphs: make([]*Paragraph, len(d.Paragraphs))}
	for i, p := range d.Paragraphs {
		out.Paragraphs[i] = &Paragraph{Text: p.Text}
	}
	return out
}

// DefaultFilename is used when no company and role are supplied.
const DefaultFilename = "optimized_resume.txt"

// SafeFilename builds "<Company> <Role> Resume<ext>" keeping only letters,
// digits, spaces, hyphens and underscores. Without both parts it returns
// the default name with the same extension.
func SafeFilename(company, role, ext string) string {
	if ext == "" {
		ext = ".txt"
	}
	c, r := sanitize(company), sanitize(role)
	if c == "" || r == "" {
		return strings.TrimSuffix(DefaultFilename, ".txt") + ext
	}
	return c + " " + r + " Resume" + ext
}

func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
