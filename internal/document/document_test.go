package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromText(t *testing.T) {
	doc := FromText("Jane Doe\r\n\r\nSkills\rGo\n")
	require.Equal(t, 4, doc.Len())
	assert.Equal(t, "", doc.Paragraphs[1].Text)
	assert.Equal(t, "Jane Doe\n\nSkills\nGo", doc.Text())

	assert.Zero(t, FromText("  \n ").Len())
}

func TestInsertAfter(t *testing.T) {
	doc := FromText("a\nc")
	doc.InsertAfter(0, "b")
	doc.InsertAfter(5, "d")
	assert.Equal(t, "a\nb\nc\nd", doc.Text())
}

func TestClone(t *testing.T) {
	doc := FromText("a\nb")
	clone := doc.Clone()
	clone.Paragraphs[0].Text = "changed"
	assert.Equal(t, "a", doc.Paragraphs[0].Text)
}

func TestSafeFilename(t *testing.T) {
	tests := []struct {
		company, role, ext, want string
	}{
		{"Acme, Inc.", "Sr. Engineer/Go", ".txt", "Acme Inc Sr EngineerGo Resume.txt"},
		{"Zürich AG", "Data_Scientist", ".xlsx", "Zürich AG Data_Scientist Resume.xlsx"},
		{"", "Engineer", "", "optimized_resume.txt"},
		{"!!!", "Engineer", ".docx", "optimized_resume.docx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeFilename(tt.company, tt.role, tt.ext))
	}
}

func TestClassifyHeader(t *testing.T) {
	tests := []struct {
		line string
		want Section
		ok   bool
	}{
		{"SKILLS", SectionSkills, true},
		{"Technical Skills:", SectionSkills, true},
		{"## Tools & Technologies", SectionSkills, true},
		{"**Work Experience**", SectionExperience, true},
		{"Relevant Technical Skills", SectionSkills, true},
		{"Education", SectionEducation, true},
		{"Professional Summary", SectionSummary, true},
		{"Certifications", SectionCertifications, true},
		{"5 years experience", "", false},
		{"I gained skills in leading teams, mentoring and hiring across the org", "", false},
		{"Python, Go", "", false},
		{"", "", false},
		{"Project Experience:", SectionExperience, true},
		{"Taught Python skills to interns", "", false},
		{"Skills in Python", "", false},
		{"- Leadership skills", "", false},
		{"Soft Skills Overview", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := ClassifyHeader(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchHeader(t *testing.T) {
	_, m := MatchHeader("Technical Skills")
	assert.Equal(t, ExactMatch, m)
	_, m = MatchHeader("Relevant Technical Skills")
	assert.Equal(t, NearMatch, m)
	_, m = MatchHeader("Wrote docs")
	assert.Equal(t, NoMatch, m)

	s, m := MatchInlineHeader("Relevant Skills: Go, SQL")
	assert.Equal(t, SectionSkills, s)
	assert.Equal(t, NearMatch, m)
	_, m = MatchInlineHeader("Skills: Go, SQL")
	assert.Equal(t, ExactMatch, m)
}

func TestInlineHeader(t *testing.T) {
	section, label, rest, ok := InlineHeader("Skills:  Python, Go")
	require.True(t, ok)
	assert.Equal(t, SectionSkills, section)
	assert.Equal(t, "Skills:  ", label)
	assert.Equal(t, "Python, Go", rest)

	_, _, _, ok = InlineHeader("Skills:")
	assert.False(t, ok)
	_, _, _, ok = InlineHeader("Note: remember this")
	assert.False(t, ok)
}

func TestSections(t *testing.T) {
	found := Sections("Summary\nStuff\nExperience\nSkills: Go, SQL\nEDUCATION")
	assert.Equal(t, map[Section]bool{
		SectionSummary:    true,
		SectionExperience: true,
		SectionSkills:     true,
		SectionEducation:  true,
	}, found)
}
