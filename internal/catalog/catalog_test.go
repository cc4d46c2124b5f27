package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Loads(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 90)
	assert.Len(t, c.Categories(), 7)
	assert.Equal(t, Category("programming_languages"), c.Categories()[0].Name)
}

func TestDefault_CanonicalsAreLowercaseAndUnique(t *testing.T) {
	c := MustDefault()
	seen := make(map[string]bool)
	for _, kw := range c.Keywords() {
		assert.Equal(t, kw.Canonical, lower(kw.Canonical))
		assert.False(t, seen[kw.Canonical], "duplicate canonical %s", kw.Canonical)
		seen[kw.Canonical] = true
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func TestLookup(t *testing.T) {
	c := MustDefault()

	kw, ok := c.Lookup("SQL Server")
	require.True(t, ok)
	assert.Equal(t, "sql server", kw.Canonical)
	assert.Equal(t, Category("databases"), kw.Category)
	assert.Equal(t, "SQL Server", kw.Display)

	_, ok = c.Lookup("cobol")
	assert.False(t, ok)
}

func TestResolve_Aliases(t *testing.T) {
	c := MustDefault()

	tests := []struct {
		term string
		want string
		ok   bool
	}{
		{"k8s", "kubernetes", true},
		{"Postgres", "postgresql", true},
		{"react.js", "react", true},
		{"python", "python", true},
		{"fortran", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, ok := c.Resolve(tt.term)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_RejectsDuplicateCanonical(t *testing.T) {
	data := []byte(`{"categories": [
		{"name": "a", "keywords": [{"canonical": "sql"}]},
		{"name": "b", "keywords": [{"canonical": "SQL"}]}
	]}`)

	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "declared in both a and b")
}

func TestParse_RejectsAliasShadowingCanonical(t *testing.T) {
	data := []byte(`{"categories": [
		{"name": "a", "keywords": [{"canonical": "go", "aliases": ["golang"]}, {"canonical": "golang"}]}
	]}`)

	_, err := Parse(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shadows")
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse catalog")
}

func TestCategorize(t *testing.T) {
	c := MustDefault()

	got := c.Categorize([]string{"Python", "React", "AWS", "k8s", "COBOL", "SQL"})

	assert.Equal(t, []string{"Python", "SQL"}, got["programming_languages"])
	assert.Equal(t, []string{"React"}, got["web_technologies"])
	assert.Equal(t, []string{"AWS"}, got["cloud_platforms"])
	assert.Equal(t, []string{"k8s"}, got["tools_and_platforms"])
	assert.Empty(t, got["databases"])
	assert.Len(t, got, 7)
}

func TestDisplayName(t *testing.T) {
	c := MustDefault()
	assert.Equal(t, "JavaScript", c.DisplayName("javascript"))
	assert.Equal(t, "Some Thing", c.DisplayName("some thing"))
}
