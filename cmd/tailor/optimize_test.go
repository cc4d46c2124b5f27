package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestOptimizeCommand_WritesFile(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", testResume)
	outDir := filepath.Join(dir, "out")

	out, err := execute(t, "optimize",
		"--resume", resume,
		"--job-text", testJob,
		"--company", "Acme",
		"--role", "Engineer",
		"--out", outDir,
		"--json")
	require.NoError(t, err)

	var res types.OptimizeResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"React", "SQL"}, res.KeywordsAdded)

	written, err := os.ReadFile(filepath.Join(outDir, "Acme Engineer Resume.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(written), "Skills: Python, Go, React, SQL")
}
