package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/resilience"
)

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", testResume)
	b := writeFile(t, dir, "b.txt", "Python React SQL")
	report := filepath.Join(dir, "report.xlsx")

	out, err := execute(t, "batch", a, b, filepath.Join(dir, "missing.txt"),
		"--job-text", testJob, "--report", report, "--json")
	require.NoError(t, err)

	var lines []batchLine
	require.NoError(t, json.Unmarshal([]byte(out), &lines))
	require.Len(t, lines, 3)
	assert.Equal(t, "a.txt", lines[0].Name)
	assert.Equal(t, resilience.OutcomeSuccess, lines[0].Outcome)
	assert.Equal(t, 2, lines[0].Missing)
	assert.Equal(t, "missing.txt", lines[2].Name)
	assert.Equal(t, resilience.OutcomeInvalid, lines[2].Outcome)
	assert.NotEmpty(t, lines[2].Error)

	_, err = os.Stat(report)
	assert.NoError(t, err)
}
