package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestScoreCommand(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", testResume)
	job := writeFile(t, dir, "job.txt", testJob)

	out, err := execute(t, "score", "--resume", resume, "--job", job, "--prior", "40", "--json")
	require.NoError(t, err)

	var score types.ScoreBreakdown
	require.NoError(t, json.Unmarshal([]byte(out), &score))
	assert.Equal(t, 70.0, score.KeywordScore)
	assert.Equal(t, types.Round1(score.Total-40), score.Improvement)

	_, err = execute(t, "score", "--job", job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--resume is required")
}
