package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestExtractCommand(t *testing.T) {
	out, err := execute(t, "extract", "--job-text", testJob, "--json")
	require.NoError(t, err)

	var res types.ExtractResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"Python", "React", "SQL"}, res.Keywords)

	out, err = execute(t, "extract", "--job-text", testJob)
	require.NoError(t, err)
	assert.Contains(t, out, "Python")
}
