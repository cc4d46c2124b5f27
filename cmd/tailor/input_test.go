package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/types"
)

func TestJobSourceFlags(t *testing.T) {
	_, err := execute(t, "extract")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of --job, --job-url or --job-text")

	_, err = execute(t, "extract", "--job-text", testJob, "--job-url", "http://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestReadText_Stdin(t *testing.T) {
	resetFlags(rootCmd)
	rootCmd.SetIn(strings.NewReader("  Go developer  "))
	text, err := readText(rootCmd, "-")
	require.NoError(t, err)
	assert.Equal(t, "Go developer", text)
}

func TestJobSource_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div class="job-description"><p>We need Go and Kubernetes.</p></div></body></html>`))
	}))
	defer srv.Close()

	out, err := execute(t, "extract", "--job-url", srv.URL, "--json")
	require.NoError(t, err)

	var res types.ExtractResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"Go", "Kubernetes"}, res.Keywords)
}
