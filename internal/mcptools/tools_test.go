package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/types"
)

const (
	testJob    = "Looking for a Python developer with experience with React, SQL"
	testResume = "Jane Doe\n\nSkills: Python, Go\n\nExperience\nBuilt APIs for 2M users."
)

func newTools(t *testing.T) *tools {
	t.Helper()
	svc, err := pipeline.New(nil)
	require.NoError(t, err)
	return &tools{svc: svc, logger: zap.NewNop()}
}

func TestExtractTool(t *testing.T) {
	tl := newTools(t)
	_, res, err := tl.extract(context.Background(), nil, ExtractInput{JobDescription: testJob})
	require.NoError(t, err)
	assert.Equal(t, []string{"Python", "React", "SQL"}, res.Keywords)
}

func TestExtractTool_FromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Senior engineer: Kubernetes, Terraform and Go."))
	}))
	defer srv.Close()

	tl := newTools(t)
	_, res, err := tl.extract(context.Background(), nil, ExtractInput{JobURL: srv.URL})
	require.NoError(t, err)
	assert.Contains(t, res.Keywords, "Kubernetes")
	assert.Contains(t, res.Keywords, "Terraform")
}

func TestScoreTool_Validation(t *testing.T) {
	tl := newTools(t)
	_, _, err := tl.score(context.Background(), nil, ScoreInput{ResumeText: testResume})

	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "job_description", verr.Field)
}

func TestOptimizeTool(t *testing.T) {
	tl := newTools(t)
	_, res, err := tl.optimize(context.Background(), nil, OptimizeInput{
		ResumeText:     testResume,
		JobDescription: testJob,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"React", "SQL"}, res.KeywordsAdded)
	assert.NotEmpty(t, res.Metrics.RequestID)
}

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	svc, err := pipeline.New(nil)
	require.NoError(t, err)
	server := NewServer(svc, "test", nil)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestServer_ListsTools(t *testing.T) {
	cs := connect(t)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		ToolExtractKeywords, ToolATSScore, ToolSuggestKeywords, ToolOptimizeResume,
	}, names)
}

func TestServer_CallScore(t *testing.T) {
	cs := connect(t)
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name: ToolATSScore,
		Arguments: map[string]any{
			"resume_text":     testResume,
			"job_description": testJob,
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	raw, err := json.Marshal(res.StructuredContent)
	require.NoError(t, err)
	var score types.ScoreBreakdown
	require.NoError(t, json.Unmarshal(raw, &score))
	assert.Equal(t, 70.0, score.KeywordScore)
}

func TestServer_CallSuggestError(t *testing.T) {
	cs := connect(t)
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolSuggestKeywords,
		Arguments: map[string]any{"resume_text": testResume},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}
