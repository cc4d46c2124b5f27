// Package mcptools exposes the scoring pipeline as Model Context Protocol
// tools.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/pipeline"
)

// ServerName is the implementation name announced to clients.
const ServerName = "resume-tailor"

// Tool names.
const (
	ToolExtractKeywords = "extract_keywords"
	ToolATSScore        = "ats_score"
	ToolSuggestKeywords = "suggest_keywords"
	ToolOptimizeResume  = "optimize_resume"
)

// NewServer returns an MCP server with every tool registered.
func NewServer(svc *pipeline.Service, version string, l *zap.Logger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}, nil)
	RegisterTools(server, svc, l)
	return server
}

// RegisterTools registers the pipeline tools on server.
func RegisterTools(server *mcp.Server, svc *pipeline.Service, l *zap.Logger) {
	t := &tools{svc: svc, logger: logger.OrNop(l).Named("mcp")}
	t.registerExtract(server)
	t.registerScore(server)
	t.registerSuggest(server)
	t.registerOptimize(server)
}

// RunStdio serves server over stdin/stdout until ctx is cancelled or the
// client disconnects.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
