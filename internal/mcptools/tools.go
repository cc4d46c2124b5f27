package mcptools

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/types"
)

type tools struct {
	svc    *pipeline.Service
	logger *zap.Logger
}

// ExtractInput is the input of extract_keywords.
type ExtractInput struct {
	JobDescription string `json:"job_description,omitempty" jsonschema:"Full job description text (plain text or HTML)"`
	JobURL         string `json:"job_url,omitempty" jsonschema:"URL of the job posting, used when job_description is empty"`
}

// ScoreInput is the input of ats_score.
type ScoreInput struct {
	ResumeText     string   `json:"resume_text" jsonschema:"Plain text of the resume"`
	JobDescription string   `json:"job_description,omitempty" jsonschema:"Full job description text (plain text or HTML)"`
	JobURL         string   `json:"job_url,omitempty" jsonschema:"URL of the job posting, used when job_description is empty"`
	PriorScore     *float64 `json:"prior_score,omitempty" jsonschema:"Earlier total score (0-100) to measure improvement against"`
}

// SuggestInput is the input of suggest_keywords.
type SuggestInput struct {
	ResumeText     string `json:"resume_text" jsonschema:"Plain text of the resume"`
	JobDescription string `json:"job_description,omitempty" jsonschema:"Full job description text (plain text or HTML)"`
	JobURL         string `json:"job_url,omitempty" jsonschema:"URL of the job posting, used when job_description is empty"`
}

// OptimizeInput is the input of optimize_resume.
type OptimizeInput struct {
	ResumeText     string   `json:"resume_text" jsonschema:"Plain text of the resume"`
	JobDescription string   `json:"job_description,omitempty" jsonschema:"Full job description text (plain text or HTML)"`
	JobURL         string   `json:"job_url,omitempty" jsonschema:"URL of the job posting, used when job_description is empty"`
	ExtraKeywords  []string `json:"extra_keywords,omitempty" jsonschema:"Additional keywords to add when the resume lacks them"`
	Company        string   `json:"company,omitempty" jsonschema:"Company name, used for the download filename"`
	Role           string   `json:"role,omitempty" jsonschema:"Role title, used for the download filename"`
}

// begin tags ctx with a fresh request ID and returns a logger for the call.
func (t *tools) begin(ctx context.Context, tool string) (context.Context, *zap.Logger) {
	ctx = logger.WithRequestID(ctx, uuid.NewString())
	log := logger.ForContext(ctx, t.logger).With(zap.String(logger.FieldOp, tool))
	log.Debug("tool called")
	return ctx, log
}

// job returns the job text, fetching it when only a URL was given. Pasted
// HTML is converted to text.
func (t *tools) job(ctx context.Context, description, url string) (string, error) {
	if strings.TrimSpace(description) == "" && strings.TrimSpace(url) != "" {
		text, _, err := t.svc.FetchJob(ctx, url)
		return text, err
	}
	if ingestion.LooksLikeHTML(description) {
		text, _, err := ingestion.FromText(description)
		return text, err
	}
	return description, nil
}

func (t *tools) registerExtract(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolExtractKeywords,
		Description: "Extract the technical keywords of a job description, grouped by category, and classify its industry.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.extract)
}

func (t *tools) extract(ctx context.Context, _ *mcp.CallToolRequest, in ExtractInput) (*mcp.CallToolResult, *types.ExtractResult, error) {
	ctx, log := t.begin(ctx, ToolExtractKeywords)
	job, err := t.job(ctx, in.JobDescription, in.JobURL)
	if err != nil {
		return nil, nil, err
	}
	res, err := t.svc.Extract(ctx, types.ExtractRequest{JobDescription: job})
	if err != nil {
		log.Warn("tool failed", zap.Error(err))
		return nil, nil, err
	}
	return nil, res, nil
}

func (t *tools) registerScore(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolATSScore,
		Description: "Score a resume against a job description the way an applicant tracking system would. Returns the total and the keyword, formatting, content, structure and length subscores.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.score)
}

func (t *tools) score(ctx context.Context, _ *mcp.CallToolRequest, in ScoreInput) (*mcp.CallToolResult, types.ScoreBreakdown, error) {
	ctx, log := t.begin(ctx, ToolATSScore)
	job, err := t.job(ctx, in.JobDescription, in.JobURL)
	if err != nil {
		return nil, types.ScoreBreakdown{}, err
	}
	res, err := t.svc.Score(ctx, types.ScoreRequest{
		ResumeText:     in.ResumeText,
		JobDescription: job,
		PriorScore:     in.PriorScore,
	})
	if err != nil {
		log.Warn("tool failed", zap.Error(err))
		return nil, types.ScoreBreakdown{}, err
	}
	return nil, res, nil
}

func (t *tools) registerSuggest(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolSuggestKeywords,
		Description: "List the job keywords a resume is missing, grouped by category, with suggestions to improve its ATS score.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.suggest)
}

func (t *tools) suggest(ctx context.Context, _ *mcp.CallToolRequest, in SuggestInput) (*mcp.CallToolResult, *types.SuggestResult, error) {
	ctx, log := t.begin(ctx, ToolSuggestKeywords)
	job, err := t.job(ctx, in.JobDescription, in.JobURL)
	if err != nil {
		return nil, nil, err
	}
	res, err := t.svc.Suggest(ctx, types.SuggestRequest{ResumeText: in.ResumeText, JobDescription: job})
	if err != nil {
		log.Warn("tool failed", zap.Error(err))
		return nil, nil, err
	}
	return nil, res, nil
}

func (t *tools) registerOptimize(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolOptimizeResume,
		Description: "Add the job keywords a resume is missing to its skills section, keeping its list style, and rescore it. Returns both scores and the updated resume text.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.optimize)
}

func (t *tools) optimize(ctx context.Context, _ *mcp.CallToolRequest, in OptimizeInput) (*mcp.CallToolResult, *types.OptimizeResult, error) {
	ctx, log := t.begin(ctx, ToolOptimizeResume)
	job, err := t.job(ctx, in.JobDescription, in.JobURL)
	if err != nil {
		return nil, nil, err
	}
	res, err := t.svc.Optimize(ctx, types.OptimizeRequest{
		ResumeText:     in.ResumeText,
		JobDescription: job,
		ExtraKeywords:  in.ExtraKeywords,
		Company:        in.Company,
		Role:           in.Role,
	}, func(ev pipeline.ProgressEvent) {
		log.Debug("optimize progress", zap.String("step", ev.Step))
	})
	if err != nil {
		log.Warn("tool failed", zap.Error(err))
		return nil, nil, err
	}
	return nil, res, nil
}
