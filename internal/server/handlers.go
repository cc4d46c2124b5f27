package server

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// ScoreResponse is the body of POST /score.
type ScoreResponse struct {
	Score types.ScoreBreakdown `json:"ats_score"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// decode reads a bounded body, validates it against the named schema and
// unmarshals it into dst. It writes the error reply and returns false on
// failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, schema string, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		s.errorResponse(w, r, err)
		return false
	}
	if err := schemas.Validate(schema, body); err != nil {
		s.errorResponse(w, r, err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		s.errorResponse(w, r, types.NewValidationError("", "malformed request body: %v", err))
		return false
	}
	return true
}

// jobText converts a pasted HTML job posting to plain text.
func jobText(raw string) (string, error) {
	if !ingestion.LooksLikeHTML(raw) {
		return raw, nil
	}
	text, _, err := ingestion.FromText(raw)
	if err != nil {
		return "", types.NewValidationError("job_description", "could not read HTML: %v", err)
	}
	return text, nil
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req types.ExtractRequest
	if !s.decode(w, r, schemas.ExtractRequest, &req) {
		return
	}
	var err error
	if req.JobDescription, err = jobText(req.JobDescription); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	res, err := s.svc.Extract(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req types.ScoreRequest
	if !s.decode(w, r, schemas.ScoreRequest, &req) {
		return
	}
	var err error
	if req.JobDescription, err = jobText(req.JobDescription); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	score, err := s.svc.Score(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ScoreResponse{Score: score})
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req types.SuggestRequest
	if !s.decode(w, r, schemas.SuggestRequest, &req) {
		return
	}
	var err error
	if req.JobDescription, err = jobText(req.JobDescription); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	res, err := s.svc.Suggest(r.Context(), req)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req types.OptimizeRequest
	if !s.decode(w, r, schemas.OptimizeRequest, &req) {
		return
	}
	var err error
	if req.JobDescription, err = jobText(req.JobDescription); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	res, err := s.svc.Optimize(r.Context(), req, nil)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleOptimizeStream runs an optimization and streams its progress as
// server-sent events. Validation failures are still plain 400 replies;
// once the stream is open, failures arrive as an error event.
func (s *Server) handleOptimizeStream(w http.ResponseWriter, r *http.Request) {
	var req types.OptimizeRequest
	if !s.decode(w, r, schemas.OptimizeRequest, &req) {
		return
	}
	var err error
	if req.JobDescription, err = jobText(req.JobDescription); err != nil {
		s.errorResponse(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	defer sse.Close()

	ctx := r.Context()
	log := logger.ForContext(ctx, s.logger)
	requestID := logger.RequestID(ctx)

	res, err := s.svc.Optimize(ctx, req, func(ev pipeline.ProgressEvent) {
		if err := sse.WriteEvent(EventStep, ev); err != nil {
			log.Debug("failed to write progress event", zap.Error(err))
		}
	})
	if err != nil {
		body := errorBody(err)
		body.RequestID = requestID
		sse.WriteError(body)
		log.Warn("streamed optimization failed", zap.Error(err))
		return
	}

	if err := sse.WriteEvent(EventResult, res); err != nil {
		log.Debug("failed to write result event", zap.Error(err))
		return
	}
	sse.WriteComplete(requestID, "completed")
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{Status: s.svc.Health()})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.svc.Status())
}

func (s *Server) handleListSchemas(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string][]string{"schemas": schemas.Names()})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	raw, err := schemas.Raw(r.PathValue("name"))
	if err != nil {
		s.jsonResponse(w, http.StatusNotFound, ErrorResponse{
			Error:     "not_found",
			Message:   err.Error(),
			RequestID: logger.RequestID(r.Context()),
		})
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
