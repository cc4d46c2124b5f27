package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/jonathan/resume-tailor/internal/resilience"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
)

// statusClientClosedRequest is the non-standard status logged when the
// client goes away before the response is written.
const statusClientClosedRequest = 499

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error      string         `json:"error"`
	Message    string         `json:"message"`
	Field      string         `json:"field,omitempty"`
	Details    []FieldProblem `json:"details,omitempty"`
	RetryAfter int            `json:"retry_after,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
}

// FieldProblem is one schema violation.
type FieldProblem struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HTTPStatus returns the status code for an error returned by the service.
func HTTPStatus(err error) int {
	var (
		verr    *types.ValidationError
		serr    *schemas.ValidationError
		open    *resilience.CircuitOpenError
		timeout *resilience.TimeoutError
		tooBig  *http.MaxBytesError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &verr), errors.As(err, &serr):
		return http.StatusBadRequest
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, resilience.ErrCapacityExceeded), errors.As(err, &open):
		return http.StatusServiceUnavailable
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the reply for err.
func errorBody(err error) ErrorResponse {
	var (
		verr    *types.ValidationError
		serr    *schemas.ValidationError
		open    *resilience.CircuitOpenError
		timeout *resilience.TimeoutError
		tooBig  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verr):
		return ErrorResponse{Error: "validation_error", Message: verr.Message, Field: verr.Field}
	case errors.As(err, &serr):
		body := ErrorResponse{Error: "validation_error", Message: "request does not match schema " + serr.Schema}
		for _, fe := range serr.Errors {
			body.Details = append(body.Details, FieldProblem{Field: fe.Field, Message: fe.Message})
		}
		return body
	case errors.As(err, &tooBig):
		return ErrorResponse{Error: "request_too_large", Message: err.Error()}
	case errors.Is(err, resilience.ErrCapacityExceeded):
		return ErrorResponse{Error: "capacity_exceeded", Message: "server is busy, try again shortly", RetryAfter: 1}
	case errors.As(err, &open):
		return ErrorResponse{
			Error:      "circuit_open",
			Message:    err.Error(),
			RetryAfter: retrySeconds(open),
		}
	case errors.As(err, &timeout):
		return ErrorResponse{Error: "timeout", Message: err.Error()}
	case errors.Is(err, context.Canceled):
		return ErrorResponse{Error: "canceled", Message: "request canceled"}
	default:
		return ErrorResponse{Error: "operation_failed", Message: err.Error()}
	}
}

func retrySeconds(open *resilience.CircuitOpenError) int {
	secs := int(open.RetryAfter.Seconds())
	if open.RetryAfter > 0 && secs == 0 {
		secs = 1
	}
	return secs
}
