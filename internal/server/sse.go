package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

// SSE event names.
const (
	EventStep     = "step"
	EventResult   = "result"
	EventError    = "error"
	EventComplete = "complete"
)

// errStreamClosed is returned by writes after Close.
var errStreamClosed = errors.New("event stream closed")

// SSEWriter writes Server-Sent Events. It is safe for concurrent use, and
// writes after Close are dropped, so work that outlives the handler cannot
// touch the response.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher

	mu     sync.Mutex
	closed bool
}

// NewSSEWriter sets the event-stream headers. It fails when the writer
// cannot flush.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one event with a JSON payload.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStreamClosed
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// Close stops all further writes.
func (s *SSEWriter) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// WriteError sends an error event.
func (s *SSEWriter) WriteError(body ErrorResponse) {
	s.WriteEvent(EventError, body) //nolint:errcheck
}

// WriteComplete sends the terminal event.
func (s *SSEWriter) WriteComplete(requestID, status string) {
	s.WriteEvent(EventComplete, map[string]string{ //nolint:errcheck
		"request_id": requestID,
		"status":     status,
	})
}
