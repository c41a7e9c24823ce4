package orchestrator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the outcomes of a fetch call.
var (
	// ErrNotFound is returned when the orchestrator responds with 404 Not Found.
	ErrNotFound = errors.New("orchestrator: file not found")
	// ErrUnavailable is returned when the orchestrator cannot be reached or answers with a 5xx status.
	ErrUnavailable = errors.New("orchestrator: service unavailable")
	// ErrInvalidResponse is returned when the orchestrator's answer cannot be read as a file payload.
	ErrInvalidResponse = errors.New("orchestrator: invalid response")
)

// APIError represents a non-2xx answer from the orchestrator.
// It supports errors.Is() against the sentinels above via Unwrap().
type APIError struct {
	// StatusCode is the HTTP status code returned by the orchestrator.
	StatusCode int
	// Message is the error message from the orchestrator, if any.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("orchestrator: API error %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status code to its sentinel error.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode >= 500:
		return ErrUnavailable
	default:
		return ErrInvalidResponse
	}
}

// errorResponse is used to parse an {"error": "..."} JSON body.
type errorResponse struct {
	Error string `json:"error"`
}

// newAPIError parses the orchestrator error body and returns an *APIError.
func newAPIError(statusCode int, body []byte) error {
	var resp errorResponse
	msg := string(body)
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		msg = resp.Error
	}
	return &APIError{
		StatusCode: statusCode,
		Message:    msg,
	}
}
