package gemini

import (
	"context"
	"errors"
	"net/http"
)

// ErrEmptyResponse is returned when Gemini answers without any text, for
// example because the prompt was blocked.
var ErrEmptyResponse = errors.New("gemini: empty response")

// TextGenerator abstracts the Gemini API for testing.
type TextGenerator interface {
	GenerateText(ctx context.Context, req Request) (string, error)
}

// Request is a single-turn generation request.
type Request struct {
	Model             string
	Prompt            string
	SystemInstruction string
	Temperature       *float32
	ResponseMIMEType  string
}

// MockTextGenerator is a mock implementation of TextGenerator for testing.
type MockTextGenerator struct {
	GenerateTextFn func(ctx context.Context, req Request) (string, error)
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, req Request) (string, error) {
	return m.GenerateTextFn(ctx, req)
}

// APIError represents an error from the Gemini API with HTTP status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError with the given status code and message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
