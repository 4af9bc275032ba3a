package gemini

import (
	"context"
	"errors"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var _ devq.Endpoint = (*Endpoint)(nil)

// SystemInstruction frames every review request.
const SystemInstruction = `You are a senior code reviewer. You rate code changes against named criteria and answer only with the JSON object you are asked for.`

// reviewTemperature keeps scores stable across runs.
const reviewTemperature = float32(0.2)

// Endpoint implements devq.Endpoint using Google Gemini. The flat prompt,
// including any rendered history, is sent as a single user turn.
type Endpoint struct {
	client TextGenerator
	model  string
}

// NewEndpoint creates a new Endpoint.
func NewEndpoint(client TextGenerator, model string) *Endpoint {
	if model == "" {
		model = DefaultModel
	}
	return &Endpoint{client: client, model: model}
}

// Generate sends prompt and returns the response text.
func (e *Endpoint) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := e.client.GenerateText(ctx, e.request(prompt))
	if err != nil {
		return "", e.unavailable(err)
	}
	return text, nil
}

func (e *Endpoint) request(prompt string) Request {
	temp := reviewTemperature
	return Request{
		Model:             e.model,
		Prompt:            prompt,
		SystemInstruction: SystemInstruction,
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
	}
}

func (e *Endpoint) unavailable(err error) error {
	retryable := false
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		retryable = apiErr.Retryable()
	}
	return &devq.ModelUnavailableError{
		Endpoint:  "gemini/" + e.model,
		Retryable: retryable,
		Err:       err,
	}
}
