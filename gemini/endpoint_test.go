package gemini_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/devq"
	"github.com/fwojciec/devq/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpoint_Generate_SendsPromptAsSingleTurn(t *testing.T) {
	t.Parallel()

	var got gemini.Request
	client := &gemini.MockTextGenerator{
		GenerateTextFn: func(ctx context.Context, req gemini.Request) (string, error) {
			got = req
			return `{"ok": true}`, nil
		},
	}

	e := gemini.NewEndpoint(client, "")

	resp, err := e.Generate(context.Background(), "User: review this\nAssistant:")

	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, resp)
	assert.Equal(t, gemini.DefaultModel, got.Model)
	assert.Equal(t, "User: review this\nAssistant:", got.Prompt)
	assert.Equal(t, "application/json", got.ResponseMIMEType)
	assert.Equal(t, gemini.SystemInstruction, got.SystemInstruction)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.2, *got.Temperature, 1e-6)
}

func TestEndpoint_Generate_ClassifiesErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{name: "rate limited", err: gemini.NewAPIError(429, "quota"), retryable: true},
		{name: "server error", err: gemini.NewAPIError(503, "overloaded"), retryable: true},
		{name: "bad request", err: gemini.NewAPIError(400, "invalid"), retryable: false},
		{name: "empty response", err: gemini.ErrEmptyResponse, retryable: false},
		{name: "unknown error", err: errors.New("boom"), retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &gemini.MockTextGenerator{
				GenerateTextFn: func(ctx context.Context, req gemini.Request) (string, error) {
					return "", tt.err
				},
			}
			e := gemini.NewEndpoint(client, "gemini-pro")

			_, err := e.Generate(context.Background(), "p")

			var unavailable *devq.ModelUnavailableError
			require.ErrorAs(t, err, &unavailable)
			assert.Equal(t, "gemini/gemini-pro", unavailable.Endpoint)
			assert.Equal(t, tt.retryable, unavailable.Retryable)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
