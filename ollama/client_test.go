package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/devq"
	"github.com/fwojciec/devq/ollama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate_SendsFlatNonStreamingPrompt(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"model":"mistral","response":"{\"ok\": true}","done":true}`))
	}))
	defer srv.Close()

	c := ollama.NewClient(srv.URL, "mistral")

	resp, err := c.Generate(context.Background(), "User: hi\nAssistant:")

	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, resp)
	assert.Equal(t, "mistral", got["model"])
	assert.Equal(t, "User: hi\nAssistant:", got["prompt"])
	assert.Equal(t, false, got["stream"])
}

func TestClient_Generate_SendsAPIKey(t *testing.T) {
	t.Parallel()

	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"response":"x"}`))
	}))
	defer srv.Close()

	c := ollama.NewClient(srv.URL+"/", "", ollama.WithAPIKey("secret"))

	_, err := c.Generate(context.Background(), "p")

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", auth)
}

func TestClient_Generate_StatusErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{name: "server error is retryable", status: http.StatusBadGateway, retryable: true},
		{name: "rate limit is retryable", status: http.StatusTooManyRequests, retryable: true},
		{name: "missing model is not retryable", status: http.StatusNotFound, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			c := ollama.NewClient(srv.URL, "mistral")

			_, err := c.Generate(context.Background(), "p")

			var unavailable *devq.ModelUnavailableError
			require.ErrorAs(t, err, &unavailable)
			assert.Equal(t, tt.retryable, unavailable.Retryable)
			var apiErr *ollama.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestClient_Generate_UnreachableServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := ollama.NewClient(url, "mistral")

	_, err := c.Generate(context.Background(), "p")

	var unavailable *devq.ModelUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.True(t, unavailable.Retryable)
}

func TestClient_Generate_ErrorInEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"model 'mistral' not loaded"}`))
	}))
	defer srv.Close()

	c := ollama.NewClient(srv.URL, "mistral")

	_, err := c.Generate(context.Background(), "p")

	var unavailable *devq.ModelUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.False(t, unavailable.Retryable)
	assert.Contains(t, err.Error(), "not loaded")
}
