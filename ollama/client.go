// Package ollama implements devq.Endpoint against an Ollama server's
// /api/generate route.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var _ devq.Endpoint = (*Client)(nil)

// Defaults for a local Ollama install.
const (
	DefaultURL   = "http://localhost:11434"
	DefaultModel = "mistral"
)

// Client sends single non-streaming generate requests.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithAPIKey sets a bearer token for servers placed behind a proxy that
// requires one.
func WithAPIKey(key string) Option {
	return func(cl *Client) {
		cl.apiKey = key
	}
}

// NewClient creates a Client for the server at baseURL.
func NewClient(baseURL, model string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		baseURL: strings.TrimSuffix(strings.TrimRight(baseURL, "/"), "/api/generate"),
		model:   model,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate sends prompt and returns the model's response text. Failures are
// reported as *devq.ModelUnavailableError; network errors, 429 and 5xx are
// marked retryable.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := c.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", c.unavailable(ctx.Err() == nil, fmt.Errorf("sending request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.unavailable(true, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", c.unavailable(retryable, &APIError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", c.unavailable(false, fmt.Errorf("parsing response envelope: %w", err))
	}
	if out.Error != "" {
		return "", c.unavailable(false, errors.New(out.Error))
	}

	return out.Response, nil
}

func (c *Client) unavailable(retryable bool, err error) error {
	return &devq.ModelUnavailableError{
		Endpoint:  "ollama/" + c.model,
		Retryable: retryable,
		Err:       err,
	}
}

// APIError is a non-200 answer from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ollama API error (HTTP %d): %s", e.StatusCode, strings.TrimSpace(e.Body))
}
