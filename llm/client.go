// Package llm talks to a text-generation endpoint: it threads prompts with
// the run's conversation history, retries transient failures, and decodes
// the structured answers the reviewer asks for.
package llm

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/devq"
	"github.com/fwojciec/devq/lenient"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Defaults for model calls.
const (
	DefaultTimeout    = 5 * time.Minute
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
	DefaultMaxDelay   = 30 * time.Second
)

// Client sends threaded prompts to an endpoint and decodes the answers.
// It never stores history; callers pass it in on every call.
type Client struct {
	endpoint   devq.Endpoint
	timeout    time.Duration
	maxRetries int
	// backoff returns the delay before retry n (1-indexed).
	backoff func(retry int) time.Duration
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the timeout for a single endpoint call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxRetries sets how many times a retryable failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithBackoff sets exponential backoff starting at base and capped at maxDelay.
func WithBackoff(base, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.backoff = ExponentialBackoff(base, maxDelay)
	}
}

// WithBackoffFunc sets a custom backoff function.
func WithBackoffFunc(fn func(retry int) time.Duration) Option {
	return func(c *Client) {
		c.backoff = fn
	}
}

// WithRequestsPerMinute limits the rate of endpoint calls. Zero disables
// the limit.
func WithRequestsPerMinute(n int) Option {
	return func(c *Client) {
		if n <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
}

// WithLogger sets the logger for retry attempts.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for endpoint.
func NewClient(endpoint devq.Endpoint, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		timeout:    DefaultTimeout,
		maxRetries: DefaultMaxRetries,
		backoff:    ExponentialBackoff(DefaultBaseDelay, DefaultMaxDelay),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ExponentialBackoff doubles the delay on each retry, starting at base and
// capped at maxDelay.
func ExponentialBackoff(base, maxDelay time.Duration) func(retry int) time.Duration {
	return func(retry int) time.Duration {
		d := base
		for i := 1; i < retry; i++ {
			d *= 2
			if d >= maxDelay {
				return maxDelay
			}
		}
		return min(d, maxDelay)
	}
}

// Analyze threads prompt with history, sends it, and decodes the answer into
// v. It returns the raw response whenever the endpoint answered, including
// when decoding fails. Endpoint failures are *devq.ModelUnavailableError;
// undecodable answers are *devq.StructuredOutputError and are not retried.
func (c *Client) Analyze(ctx context.Context, prompt string, history devq.History, v any) (string, error) {
	raw, err := c.Generate(ctx, Thread(prompt, history))
	if err != nil {
		return "", err
	}
	if err := lenient.Decode(raw, v); err != nil {
		return raw, err
	}
	return raw, nil
}

// Generate sends an already threaded prompt, retrying retryable failures.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	for retry := 0; ; retry++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		resp, err := c.attempt(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var unavailable *devq.ModelUnavailableError
		if !errors.As(err, &unavailable) || !unavailable.Retryable || retry >= c.maxRetries {
			return "", err
		}

		delay := c.backoff(retry + 1)
		c.logger.Warn().
			Err(err).
			Int("attempt", retry+1).
			Dur("backoff", delay).
			Msg("model call failed, retrying")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}
}

// attempt makes one endpoint call under the per-call timeout. Every failure
// comes back as a *devq.ModelUnavailableError; a call that ran out of time
// is retryable.
func (c *Client) attempt(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.endpoint.Generate(callCtx, prompt)
	if err == nil {
		return resp, nil
	}

	timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil
	var unavailable *devq.ModelUnavailableError
	if errors.As(err, &unavailable) {
		if timedOut && !unavailable.Retryable {
			copied := *unavailable
			copied.Retryable = true
			return "", &copied
		}
		return "", err
	}
	return "", &devq.ModelUnavailableError{Retryable: timedOut, Err: err}
}
