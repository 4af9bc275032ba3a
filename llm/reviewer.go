package llm

import (
	"context"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var _ devq.Reviewer = (*Reviewer)(nil)

// Reviewer implements devq.Reviewer on top of a Client.
type Reviewer struct {
	client *Client
}

// NewReviewer creates a Reviewer.
func NewReviewer(client *Client) *Reviewer {
	return &Reviewer{client: client}
}

// ReviewFile scores code against every criterion.
func (r *Reviewer) ReviewFile(ctx context.Context, code string, history devq.History) (*devq.FileReview, error) {
	prompt := FilePrompt(code)
	var result devq.AnalysisResult
	raw, err := r.client.Analyze(ctx, prompt, history, &result)
	if err != nil {
		return nil, err
	}
	return &devq.FileReview{Prompt: prompt, Response: raw, Result: result}, nil
}

// Summarize asks for overall feedback threaded with history.
func (r *Reviewer) Summarize(ctx context.Context, history devq.History) (*devq.SummaryReview, error) {
	prompt := SummaryPrompt()
	var envelope devq.SummaryEnvelope
	raw, err := r.client.Analyze(ctx, prompt, history, &envelope)
	if err != nil {
		return nil, err
	}
	return &devq.SummaryReview{Prompt: prompt, Response: raw, Review: envelope.OverallReview}, nil
}
