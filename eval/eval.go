// Package eval provides test helpers for checking review quality against a
// live model.
package eval

import (
	"os"
	"testing"

	"github.com/fwojciec/devq"
	"github.com/fwojciec/devq/llm"
	"github.com/fwojciec/devq/ollama"
)

// Environment variables read by the helpers.
const (
	EnvEnable = "DEVQ_EVALS"
	EnvURL    = "DEVQ_EVAL_URL"
	EnvModel  = "DEVQ_EVAL_MODEL"
)

// Eval provides assertion helpers over a reviewer.
type Eval struct {
	reviewer devq.Reviewer
}

// New creates a new Eval with the given reviewer.
func New(reviewer devq.Reviewer) *Eval {
	return &Eval{reviewer: reviewer}
}

// Live returns an Eval backed by the Ollama server named by DEVQ_EVAL_URL
// and DEVQ_EVAL_MODEL, or the local defaults.
func Live() *Eval {
	endpoint := ollama.NewClient(os.Getenv(EnvURL), os.Getenv(EnvModel))
	return New(llm.NewReviewer(llm.NewClient(endpoint, llm.WithMaxRetries(1))))
}

// Review reviews code and fails the test if the model gives no usable
// result.
func (e *Eval) Review(tb testing.TB, code string) devq.AnalysisResult {
	tb.Helper()

	review, err := e.reviewer.ReviewFile(tb.Context(), code, nil)
	if err != nil {
		tb.Fatalf("review failed: %v", err)
	}
	return review.Result
}

// AssertScoreAtMost fails the test if criterion c scores above limit for code.
func (e *Eval) AssertScoreAtMost(tb testing.TB, code string, c devq.Criterion, limit int) {
	tb.Helper()

	result := e.Review(tb, code)
	r, ok := result[c]
	if !ok {
		tb.Errorf("criterion %s missing from result", c)
		return
	}
	if r.Score > limit {
		tb.Errorf("%s scored %d, want at most %d\nComment: %s", c, r.Score, limit, r.Comment)
	}
}

// SkipUnlessEvals skips the test unless DEVQ_EVALS is set.
// Use at the start of eval tests to make them opt-in.
func SkipUnlessEvals(tb testing.TB) {
	tb.Helper()
	if os.Getenv(EnvEnable) == "" {
		tb.Skip(EnvEnable + " not set")
	}
}
