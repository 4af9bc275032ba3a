package llm_test

import (
	"context"
	"strings"
	"testing"

	"github.com/fwojciec/devq"
	"github.com/fwojciec/devq/llm"
	"github.com/fwojciec/devq/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fileAnswer = `json
{
    "CodeSmells": {"score": 6, "comment": "Repetitive code", "examples": "line 40-45, line 60-70", "legacy_context": false, "forced_solution": false},
    "AntiPatterns": {"score": 4, "comment": "Singleton in the wrong place", "examples": ["line 80"], "legacy_context": true, "forced_solution": true},
    "LegacyCompatibility": {"score": 10, "comment": "Fine", "examples": "", "legacy_context": false, "forced_solution": false},
}`

func TestReviewer_ReviewFile(t *testing.T) {
	t.Parallel()

	var sent string
	endpoint := &mock.Endpoint{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			sent = prompt
			return fileAnswer, nil
		},
	}
	r := llm.NewReviewer(llm.NewClient(endpoint))

	review, err := r.ReviewFile(context.Background(), "x = 1\n", nil)

	require.NoError(t, err)
	assert.Equal(t, llm.FilePrompt("x = 1\n"), review.Prompt)
	assert.Equal(t, fileAnswer, review.Response)
	assert.True(t, strings.HasPrefix(sent, "User: "))
	require.Len(t, review.Result, 3)
	assert.Equal(t, 6, review.Result[devq.CodeSmells].Score)
	assert.Equal(t, devq.Examples{"line 40-45, line 60-70"}, review.Result[devq.CodeSmells].Examples)
	assert.True(t, review.Result[devq.AntiPatterns].ForcedSolution)
	assert.Empty(t, review.Result[devq.LegacyCompatibility].Examples)
}

func TestReviewer_ReviewFile_RejectsOutOfRangeScore(t *testing.T) {
	t.Parallel()

	endpoint := &mock.Endpoint{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			return `{"CodeSmells": {"score": 11}}`, nil
		},
	}
	r := llm.NewReviewer(llm.NewClient(endpoint))

	review, err := r.ReviewFile(context.Background(), "x = 1\n", nil)

	var soe *devq.StructuredOutputError
	require.ErrorAs(t, err, &soe)
	assert.Nil(t, review)
}

func TestReviewer_Summarize_ThreadsHistory(t *testing.T) {
	t.Parallel()

	var sent string
	endpoint := &mock.Endpoint{
		GenerateFn: func(ctx context.Context, prompt string) (string, error) {
			sent = prompt
			return `{"Overall Review": {"strengths": "Readable", "improvements": "Tests", "recommendations": "Learn typing"}}`, nil
		},
	}
	r := llm.NewReviewer(llm.NewClient(endpoint))
	history := devq.History{
		{Role: devq.RoleUser, Text: "review a.py"},
		{Role: devq.RoleAssistant, Text: "{}"},
	}

	summary, err := r.Summarize(context.Background(), history)

	require.NoError(t, err)
	assert.Equal(t, "Readable", summary.Review.Strengths)
	assert.Equal(t, "Tests", summary.Review.Improvements)
	assert.Equal(t, "Learn typing", summary.Review.Recommendations)
	assert.True(t, strings.HasPrefix(sent, "User: review a.py\nAssistant: {}\nAssistant: Great, keep going\nUser: "))
	assert.True(t, strings.HasSuffix(sent, "\nAssistant:"))
}
