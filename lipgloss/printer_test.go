package lipgloss_test

import (
	"bytes"
	"testing"

	"github.com/fwojciec/devq"
	"github.com/fwojciec/devq/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_Print(t *testing.T) {
	t.Parallel()

	t.Run("prints score, counts and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		p := lipgloss.NewPrinter(&buf, lipgloss.WithColorProfile(termenv.Ascii))
		score := 7.25
		report := devq.RunReport{
			RunID:           "r-1",
			Author:          "alice",
			Score:           &score,
			FilesAnalyzed:   3,
			FilesIncomplete: 1,
			PRs: []devq.PRReport{{
				PR: devq.PullRequest{Number: 12, Title: "Add parser"},
				Files: []devq.FileReport{
					{Path: "a.py"},
					{Path: "b.py", Incomplete: true},
				},
				Static: []devq.StaticFindings{
					{Analyzer: "flake8", Issues: []devq.StaticIssue{{Code: "E501"}, {Code: "W291"}}},
				},
			}},
			Summary: &devq.OverallReview{Strengths: "Readable", Improvements: "Tests", Recommendations: "Typing"},
		}

		require.NoError(t, p.Print(report))

		out := buf.String()
		assert.Contains(t, out, "devq · alice run r-1")
		assert.Contains(t, out, "Score: 7.2/10")
		assert.Contains(t, out, "Files: 3 analyzed, 1 incomplete")
		assert.Contains(t, out, "#12 Add parser: 2 files, 2 static issues")
		assert.Contains(t, out, "incomplete: b.py")
		assert.Contains(t, out, "Strengths: Readable")
		assert.NotContains(t, out, "\x1b[", "ascii profile must not emit escape codes")
	})

	t.Run("prints no score and summary failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		p := lipgloss.NewPrinter(&buf, lipgloss.WithColorProfile(termenv.Ascii))

		require.NoError(t, p.Print(devq.RunReport{RunID: "r-2", Author: "bob", SummaryError: "model endpoint unavailable"}))

		out := buf.String()
		assert.Contains(t, out, "Score: no score")
		assert.Contains(t, out, "Summary failed: model endpoint unavailable")
	})

	t.Run("colors the score with a color profile", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		p := lipgloss.NewPrinter(&buf, lipgloss.WithColorProfile(termenv.TrueColor))
		score := 2.0

		require.NoError(t, p.Print(devq.RunReport{RunID: "r-3", Author: "carol", Score: &score}))

		assert.Contains(t, buf.String(), "\x1b[")
	})
}
