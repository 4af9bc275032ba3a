// Package git provides access to git operations via shell commands.
package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var _ devq.DiffSource = (*DiffSource)(nil)

// Runner executes git commands via shell.
type Runner struct{}

// NewRunner creates a new git runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Show returns the diff introduced by a commit. Merge commits are diffed
// against their first parent, which is what the merged pull request changed.
func (r *Runner) Show(ctx context.Context, repoPath string, hash string) (string, error) {
	args := []string{
		"-C", repoPath, "show",
		"--format=", "--no-color", "--no-ext-diff", "--diff-merges=first-parent",
		hash,
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git show failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git show failed: %w", err)
	}
	return string(output), nil
}

// DiffSource opens a pull request's diff from its diff file, or from the
// merge commit in a local clone when no diff file is given.
type DiffSource struct {
	runner *Runner
}

// NewDiffSource creates a DiffSource backed by runner.
func NewDiffSource(runner *Runner) *DiffSource {
	return &DiffSource{runner: runner}
}

// Open returns the unified diff of pr.
func (s *DiffSource) Open(ctx context.Context, pr devq.PullRequest) (io.ReadCloser, error) {
	if pr.DiffPath != "" {
		f, err := os.Open(pr.DiffPath)
		if err != nil {
			return nil, fmt.Errorf("opening diff for PR #%d: %w", pr.Number, err)
		}
		return f, nil
	}
	if pr.RepoPath == "" || pr.CommitSHA == "" {
		return nil, fmt.Errorf("PR #%d has neither a diff file nor a local commit", pr.Number)
	}
	diff, err := s.runner.Show(ctx, pr.RepoPath, pr.CommitSHA)
	if err != nil {
		return nil, fmt.Errorf("reading diff for PR #%d: %w", pr.Number, err)
	}
	return io.NopCloser(strings.NewReader(diff)), nil
}
