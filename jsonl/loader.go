// Package jsonl provides JSONL file handling for pull request manifests,
// conversation history and run reports.
package jsonl

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/devq"
)

// PullRequestLoader loads PullRequest records from JSONL manifests.
type PullRequestLoader struct{}

// NewPullRequestLoader creates a new PullRequestLoader.
func NewPullRequestLoader() *PullRequestLoader {
	return &PullRequestLoader{}
}

// maxLineSize is the maximum size for a single JSONL line (4MB).
// History turns carry whole prompts, which embed reconstructed files.
const maxLineSize = 4 * 1024 * 1024

// Load reads a JSONL file and returns all PullRequest records. Records are
// grouped by author, preserving manifest order within each author.
func (l *PullRequestLoader) Load(path string) (map[string][]devq.PullRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	prs, err := decodeLines[devq.PullRequest](f)
	if err != nil {
		return nil, err
	}

	byAuthor := make(map[string][]devq.PullRequest)
	for i, pr := range prs {
		if pr.Author == "" {
			return nil, fmt.Errorf("record %d: missing author", i+1)
		}
		byAuthor[pr.Author] = append(byAuthor[pr.Author], pr)
	}
	return byAuthor, nil
}

// decodeLines decodes one T per non-blank line of r.
func decodeLines[T any](r io.Reader) ([]T, error) {
	var out []T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var v T
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		out = append(out, v)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// appendLine writes v as a single JSON line to f.
func appendLine(f *os.File, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}
