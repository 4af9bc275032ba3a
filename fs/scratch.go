package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// historyFile is the name of the conversation history file in a run directory.
const historyFile = "history.jsonl"

// Scratch is the working directory of a single run. Reconstructed files and
// the conversation history live under it and go away with it.
type Scratch struct {
	dir        string
	keepFailed bool
}

// ScratchOption configures a Scratch.
type ScratchOption func(*Scratch)

// WithKeepFailed keeps the directory of a failed run for inspection.
func WithKeepFailed(keep bool) ScratchOption {
	return func(s *Scratch) {
		s.keepFailed = keep
	}
}

// NewScratch creates <root>/<runID>. The directory must not already exist so
// that concurrent runs never share state.
func NewScratch(root, runID string, opts ...ScratchOption) (*Scratch, error) {
	if runID == "" || !filepath.IsLocal(runID) {
		return nil, fmt.Errorf("invalid run id %q", runID)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating scratch root: %w", err)
	}
	dir := filepath.Join(root, runID)
	if err := os.Mkdir(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	s := &Scratch{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the run directory.
func (s *Scratch) Dir() string {
	return s.dir
}

// PRDir returns the reconstruction directory for pull request n.
func (s *Scratch) PRDir(n int) string {
	return filepath.Join(s.dir, "pr-"+strconv.Itoa(n))
}

// HistoryPath returns the path of the run's history file.
func (s *Scratch) HistoryPath() string {
	return filepath.Join(s.dir, historyFile)
}

// Release removes the run directory. A failed run's directory is kept when
// the scratch was created WithKeepFailed(true); kept reports whether it was.
func (s *Scratch) Release(failed bool) (kept bool, err error) {
	if failed && s.keepFailed {
		return true, nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return false, fmt.Errorf("removing scratch directory: %w", err)
	}
	return false, nil
}
