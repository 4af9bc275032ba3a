package jsonl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var _ devq.HistoryStore = (*HistoryStore)(nil)

// HistoryStore persists the conversation of one run as JSONL, one turn per
// line. The file lives in the run's scratch directory.
type HistoryStore struct {
	path string
}

// NewHistoryStore creates a HistoryStore backed by the file at path.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Append adds turns to the end of the history, creating the file and its
// parent directories if needed.
func (s *HistoryStore) Append(turns ...devq.Turn) error {
	if len(turns) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, t := range turns {
		if err := appendLine(f, t); err != nil {
			return err
		}
	}

	return f.Sync()
}

// Load reads the whole history. A missing file is an empty history. Turns
// are streamed with a json.Decoder so no turn is too long to read back.
func (s *HistoryStore) Load() (devq.History, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var history devq.History
	dec := json.NewDecoder(f)
	for {
		var t devq.Turn
		if err := dec.Decode(&t); err != nil {
			if errors.Is(err, io.EOF) {
				return history, nil
			}
			return nil, fmt.Errorf("%s: line %d: %w", s.path, len(history)+1, err)
		}
		history = append(history, t)
	}
}
