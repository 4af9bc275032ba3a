package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/devq/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScratch_CreatesRunDirectory(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "scratch")

	s, err := fs.NewScratch(root, "run-1")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "run-1"), s.Dir())
	assert.DirExists(t, s.Dir())
	assert.Equal(t, filepath.Join(root, "run-1", "pr-42"), s.PRDir(42))
	assert.Equal(t, filepath.Join(root, "run-1", "history.jsonl"), s.HistoryPath())
}

func TestNewScratch_RejectsExistingRun(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, err := fs.NewScratch(root, "run-1")
	require.NoError(t, err)

	_, err = fs.NewScratch(root, "run-1")

	assert.Error(t, err)
}

func TestNewScratch_RejectsEscapingRunID(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"", "../elsewhere", "/abs"} {
		_, err := fs.NewScratch(t.TempDir(), id)
		assert.Error(t, err, "run id %q", id)
	}
}

func TestScratch_Release(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		keepFailed bool
		failed     bool
		wantKept   bool
	}{
		{name: "success removes", keepFailed: false, failed: false, wantKept: false},
		{name: "failure removes by default", keepFailed: false, failed: true, wantKept: false},
		{name: "failure kept when configured", keepFailed: true, failed: true, wantKept: true},
		{name: "success removes even when keeping failures", keepFailed: true, failed: false, wantKept: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s, err := fs.NewScratch(t.TempDir(), "run", fs.WithKeepFailed(tt.keepFailed))
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(s.HistoryPath(), []byte("{}\n"), 0644))

			kept, err := s.Release(tt.failed)

			require.NoError(t, err)
			assert.Equal(t, tt.wantKept, kept)
			if tt.wantKept {
				assert.DirExists(t, s.Dir())
			} else {
				assert.NoDirExists(t, s.Dir())
			}
		})
	}
}
