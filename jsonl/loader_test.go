package jsonl_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/devq/jsonl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPullRequestLoader_Load(t *testing.T) {
	t.Parallel()

	t.Run("groups pull requests by author", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "prs.jsonl")
		content := `{"pr_number":12,"title":"Add parser","author":"alice","merged_at":"2025-01-15T10:30:00Z","commit_sha":"abc123","diff_path":"diffs/12.diff"}

{"pr_number":7,"title":"Fix typo","author":"bob","merged_at":"2025-01-10T09:00:00Z","commit_sha":"def456","repo_path":"/src/repo"}
{"pr_number":15,"title":"Refactor","author":"alice","merged_at":"2025-01-20T08:00:00Z","commit_sha":"789abc","diff_path":"diffs/15.diff"}`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		loader := jsonl.NewPullRequestLoader()
		byAuthor, err := loader.Load(path)

		require.NoError(t, err)
		require.Len(t, byAuthor, 2)
		require.Len(t, byAuthor["alice"], 2)
		assert.Equal(t, 12, byAuthor["alice"][0].Number)
		assert.Equal(t, "diffs/12.diff", byAuthor["alice"][0].DiffPath)
		assert.Equal(t, 15, byAuthor["alice"][1].Number)
		require.Len(t, byAuthor["bob"], 1)
		assert.Equal(t, "/src/repo", byAuthor["bob"][0].RepoPath)
		assert.Equal(t, 2025, byAuthor["bob"][0].MergedAt.Year())
	})

	t.Run("returns error for non-existent file", func(t *testing.T) {
		t.Parallel()

		loader := jsonl.NewPullRequestLoader()
		_, err := loader.Load("/nonexistent/path.jsonl")

		assert.Error(t, err)
	})

	t.Run("returns error for malformed JSON line", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "bad.jsonl")
		content := `{"pr_number":1,"author":"alice"}
not valid json`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		loader := jsonl.NewPullRequestLoader()
		_, err := loader.Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("returns error for record without author", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "anon.jsonl")
		require.NoError(t, os.WriteFile(path, []byte(`{"pr_number":1}`), 0o644))

		loader := jsonl.NewPullRequestLoader()
		_, err := loader.Load(path)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing author")
	})
}
