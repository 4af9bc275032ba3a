package gitdiff

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var _ devq.Reconstructor = (*Reconstructor)(nil)

// Reconstructor rebuilds post-change file contents from a unified diff.
type Reconstructor struct {
	parser devq.Parser
}

// ReconstructorOption configures a Reconstructor.
type ReconstructorOption func(*Reconstructor)

// WithParser replaces the diff parser.
func WithParser(p devq.Parser) ReconstructorOption {
	return func(r *Reconstructor) {
		r.parser = p
	}
}

// NewReconstructor creates a Reconstructor backed by go-gitdiff.
func NewReconstructor(opts ...ReconstructorOption) *Reconstructor {
	r := &Reconstructor{parser: NewParser()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconstruct writes one file per patched path under outDir, containing the
// added and context lines of its hunks in order. Deleted and binary files
// produce empty files. The whole document is validated before anything is
// written, so a malformed document leaves no output behind.
func (r *Reconstructor) Reconstruct(in io.Reader, outDir string) ([]devq.ReconstructedFile, error) {
	diff, err := r.parser.Parse(in)
	if err != nil {
		return nil, err
	}

	files := make([]devq.ReconstructedFile, 0, len(diff.Files))
	for _, fd := range diff.Files {
		path := fd.Path()
		if !filepath.IsLocal(path) {
			return nil, &devq.MalformedDiffError{Err: fmt.Errorf("patch path %q escapes the output directory", path)}
		}
		files = append(files, devq.ReconstructedFile{
			Path:    path,
			Content: fd.Reconstruct(),
			Diff:    fd,
		})
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	for _, f := range files {
		dst := filepath.Join(outDir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(dst, []byte(f.Content), 0o644); err != nil {
			return nil, err
		}
	}

	return files, nil
}
