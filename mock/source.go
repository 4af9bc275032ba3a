package mock

import (
	"context"
	"io"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var (
	_ devq.DiffSource       = (*DiffSource)(nil)
	_ devq.LanguageDetector = (*LanguageDetector)(nil)
)

// DiffSource is a mock implementation of devq.DiffSource.
type DiffSource struct {
	OpenFn func(ctx context.Context, pr devq.PullRequest) (io.ReadCloser, error)
}

func (s *DiffSource) Open(ctx context.Context, pr devq.PullRequest) (io.ReadCloser, error) {
	return s.OpenFn(ctx, pr)
}

// LanguageDetector is a mock implementation of devq.LanguageDetector.
type LanguageDetector struct {
	DetectFn func(path, content string) string
}

func (d *LanguageDetector) Detect(path, content string) string {
	return d.DetectFn(path, content)
}
