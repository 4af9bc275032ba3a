package static

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/devq"
	"github.com/rs/zerolog"
)

// Compile-time interface verification.
var _ devq.StaticScanner = (*Scanner)(nil)

// DefaultTimeout bounds a single analyzer invocation.
const DefaultTimeout = 30 * time.Second

// Scanner runs a fixed set of tools. Each tool is independent: a tool that
// fails contributes an empty issue list and a warning, and never affects
// the others.
type Scanner struct {
	tools    []Tool
	detector devq.LanguageDetector
	exec     Exec
	timeout  time.Duration
	tempDir  string
	logger   zerolog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExec replaces the process runner.
func WithExec(e Exec) Option {
	return func(s *Scanner) {
		s.exec = e
	}
}

// WithTimeout sets the per-invocation timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		s.timeout = d
	}
}

// WithTempDir sets where TempFile tools get their input files.
func WithTempDir(dir string) Option {
	return func(s *Scanner) {
		s.tempDir = dir
	}
}

// WithLogger sets the logger for analyzer failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scanner) {
		s.logger = l
	}
}

// NewScanner creates a Scanner for tools.
func NewScanner(detector devq.LanguageDetector, tools []Tool, opts ...Option) *Scanner {
	s := &Scanner{
		tools:    tools,
		detector: detector,
		exec:     CommandExec,
		timeout:  DefaultTimeout,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs every tool over the added lines of the files in its language and
// returns one StaticFindings per tool, in tool order.
func (s *Scanner) Scan(ctx context.Context, files []devq.FileDiff) []devq.StaticFindings {
	out := make([]devq.StaticFindings, 0, len(s.tools))
	for _, tool := range s.tools {
		out = append(out, devq.StaticFindings{
			Analyzer: tool.Name,
			Class:    tool.Class,
			Issues:   s.scanTool(ctx, tool, files),
		})
	}
	return out
}

func (s *Scanner) scanTool(ctx context.Context, tool Tool, files []devq.FileDiff) []devq.StaticIssue {
	issues := []devq.StaticIssue{}
	for _, f := range files {
		if f.IsBinary || f.Operation == devq.FileDeleted {
			continue
		}
		code := f.AddedText()
		if strings.TrimSpace(code) == "" {
			continue
		}
		path := f.Path()
		if tool.Language != "" && s.detector.Detect(path, code) != tool.Language {
			continue
		}

		found, err := s.run(ctx, tool, path, code)
		if err != nil {
			unavailable := &devq.AnalyzerUnavailableError{Analyzer: tool.Name, File: path, Err: err}
			s.logger.Warn().
				Err(unavailable).
				Str("analyzer", tool.Name).
				Str("file", path).
				Msg("static analyzer unavailable, reporting no issues")
			return []devq.StaticIssue{}
		}
		issues = append(issues, found...)
	}
	return issues
}

func (s *Scanner) run(ctx context.Context, tool Tool, path, code string) ([]devq.StaticIssue, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	target := path
	var stdin []byte
	switch tool.Input {
	case TempFile:
		tmp, err := s.writeTemp(path, code)
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp)
		target = tmp
	default:
		stdin = []byte(code)
	}

	stdout, exitCode, err := s.exec(ctx, tool.Command, tool.Args(target), stdin)
	if err != nil {
		return nil, err
	}
	switch exitCode {
	case 0:
		return nil, nil
	case 1:
		return tool.Normalize(stdout, path)
	default:
		return nil, fmt.Errorf("exited with status %d", exitCode)
	}
}

func (s *Scanner) writeTemp(path, code string) (string, error) {
	f, err := os.CreateTemp(s.tempDir, "devq-*"+filepath.Ext(path))
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.WriteString(code); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return f.Name(), nil
}
