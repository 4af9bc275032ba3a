// Package chroma detects source languages with the chroma lexer registry.
package chroma

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var _ devq.LanguageDetector = (*Detector)(nil)

// Detector detects programming languages using chroma's lexer registry.
type Detector struct{}

// NewDetector creates a new chroma-based language detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the language name for the file at path. When the file name
// matches no lexer, content is analysed instead, which recognizes
// extensionless scripts by their shebang line.
func (d *Detector) Detect(path, content string) string {
	if lang := d.DetectFromPath(path); lang != "" {
		return lang
	}
	if strings.TrimSpace(content) == "" {
		return ""
	}
	lexer := lexers.Analyse(content)
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}

// DetectFromPath returns the language name for the given path,
// or an empty string if the language cannot be determined.
// Strips "a/" or "b/" prefixes common in diff output.
func (d *Detector) DetectFromPath(path string) string {
	path = strings.TrimPrefix(path, "a/")
	path = strings.TrimPrefix(path, "b/")

	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return ""
	}

	return lexer.Config().Name
}
