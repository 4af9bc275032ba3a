// Package devq provides domain types for scoring a developer's code changes.
package devq

import (
	"context"
	"io"
	"io/fs"
	"strings"
)

// Diff represents a complete diff containing one or more file changes.
type Diff struct {
	Files []FileDiff
}

// FileDiff represents changes to a single file.
type FileDiff struct {
	OldPath   string      // "file.go" or empty for new files
	NewPath   string      // "file.go" or empty for deleted files
	Operation FileOp      // Added, Deleted, Modified, Renamed, Copied
	IsBinary  bool        // Binary files have no hunks
	OldMode   fs.FileMode // 0 if unchanged
	NewMode   fs.FileMode // For permission changes
	Hunks     []Hunk
}

// Path returns the path the file has after the change, or the old path for
// deletions.
func (f FileDiff) Path() string {
	if f.NewPath != "" {
		return f.NewPath
	}
	return f.OldPath
}

// Stats returns the number of added and deleted lines in the file.
func (f FileDiff) Stats() (added, deleted int) {
	for _, hunk := range f.Hunks {
		for _, line := range hunk.Lines {
			switch line.Type {
			case LineAdded:
				added++
			case LineDeleted:
				deleted++
			}
		}
	}
	return added, deleted
}

// Reconstruct returns the post-change content visible in the diff: every
// added and context line, in hunk order, with deleted lines left out.
func (f FileDiff) Reconstruct() string {
	return f.collect(func(t LineType) bool { return t != LineDeleted })
}

// AddedText returns only the added lines of the file, in hunk order.
func (f FileDiff) AddedText() string {
	return f.collect(func(t LineType) bool { return t == LineAdded })
}

func (f FileDiff) collect(keep func(LineType) bool) string {
	var sb strings.Builder
	for _, hunk := range f.Hunks {
		for _, line := range hunk.Lines {
			if keep(line.Type) {
				sb.WriteString(line.Content)
			}
		}
	}
	return sb.String()
}

// FileOp represents the type of operation performed on a file.
type FileOp int

// File operation types.
const (
	FileModified FileOp = iota
	FileAdded
	FileDeleted
	FileRenamed
	FileCopied
)

// Hunk represents a contiguous block of changes within a file.
type Hunk struct {
	OldStart int    // From @@ -X,...
	OldCount int    // From @@ -X,Y ...
	NewStart int    // From @@ ...,+X
	NewCount int    // From @@ ...,+X,Y
	Section  string // Optional function name after @@ ... @@
	Lines    []Line
}

// Line represents a single line within a hunk.
type Line struct {
	Type       LineType
	Content    string // Line value including its trailing newline, if any
	OldLineNum int    // 0 if line is Added
	NewLineNum int    // 0 if line is Deleted
	NoNewline  bool   // "\ No newline at end of file" marker
}

// LineType represents the type of a diff line.
type LineType int

// Line types.
const (
	LineContext LineType = iota
	LineAdded
	LineDeleted
)

// ReconstructedFile is a file rebuilt from a diff without access to the
// repository it came from.
type ReconstructedFile struct {
	Path    string   // Relative to the output root, directory structure preserved
	Content string   // Added and context lines only
	Diff    FileDiff // The patch the file was rebuilt from
}

// Parser parses unified diff content.
type Parser interface {
	Parse(r io.Reader) (*Diff, error)
}

// Reconstructor turns a diff document into files on disk.
type Reconstructor interface {
	// Reconstruct parses the diff read from r and writes one file per patched
	// path under outDir. A malformed document yields a *MalformedDiffError.
	Reconstruct(r io.Reader, outDir string) ([]ReconstructedFile, error)
}

// DiffSource opens the unified diff of a pull request.
type DiffSource interface {
	Open(ctx context.Context, pr PullRequest) (io.ReadCloser, error)
}

// LanguageDetector determines the programming language of a file.
type LanguageDetector interface {
	// Detect returns the language name for the file at path, using content
	// when the path alone is not conclusive. It returns an empty string if
	// the language cannot be determined.
	Detect(path, content string) string
}
