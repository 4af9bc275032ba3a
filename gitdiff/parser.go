// Package gitdiff implements diff parsing and file reconstruction using
// bluekeyes/go-gitdiff.
package gitdiff

import (
	"bytes"
	"errors"
	"io"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var _ devq.Parser = (*Parser)(nil)

// errNoPatches is reported for input that has content but no file patches.
var errNoPatches = errors.New("no file patches found")

// Parser parses unified diff content using go-gitdiff.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads diff content and returns the parsed result. Blank input yields
// an empty diff; anything else that go-gitdiff rejects, or that contains no
// file patches, yields a *devq.MalformedDiffError.
func (p *Parser) Parse(r io.Reader) (*devq.Diff, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	files, _, err := gitdiff.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &devq.MalformedDiffError{Err: err}
	}
	if len(files) == 0 && len(bytes.TrimSpace(data)) > 0 {
		return nil, &devq.MalformedDiffError{Err: errNoPatches}
	}

	result := &devq.Diff{
		Files: make([]devq.FileDiff, 0, len(files)),
	}
	for _, f := range files {
		result.Files = append(result.Files, convertFile(f))
	}

	return result, nil
}

func convertFile(f *gitdiff.File) devq.FileDiff {
	fd := devq.FileDiff{
		OldPath:  f.OldName,
		NewPath:  f.NewName,
		IsBinary: f.IsBinary,
		OldMode:  f.OldMode,
		NewMode:  f.NewMode,
	}

	switch {
	case f.IsNew:
		fd.Operation = devq.FileAdded
	case f.IsDelete:
		fd.Operation = devq.FileDeleted
	case f.IsRename:
		fd.Operation = devq.FileRenamed
	case f.IsCopy:
		fd.Operation = devq.FileCopied
	default:
		fd.Operation = devq.FileModified
	}

	fd.Hunks = make([]devq.Hunk, 0, len(f.TextFragments))
	for _, frag := range f.TextFragments {
		fd.Hunks = append(fd.Hunks, convertFragment(frag))
	}

	return fd
}

func convertFragment(frag *gitdiff.TextFragment) devq.Hunk {
	hunk := devq.Hunk{
		OldStart: int(frag.OldPosition),
		OldCount: int(frag.OldLines),
		NewStart: int(frag.NewPosition),
		NewCount: int(frag.NewLines),
		Section:  frag.Comment,
	}

	oldLineNum := int(frag.OldPosition)
	newLineNum := int(frag.NewPosition)

	for _, l := range frag.Lines {
		line := devq.Line{
			Content:   l.Line,
			NoNewline: l.NoEOL(),
		}

		switch l.Op {
		case gitdiff.OpContext:
			line.Type = devq.LineContext
			line.OldLineNum = oldLineNum
			line.NewLineNum = newLineNum
			oldLineNum++
			newLineNum++
		case gitdiff.OpAdd:
			line.Type = devq.LineAdded
			line.NewLineNum = newLineNum
			newLineNum++
		case gitdiff.OpDelete:
			line.Type = devq.LineDeleted
			line.OldLineNum = oldLineNum
			oldLineNum++
		}

		hunk.Lines = append(hunk.Lines, line)
	}

	return hunk
}
