// Package mock provides test doubles for devq interfaces.
package mock

import (
	"io"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var (
	_ devq.Parser        = (*Parser)(nil)
	_ devq.Reconstructor = (*Reconstructor)(nil)
)

// Parser is a mock implementation of devq.Parser.
type Parser struct {
	ParseFn func(r io.Reader) (*devq.Diff, error)
}

func (p *Parser) Parse(r io.Reader) (*devq.Diff, error) {
	return p.ParseFn(r)
}

// Reconstructor is a mock implementation of devq.Reconstructor.
type Reconstructor struct {
	ReconstructFn func(r io.Reader, outDir string) ([]devq.ReconstructedFile, error)
}

func (m *Reconstructor) Reconstruct(r io.Reader, outDir string) ([]devq.ReconstructedFile, error) {
	return m.ReconstructFn(r, outDir)
}
