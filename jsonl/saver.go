package jsonl

import (
	"os"
	"path/filepath"

	"github.com/fwojciec/devq"
)

// Compile-time interface verification.
var _ devq.ReportSaver = (*ReportSaver)(nil)

// ReportSaver appends RunReport records to JSONL files.
type ReportSaver struct{}

// NewReportSaver creates a new ReportSaver.
func NewReportSaver() *ReportSaver {
	return &ReportSaver{}
}

// Save appends a RunReport to a JSONL file, creating parent directories if needed.
func (s *ReportSaver) Save(path string, report devq.RunReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return appendLine(f, report)
}
