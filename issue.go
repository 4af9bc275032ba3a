package devq

import "context"

// AnalyzerClass groups static analyzers by what they look for.
type AnalyzerClass string

// Analyzer classes.
const (
	ClassStyle    AnalyzerClass = "style"
	ClassSecurity AnalyzerClass = "security"
)

// StaticIssue is a finding from any static analyzer, normalized to one shape.
type StaticIssue struct {
	File       string `json:"file"`
	Line       int    `json:"line"`
	Column     *int   `json:"column,omitempty"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	Confidence string `json:"confidence,omitempty"`
}

// StaticFindings holds the issues one analyzer reported for a diff. An
// analyzer that failed reports an empty list; the failure is only visible in
// the log.
type StaticFindings struct {
	Analyzer string        `json:"analyzer"`
	Class    AnalyzerClass `json:"class"`
	Issues   []StaticIssue `json:"issues"`
}

// StaticScanner runs static analyzers over the added lines of a diff.
type StaticScanner interface {
	Scan(ctx context.Context, files []FileDiff) []StaticFindings
}
