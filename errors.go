package devq

import "fmt"

// MalformedDiffError is returned when a diff document cannot be parsed. No
// files are produced for the document.
type MalformedDiffError struct {
	Source string // Diff path or other identifier, if known
	Err    error
}

func (e *MalformedDiffError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("malformed diff %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("malformed diff: %v", e.Err)
}

func (e *MalformedDiffError) Unwrap() error { return e.Err }

// AnalyzerUnavailableError describes a static analyzer that crashed or
// produced output that could not be parsed. It is logged, never returned to
// the caller of a scan.
type AnalyzerUnavailableError struct {
	Analyzer string
	File     string
	Err      error
}

func (e *AnalyzerUnavailableError) Error() string {
	return fmt.Sprintf("analyzer %s unavailable for %s: %v", e.Analyzer, e.File, e.Err)
}

func (e *AnalyzerUnavailableError) Unwrap() error { return e.Err }

// ModelUnavailableError is returned when the model endpoint is unreachable
// or answers with an error.
type ModelUnavailableError struct {
	Endpoint  string
	Retryable bool // Whether trying again may succeed (network errors, 429, 5xx)
	Err       error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model endpoint %s unavailable: %v", e.Endpoint, e.Err)
}

func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// StructuredOutputError is returned when model output cannot be decoded even
// after repair. Both texts are kept for diagnosis.
type StructuredOutputError struct {
	Original string
	Repaired string
	Err      error
}

func (e *StructuredOutputError) Error() string {
	return fmt.Sprintf("undecodable model output: %v", e.Err)
}

func (e *StructuredOutputError) Unwrap() error { return e.Err }

// UnweightedCriterionError is a configuration error: a criterion has no
// weight in the weight table.
type UnweightedCriterionError struct {
	Criterion Criterion
}

func (e *UnweightedCriterionError) Error() string {
	return fmt.Sprintf("no weight configured for criterion %q", e.Criterion)
}

// UnknownCriterionError is returned for a criterion name outside the closed set.
type UnknownCriterionError struct {
	Name string
}

func (e *UnknownCriterionError) Error() string {
	return fmt.Sprintf("unknown criterion %q", e.Name)
}

// RunError reports which pull request and file aborted an analysis run.
type RunError struct {
	RunID string
	PR    int
	File  string // Empty when the failure is not tied to a file
	Err   error
}

func (e *RunError) Error() string {
	switch {
	case e.File != "":
		return fmt.Sprintf("run %s: PR #%d: %s: %v", e.RunID, e.PR, e.File, e.Err)
	case e.PR != 0:
		return fmt.Sprintf("run %s: PR #%d: %v", e.RunID, e.PR, e.Err)
	default:
		return fmt.Sprintf("run %s: %v", e.RunID, e.Err)
	}
}

func (e *RunError) Unwrap() error { return e.Err }
