// Package static runs external static analyzers over the added lines of a
// diff and normalizes their reports into devq.StaticIssue values.
package static

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/devq"
)

// InputMode selects how code is handed to an analyzer.
type InputMode int

const (
	// Stdin pipes the code to the analyzer's standard input.
	Stdin InputMode = iota
	// TempFile writes the code to a temporary file and passes its path.
	TempFile
)

// Tool describes one external analyzer.
type Tool struct {
	Name     string
	Class    devq.AnalyzerClass
	Language string // chroma language name; empty matches every file
	Command  string
	Input    InputMode

	// Args builds the argument list. target is the patched path for Stdin
	// tools and the temporary file for TempFile tools.
	Args func(target string) []string

	// Normalize converts the analyzer's stdout into issues attributed to path.
	Normalize func(output []byte, path string) ([]devq.StaticIssue, error)
}

// Flake8 returns the style analyzer for Python.
func Flake8() Tool {
	return Tool{
		Name:     "flake8",
		Class:    devq.ClassStyle,
		Language: "Python",
		Command:  "flake8",
		Input:    Stdin,
		Args: func(target string) []string {
			return []string{"--format=json", "--stdin-display-name", target, "-"}
		},
		Normalize: NormalizeFlake8,
	}
}

// Bandit returns the security analyzer for Python.
func Bandit() Tool {
	return Tool{
		Name:     "bandit",
		Class:    devq.ClassSecurity,
		Language: "Python",
		Command:  "bandit",
		Input:    TempFile,
		Args: func(target string) []string {
			return []string{"-f", "json", "-q", "-n", "1", target}
		},
		Normalize: NormalizeBandit,
	}
}

// Builtin returns the built-in tool with the given name.
func Builtin(name string) (Tool, bool) {
	switch name {
	case "flake8":
		return Flake8(), true
	case "bandit":
		return Bandit(), true
	default:
		return Tool{}, false
	}
}

type flake8Issue struct {
	Code         string `json:"code"`
	LineNumber   int    `json:"line_number"`
	ColumnNumber *int   `json:"column_number"`
	Text         string `json:"text"`
}

// NormalizeFlake8 parses flake8 JSON output. The report is an object keyed
// by file name; a bare array of issues is also accepted.
func NormalizeFlake8(output []byte, path string) ([]devq.StaticIssue, error) {
	var raw []flake8Issue
	var byFile map[string][]flake8Issue
	if err := json.Unmarshal(output, &byFile); err == nil {
		for _, issues := range byFile {
			raw = append(raw, issues...)
		}
	} else if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("parsing flake8 report: %w", err)
	}

	issues := make([]devq.StaticIssue, 0, len(raw))
	for _, r := range raw {
		issues = append(issues, devq.StaticIssue{
			File:     path,
			Line:     r.LineNumber,
			Column:   r.ColumnNumber,
			Code:     r.Code,
			Message:  r.Text,
			Severity: string(devq.ClassStyle),
		})
	}
	return issues, nil
}

type banditReport struct {
	Results []struct {
		LineNumber      int    `json:"line_number"`
		LineRange       []int  `json:"line_range"`
		ColOffset       *int   `json:"col_offset"`
		TestID          string `json:"test_id"`
		IssueText       string `json:"issue_text"`
		IssueSeverity   string `json:"issue_severity"`
		IssueConfidence string `json:"issue_confidence"`
	} `json:"results"`
}

// NormalizeBandit parses bandit JSON output.
func NormalizeBandit(output []byte, path string) ([]devq.StaticIssue, error) {
	var report banditReport
	if err := json.Unmarshal(output, &report); err != nil {
		return nil, fmt.Errorf("parsing bandit report: %w", err)
	}

	issues := make([]devq.StaticIssue, 0, len(report.Results))
	for _, r := range report.Results {
		line := r.LineNumber
		if len(r.LineRange) > 0 {
			line = r.LineRange[0]
		}
		var col *int
		if r.ColOffset != nil {
			c := *r.ColOffset + 1
			col = &c
		}
		issues = append(issues, devq.StaticIssue{
			File:       path,
			Line:       line,
			Column:     col,
			Code:       r.TestID,
			Message:    r.IssueText,
			Severity:   r.IssueSeverity,
			Confidence: r.IssueConfidence,
		})
	}
	return issues, nil
}
