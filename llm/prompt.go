package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/devq"
	"github.com/invopop/jsonschema"
)

// fileResponse is the shape requested from a file review.
type fileResponse struct {
	CodeSmells          devq.CriterionResult `json:"CodeSmells" jsonschema_description:"Repetitive code, long methods, redundant conditions, poor organization"`
	AntiPatterns        devq.CriterionResult `json:"AntiPatterns" jsonschema_description:"Architectural and design anti-patterns such as God Object or Spaghetti Code"`
	LegacyCompatibility devq.CriterionResult `json:"LegacyCompatibility" jsonschema_description:"How adequate old solutions are for the time and constraints they were written under"`
}

// schemaFor renders the JSON Schema of v's type.
func schemaFor(v any) string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	data, err := json.MarshalIndent(reflector.Reflect(v), "", "  ")
	if err != nil {
		panic(fmt.Sprintf("llm: rendering schema: %v", err))
	}
	return string(data)
}

var (
	fileSchema    = schemaFor(&fileResponse{})
	summarySchema = schemaFor(&devq.SummaryEnvelope{})
)

// FilePrompt asks for a per-criterion review of code.
func FilePrompt(code string) string {
	return fmt.Sprintf(`You are a professional code reviewer specializing in software quality analysis.
Rate the code below against each of the following criteria. For every criterion give:
- "score": an integer from 0 to 10 (10 is excellent, 0 is very bad)
- "comment": what was good or bad
- "examples": the problem areas, as line references (empty if there are none)
- "legacy_context": true if the problem comes from legacy technologies
- "forced_solution": true if the weak solution was the only one possible under the constraints

Criteria:
1. CodeSmells: repetitive code, long methods, redundant conditions, poor organization.
   No smells scores 10; the more smells, the lower the score.
2. AntiPatterns: architectural and design anti-patterns (God Object, Spaghetti Code, ...).
   No anti-patterns scores 10; the more anti-patterns, the lower the score.
3. LegacyCompatibility: if the code is old, how adequate its solutions are for their time
   and environment. No legacy code scores 10; the more legacy code, the lower the score.

Answer with a single JSON object and nothing else. Use double quotes. It must match this JSON Schema:

%s

The code to analyze is:
%s`, fileSchema, code)
}

// SummaryPrompt asks for overall feedback on everything reviewed so far. It
// is sent threaded with the run's history.
func SummaryPrompt() string {
	return fmt.Sprintf(`You are an experienced team leader and code reviewer giving a developer feedback on the quality of their code.
Looking at the code you have seen and what you said about it, answer:
1. strengths: which good aspects did you notice (structure, readability, attention to security, ...)?
2. improvements: which improvements would you suggest (optimization, style, architecture, security, ...)?
3. recommendations: 2-3 specific things the developer should learn or practise to write better code.
Mention positive or negative aspects that come from an outdated stack.

Answer with a single JSON object and nothing else. Use double quotes. Do not include "legacy_context" or "forced_solution". It must match this JSON Schema:

%s`, summarySchema)
}

// StaticFindingsPrompt is the user turn recorded before the static analysis
// results in the history.
const StaticFindingsPrompt = "Great! Now find vulnerabilities and poor code style"

// FormatStaticFindings renders scan results as the assistant turn that
// answers StaticFindingsPrompt.
func FormatStaticFindings(findings []devq.StaticFindings) string {
	var security, style []devq.StaticIssue
	for _, f := range findings {
		switch f.Class {
		case devq.ClassSecurity:
			security = append(security, f.Issues...)
		default:
			style = append(style, f.Issues...)
		}
	}
	return "Vulnerabilities: " + formatIssues(security) + "\nPoor code style: " + formatIssues(style)
}

func formatIssues(issues []devq.StaticIssue) string {
	if len(issues) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(issues))
	for _, is := range issues {
		loc := fmt.Sprintf("%s:%d", is.File, is.Line)
		if is.Column != nil {
			loc += fmt.Sprintf(":%d", *is.Column)
		}
		s := fmt.Sprintf("%s %s %s (%s", loc, is.Code, is.Message, is.Severity)
		if is.Confidence != "" {
			s += ", confidence " + is.Confidence
		}
		parts = append(parts, s+")")
	}
	return strings.Join(parts, "; ")
}
