package devq

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Criterion is one named axis of code-quality evaluation.
type Criterion string

// Criteria the reviewer scores. The set is closed: model output naming any
// other criterion is rejected rather than scored.
const (
	CodeSmells          Criterion = "CodeSmells"
	AntiPatterns        Criterion = "AntiPatterns"
	LegacyCompatibility Criterion = "LegacyCompatibility"
)

// Score bounds for a single criterion.
const (
	MinScore = 0
	MaxScore = 10
)

// AllCriteria returns every criterion in a fixed order.
func AllCriteria() []Criterion {
	return []Criterion{CodeSmells, AntiPatterns, LegacyCompatibility}
}

// ParseCriterion returns the criterion with the given name.
func ParseCriterion(name string) (Criterion, error) {
	for _, c := range AllCriteria() {
		if string(c) == name {
			return c, nil
		}
	}
	return "", &UnknownCriterionError{Name: name}
}

// CriterionResult is the model's verdict for one criterion of one file.
type CriterionResult struct {
	Score          int      `json:"score" jsonschema:"minimum=0,maximum=10"`
	Comment        string   `json:"comment"`
	Examples       Examples `json:"examples"`
	Suggestion     string   `json:"suggestion,omitempty"`
	LegacyContext  bool     `json:"legacy_context"`
	ForcedSolution bool     `json:"forced_solution"`
}

// UnmarshalJSON accepts "solution" as an alias for "suggestion"; the model
// uses both.
func (r *CriterionResult) UnmarshalJSON(data []byte) error {
	type plain CriterionResult
	var aux struct {
		plain
		Solution string `json:"solution"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = CriterionResult(aux.plain)
	if r.Suggestion == "" {
		r.Suggestion = aux.Solution
	}
	return nil
}

// Validate checks the score range.
func (r CriterionResult) Validate() error {
	if r.Score < MinScore || r.Score > MaxScore {
		return fmt.Errorf("score %d out of range [%d,%d]", r.Score, MinScore, MaxScore)
	}
	return nil
}

// Examples lists problem locations. It unmarshals from either a JSON array of
// strings or a single string, so model output that uses a string does not
// break parsing.
type Examples []string

// UnmarshalJSON implements json.Unmarshaler.
func (e *Examples) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*e = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("examples must be a string or a list of strings: %w", err)
	}
	if s == "" {
		*e = nil
		return nil
	}
	*e = Examples{s}
	return nil
}

// AnalysisResult maps each criterion the model reported to its result.
// Criteria missing from the map are absent, not zero.
type AnalysisResult map[Criterion]CriterionResult

// UnmarshalJSON rejects unknown criteria and out-of-range scores.
func (a *AnalysisResult) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make(AnalysisResult, len(raw))
	for name, msg := range raw {
		c, err := ParseCriterion(name)
		if err != nil {
			return err
		}
		var r CriterionResult
		if err := json.Unmarshal(msg, &r); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		result[c] = r
	}
	*a = result
	return nil
}

// Criteria returns the criteria present in the result, in AllCriteria order.
func (a AnalysisResult) Criteria() []Criterion {
	order := make(map[Criterion]int)
	for i, c := range AllCriteria() {
		order[c] = i
	}
	out := make([]Criterion, 0, len(a))
	for c := range a {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i]] < order[out[j]] })
	return out
}

// OverallReview is the narrative feedback produced by the final summary call.
type OverallReview struct {
	Strengths       string `json:"strengths"`
	Improvements    string `json:"improvements"`
	Recommendations string `json:"recommendations"`
}

// SummaryEnvelope is the JSON object the summary call returns.
type SummaryEnvelope struct {
	OverallReview OverallReview `json:"Overall Review"`
}
