package devq

import "fmt"

// WeightTable maps every criterion to a non-negative weight.
type WeightTable map[Criterion]float64

// DefaultWeights returns the standard weighting, which favors design over
// legacy concerns.
func DefaultWeights() WeightTable {
	return WeightTable{
		CodeSmells:          4.0,
		AntiPatterns:        5.0,
		LegacyCompatibility: 1.0,
	}
}

// NewWeightTable builds a table from configuration. Unknown names, negative
// weights and criteria left without a weight are errors.
func NewWeightTable(weights map[string]float64) (WeightTable, error) {
	table := make(WeightTable, len(weights))
	for name, w := range weights {
		c, err := ParseCriterion(name)
		if err != nil {
			return nil, err
		}
		if w < 0 {
			return nil, fmt.Errorf("weight for %q is negative: %v", name, w)
		}
		table[c] = w
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// Validate checks that every criterion has a weight.
func (t WeightTable) Validate() error {
	for _, c := range AllCriteria() {
		if _, ok := t[c]; !ok {
			return &UnweightedCriterionError{Criterion: c}
		}
	}
	return nil
}

// Sum returns the total of all weights.
func (t WeightTable) Sum() float64 {
	var sum float64
	for _, w := range t {
		sum += w
	}
	return sum
}

// ScoreAccumulator combines per-file criterion scores into one normalized
// score for a run.
//
// Normalization uses a per-file denominator: each file contributes the sum of
// score×weight over the criteria it reports, and the sum of the weights of
// those same criteria. The final score is the ratio of the two totals, which
// stays in [0,10] because every score does. A criterion missing from a file
// therefore neither lowers nor raises that file's score.
type ScoreAccumulator struct {
	weights     WeightTable
	files       int
	incomplete  int
	weightedSum float64
	weightSum   float64
}

// NewScoreAccumulator creates an accumulator for the given weights.
func NewScoreAccumulator(weights WeightTable) *ScoreAccumulator {
	return &ScoreAccumulator{weights: weights}
}

// Add records the result of one analyzed file. It fails without changing
// the totals if the result names a criterion that has no weight.
func (a *ScoreAccumulator) Add(result AnalysisResult) error {
	var weighted, weights float64
	for c, r := range result {
		w, ok := a.weights[c]
		if !ok {
			return &UnweightedCriterionError{Criterion: c}
		}
		weighted += float64(r.Score) * w
		weights += w
	}
	a.files++
	a.weightedSum += weighted
	a.weightSum += weights
	return nil
}

// MarkIncomplete records a file whose result could not be obtained. It is
// excluded from the score rather than counted as zero.
func (a *ScoreAccumulator) MarkIncomplete() {
	a.incomplete++
}

// Files returns the number of files added to the accumulator.
func (a *ScoreAccumulator) Files() int { return a.files }

// Incomplete returns the number of files marked incomplete.
func (a *ScoreAccumulator) Incomplete() int { return a.incomplete }

// Score returns the normalized score in [0,10]. The second result is false
// when there is no score: no files were analyzed, or none reported a
// criterion with positive weight.
func (a *ScoreAccumulator) Score() (float64, bool) {
	if a.files == 0 || a.weightSum == 0 {
		return 0, false
	}
	return a.weightedSum / a.weightSum, true
}
