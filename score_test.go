package devq_test

import (
	"testing"

	"github.com/fwojciec/devq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allScores(score int) devq.AnalysisResult {
	result := devq.AnalysisResult{}
	for _, c := range devq.AllCriteria() {
		result[c] = devq.CriterionResult{Score: score}
	}
	return result
}

func TestScoreAccumulator_AllTensScoreTen(t *testing.T) {
	t.Parallel()

	acc := devq.NewScoreAccumulator(devq.DefaultWeights())
	for range 5 {
		require.NoError(t, acc.Add(allScores(10)))
	}

	score, ok := acc.Score()

	require.True(t, ok)
	assert.InDelta(t, 10.0, score, 1e-9)
	assert.Equal(t, 5, acc.Files())
}

func TestScoreAccumulator_NoFilesHasNoScore(t *testing.T) {
	t.Parallel()

	acc := devq.NewScoreAccumulator(devq.DefaultWeights())
	acc.MarkIncomplete()

	_, ok := acc.Score()

	assert.False(t, ok)
	assert.Equal(t, 0, acc.Files())
	assert.Equal(t, 1, acc.Incomplete())
}

func TestScoreAccumulator_WeightsCriteria(t *testing.T) {
	t.Parallel()

	acc := devq.NewScoreAccumulator(devq.DefaultWeights())
	require.NoError(t, acc.Add(devq.AnalysisResult{
		devq.CodeSmells:          {Score: 6},
		devq.AntiPatterns:        {Score: 4},
		devq.LegacyCompatibility: {Score: 10},
	}))

	score, ok := acc.Score()

	require.True(t, ok)
	// (6*4 + 4*5 + 10*1) / (4+5+1)
	assert.InDelta(t, 5.4, score, 1e-9)
}

func TestScoreAccumulator_MissingCriterionIsNotZero(t *testing.T) {
	t.Parallel()

	acc := devq.NewScoreAccumulator(devq.DefaultWeights())
	require.NoError(t, acc.Add(devq.AnalysisResult{devq.CodeSmells: {Score: 8}}))
	require.NoError(t, acc.Add(allScores(8)))

	score, ok := acc.Score()

	require.True(t, ok)
	assert.InDelta(t, 8.0, score, 1e-9)
}

func TestScoreAccumulator_EmptyResultCountsFileWithoutWeight(t *testing.T) {
	t.Parallel()

	acc := devq.NewScoreAccumulator(devq.DefaultWeights())
	require.NoError(t, acc.Add(devq.AnalysisResult{}))

	_, ok := acc.Score()

	assert.False(t, ok, "zero applicable weight yields no score")
	assert.Equal(t, 1, acc.Files())
}

func TestScoreAccumulator_UnweightedCriterion(t *testing.T) {
	t.Parallel()

	acc := devq.NewScoreAccumulator(devq.WeightTable{devq.CodeSmells: 1})

	err := acc.Add(devq.AnalysisResult{
		devq.CodeSmells:   {Score: 5},
		devq.AntiPatterns: {Score: 5},
	})

	var unweighted *devq.UnweightedCriterionError
	require.ErrorAs(t, err, &unweighted)
	assert.Equal(t, devq.AntiPatterns, unweighted.Criterion)
	assert.Equal(t, 0, acc.Files(), "a failed add leaves the totals unchanged")
	_, ok := acc.Score()
	assert.False(t, ok)
}

func TestNewWeightTable(t *testing.T) {
	t.Parallel()

	t.Run("builds complete table", func(t *testing.T) {
		t.Parallel()

		table, err := devq.NewWeightTable(map[string]float64{"CodeSmells": 4, "AntiPatterns": 5, "LegacyCompatibility": 1})

		require.NoError(t, err)
		assert.Equal(t, devq.DefaultWeights(), table)
		assert.InDelta(t, 10.0, table.Sum(), 1e-9)
	})

	t.Run("missing criterion", func(t *testing.T) {
		t.Parallel()

		_, err := devq.NewWeightTable(map[string]float64{"CodeSmells": 4, "AntiPatterns": 5})

		var unweighted *devq.UnweightedCriterionError
		require.ErrorAs(t, err, &unweighted)
		assert.Equal(t, devq.LegacyCompatibility, unweighted.Criterion)
	})

	t.Run("unknown criterion", func(t *testing.T) {
		t.Parallel()

		_, err := devq.NewWeightTable(map[string]float64{"CodeSmells": 4, "AntiPatterns": 5, "LegacyCompatibility": 1, "Speed": 2})

		var unknown *devq.UnknownCriterionError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("negative weight", func(t *testing.T) {
		t.Parallel()

		_, err := devq.NewWeightTable(map[string]float64{"CodeSmells": -1, "AntiPatterns": 5, "LegacyCompatibility": 1})

		assert.Error(t, err)
	})
}
