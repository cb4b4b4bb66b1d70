package profiling

import (
	"testing"

	"dormscore/domain/score"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeScores(t *testing.T) {
	records := []score.Record{
		{Score: "90"}, {Score: "80"}, {Score: "100"}, {Score: "70"}, {Score: ""}, {Score: "缺"},
	}

	s, err := SummarizeScores(records)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 2, s.Invalid)
	assert.InDelta(t, 85, s.Mean, 1e-9)
	assert.InDelta(t, 85, s.Median, 1e-9)
	assert.InDelta(t, 70, s.Min, 1e-9)
	assert.InDelta(t, 100, s.Max, 1e-9)
	assert.InDelta(t, 11.18, s.StdDev, 1e-9)
	assert.InDelta(t, 70, s.Q25, 1e-9)
	assert.InDelta(t, 90, s.Q75, 1e-9)
	assert.InDelta(t, 0, s.Skew, 1e-9)
}

func TestSummarizeScoresSkewed(t *testing.T) {
	records := []score.Record{{Score: "95"}, {Score: "96"}, {Score: "97"}, {Score: "98"}, {Score: "40"}}

	s, err := SummarizeScores(records)
	require.NoError(t, err)
	assert.Less(t, s.Skew, 0.0)
	assert.LessOrEqual(t, s.Q25, s.Median)
	assert.GreaterOrEqual(t, s.Q75, s.Median)
}

func TestSummarizeScoresNoValidValues(t *testing.T) {
	s, err := SummarizeScores([]score.Record{{Score: "nan"}})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 1, s.Invalid)
	assert.Zero(t, s.Mean)
}

func TestSummarizeSingleScore(t *testing.T) {
	s, err := SummarizeScores([]score.Record{{Score: "88"}})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Count)
	assert.InDelta(t, 88, s.Median, 1e-9)
	assert.Zero(t, s.StdDev)
}
