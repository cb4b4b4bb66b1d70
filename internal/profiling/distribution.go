package profiling

import (
	"math"
	"sort"

	"dormscore/domain/score"

	"github.com/montanaflynn/stats"
	gonumstat "gonum.org/v1/gonum/stat"
)

// ScoreSummary describes the distribution of valid total scores in a report.
type ScoreSummary struct {
	Count   int     `json:"count" yaml:"count"`
	Invalid int     `json:"invalid" yaml:"invalid"`
	Mean    float64 `json:"mean" yaml:"mean"`
	StdDev  float64 `json:"std_dev" yaml:"std_dev"`
	Min     float64 `json:"min" yaml:"min"`
	Q25     float64 `json:"q25" yaml:"q25"`
	Median  float64 `json:"median" yaml:"median"`
	Q75     float64 `json:"q75" yaml:"q75"`
	Max     float64 `json:"max" yaml:"max"`
	Skew    float64 `json:"skew" yaml:"skew"`
}

// SummarizeScores computes summary statistics over the parseable scores.
// Records whose score is missing or not a number are only counted.
func SummarizeScores(records []score.Record) (*ScoreSummary, error) {
	summary := &ScoreSummary{}
	data := make([]float64, 0, len(records))
	for _, r := range records {
		v, ok := score.ParseScore(r.Score)
		if !ok {
			summary.Invalid++
			continue
		}
		data = append(data, v)
	}
	summary.Count = len(data)
	if len(data) == 0 {
		return summary, nil
	}

	var err error
	if summary.Mean, err = stats.Mean(data); err != nil {
		return nil, err
	}
	if summary.StdDev, err = stats.StandardDeviation(data); err != nil {
		return nil, err
	}
	if summary.Min, err = stats.Min(data); err != nil {
		return nil, err
	}
	if summary.Max, err = stats.Max(data); err != nil {
		return nil, err
	}
	if summary.Median, err = stats.Median(data); err != nil {
		return nil, err
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	summary.Q25 = gonumstat.Quantile(0.25, gonumstat.Empirical, sorted, nil)
	summary.Q75 = gonumstat.Quantile(0.75, gonumstat.Empirical, sorted, nil)

	// sample skewness is undefined below three values or with zero spread
	if len(data) >= 3 && summary.StdDev > 0 {
		summary.Skew = round(gonumstat.Skew(data, nil), 3)
	}

	summary.Mean = round(summary.Mean, 2)
	summary.StdDev = round(summary.StdDev, 2)
	return summary, nil
}

func round(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(x*p) / p
}
