// Package balance partitions ten players into two balanced teams of five.
//
// The pipeline is: seed strategies propose splits, the split with the lowest
// imbalance is refined by a steepest-descent swap search, and the result is
// summarised by the metrics reporter. The lane-aware mode replaces seeding
// with the role assignment engine.
package balance

import (
	"math"

	"github.com/okian/riftbalance/internal/domain/model"
)

// Metric maps a player to the scalar being balanced.
type Metric func(model.Candidate) float64

// WinRateMetric balances on global win rate.
func WinRateMetric(c model.Candidate) float64 { return c.WinRate }

// MMRMetric balances on the rating estimated from the player's solo rank.
func MMRMetric(c model.Candidate) float64 { return float64(MMR(c.SoloRank)) }

// Sum totals metric over a side.
func Sum(side []model.Candidate, metric Metric) float64 {
	var total float64
	for _, c := range side {
		total += metric(c)
	}
	return total
}

// Imbalance is the absolute difference of the summed metric of two sides.
func Imbalance(a, b []model.Candidate, metric Metric) float64 {
	return math.Abs(Sum(a, metric) - Sum(b, metric))
}

// Split is a candidate partition into blue and red.
type Split struct {
	Blue []model.Candidate
	Red  []model.Candidate
}

// Imbalance evaluates the split under metric.
func (s Split) Imbalance(metric Metric) float64 {
	return Imbalance(s.Blue, s.Red, metric)
}

func (s Split) clone() Split {
	return Split{
		Blue: append([]model.Candidate(nil), s.Blue...),
		Red:  append([]model.Candidate(nil), s.Red...),
	}
}
