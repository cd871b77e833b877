package balance

import (
	"math"
	"math/rand"
	"sort"

	"github.com/okian/riftbalance/internal/domain/model"
)

const defaultTrials = 50

// Strategy proposes an initial split.
type Strategy interface {
	Name() string
	// Deterministic strategies win ties against randomized ones.
	Deterministic() bool
	Seed(players []model.Candidate, metric Metric, rng *rand.Rand) Split
}

// sortDescending returns a copy of players ordered by metric, highest first.
// Equal values keep their input order.
func sortDescending(players []model.Candidate, metric Metric) []model.Candidate {
	out := append([]model.Candidate(nil), players...)
	sort.SliceStable(out, func(i, j int) bool {
		return metric(out[i]) > metric(out[j])
	})
	return out
}

// SortedPairs pairs the i-th strongest with the i-th weakest player and
// orients each pair to keep the running difference small.
type SortedPairs struct{}

func (SortedPairs) Name() string        { return "sorted_pairs" }
func (SortedPairs) Deterministic() bool { return true }

func (SortedPairs) Seed(players []model.Candidate, metric Metric, _ *rand.Rand) Split {
	sorted := sortDescending(players, metric)
	n := len(sorted)
	s := Split{
		Blue: make([]model.Candidate, 0, n/2),
		Red:  make([]model.Candidate, 0, n/2),
	}
	var blue, red float64
	for i := 0; i < n/2; i++ {
		strong, weak := sorted[i], sorted[n-1-i]
		ms, mw := metric(strong), metric(weak)
		keep := math.Abs((blue+ms)-(red+mw)) <= math.Abs((blue+mw)-(red+ms))
		if keep {
			s.Blue = append(s.Blue, strong)
			s.Red = append(s.Red, weak)
			blue, red = blue+ms, red+mw
		} else {
			s.Blue = append(s.Blue, weak)
			s.Red = append(s.Red, strong)
			blue, red = blue+mw, red+ms
		}
	}
	return s
}

// GreedyAlternating hands the next strongest player to the weaker side.
type GreedyAlternating struct{}

func (GreedyAlternating) Name() string        { return "greedy_alternating" }
func (GreedyAlternating) Deterministic() bool { return true }

func (GreedyAlternating) Seed(players []model.Candidate, metric Metric, _ *rand.Rand) Split {
	sorted := sortDescending(players, metric)
	size := len(sorted) / 2
	s := Split{
		Blue: make([]model.Candidate, 0, size),
		Red:  make([]model.Candidate, 0, size),
	}
	var blue, red float64
	for _, c := range sorted {
		v := metric(c)
		switch {
		case len(s.Red) == size:
			s.Blue = append(s.Blue, c)
			blue += v
		case len(s.Blue) == size || red < blue:
			s.Red = append(s.Red, c)
			red += v
		default:
			s.Blue = append(s.Blue, c)
			blue += v
		}
	}
	return s
}

// RandomRestart shuffles the pool Trials times and keeps the best halving.
type RandomRestart struct {
	Trials int
}

func (RandomRestart) Name() string        { return "random_restart" }
func (RandomRestart) Deterministic() bool { return false }

func (r RandomRestart) Seed(players []model.Candidate, metric Metric, rng *rand.Rand) Split {
	trials := r.Trials
	if trials < 1 {
		trials = defaultTrials
	}
	pool := append([]model.Candidate(nil), players...)
	half := len(pool) / 2

	var best Split
	bestDiff := -1.0
	for t := 0; t < trials; t++ {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		d := Imbalance(pool[:half], pool[half:], metric)
		if bestDiff < 0 || d < bestDiff {
			bestDiff = d
			best = Split{Blue: pool[:half], Red: pool[half:]}.clone()
		}
	}
	return best
}

// DefaultStrategies returns the seeds used by the basic mode, deterministic
// ones first.
func DefaultStrategies(trials int) []Strategy {
	return []Strategy{SortedPairs{}, GreedyAlternating{}, RandomRestart{Trials: trials}}
}

// BestSeed runs every strategy and returns the split with the smallest
// imbalance. Ties go to the earlier strategy, and a deterministic result is
// never replaced by a randomized one of equal quality.
func BestSeed(players []model.Candidate, metric Metric, rng *rand.Rand, strategies ...Strategy) (Split, Strategy) {
	var (
		best     Split
		chosen   Strategy
		bestDiff float64
	)
	for _, st := range strategies {
		s := st.Seed(players, metric, rng)
		d := s.Imbalance(metric)
		better := chosen == nil || d < bestDiff ||
			(d == bestDiff && st.Deterministic() && !chosen.Deterministic())
		if better {
			best, chosen, bestDiff = s, st, d
		}
	}
	return best, chosen
}
