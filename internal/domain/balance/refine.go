package balance

import "math"

// Refinement limits.
const (
	DefaultMaxIterations = 100
	WinRateThreshold     = 0.0001
	MMRThreshold         = 100
	RankRefineAbove      = 300
)

// RefineOptions bounds the local search.
type RefineOptions struct {
	// Threshold stops the search once the imbalance falls below it.
	Threshold float64
	// MaxIterations caps the number of applied swaps.
	MaxIterations int
}

// Refine runs a steepest-descent search over single cross-side swaps and
// returns the improved split together with the number of swaps applied.
// The input split is not modified and the result is never worse.
func Refine(s Split, metric Metric, opts RefineOptions) (Split, int) {
	out := s.clone()
	swaps := refine(out.Blue, out.Red, metric, nil, opts)
	return out, swaps
}

// refine swaps elements of blue and red in place. canSwap, when set,
// restricts the pairs that may be exchanged.
func refine[T any](blue, red []T, value func(T) float64, canSwap func(b, r T) bool, opts RefineOptions) int {
	maxIter := opts.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	var blueSum, redSum float64
	for _, v := range blue {
		blueSum += value(v)
	}
	for _, v := range red {
		redSum += value(v)
	}

	swaps := 0
	for swaps < maxIter {
		current := math.Abs(blueSum - redSum)
		if current < opts.Threshold {
			break
		}
		best, bi, ri := current, -1, -1
		for i := range blue {
			vb := value(blue[i])
			for j := range red {
				if canSwap != nil && !canSwap(blue[i], red[j]) {
					continue
				}
				vr := value(red[j])
				d := math.Abs((blueSum - vb + vr) - (redSum - vr + vb))
				if d < best {
					best, bi, ri = d, i, j
				}
			}
		}
		if bi < 0 {
			break
		}
		vb, vr := value(blue[bi]), value(red[ri])
		blue[bi], red[ri] = red[ri], blue[bi]
		blueSum += vr - vb
		redSum += vb - vr
		swaps++
	}
	return swaps
}
