package balance

import "github.com/okian/riftbalance/pkg/logger"

// Option applies a configuration option to the Balancer.
type Option func(*Balancer)

// WithTrials sets the number of random-restart shuffles.
func WithTrials(n int) Option {
	return func(b *Balancer) {
		if n > 0 {
			b.trials = n
		}
	}
}

// WithMaxIterations caps the swaps applied by refinement.
func WithMaxIterations(n int) Option {
	return func(b *Balancer) {
		if n > 0 {
			b.maxIterations = n
		}
	}
}

// WithLaneRefinement toggles same-lane swaps after lane assignment.
func WithLaneRefinement(enabled bool) Option {
	return func(b *Balancer) {
		b.laneRefine = enabled
	}
}

// WithSeed fixes the seed of every call's random generator, making results
// reproducible.
func WithSeed(seed int64) Option {
	return func(b *Balancer) {
		b.seed = &seed
	}
}

// WithLogger sets the logger used for per-call debug output.
func WithLogger(l logger.Logger) Option {
	return func(b *Balancer) {
		if l != nil {
			b.logger = l
		}
	}
}
