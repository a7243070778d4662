package searcher

import (
	"math"
	"time"

	"golang.org/x/exp/rand"

	"onitama/inference"
)

// Hyperparameters for search

const UCTExploration = math.Sqrt2 // sqrt(c^2) with c^2 = 2
const PUCTExploration = 1.5

const NoiseEpsilon = 0.25 // Weight of root noise in training
const NoiseAlpha = 0.3    // Dirichlet concentration

// Config is the resolved set of options for one searcher.
type Config struct {
	Duration     time.Duration
	Playouts     int
	Depth        int
	Exploration  float64
	MinVisits    int
	Training     bool
	NoiseEpsilon float64
	NoiseAlpha   float64
	Evaluator    inference.Evaluator
	Rand         *rand.Rand
	Metrics      bool
}

type Option func(cfg *Config)

func WithDuration(duration time.Duration) Option {
	return func(c *Config) {
		if duration > 0 {
			c.Duration = duration
		}
	}
}

// WithPlayouts caps the playouts of an MCTS search.
func WithPlayouts(playouts int) Option {
	return func(c *Config) {
		if playouts > 0 {
			c.Playouts = playouts
		}
	}
}

// WithDepth caps iterative deepening.
func WithDepth(depth int) Option {
	return func(c *Config) {
		if depth > 0 {
			c.Depth = depth
		}
	}
}

func WithExploration(constant float64) Option {
	return func(c *Config) {
		if constant > 0 {
			c.Exploration = constant
		}
	}
}

// WithMinVisits makes plain MCTS select uniformly at random below a parent
// visit count.
func WithMinVisits(visits int) Option {
	return func(c *Config) {
		if visits > 0 {
			c.MinVisits = visits
		}
	}
}

// WithTraining enables Dirichlet noise on the root priors.
func WithTraining() Option {
	return func(c *Config) {
		c.Training = true
	}
}

// WithNoise sets the root noise weight in [0, 1] and the Dirichlet
// concentration.
func WithNoise(epsilon, alpha float64) Option {
	return func(c *Config) {
		if epsilon >= 0 && epsilon <= 1 {
			c.NoiseEpsilon = epsilon
		}
		if alpha > 0 {
			c.NoiseAlpha = alpha
		}
	}
}

// WithEvaluator switches MCTS to PUCT guided by the evaluator.
func WithEvaluator(evaluator inference.Evaluator) Option {
	return func(c *Config) {
		if evaluator != nil {
			c.Evaluator = evaluator
		}
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(c *Config) {
		if rng != nil {
			c.Rand = rng
		}
	}
}

func WithMetrics() Option {
	return func(c *Config) {
		c.Metrics = true
	}
}

func newConfig(options []Option) Config {
	cfg := Config{ // Default values
		NoiseEpsilon: NoiseEpsilon,
		NoiseAlpha:   NoiseAlpha,
	}
	for _, option := range options {
		option(&cfg)
	}
	return cfg
}
