package experiments

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"onitama/experiments/metrics"
)

// RunThroughputExperiment measures search work per move as the time budget
// grows. Each match up uses the same config for both players for the same
// playing strength and similar game length.
func RunThroughputExperiment(ctx context.Context, opts Options) (map[int]Standing, error) {
	if opts.Games <= 0 {
		opts.Games = 1
	}
	budgets := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		20 * time.Millisecond,
		40 * time.Millisecond,
	}

	configs := []metrics.AgentConfig{}
	for _, kind := range []string{metrics.AlphaBeta, metrics.MCTS} {
		for _, budget := range budgets {
			configs = append(configs, metrics.AgentConfig{ID: len(configs) + 1, Kind: kind, Duration: budget})
		}
	}
	matchUps := []MatchUp{}
	for _, config := range configs {
		matchUps = append(matchUps, MatchUp{config, config})
	}

	log.Info().Msgf("measuring throughput over %d budgets", len(budgets))
	return Run(ctx, "throughput", configs, matchUps, opts)
}
