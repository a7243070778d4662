package agent

import (
	"context"

	"onitama/experiments/metrics"
	"onitama/game"
)

type Agent interface {
	// ProposeMove returns a legal move for color and its score from color's
	// perspective
	ProposeMove(ctx context.Context, state game.State, color game.Color) (game.DoneMove, float64, error)
}

// Reporter is implemented by agents that collect search metrics.
type Reporter interface {
	LastMetric() metrics.SearchMetric
}
