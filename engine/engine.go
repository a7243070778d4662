package engine

import (
	"context"

	"onitama/experiments/metrics"
	"onitama/game"
)

type Engine interface {
	// Run plays a game till there's a winner or a max number of plies is reached
	Run(ctx context.Context) (Outcome, error)
}

type Outcome struct {
	Result  game.Result // InProgress when the ply limit ended the game
	Final   game.State
	Game    metrics.GameMetric
	Moves   []metrics.MoveMetric
	History []game.DoneMove
}

// Winner reports the winning color, if any.
func (o Outcome) Winner() (game.Color, bool) {
	return o.Result.Winner()
}
