// Package searcher picks moves: a time-boxed iterative-deepening alpha-beta
// search and an arena-indexed MCTS with UCT rollouts or evaluator-guided
// PUCT.
//
// A searcher runs one search at a time on a private copy of the state. Run
// concurrent searches on separate searchers.
package searcher

import (
	"context"
	"errors"
	"math"

	"onitama/experiments/metrics"
	"onitama/game"
	"onitama/inference"
)

const WIN = 1.0   // Reward for winning outcome
const LOSS = -WIN // Reward for loss outcome (negate from opponent perspective)

var ErrNoMoves = errors.New("no moves: game is over")

// Result is the outcome of one search.
type Result struct {
	Move game.DoneMove
	// Score is from the searching color's perspective: an evaluation for
	// alpha-beta, the chosen child's win rate in [-1, 1] for MCTS.
	Score float64
	// Policy is the root visit distribution (MCTS only).
	Policy   inference.Policy
	Playouts int
	Depth    int
	Metric   metrics.SearchMetric
}

type Searcher interface {
	Search(ctx context.Context, state game.State, color game.Color) (Result, error)
}

// orderKey maps NaN below every number so it never wins a comparison.
func orderKey(v float64) float64 {
	if math.IsNaN(v) {
		return math.Inf(-1)
	}
	return v
}
