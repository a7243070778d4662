package agent

import (
	"context"

	"onitama/experiments/metrics"
	"onitama/game"
	"onitama/searcher"
)

type evaluationAgent struct {
	searcher searcher.Searcher
	last     metrics.SearchMetric
}

// NewEvaluationAgent returns a new agent for actual game play during evaluation.
// It plays the searcher's best move.
func NewEvaluationAgent(s searcher.Searcher) Agent {
	return &evaluationAgent{searcher: s}
}

func (a *evaluationAgent) ProposeMove(ctx context.Context, state game.State, color game.Color) (game.DoneMove, float64, error) {
	result, err := a.searcher.Search(ctx, state, color)
	if err != nil {
		return game.DoneMove{}, 0, err
	}
	a.last = result.Metric
	return result.Move, result.Score, nil
}

func (a *evaluationAgent) LastMetric() metrics.SearchMetric {
	return a.last
}
