package agent

import (
	"context"
	"math"

	"golang.org/x/exp/rand"

	"onitama/experiments/metrics"
	"onitama/game"
	"onitama/searcher"
)

type TrainingAgent struct {
	mcts        *searcher.MCTS
	rng         *rand.Rand
	Temperature float64
	last        searcher.Result
}

// NewTrainingAgent returns a new agent for self-play during training. Moves
// are sampled from the root visit counts raised to 1/temperature; a
// temperature of 0 plays the most visited move.
func NewTrainingAgent(mcts *searcher.MCTS, temperature float64, rng *rand.Rand) *TrainingAgent {
	return &TrainingAgent{mcts: mcts, rng: rng, Temperature: temperature}
}

func (a *TrainingAgent) ProposeMove(ctx context.Context, state game.State, color game.Color) (game.DoneMove, float64, error) {
	result, err := a.mcts.Search(ctx, state, color)
	if err != nil {
		return game.DoneMove{}, 0, err
	}
	a.last = result
	if a.Temperature <= 0 {
		return result.Move, result.Score, nil
	}

	tree := a.mcts.Tree()
	children := tree.Root().Children
	visits := make([]float64, len(children))
	for i, c := range children {
		visits[i] = float64(tree.Node(c).Visits)
	}
	probs := adjustTemperature(visits, a.Temperature)
	chosen := tree.Node(children[sample(probs, a.rng)])
	return chosen.Move, chosen.WinRate, nil
}

// Last returns the full result of the most recent search, including the
// visit policy used as a training target.
func (a *TrainingAgent) Last() searcher.Result {
	return a.last
}

func (a *TrainingAgent) LastMetric() metrics.SearchMetric {
	return a.last.Metric
}

func adjustTemperature(visits []float64, temperature float64) []float64 {
	// Compute temperature-adjusted move probabilities
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]float64, len(visits))
	for i, visit := range visits {
		prob := math.Pow(visit, exponent)
		sum += prob
		adjusted[i] = prob
	}
	if sum == 0 {
		for i := range adjusted {
			adjusted[i] = 1 / float64(len(adjusted))
		}
		return adjusted
	}
	// Normalize
	for i := range adjusted {
		adjusted[i] /= sum
	}
	return adjusted
}

func sample(probs []float64, rng *rand.Rand) int {
	sampled := rng.Float64()
	cumulative := 0.0
	for i, prob := range probs {
		cumulative += prob
		if sampled < cumulative {
			return i
		}
	}
	return len(probs) - 1 // Fallback in case of rounding errors
}
