package agent

import (
	"context"

	"golang.org/x/exp/rand"

	"onitama/game"
)

type randomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent plays a uniformly random candidate move, passing a random
// card when blocked.
func NewRandomAgent(rng *rand.Rand) Agent {
	return randomAgent{rng: rng}
}

func (a randomAgent) ProposeMove(_ context.Context, state game.State, color game.Color) (game.DoneMove, float64, error) {
	moves := game.Candidates(&state, color)
	return moves[a.rng.Intn(len(moves))], 0, nil
}
