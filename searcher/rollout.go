package searcher

import (
	"golang.org/x/exp/rand"

	"onitama/game"
	"onitama/meta"
)

// rollout plays uniformly random moves from state until the game ends and
// scores the outcome for color, the color to move. A player without moves
// passes a random card. Games still running after MAX_ROLLOUT_PLIES score 0.
func rollout(state game.State, color game.Color, rng *rand.Rand, buf []game.DoneMove) (value float64, full bool) {
	mover := color
	for ply := 0; ply < meta.MAX_ROLLOUT_PLIES; ply++ {
		buf = game.AppendLegalMovesAll(buf[:0], &state, mover)

		var result game.Result
		if len(buf) == 0 {
			result = state.Pass(mover, rng.Intn(game.HandSize))
		} else {
			result = state.Play(buf[rng.Intn(len(buf))], mover)
		}
		if winner, ok := result.Winner(); ok {
			if winner == color {
				return WIN, true
			}
			return LOSS, true
		}
		mover = mover.Opponent()
	}
	return 0, false
}
