package metrics

import "time"

// Agent kinds understood by the experiment runner.
const (
	AlphaBeta = "alphabeta"
	MCTS      = "mcts"
	AlphaZero = "alphazero"
	Random    = "random"
)

type AgentConfig struct {
	ID          int
	Kind        string
	Duration    time.Duration
	Playouts    int
	Depth       int
	Exploration float64
	MinVisits   int
}
