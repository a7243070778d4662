// meta/meta.go
package meta

import "time"

// WORKERS defines the number of concurrent games for self-play and experiments.
const WORKERS = 8

// PLAYOUTS defines the number of playouts per MCTS search.
const PLAYOUTS = 800

// SEARCH_DURATION defines the default time budget per search.
const SEARCH_DURATION = 100 * time.Millisecond

// MAX_DEPTH bounds iterative deepening when no depth is configured.
const MAX_DEPTH = 32

// MAX_ROLLOUT_PLIES caps random rollouts, which may cycle forever.
const MAX_ROLLOUT_PLIES = 200

// MAX_TURNS defines the number of plies before a game is declared drawn.
const MAX_TURNS = 300
