package searcher

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"onitama/experiments/metrics"
	"onitama/game"
	"onitama/meta"
)

// WinScore dominates every static evaluation. Faster wins score higher.
const WinScore = 1e6

// How often, in nodes, the deadline is checked
const checkInterval = 1024

type AlphaBeta struct {
	cfg     Config
	metrics metrics.Collector
}

// NewAlphaBeta builds an iterative-deepening searcher bounded by a time
// budget, a depth, or both.
func NewAlphaBeta(options ...Option) *AlphaBeta {
	cfg := newConfig(options)
	if cfg.Depth <= 0 && cfg.Duration <= 0 {
		panic("Must specify search depth or duration")
	}
	if cfg.Depth <= 0 {
		cfg.Depth = meta.MAX_DEPTH
	}
	a := &AlphaBeta{
		cfg:     cfg,
		metrics: metrics.NewDummyCollector(),
	}
	if cfg.Metrics {
		a.metrics = metrics.NewCollector()
	}
	return a
}

func (a *AlphaBeta) Config() Config {
	return a.cfg
}

type alphaBetaRun struct {
	ctx      context.Context
	deadline time.Time
	nodes    int
	canAbort bool
	aborted  bool
	moves    [][]game.DoneMove // Move buffers by ply
	metrics  metrics.Collector
}

// Search deepens one ply at a time from depth 1 until the maximum depth or
// the time budget is reached, or ctx is done. Depth 1 always completes. The
// move of the deepest completed iteration is returned; its score is from
// color's perspective.
func (a *AlphaBeta) Search(ctx context.Context, state game.State, color game.Color) (Result, error) {
	if state.IsTerminal() {
		return Result{}, ErrNoMoves
	}

	a.metrics.Start(metrics.AlphaBeta)
	r := &alphaBetaRun{
		ctx:     ctx,
		moves:   make([][]game.DoneMove, a.cfg.Depth+1),
		metrics: a.metrics,
	}
	if a.cfg.Duration > 0 {
		r.deadline = time.Now().Add(a.cfg.Duration)
	}

	s := state
	rootMoves := game.Candidates(&s, color)
	var result Result
	for depth := 1; depth <= a.cfg.Depth; depth++ {
		r.canAbort = depth > 1
		move, score, ok := r.searchRoot(&s, color, depth, rootMoves)
		if !ok {
			break
		}
		result.Move, result.Score, result.Depth = move, score, depth
		a.metrics.SetDepth(depth)

		// Search the best move first on the next iteration
		for i, d := range rootMoves {
			if d == move {
				rootMoves[0], rootMoves[i] = rootMoves[i], rootMoves[0]
				break
			}
		}
		if math.Abs(score) >= WinScore || r.expired() {
			break
		}
	}
	result.Playouts = r.nodes
	result.Metric = a.metrics.Complete()

	log.Debug().
		Int("depth", result.Depth).
		Int("nodes", r.nodes).
		Str("move", result.Move.String()).
		Float64("score", result.Score).
		Msg("alpha-beta search complete")
	return result, nil
}

func (r *alphaBetaRun) expired() bool {
	if r.ctx.Err() != nil {
		return true
	}
	return !r.deadline.IsZero() && time.Now().After(r.deadline)
}

// searchRoot returns false when the iteration was cut short.
func (r *alphaBetaRun) searchRoot(s *game.State, color game.Color, depth int, moves []game.DoneMove) (game.DoneMove, float64, bool) {
	alpha, beta := math.Inf(-1), math.Inf(1)
	best := moves[0]
	for _, d := range moves {
		score := r.child(s, d, color, depth, alpha, beta)
		if r.aborted {
			return best, alpha, false
		}
		if score > alpha {
			alpha, best = score, d
		}
	}
	return best, alpha, true
}

// child plays d on s, searches the reply and restores s on every exit path.
func (r *alphaBetaRun) child(s *game.State, d game.DoneMove, color game.Color, depth int, alpha, beta float64) float64 {
	saved := *s
	defer func() { *s = saved }()

	if winner, ok := s.Play(d, color).Winner(); ok {
		if winner == color {
			return WinScore + float64(depth)
		}
		return -WinScore - float64(depth)
	}
	return -r.negamax(s, color.Opponent(), depth-1, -beta, -alpha)
}

// negamax scores s for color, the color to move.
func (r *alphaBetaRun) negamax(s *game.State, color game.Color, depth int, alpha, beta float64) float64 {
	r.nodes++
	r.metrics.AddPlayout()
	if r.canAbort && r.nodes%checkInterval == 0 && r.expired() {
		r.aborted = true
	}
	if r.aborted {
		return 0
	}

	if depth == 0 {
		if color == game.Red {
			return Evaluate(s)
		}
		return -Evaluate(s)
	}

	moves := game.AppendCandidates(r.moves[depth][:0], s, color)
	r.moves[depth] = moves

	best := math.Inf(-1)
	for _, d := range moves {
		score := r.child(s, d, color, depth, alpha, beta)
		if r.aborted {
			return 0
		}
		if score > best {
			best = score
		}
		if best > alpha {
			alpha = best
		}
		if alpha >= beta {
			break
		}
	}
	return best
}
