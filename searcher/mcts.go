package searcher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"onitama/experiments/metrics"
	"onitama/game"
	"onitama/inference"
	"onitama/utils"
)

type MCTS struct {
	cfg      Config
	rng      *rand.Rand
	metrics  metrics.Collector
	tree     *Tree
	moves    []game.DoneMove
	scratch  []game.DoneMove
	priorBuf []float64
}

// NewMCTS builds a plain UCT searcher, or a PUCT searcher when an evaluator
// is given.
func NewMCTS(options ...Option) *MCTS {
	cfg := newConfig(options)
	if cfg.Playouts <= 0 && cfg.Duration <= 0 {
		panic("Must specify search playouts or duration")
	}
	if cfg.Exploration == 0 {
		cfg.Exploration = UCTExploration
		if cfg.Evaluator != nil {
			cfg.Exploration = PUCTExploration
		}
	}
	m := &MCTS{ // Default values
		cfg:     cfg,
		rng:     cfg.Rand,
		metrics: metrics.NewDummyCollector(),
		scratch: make([]game.DoneMove, 0, 4*game.NumSquares),
	}
	if m.rng == nil {
		m.rng = utils.NewRand(0)
	}
	if cfg.Metrics {
		m.metrics = metrics.NewCollector()
	}
	return m
}

func (m *MCTS) Config() Config {
	return m.cfg
}

// Tree returns the tree of the last search.
func (m *MCTS) Tree() *Tree {
	return m.tree
}

func (m *MCTS) algorithm() string {
	if m.cfg.Evaluator != nil {
		return metrics.AlphaZero
	}
	return metrics.MCTS
}

// Search runs playouts from state until the playout cap or the time budget
// runs out, or ctx is done. At least one playout always completes. An
// evaluator failure aborts the search.
func (m *MCTS) Search(ctx context.Context, state game.State, color game.Color) (Result, error) {
	if state.IsTerminal() {
		return Result{}, ErrNoMoves
	}

	m.tree = newTree(color)
	m.metrics.Start(m.algorithm())
	start := time.Now()

	playouts := 0
	for {
		if err := m.playout(state); err != nil {
			return Result{}, fmt.Errorf("playout %d: %w", playouts+1, err)
		}
		playouts++
		m.metrics.AddPlayout()

		if m.cfg.Playouts > 0 && playouts >= m.cfg.Playouts {
			break
		}
		if m.cfg.Duration > 0 && time.Since(start) >= m.cfg.Duration {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}

	best := m.tree.mostVisited()
	child := m.tree.Node(best)
	result := Result{
		Move:     child.Move,
		Score:    child.WinRate,
		Policy:   m.visitPolicy(),
		Playouts: playouts,
		Metric:   m.metrics.Complete(),
	}

	log.Debug().
		Str("algorithm", m.algorithm()).
		Int("playouts", playouts).
		Int("nodes", m.tree.Len()).
		Str("move", result.Move.String()).
		Float64("score", result.Score).
		Msg("mcts search complete")
	return result, nil
}

// playout runs selection, expansion, evaluation and backpropagation once.
func (m *MCTS) playout(root game.State) error {
	state := root
	i := int32(0)
	for {
		n := m.tree.Node(i)
		if !n.Expanded || n.Terminal {
			break
		}
		mover := n.Color
		i = m.selectChild(i)
		state.Play(m.tree.Node(i).Move, mover)
	}

	leaf := m.tree.Node(i)
	if leaf.Terminal {
		// The move into this node won, so the color to move has lost
		m.tree.backup(i, LOSS)
		return nil
	}

	var value float64
	if m.cfg.Evaluator != nil {
		prediction, err := m.cfg.Evaluator.Evaluate(state, leaf.Color)
		if err != nil {
			return err
		}
		m.metrics.AddEvaluation()
		m.expand(i, &state, &prediction.Policy)
		value = prediction.Value
	} else {
		m.expand(i, &state, nil)
		var full bool
		value, full = rollout(state, m.tree.Node(i).Color, m.rng, m.scratch)
		if full {
			m.metrics.AddFullRollout()
		}
	}
	m.tree.backup(i, value)
	return nil
}

// selectChild picks the child of an expanded, non-terminal node.
func (m *MCTS) selectChild(i int32) int32 {
	parent := m.tree.Node(i)
	children := parent.Children
	N := float64(parent.Visits)

	if m.cfg.Evaluator == nil && parent.Visits < m.cfg.MinVisits {
		return children[m.rng.Intn(len(children))]
	}

	best := children[0]
	bestScore := 0.0
	if m.cfg.Evaluator != nil {
		policy := newPUCT(m.cfg.Exploration, N)
		for k, c := range children {
			child := m.tree.Node(c)
			score := orderKey(policy.evaluate(child.Reward, float64(child.Visits), child.Prior))
			if k == 0 || score > bestScore {
				best, bestScore = c, score
			}
		}
		return best
	}

	policy := newUCT(m.cfg.Exploration, N)
	for k, c := range children {
		child := m.tree.Node(c)
		if child.Visits == 0 {
			return c
		}
		score := orderKey(policy.evaluate(child.Reward, float64(child.Visits)))
		if k == 0 || score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// expand adds one child per candidate move at node i, whose position is
// state. Priors come from policy, normalized per held card, or are uniform
// without a policy.
func (m *MCTS) expand(i int32, state *game.State, policy *inference.Policy) {
	color := m.tree.Node(i).Color
	m.moves = game.AppendCandidates(m.moves[:0], state, color)

	priors := m.priors(m.moves, policy)
	if i == 0 && m.cfg.Training && m.cfg.Evaluator != nil && len(priors) > 1 {
		blend(priors, dirichlet(len(priors), m.cfg.NoiseAlpha, m.rng), m.cfg.NoiseEpsilon)
	}

	for k, d := range m.moves {
		next := *state
		terminal := next.Play(d, color).IsWin()
		m.tree.add(i, d, color.Opponent(), priors[k], terminal)
	}
	m.tree.Node(i).Expanded = true
}

func (m *MCTS) priors(moves []game.DoneMove, policy *inference.Policy) []float64 {
	priors := m.priorBuf[:0]
	for range moves {
		priors = append(priors, 1/float64(len(moves)))
	}
	m.priorBuf = priors
	if policy == nil {
		return priors
	}

	var sums [game.HandSize]float64
	for k, d := range moves {
		if d.Pass {
			continue
		}
		priors[k] = float64(policy[d.Card][d.To])
		sums[d.Card] += priors[k]
	}
	for k, d := range moves {
		if d.Pass {
			continue
		}
		// A card whose moves carry no mass keeps zero priors
		if sums[d.Card] > 0 {
			priors[k] /= sums[d.Card]
		}
	}
	return priors
}

// visitPolicy is the root visit distribution over (card, destination). Pass
// children are left out.
func (m *MCTS) visitPolicy() inference.Policy {
	var policy inference.Policy
	total := 0
	for _, c := range m.tree.Root().Children {
		child := m.tree.Node(c)
		if !child.Move.Pass {
			total += child.Visits
		}
	}
	if total == 0 {
		return policy
	}
	for _, c := range m.tree.Root().Children {
		child := m.tree.Node(c)
		if !child.Move.Pass {
			policy[child.Move.Card][child.Move.To] += float32(child.Visits) / float32(total)
		}
	}
	return policy
}
