package searcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"onitama/game"
	"onitama/inference"
)

func standardState(t testing.TB) game.State {
	d, err := game.NewDeckByName("Crab", "Rabbit", "Dragon", "Tiger", "Frog")
	require.NoError(t, err)
	return game.NewState(d)
}

// winInOne has Red's pawn on 12 one Crab step below Blue's king.
func winInOne(t testing.TB) game.State {
	d, err := game.NewDeckByName("Crab", "Rabbit", "Dragon", "Tiger", "Frog")
	require.NoError(t, err)
	s := game.State{Deck: d}
	s.Kings[game.Red] = game.SquareMask(22)
	s.Pawns[game.Red] = game.SquareMask(12)
	s.Kings[game.Blue] = game.SquareMask(7)
	s.Pawns[game.Blue] = game.SquareMask(0)
	return s
}

var kingCapture = game.DoneMove{Move: game.Move{From: 12, To: 7, Piece: game.Pawn}, Card: 0}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func requireVisitInvariant(t *testing.T, tree *Tree, playouts int) {
	require.Equal(t, playouts, tree.Root().Visits, "Root visits should equal completed playouts")
	for i := 0; i < tree.Len(); i++ {
		n := tree.Node(int32(i))
		for _, c := range n.Children {
			require.GreaterOrEqual(t, n.Visits, tree.Node(c).Visits, "Node %s", n.Summary())
			require.Equal(t, int32(i), tree.Node(c).Parent)
			require.Equal(t, n.Color.Opponent(), tree.Node(c).Color)
		}
		if n.Terminal {
			require.Empty(t, n.Children, "Terminal nodes should never expand")
		}
	}
}

func TestNewMCTS(t *testing.T) {
	t.Run("panics without a budget", func(t *testing.T) {
		require.Panics(t, func() { NewMCTS() })
	})

	t.Run("exploration defaults per variant", func(t *testing.T) {
		require.Equal(t, UCTExploration, NewMCTS(WithPlayouts(1)).Config().Exploration)
		require.Equal(t, PUCTExploration, NewMCTS(WithPlayouts(1), WithEvaluator(inference.Uniform())).Config().Exploration)
	})
}

func TestMCTSSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("visit counts are consistent", func(t *testing.T) {
		m := NewMCTS(WithPlayouts(300), WithRand(seeded(1)), WithMetrics())
		s := standardState(t)
		result, err := m.Search(ctx, s, game.Red)
		require.NoError(t, err)

		require.Equal(t, 300, result.Playouts)
		require.Equal(t, 300, result.Metric.Playouts)
		requireVisitInvariant(t, m.Tree(), 300)
		require.NoError(t, game.IsLegal(&s, game.Red, result.Move))
	})

	t.Run("plain search runs rollouts", func(t *testing.T) {
		m := NewMCTS(WithPlayouts(50), WithRand(seeded(2)), WithMetrics())
		result, err := m.Search(ctx, standardState(t), game.Red)
		require.NoError(t, err)
		require.Equal(t, "mcts", result.Metric.Algorithm)
		require.Zero(t, result.Metric.Evaluations)
	})

	t.Run("a tiny time budget still completes a playout", func(t *testing.T) {
		m := NewMCTS(WithDuration(time.Nanosecond), WithRand(seeded(3)))
		result, err := m.Search(ctx, standardState(t), game.Blue)
		require.NoError(t, err)
		require.GreaterOrEqual(t, result.Playouts, 1)
		requireVisitInvariant(t, m.Tree(), result.Playouts)
	})

	t.Run("finds a king capture", func(t *testing.T) {
		m := NewMCTS(WithPlayouts(2000), WithRand(seeded(4)))
		result, err := m.Search(ctx, winInOne(t), game.Red)
		require.NoError(t, err)
		require.Equal(t, kingCapture, result.Move)
		require.Greater(t, result.Score, 0.9)
	})

	t.Run("random bootstrapping below min visits", func(t *testing.T) {
		m := NewMCTS(WithPlayouts(200), WithMinVisits(1000), WithRand(seeded(5)))
		_, err := m.Search(ctx, standardState(t), game.Red)
		require.NoError(t, err)
		requireVisitInvariant(t, m.Tree(), 200)
		for _, c := range m.Tree().Root().Children {
			require.Positive(t, m.Tree().Node(c).Visits)
		}
	})

	t.Run("a finished game has no moves", func(t *testing.T) {
		s := standardState(t)
		s.Kings[game.Blue] = 0
		_, err := NewMCTS(WithPlayouts(10)).Search(ctx, s, game.Red)
		require.ErrorIs(t, err, ErrNoMoves)
	})

	t.Run("blocked positions expand into both passes", func(t *testing.T) {
		d, err := game.NewDeckByName("Tiger", "Horse", "Dragon", "Rabbit", "Frog")
		require.NoError(t, err)
		s := game.State{Deck: d}
		s.Kings[game.Red] = game.SquareMask(0)
		s.Kings[game.Blue] = game.SquareMask(24)
		s.Pawns[game.Red] = game.SquareMask(5) | game.SquareMask(10) | game.SquareMask(15) | game.SquareMask(20)

		m := NewMCTS(WithPlayouts(20), WithRand(seeded(6)))
		result, err := m.Search(ctx, s, game.Red)
		require.NoError(t, err)
		require.True(t, result.Move.Pass)
		require.Len(t, m.Tree().Root().Children, 2)
	})
}

func TestAlphaZeroSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("priors are normalized per card", func(t *testing.T) {
		m := NewMCTS(WithPlayouts(1), WithEvaluator(inference.Uniform()), WithRand(seeded(1)))
		_, err := m.Search(ctx, standardState(t), game.Red)
		require.NoError(t, err)

		var sums [game.HandSize]float64
		for _, c := range m.Tree().Root().Children {
			child := m.Tree().Node(c)
			sums[child.Move.Card] += child.Prior
		}
		require.InDelta(t, 1, sums[0], 1e-6)
		require.InDelta(t, 1, sums[1], 1e-6)
	})

	t.Run("a card without policy mass keeps zero priors", func(t *testing.T) {
		evaluator := inference.EvaluatorFunc(func(game.State, game.Color) (inference.Prediction, error) {
			var p inference.Prediction
			for sq := range p.Policy[0] {
				p.Policy[0][sq] = 1
			}
			return p, nil
		})
		m := NewMCTS(WithPlayouts(1), WithEvaluator(evaluator), WithRand(seeded(1)))
		_, err := m.Search(ctx, standardState(t), game.Red)
		require.NoError(t, err)

		for _, c := range m.Tree().Root().Children {
			child := m.Tree().Node(c)
			if child.Move.Card == 1 {
				require.Zero(t, child.Prior)
			} else {
				require.Greater(t, child.Prior, 0.0)
			}
		}
	})

	t.Run("visit policy is a distribution", func(t *testing.T) {
		m := NewMCTS(WithPlayouts(100), WithEvaluator(inference.Uniform()), WithRand(seeded(2)), WithMetrics())
		result, err := m.Search(ctx, standardState(t), game.Red)
		require.NoError(t, err)
		requireVisitInvariant(t, m.Tree(), 100)
		require.Equal(t, 100, result.Metric.Evaluations+terminalVisits(m.Tree()))

		sum := float32(0)
		for c := range result.Policy {
			for _, v := range result.Policy[c] {
				sum += v
			}
		}
		require.InDelta(t, 1, sum, 1e-5)
		require.Greater(t, result.Policy[result.Move.Card][result.Move.To], float32(0))
	})

	t.Run("training noise perturbs root priors only", func(t *testing.T) {
		plain := NewMCTS(WithPlayouts(2), WithEvaluator(inference.Uniform()), WithRand(seeded(3)))
		noisy := NewMCTS(WithPlayouts(2), WithEvaluator(inference.Uniform()), WithRand(seeded(3)), WithTraining())
		_, err := plain.Search(ctx, standardState(t), game.Red)
		require.NoError(t, err)
		_, err = noisy.Search(ctx, standardState(t), game.Red)
		require.NoError(t, err)

		differs := false
		for k, c := range plain.Tree().Root().Children {
			p, q := plain.Tree().Node(c).Prior, noisy.Tree().Node(noisy.Tree().Root().Children[k]).Prior
			require.GreaterOrEqual(t, q, 0.0)
			if p != q {
				differs = true
			}
		}
		require.True(t, differs, "Root priors should carry noise in training")

		for _, c := range noisy.Tree().Root().Children {
			child := noisy.Tree().Node(c)
			if !child.Expanded {
				continue
			}
			var sums [game.HandSize]float64
			for _, g := range child.Children {
				sums[noisy.Tree().Node(g).Move.Card] += noisy.Tree().Node(g).Prior
			}
			require.InDelta(t, 1, sums[0], 1e-6, "Noise should stay at the root")
			require.InDelta(t, 1, sums[1], 1e-6, "Noise should stay at the root")
		}
	})

	t.Run("noise weight controls the root blend", func(t *testing.T) {
		plain := NewMCTS(WithPlayouts(2), WithEvaluator(inference.Uniform()), WithRand(seeded(4)))
		silent := NewMCTS(WithPlayouts(2), WithEvaluator(inference.Uniform()), WithRand(seeded(4)),
			WithTraining(), WithNoise(0, 0.7))
		require.Zero(t, silent.Config().NoiseEpsilon)
		require.Equal(t, 0.7, silent.Config().NoiseAlpha)

		_, err := plain.Search(ctx, standardState(t), game.Red)
		require.NoError(t, err)
		_, err = silent.Search(ctx, standardState(t), game.Red)
		require.NoError(t, err)
		for k, c := range plain.Tree().Root().Children {
			require.InDelta(t, plain.Tree().Node(c).Prior, silent.Tree().Node(silent.Tree().Root().Children[k]).Prior, 1e-12,
				"A zero noise weight should leave priors untouched")
		}

		defaults := NewMCTS(WithPlayouts(1), WithNoise(2, -1)).Config()
		require.Equal(t, NoiseEpsilon, defaults.NoiseEpsilon, "Out of range values should be ignored")
		require.Equal(t, NoiseAlpha, defaults.NoiseAlpha)
	})

	t.Run("evaluator failures abort the search", func(t *testing.T) {
		failing := inference.EvaluatorFunc(func(game.State, game.Color) (inference.Prediction, error) {
			return inference.Prediction{}, errors.Join(inference.ErrEvaluation, errors.New("model offline"))
		})
		m := NewMCTS(WithPlayouts(10), WithEvaluator(failing))
		_, err := m.Search(ctx, standardState(t), game.Red)
		require.ErrorIs(t, err, inference.ErrEvaluation)
	})
}

func terminalVisits(tree *Tree) int {
	n := 0
	for i := 0; i < tree.Len(); i++ {
		if node := tree.Node(int32(i)); node.Terminal {
			n += node.Visits
		}
	}
	return n
}

func BenchmarkMCTS(b *testing.B) {
	s := standardState(b)
	m := NewMCTS(WithPlayouts(200), WithRand(seeded(1)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Search(context.Background(), s, game.Red); err != nil {
			b.Fatal(err)
		}
	}
}
