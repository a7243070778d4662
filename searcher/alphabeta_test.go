package searcher

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"onitama/experiments/metrics"
	"onitama/game"
)

func TestNewAlphaBeta(t *testing.T) {
	t.Run("panics without a budget", func(t *testing.T) {
		require.Panics(t, func() { NewAlphaBeta() })
	})

	t.Run("duration alone deepens up to the default cap", func(t *testing.T) {
		a := NewAlphaBeta(WithDuration(time.Second))
		require.Positive(t, a.Config().Depth)
	})
}

func TestAlphaBetaSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("tiny budget at depth one still returns a legal move", func(t *testing.T) {
		s := standardState(t)
		a := NewAlphaBeta(WithDuration(time.Nanosecond), WithDepth(1))
		result, err := a.Search(ctx, s, game.Red)
		require.NoError(t, err)
		require.Equal(t, 1, result.Depth)
		require.NoError(t, game.IsLegal(&s, game.Red, result.Move))
	})

	t.Run("an expired budget never skips depth one", func(t *testing.T) {
		s := standardState(t)
		a := NewAlphaBeta(WithDuration(time.Nanosecond))
		result, err := a.Search(ctx, s, game.Blue)
		require.NoError(t, err)
		require.GreaterOrEqual(t, result.Depth, 1)
		require.NoError(t, game.IsLegal(&s, game.Blue, result.Move))
	})

	t.Run("a cancelled context still completes depth one", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		s := standardState(t)
		result, err := NewAlphaBeta(WithDepth(5)).Search(cancelled, s, game.Red)
		require.NoError(t, err)
		require.Equal(t, 1, result.Depth)
		require.NoError(t, game.IsLegal(&s, game.Red, result.Move))
	})

	t.Run("deepens to the configured depth", func(t *testing.T) {
		a := NewAlphaBeta(WithDepth(3), WithMetrics())
		result, err := a.Search(ctx, standardState(t), game.Red)
		require.NoError(t, err)
		require.Equal(t, 3, result.Depth)
		require.Equal(t, 3, result.Metric.Depth)
		require.Equal(t, metrics.AlphaBeta, result.Metric.Algorithm)
		require.Positive(t, result.Playouts)
		require.False(t, math.IsInf(result.Score, 0))
	})

	t.Run("takes a king capture", func(t *testing.T) {
		result, err := NewAlphaBeta(WithDepth(3)).Search(ctx, winInOne(t), game.Red)
		require.NoError(t, err)
		require.Equal(t, kingCapture, result.Move)
		require.GreaterOrEqual(t, result.Score, WinScore)
		require.Equal(t, 1, result.Depth, "A forced win should stop deepening")
	})

	t.Run("passes when blocked", func(t *testing.T) {
		d, err := game.NewDeckByName("Tiger", "Horse", "Dragon", "Rabbit", "Frog")
		require.NoError(t, err)
		s := game.State{Deck: d}
		s.Kings[game.Red] = game.SquareMask(0)
		s.Kings[game.Blue] = game.SquareMask(24)
		s.Pawns[game.Red] = game.SquareMask(5) | game.SquareMask(10) | game.SquareMask(15) | game.SquareMask(20)

		result, err := NewAlphaBeta(WithDepth(2)).Search(ctx, s, game.Red)
		require.NoError(t, err)
		require.True(t, result.Move.Pass)
		require.NoError(t, game.IsLegal(&s, game.Red, result.Move))
	})

	t.Run("a finished game has no moves", func(t *testing.T) {
		s := standardState(t)
		s.Kings[game.Red] = 0
		_, err := NewAlphaBeta(WithDepth(1)).Search(ctx, s, game.Blue)
		require.ErrorIs(t, err, ErrNoMoves)
	})
}

func TestNegamaxRestoresState(t *testing.T) {
	t.Run("after a complete search", func(t *testing.T) {
		s := standardState(t)
		before := s
		r := &alphaBetaRun{ctx: context.Background(), moves: make([][]game.DoneMove, 4), metrics: metrics.NewDummyCollector()}
		r.negamax(&s, game.Red, 3, math.Inf(-1), math.Inf(1))
		require.Equal(t, before, s)
	})

	t.Run("after an aborted search", func(t *testing.T) {
		s := standardState(t)
		before := s
		r := &alphaBetaRun{
			ctx:      context.Background(),
			deadline: time.Now().Add(-time.Second),
			canAbort: true,
			nodes:    checkInterval - 50, // Abort a few dozen nodes into the tree
			moves:    make([][]game.DoneMove, 5),
			metrics:  metrics.NewDummyCollector(),
		}
		r.negamax(&s, game.Red, 4, math.Inf(-1), math.Inf(1))
		require.True(t, r.aborted)
		require.Equal(t, before, s)
	})
}

func BenchmarkAlphaBeta(b *testing.B) {
	s := standardState(b)
	a := NewAlphaBeta(WithDepth(4))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := a.Search(context.Background(), s, game.Red); err != nil {
			b.Fatal(err)
		}
	}
}
