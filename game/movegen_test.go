package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLegalMoves(t *testing.T) {
	t.Run("crab from the starting position only steps forward", func(t *testing.T) {
		s := standardState(t)
		moves := LegalMoves(&s, Red, MustCard("Crab"))

		require.Len(t, moves, 5)
		for _, m := range moves {
			require.Equal(t, int(m.From)-BoardWidth, int(m.To), "Move %v should be one step forward", m)
		}
		var kings int
		for _, m := range moves {
			if m.Piece == King {
				kings++
				require.Equal(t, uint8(RedTemple), m.From)
			}
		}
		require.Equal(t, 1, kings, "Exactly one move should be a king move")
	})

	t.Run("blue moves toward row 4", func(t *testing.T) {
		s := standardState(t)
		moves := LegalMoves(&s, Blue, MustCard("Crab"))

		require.Len(t, moves, 5)
		for _, m := range moves {
			require.Equal(t, int(m.From)+BoardWidth, int(m.To))
		}
	})

	t.Run("own pieces block destinations", func(t *testing.T) {
		s := standardState(t)
		s.Pawns[Red] |= SquareMask(15)
		moves := LegalMoves(&s, Red, MustCard("Crab"))

		for _, m := range moves {
			require.NotEqual(t, uint8(15), m.To, "Should not land on an own pawn")
		}
	})

	t.Run("a card may yield no moves", func(t *testing.T) {
		s := State{Deck: standardState(t).Deck}
		s.Kings[Red] = SquareMask(2)
		s.Kings[Blue] = SquareMask(12)
		moves := LegalMoves(&s, Red, MustCard("Tiger"))
		require.Len(t, moves, 1, "Only the king's backward step should be on the board")

		s.Kings[Red] = SquareMask(0)
		s.Pawns[Red] = SquareMask(5) | SquareMask(10) | SquareMask(15) | SquareMask(20)
		require.Empty(t, LegalMoves(&s, Red, MustCard("Tiger")), "A filled file blocks every vertical step")
	})

	t.Run("re-deriving moves after a move sees the vacated square", func(t *testing.T) {
		s := standardState(t)
		s.ApplyMove(Move{From: 22, To: 17, Piece: King}, Red, 0)
		for _, m := range LegalMovesAll(&s, Red) {
			require.NotEqual(t, uint8(22), m.From, "Vacated square should hold no piece")
		}
		found := false
		for _, m := range LegalMovesAll(&s, Red) {
			if m.From == 17 {
				require.Equal(t, King, m.Piece)
				found = true
			}
		}
		require.True(t, found, "King should move from its new square")
	})
}

func TestLegalMovesAll(t *testing.T) {
	s := standardState(t)
	all := LegalMovesAll(&s, Red)

	var perCard [HandSize]int
	for _, d := range all {
		perCard[d.Card]++
	}
	require.Equal(t, len(LegalMoves(&s, Red, MustCard("Crab"))), perCard[0])
	require.Equal(t, len(LegalMoves(&s, Red, MustCard("Rabbit"))), perCard[1])
}

func TestCandidates(t *testing.T) {
	t.Run("passing when no card moves", func(t *testing.T) {
		d, err := NewDeckByName("Tiger", "Horse", "Dragon", "Rabbit", "Frog")
		require.NoError(t, err)
		s := State{Deck: d}
		s.Kings[Red] = SquareMask(0)
		s.Kings[Blue] = SquareMask(24)
		s.Pawns[Red] = SquareMask(5) | SquareMask(10) | SquareMask(15) | SquareMask(20)

		got := Candidates(&s, Red)
		require.Equal(t, []DoneMove{PassMove(0), PassMove(1)}, got)
		require.NoError(t, IsLegal(&s, Red, PassMove(1)))
	})

	t.Run("refusing a pass while moves exist", func(t *testing.T) {
		s := standardState(t)
		require.ErrorIs(t, IsLegal(&s, Red, PassMove(0)), ErrIllegalMove)
	})

	t.Run("refusing a move not produced by the generator", func(t *testing.T) {
		s := standardState(t)
		bad := DoneMove{Move: Move{From: 20, To: 10, Piece: Pawn}, Card: 0}
		require.ErrorIs(t, IsLegal(&s, Red, bad), ErrIllegalMove)
	})
}
