package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func squares(sqs ...int) Bitboard {
	var b Bitboard
	for _, sq := range sqs {
		b |= SquareMask(sq)
	}
	return b
}

func TestAttackTable(t *testing.T) {
	t.Run("blue map is the red map reflected through the centre", func(t *testing.T) {
		for _, card := range Catalog() {
			for sq := 0; sq < NumSquares; sq++ {
				blue := Attacks().Attack(Blue, card, sq)
				red := Attacks().Attack(Red, card, NumSquares-1-sq)
				require.Equal(t, red, blue.Mirror(),
					"card %s square %d should mirror the red attack map", card, sq)
			}
		}
	})

	t.Run("padding bits stay clear", func(t *testing.T) {
		for _, card := range Catalog() {
			for sq := 0; sq < NumSquares; sq++ {
				for _, c := range []Color{Red, Blue} {
					require.Zero(t, Attacks().Attack(c, card, sq)&^BoardMask,
						"card %s square %d should not reach padding bits", card, sq)
				}
			}
		}
	})

	t.Run("centre origin reproduces the pattern", func(t *testing.T) {
		crab := MustCard("Crab")
		require.Equal(t, squares(7, 10, 14), Attacks().Attack(Red, crab, Center))
		require.Equal(t, squares(17, 10, 14), Attacks().Attack(Blue, crab, Center))
	})

	t.Run("sideways steps do not wrap across edges", func(t *testing.T) {
		crab := MustCard("Crab")
		require.Equal(t, squares(2), Attacks().Attack(Red, crab, 4),
			"from the top-right corner only the two-left step stays on the board")
		require.Equal(t, squares(15, 22), Attacks().Attack(Red, crab, 20))
		require.Equal(t, squares(17, 20, 24), Attacks().Attack(Red, crab, 22))
	})

	t.Run("two-step jumps fall off the board", func(t *testing.T) {
		tiger := MustCard("Tiger")
		require.Equal(t, squares(12), Attacks().Attack(Red, tiger, 22))
		require.Equal(t, squares(12), Attacks().Attack(Blue, tiger, 2))
		require.Equal(t, squares(7), Attacks().Attack(Red, tiger, 2), "only the backward step remains")
	})

	t.Run("every destination is a real displacement of the pattern", func(t *testing.T) {
		for _, card := range Catalog() {
			for sq := 0; sq < NumSquares; sq++ {
				targets := Attacks().Attack(Red, card, sq)
				for _, to := range targets.Squares() {
					dx := File(to) - File(sq)
					dy := Row(to) - Row(sq)
					require.True(t, card.Positions.Has(Center+dy*BoardWidth+dx),
						"card %s from %d to %d should be in the pattern", card, sq, to)
				}
			}
		}
	})
}

func TestBitboard(t *testing.T) {
	t.Run("square 0 is the most significant bit", func(t *testing.T) {
		require.Equal(t, Bitboard(1<<31), SquareMask(0))
		require.Equal(t, Bitboard(1<<7), SquareMask(24))
	})

	t.Run("pop yields squares in ascending order", func(t *testing.T) {
		b := squares(3, 24, 0, 12)
		require.Equal(t, []int{0, 3, 12, 24}, b.Squares())
		require.Equal(t, 0, b.First())
		require.Equal(t, -1, Bitboard(0).First())
	})

	t.Run("mirror maps square i to 24-i", func(t *testing.T) {
		for sq := 0; sq < NumSquares; sq++ {
			require.Equal(t, SquareMask(NumSquares-1-sq), SquareMask(sq).Mirror())
		}
	})
}
