package game

import (
	"fmt"
	"strings"

	"golang.org/x/exp/rand"
)

// Temple squares: each king starts on its own temple.
const (
	RedTemple  = 22
	BlueTemple = 2
)

func Temple(c Color) int {
	if c == Red {
		return RedTemple
	}
	return BlueTemple
}

// State is the full board. It has no pointers, so `next := s` is a complete
// clone.
type State struct {
	Deck  Deck
	Pawns [NumColors]Bitboard
	Kings [NumColors]Bitboard
}

var (
	startRedPawns  = SquareMask(20) | SquareMask(21) | SquareMask(23) | SquareMask(24)
	startBluePawns = SquareMask(0) | SquareMask(1) | SquareMask(3) | SquareMask(4)
)

// NewState places both armies on their home rows.
func NewState(deck Deck) State {
	return State{
		Deck:  deck,
		Pawns: [NumColors]Bitboard{startRedPawns, startBluePawns},
		Kings: [NumColors]Bitboard{SquareMask(RedTemple), SquareMask(BlueTemple)},
	}
}

// NewRandomState starts a game with five random cards.
func NewRandomState(rng *rand.Rand) State {
	return NewState(NewRandomDeck(rng))
}

// StartingColor is the stamp color of the neutral card.
func (s *State) StartingColor() Color {
	return s.Deck.Neutral().Color
}

func (s *State) Pieces(c Color) Bitboard {
	return s.Pawns[c] | s.Kings[c]
}

// PieceAt reports the owner and kind of the piece on sq.
func (s *State) PieceAt(sq int) (Color, Piece, bool) {
	for c := Red; c <= Blue; c++ {
		if s.Pawns[c].Has(sq) {
			return c, Pawn, true
		}
		if s.Kings[c].Has(sq) {
			return c, King, true
		}
	}
	return Red, Pawn, false
}

// ApplyMove plays a move already produced by the move generator and rotates
// the used card. Legality is not re-checked; a move whose origin does not
// hold the stated piece panics.
func (s *State) ApplyMove(m Move, color Color, card int) Result {
	from, to := SquareMask(int(m.From)), SquareMask(int(m.To))
	own := &s.Pawns[color]
	if m.Piece == King {
		own = &s.Kings[color]
	}
	if *own&from == 0 || s.Pieces(color)&to != 0 {
		panic(fmt.Sprintf("apply %v for %v: %v", m, color, ErrIllegalMove))
	}
	*own &^= from

	result := InProgress
	enemy := color.Opponent()
	if s.Pawns[enemy]&to != 0 {
		s.Pawns[enemy] &^= to
		result = Capture
	} else if s.Kings[enemy]&to != 0 {
		s.Kings[enemy] &^= to
		result = color.WinFor()
	}
	*own |= to

	if m.Piece == King && int(m.To) == Temple(enemy) {
		result = color.WinFor()
	}

	s.Deck.Rotate(color, card)
	return result
}

// Pass swaps a held card with the neutral card. Only valid when color has no
// legal move with either card.
func (s *State) Pass(color Color, card int) Result {
	s.Deck.Rotate(color, card)
	return InProgress
}

// Play applies a move or a pass.
func (s *State) Play(d DoneMove, color Color) Result {
	if d.Pass {
		return s.Pass(color, d.Card)
	}
	return s.ApplyMove(d.Move, color, d.Card)
}

// CurrentResult inspects the kings without playing a move.
func (s *State) CurrentResult() Result {
	switch {
	case s.Kings[Red] == 0:
		return BlueWin
	case s.Kings[Blue] == 0:
		return RedWin
	case s.Kings[Red] == SquareMask(BlueTemple):
		return RedWin
	case s.Kings[Blue] == SquareMask(RedTemple):
		return BlueWin
	}
	return InProgress
}

func (s *State) IsTerminal() bool {
	return s.CurrentResult().IsWin()
}

// String draws the board with R/B kings and r/b pawns, row 0 on top.
func (s State) String() string {
	var sb strings.Builder
	for sq := 0; sq < NumSquares; sq++ {
		ch := byte('.')
		if c, p, ok := s.PieceAt(sq); ok {
			ch = "rbRB"[int(p)*2+int(c)]
		}
		sb.WriteByte(ch)
		if File(sq) == BoardWidth-1 {
			sb.WriteByte('\n')
		}
	}
	fmt.Fprintf(&sb, "cards: red %s %s | blue %s %s | neutral %s",
		s.Deck.Card(Red, 0), s.Deck.Card(Red, 1),
		s.Deck.Card(Blue, 0), s.Deck.Card(Blue, 1), s.Deck.Neutral())
	return sb.String()
}
