package game

import "fmt"

type Piece uint8

const (
	Pawn Piece = iota
	King
)

func (p Piece) String() string {
	if p == King {
		return "king"
	}
	return "pawn"
}

// Move is a single piece displacement.
type Move struct {
	From  uint8
	To    uint8
	Piece Piece
}

func (m Move) String() string {
	return fmt.Sprintf("%s %d->%d", m.Piece, m.From, m.To)
}

// DoneMove is a Move plus the held-card slot (0 or 1) used to make it. A pass
// rotates Card with the neutral card without moving any piece.
type DoneMove struct {
	Move
	Card int
	Pass bool
}

func PassMove(card int) DoneMove {
	return DoneMove{Card: card, Pass: true}
}

func (d DoneMove) String() string {
	if d.Pass {
		return fmt.Sprintf("pass card %d", d.Card)
	}
	return fmt.Sprintf("%s card %d", d.Move, d.Card)
}
