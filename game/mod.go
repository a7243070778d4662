// Package game implements the 5x5 card-driven board: bitboards, cards, the
// deck rotation rule, attack maps and legal move generation.
//
// State is a handful of 32-bit words plus five small card values, so it is
// cloned by plain assignment for every hypothetical search line.
package game

import "errors"

type Color uint8

const (
	Red Color = iota
	Blue
)

const NumColors = 2

func (c Color) Opponent() Color {
	return c ^ 1
}

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "blue"
}

// WinFor returns the winning result for c.
func (c Color) WinFor() Result {
	if c == Red {
		return RedWin
	}
	return BlueWin
}

type Result uint8

const (
	InProgress Result = iota
	Capture
	RedWin
	BlueWin
)

func (r Result) IsWin() bool {
	return r == RedWin || r == BlueWin
}

// Winner reports the winning color of a terminal result.
func (r Result) Winner() (Color, bool) {
	switch r {
	case RedWin:
		return Red, true
	case BlueWin:
		return Blue, true
	}
	return Red, false
}

func (r Result) String() string {
	switch r {
	case InProgress:
		return "in progress"
	case Capture:
		return "capture"
	case RedWin:
		return "red win"
	case BlueWin:
		return "blue win"
	}
	return "unknown"
}

var (
	ErrDuplicateCard = errors.New("duplicate card in deck")
	ErrUnknownCard   = errors.New("unknown card")
	ErrIllegalMove   = errors.New("illegal move")
)
