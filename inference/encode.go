package inference

import (
	"math"

	"onitama/game"
)

// Planes, each 5x5, seen from the mover's side of the board (the mover's
// home row is always row 4).
const (
	planeOwnPawns = iota
	planeOwnKing
	planeEnemyPawns
	planeEnemyKing
	planeOwnCard0
	planeOwnCard1
	planeEnemyCard0
	planeEnemyCard1
	planeNeutralCard
	Channels
)

const (
	InputSize  = Channels * game.NumSquares
	PolicySize = game.HandSize * game.NumSquares
)

// orient maps an absolute square to the mover's view and back.
func orient(sq int, color game.Color) int {
	if color == game.Blue {
		return game.NumSquares - 1 - sq
	}
	return sq
}

// Encode writes the state tensor for color into a fresh slice.
func Encode(state game.State, color game.Color) []float32 {
	return EncodeInto(make([]float32, InputSize), state, color)
}

// EncodeInto overwrites dst, which must hold InputSize values.
func EncodeInto(dst []float32, state game.State, color game.Color) []float32 {
	dst = dst[:InputSize]
	clear(dst)
	enemy := color.Opponent()

	board := func(plane int, b game.Bitboard) {
		for b != 0 {
			dst[plane*game.NumSquares+orient(b.Pop(), color)] = 1
		}
	}
	board(planeOwnPawns, state.Pawns[color])
	board(planeOwnKing, state.Kings[color])
	board(planeEnemyPawns, state.Pawns[enemy])
	board(planeEnemyKing, state.Kings[enemy])

	// Card planes are already in the mover's view: own and neutral cards
	// point up, enemy cards point down.
	pattern := func(plane int, b game.Bitboard) {
		for b != 0 {
			dst[plane*game.NumSquares+b.Pop()] = 1
		}
	}
	pattern(planeOwnCard0, state.Deck.Card(color, 0).Positions)
	pattern(planeOwnCard1, state.Deck.Card(color, 1).Positions)
	pattern(planeEnemyCard0, state.Deck.Card(enemy, 0).Mirrored)
	pattern(planeEnemyCard1, state.Deck.Card(enemy, 1).Mirrored)
	pattern(planeNeutralCard, state.Deck.Neutral().Positions)
	return dst
}

// DecodePolicy converts PolicySize network outputs laid out as
// [card slot][square in the mover's view] into absolute squares.
func DecodePolicy(raw []float32, color game.Color) Policy {
	var p Policy
	for c := 0; c < game.HandSize; c++ {
		for sq := 0; sq < game.NumSquares; sq++ {
			p[c][orient(sq, color)] = raw[c*game.NumSquares+sq]
		}
	}
	return p
}

// EncodePolicy is the inverse of DecodePolicy: it lays p out as network
// outputs in color's view, for use as a training target.
func EncodePolicy(p Policy, color game.Color) []float32 {
	raw := make([]float32, PolicySize)
	for c := 0; c < game.HandSize; c++ {
		for sq := 0; sq < game.NumSquares; sq++ {
			raw[c*game.NumSquares+sq] = p[c][orient(sq, color)]
		}
	}
	return raw
}

// Softmax normalizes logits in place.
func Softmax(logits []float32) {
	if len(logits) == 0 {
		return
	}
	maxV := logits[0]
	for _, v := range logits[1:] {
		if v > maxV {
			maxV = v
		}
	}
	sum := float32(0)
	for i, v := range logits {
		e := float32(math.Exp(float64(v - maxV)))
		logits[i] = e
		sum += e
	}
	if sum > 0 {
		inv := 1 / sum
		for i := range logits {
			logits[i] *= inv
		}
	}
}
