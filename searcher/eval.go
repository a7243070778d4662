package searcher

import (
	"math"

	"onitama/game"
)

const (
	PawnWeight      = 100.0
	KingWeight      = 400.0
	SquareWeight    = 4.0
	TempleWeight    = 15.0 // Per square of king distance to the enemy temple
	ProximityWeight = 2.0  // Per square closer to the enemy king
)

// Central squares are worth more.
var pieceSquare = [game.NumSquares]float64{
	0, 1, 2, 1, 0,
	1, 3, 4, 3, 1,
	2, 4, 6, 4, 2,
	1, 3, 4, 3, 1,
	0, 1, 2, 1, 0,
}

var maxDistance = math.Hypot(game.BoardWidth-1, game.BoardWidth-1)

func distance(a, b int) float64 {
	return math.Hypot(float64(game.Row(a)-game.Row(b)), float64(game.File(a)-game.File(b)))
}

// Evaluate scores a position statically, positive when Red stands better.
func Evaluate(s *game.State) float64 {
	return evaluateSide(s, game.Red) - evaluateSide(s, game.Blue)
}

func evaluateSide(s *game.State, c game.Color) float64 {
	score := PawnWeight*float64(s.Pawns[c].Count()) + KingWeight*float64(s.Kings[c].Count())

	enemyKing := s.Kings[c.Opponent()].First()
	pieces := s.Pieces(c)
	for pieces != 0 {
		sq := pieces.Pop()
		score += SquareWeight * pieceSquare[sq]
		if enemyKing >= 0 {
			score += ProximityWeight * (maxDistance - distance(sq, enemyKing))
		}
	}

	if king := s.Kings[c].First(); king >= 0 {
		score -= TempleWeight * distance(king, game.Temple(c.Opponent()))
	}
	return score
}
