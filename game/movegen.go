package game

import "fmt"

// AppendLegalMoves appends every move color can make with card to dst.
func AppendLegalMoves(dst []Move, s *State, color Color, card Card) []Move {
	own := s.Pieces(color)
	table := &attacks[color][card.ID]

	pawns := s.Pawns[color]
	for pawns != 0 {
		from := pawns.Pop()
		dst = appendTargets(dst, from, table[from]&^own, Pawn)
	}
	kings := s.Kings[color]
	for kings != 0 {
		from := kings.Pop()
		dst = appendTargets(dst, from, table[from]&^own, King)
	}
	return dst
}

func appendTargets(dst []Move, from int, targets Bitboard, piece Piece) []Move {
	for targets != 0 {
		dst = append(dst, Move{From: uint8(from), To: uint8(targets.Pop()), Piece: piece})
	}
	return dst
}

// LegalMoves lists the moves color can make with card. An empty result is
// normal and feeds the pass rule.
func LegalMoves(s *State, color Color, card Card) []Move {
	return AppendLegalMoves(nil, s, color, card)
}

// AppendLegalMovesAll appends the moves for both held cards, tagged with the
// slot of the card used.
func AppendLegalMovesAll(dst []DoneMove, s *State, color Color) []DoneMove {
	var buf [2 * NumSquares]Move
	for i := 0; i < HandSize; i++ {
		moves := AppendLegalMoves(buf[:0], s, color, s.Deck.Card(color, i))
		for _, m := range moves {
			dst = append(dst, DoneMove{Move: m, Card: i})
		}
	}
	return dst
}

// LegalMovesAll is the union of LegalMoves over both held cards.
func LegalMovesAll(s *State, color Color) []DoneMove {
	return AppendLegalMovesAll(nil, s, color)
}

// Candidates returns the legal moves, or both pass options when there are
// none.
func Candidates(s *State, color Color) []DoneMove {
	return AppendCandidates(nil, s, color)
}

func AppendCandidates(dst []DoneMove, s *State, color Color) []DoneMove {
	n := len(dst)
	dst = AppendLegalMovesAll(dst, s, color)
	if len(dst) == n {
		dst = append(dst, PassMove(0), PassMove(1))
	}
	return dst
}

// IsLegal validates a move or pass proposed by an outside caller.
func IsLegal(s *State, color Color, d DoneMove) error {
	if d.Card < 0 || d.Card >= HandSize {
		return fmt.Errorf("card slot %d: %w", d.Card, ErrIllegalMove)
	}
	moves := LegalMovesAll(s, color)
	if d.Pass {
		if len(moves) > 0 {
			return fmt.Errorf("pass with %d moves available: %w", len(moves), ErrIllegalMove)
		}
		return nil
	}
	for _, m := range moves {
		if m == d {
			return nil
		}
	}
	return fmt.Errorf("%v for %v: %w", d, color, ErrIllegalMove)
}
