package game

// AttackTable maps (color, card identity, origin square) to the squares a
// piece on origin reaches with that card. It is built once at start-up and
// only read afterwards, so it is shared freely between goroutines.
type AttackTable [NumColors][NumCards][NumSquares]Bitboard

var attacks = newAttackTable()

// Attacks exposes the process-wide table.
func Attacks() *AttackTable {
	return &attacks
}

func newAttackTable() AttackTable {
	var t AttackTable
	for _, card := range catalog {
		for sq := 0; sq < NumSquares; sq++ {
			t[Red][card.ID][sq] = shiftPattern(card.Positions, sq)
			t[Blue][card.ID][sq] = shiftPattern(card.Mirrored, sq)
		}
	}
	return t
}

// Attack returns reachable squares for a piece of color on sq using card.
func (t *AttackTable) Attack(color Color, card Card, sq int) Bitboard {
	return t[color][card.ID][sq]
}

// shiftPattern moves a pattern centred on square 12 so it is centred on
// origin. A linear shift by n squares lets bits spill into the neighbouring
// row, so the files that wrapped across the left or right edge are cleared
// according to n mod 5.
func shiftPattern(pattern Bitboard, origin int) Bitboard {
	n := origin - Center
	var shifted Bitboard
	switch {
	case n == 0:
		return pattern & BoardMask
	case n > 0:
		shifted = pattern >> uint(n)
	default:
		shifted = pattern << uint(-n)
	}

	switch ((n % BoardWidth) + BoardWidth) % BoardWidth {
	case 1: // one file to the right
		shifted &^= fileMasks[0]
	case 2:
		shifted &^= fileMasks[0] | fileMasks[1]
	case 3: // two files to the left
		shifted &^= fileMasks[3] | fileMasks[4]
	case 4:
		shifted &^= fileMasks[4]
	}
	return shifted & BoardMask
}
