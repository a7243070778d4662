package game

import (
	"math/bits"
	"strings"
)

const (
	BoardWidth = 5
	NumSquares = BoardWidth * BoardWidth
	Center     = NumSquares / 2
)

// Bitboard holds one bit per square in its 25 most significant bits, square 0
// at bit 31. The 7 low bits are padding and always zero.
type Bitboard uint32

const BoardMask Bitboard = 0xFFFFFF80

var fileMasks = buildFileMasks()

func buildFileMasks() [BoardWidth]Bitboard {
	var masks [BoardWidth]Bitboard
	for sq := 0; sq < NumSquares; sq++ {
		masks[sq%BoardWidth] |= SquareMask(sq)
	}
	return masks
}

func SquareMask(sq int) Bitboard {
	return 1 << (31 - uint(sq))
}

func (b Bitboard) Has(sq int) bool {
	return b&SquareMask(sq) != 0
}

func (b Bitboard) Count() int {
	return bits.OnesCount32(uint32(b))
}

func (b Bitboard) Empty() bool {
	return b == 0
}

// First returns the lowest-numbered occupied square, or -1 when empty.
func (b Bitboard) First() int {
	if b == 0 {
		return -1
	}
	return bits.LeadingZeros32(uint32(b))
}

// Pop removes and returns the lowest-numbered occupied square.
func (b *Bitboard) Pop() int {
	sq := bits.LeadingZeros32(uint32(*b))
	*b &^= SquareMask(sq)
	return sq
}

// Squares lists occupied squares in ascending order.
func (b Bitboard) Squares() []int {
	out := make([]int, 0, b.Count())
	for b != 0 {
		out = append(out, b.Pop())
	}
	return out
}

// Mirror rotates the board by 180 degrees: square i moves to 24-i.
func (b Bitboard) Mirror() Bitboard {
	return Bitboard(bits.Reverse32(uint32(b))<<7) & BoardMask
}

func (b Bitboard) String() string {
	var sb strings.Builder
	for sq := 0; sq < NumSquares; sq++ {
		if b.Has(sq) {
			sb.WriteByte('x')
		} else {
			sb.WriteByte('.')
		}
		if sq%BoardWidth == BoardWidth-1 && sq != NumSquares-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func Row(sq int) int  { return sq / BoardWidth }
func File(sq int) int { return sq % BoardWidth }
