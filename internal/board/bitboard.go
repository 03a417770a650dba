package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a 64-bit square set. Bit 0 = a1, bit 7 = h1, bit 63 = h8.
type Bitboard uint64

// File masks
const (
	FileA Bitboard = 0x0101010101010101
	FileB Bitboard = 0x0202020202020202
	FileC Bitboard = 0x0404040404040404
	FileD Bitboard = 0x0808080808080808
	FileE Bitboard = 0x1010101010101010
	FileF Bitboard = 0x2020202020202020
	FileG Bitboard = 0x4040404040404040
	FileH Bitboard = 0x8080808080808080
)

// Rank masks
const (
	Rank1 Bitboard = 0x00000000000000FF
	Rank2 Bitboard = 0x000000000000FF00
	Rank3 Bitboard = 0x0000000000FF0000
	Rank4 Bitboard = 0x00000000FF000000
	Rank5 Bitboard = 0x000000FF00000000
	Rank6 Bitboard = 0x0000FF0000000000
	Rank7 Bitboard = 0x00FF000000000000
	Rank8 Bitboard = 0xFF00000000000000
)

// FileMask indexes the file masks by file number (0 = a).
var FileMask = [8]Bitboard{FileA, FileB, FileC, FileD, FileE, FileF, FileG, FileH}

// RankMask indexes the rank masks by rank number (0 = first rank).
var RankMask = [8]Bitboard{Rank1, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8}

// SquareBB returns a bitboard with only sq set, or an empty one for NoSquare.
func SquareBB(sq Square) Bitboard {
	if !sq.Valid() {
		return 0
	}
	return 1 << uint(sq)
}

// Has reports whether sq is set.
func (b Bitboard) Has(sq Square) bool {
	return b&SquareBB(sq) != 0
}

// Count returns the number of set squares.
func (b Bitboard) Count() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the lowest set square.
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB clears and returns the lowest set square.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Squares lists the set squares in ascending order.
func (b Bitboard) Squares() []Square {
	out := make([]Square, 0, b.Count())
	for b != 0 {
		out = append(out, b.PopLSB())
	}
	return out
}

// String draws the bitboard with rank 8 on top.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(byte('1' + rank))
		for file := 0; file < 8; file++ {
			sb.WriteByte(' ')
			if b.Has(NewSquare(file, rank)) {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}

// step is one shift of a whole bitboard. keep masks out the squares that would
// wrap around a board edge before the shift is applied.
type step struct {
	shift int
	keep  Bitboard
}

func (s step) apply(b Bitboard) Bitboard {
	b &= s.keep
	if s.shift > 0 {
		return b << uint(s.shift)
	}
	return b >> uint(-s.shift)
}

var (
	north     = step{8, ^Rank8}
	south     = step{-8, ^Rank1}
	east      = step{1, ^FileH}
	west      = step{-1, ^FileA}
	northEast = step{9, ^(FileH | Rank8)}
	northWest = step{7, ^(FileA | Rank8)}
	southEast = step{-7, ^(FileH | Rank1)}
	southWest = step{-9, ^(FileA | Rank1)}
)

var (
	rookRays   = [4]step{north, south, east, west}
	bishopRays = [4]step{northEast, northWest, southEast, southWest}
	kingSteps  = [8]step{north, south, east, west, northEast, northWest, southEast, southWest}
)

var knightJumps = [8]step{
	{17, ^(FileH | Rank7 | Rank8)},
	{15, ^(FileA | Rank7 | Rank8)},
	{10, ^(FileG | FileH | Rank8)},
	{6, ^(FileA | FileB | Rank8)},
	{-6, ^(FileG | FileH | Rank1)},
	{-10, ^(FileA | FileB | Rank1)},
	{-15, ^(FileH | Rank1 | Rank2)},
	{-17, ^(FileA | Rank1 | Rank2)},
}

// slide walks every set square of from along each ray one step at a time,
// stopping a ray at the first occupied square (which is included).
func slide(from, empty Bitboard, rays []step) Bitboard {
	var out Bitboard
	for _, r := range rays {
		ray := from
		for {
			ray = r.apply(ray)
			if ray == 0 {
				break
			}
			out |= ray
			ray &= empty
		}
	}
	return out
}

func leap(from Bitboard, steps []step) Bitboard {
	var out Bitboard
	for _, s := range steps {
		out |= s.apply(from)
	}
	return out
}
