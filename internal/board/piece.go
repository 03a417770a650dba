package board

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = iota
	Black
)

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

// FENChar is "w" or "b".
func (c Color) FENChar() string {
	if c == Black {
		return "b"
	}
	return "w"
}

func (c Color) String() string {
	if c == Black {
		return "black"
	}
	return "white"
}

// ParseColor accepts "w", "white", "b" and "black" in any case.
func ParseColor(s string) (Color, bool) {
	switch s {
	case "w", "W", "white", "White", "WHITE":
		return White, true
	case "b", "B", "black", "Black", "BLACK":
		return Black, true
	}
	return White, false
}

// Kind is a piece kind without color. The values are the magnitudes of the
// signed piece codes stored in the grid.
type Kind int8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

const kindLetters = ".PNBRQK"

// Letter returns the upper-case notation letter ('P' for pawns).
func (k Kind) Letter() byte {
	if k < NoKind || k > King {
		return '?'
	}
	return kindLetters[k]
}

// KindFromLetter maps N, B, R, Q, K, P (either case) to a kind.
func KindFromLetter(c byte) Kind {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	for k := Pawn; k <= King; k++ {
		if kindLetters[k] == c {
			return k
		}
	}
	return NoKind
}

// Piece is a signed piece code: positive for White, negative for Black,
// magnitude 1 (pawn) through 6 (king). Zero is an empty square.
type Piece int8

// NoPiece is an empty square.
const NoPiece Piece = 0

// NewPiece combines a kind and a color.
func NewPiece(k Kind, c Color) Piece {
	if c == Black {
		return Piece(-k)
	}
	return Piece(k)
}

// Kind strips the color.
func (p Piece) Kind() Kind {
	if p < 0 {
		return Kind(-p)
	}
	return Kind(p)
}

// Color is only meaningful for non-empty pieces.
func (p Piece) Color() Color {
	if p < 0 {
		return Black
	}
	return White
}

// Char returns the FEN letter, upper case for White, or '.' when empty.
func (p Piece) Char() byte {
	if p == NoPiece {
		return '.'
	}
	c := p.Kind().Letter()
	if p < 0 {
		c += 'a' - 'A'
	}
	return c
}

// PieceFromChar parses a FEN piece letter.
func PieceFromChar(c byte) Piece {
	k := KindFromLetter(c)
	if k == NoKind {
		return NoPiece
	}
	if c >= 'a' && c <= 'z' {
		return NewPiece(k, Black)
	}
	return NewPiece(k, White)
}
