package board

// CastlingRights holds the four independent castling bits.
type CastlingRights uint8

const (
	WhiteKingSide CastlingRights = 1 << iota
	WhiteQueenSide
	BlackKingSide
	BlackQueenSide

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSide | WhiteQueenSide | BlackKingSide | BlackQueenSide
)

// String returns the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	b := make([]byte, 0, 4)
	if cr&WhiteKingSide != 0 {
		b = append(b, 'K')
	}
	if cr&WhiteQueenSide != 0 {
		b = append(b, 'Q')
	}
	if cr&BlackKingSide != 0 {
		b = append(b, 'k')
	}
	if cr&BlackQueenSide != 0 {
		b = append(b, 'q')
	}
	return string(b)
}

func sideRights(c Color) CastlingRights {
	if c == Black {
		return BlackKingSide | BlackQueenSide
	}
	return WhiteKingSide | WhiteQueenSide
}

// homeRights maps king and rook home squares to the rights lost when the
// square is vacated or captured on.
var homeRights = map[Square]CastlingRights{
	A1: WhiteQueenSide,
	E1: WhiteKingSide | WhiteQueenSide,
	H1: WhiteKingSide,
	A8: BlackQueenSide,
	E8: BlackKingSide | BlackQueenSide,
	H8: BlackKingSide,
}

// Position is a full board state. The grid is authoritative; the bitboards are
// derived from it and rebuilt by every mutating method before it returns.
// A Position is not safe for concurrent use.
type Position struct {
	grid [8][8]Piece // [rank][file]

	pieces   [2][7]Bitboard // [color][kind], kind 0 unused
	occupied [2]Bitboard
	all      Bitboard

	SideToMove     Color
	Castling       CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int
}

// New returns the standard starting position.
func New() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

// Copy returns an independent copy.
func (p *Position) Copy() *Position {
	cp := *p
	return &cp
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return p.grid[sq.Rank()][sq.File()]
}

func (p *Position) put(sq Square, pc Piece) {
	p.grid[sq.Rank()][sq.File()] = pc
}

// Pieces returns the squares holding pieces of kind k and color c.
func (p *Position) Pieces(c Color, k Kind) Bitboard {
	if k <= NoKind || k > King {
		return 0
	}
	return p.pieces[c][k]
}

// Occupied returns every square holding a piece of color c.
func (p *Position) Occupied(c Color) Bitboard { return p.occupied[c] }

// All returns every occupied square.
func (p *Position) All() Bitboard { return p.all }

// Empty returns every vacant square.
func (p *Position) Empty() Bitboard { return ^p.all }

// KingSquare returns the square of c's king, or NoSquare when absent.
func (p *Position) KingSquare(c Color) Square {
	return p.pieces[c][King].LSB()
}

// refresh rebuilds all bitboards from the grid.
func (p *Position) refresh() {
	p.pieces = [2][7]Bitboard{}
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			pc := p.grid[rank][file]
			if pc == NoPiece {
				continue
			}
			p.pieces[pc.Color()][pc.Kind()] |= 1 << uint(rank*8+file)
		}
	}
	for c := White; c <= Black; c++ {
		var occ Bitboard
		for k := Pawn; k <= King; k++ {
			occ |= p.pieces[c][k]
		}
		p.occupied[c] = occ
	}
	p.all = p.occupied[White] | p.occupied[Black]
}

// String draws the grid from White's side using FEN letters.
func (p *Position) String() string {
	b := make([]byte, 0, 8*18+18)
	for rank := 7; rank >= 0; rank-- {
		b = append(b, byte('1'+rank))
		for file := 0; file < 8; file++ {
			b = append(b, ' ', p.grid[rank][file].Char())
		}
		b = append(b, '\n')
	}
	b = append(b, "  a b c d e f g h\n"...)
	return string(b)
}
