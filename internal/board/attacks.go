package board

// Generators in this file never fail. They return pseudo-legal square sets;
// whether a move leaves the mover's king attacked is the caller's concern.

func pawnForward(c Color) step {
	if c == Black {
		return south
	}
	return north
}

func pawnBackward(c Color) step {
	if c == Black {
		return north
	}
	return south
}

// pawnAttacks returns the squares attacked by pawns of color c standing on
// pawns, regardless of what occupies them.
func pawnAttacks(c Color, pawns Bitboard) Bitboard {
	if c == Black {
		return southEast.apply(pawns) | southWest.apply(pawns)
	}
	return northEast.apply(pawns) | northWest.apply(pawns)
}

// doublePushRank is the rank a pawn lands on after one step from its home rank.
func doublePushRank(c Color) Bitboard {
	if c == Black {
		return Rank6
	}
	return Rank3
}

// reach returns the squares a piece of kind k on from can move to or capture
// on, given the current occupancy. Pawns are not handled here.
func (p *Position) reach(k Kind, from Bitboard) Bitboard {
	empty := p.Empty()
	switch k {
	case Knight:
		return leap(from, knightJumps[:])
	case Bishop:
		return slide(from, empty, bishopRays[:])
	case Rook:
		return slide(from, empty, rookRays[:])
	case Queen:
		return slide(from, empty, bishopRays[:]) | slide(from, empty, rookRays[:])
	case King:
		return leap(from, kingSteps[:])
	}
	return 0
}

// PawnPushes returns the empty squares c's pawns can advance to, including
// double pushes from the home rank through an empty square.
func (p *Position) PawnPushes(c Color) Bitboard {
	fwd := pawnForward(c)
	empty := p.Empty()
	single := fwd.apply(p.pieces[c][Pawn]) & empty
	double := fwd.apply(single&doublePushRank(c)) & empty
	return single | double
}

// PawnCaptures returns the squares c's pawns can capture on: enemy pieces and
// the en-passant target.
func (p *Position) PawnCaptures(c Color) Bitboard {
	targets := p.occupied[c.Other()]
	if p.EnPassant.Valid() && p.SideToMove == c {
		targets |= SquareBB(p.EnPassant)
	}
	return pawnAttacks(c, p.pieces[c][Pawn]) & targets
}

// Destinations returns every square c's pieces of kind k can move to. King
// destinations include legal castling targets.
func (p *Position) Destinations(c Color, k Kind) Bitboard {
	switch k {
	case Pawn:
		return p.PawnPushes(c) | p.PawnCaptures(c)
	case King:
		return p.reach(King, p.pieces[c][King])&^p.occupied[c] | p.castleDestinations(c)
	case NoKind:
		return 0
	}
	return p.reach(k, p.pieces[c][k]) &^ p.occupied[c]
}

// Origins returns the squares of c's pieces of kind k that can move to dest.
// The generators are run backwards from dest, so only the pieces that matter
// are examined.
func (p *Position) Origins(c Color, k Kind, dest Square) Bitboard {
	if !dest.Valid() || p.occupied[c].Has(dest) {
		return 0
	}
	switch k {
	case Pawn:
		return p.PawnPushOrigins(c, dest) | p.PawnCaptureOrigins(c, dest)
	case King:
		origins := p.reach(King, SquareBB(dest)) & p.pieces[c][King]
		if p.castleDestinations(c).Has(dest) {
			origins |= p.pieces[c][King]
		}
		return origins
	case NoKind:
		return 0
	}
	return p.reach(k, SquareBB(dest)) & p.pieces[c][k]
}

// PawnPushOrigins returns c's pawns that can advance onto the empty square dest.
func (p *Position) PawnPushOrigins(c Color, dest Square) Bitboard {
	if p.all.Has(dest) {
		return 0
	}
	back := pawnBackward(c)
	one := back.apply(SquareBB(dest))
	origins := one & p.pieces[c][Pawn]
	if one&p.all == 0 && doubleTargetRank(c).Has(dest) {
		origins |= back.apply(one) & p.pieces[c][Pawn]
	}
	return origins
}

// PawnCaptureOrigins returns c's pawns that can capture on dest, which must hold
// an enemy piece or be the en-passant target.
func (p *Position) PawnCaptureOrigins(c Color, dest Square) Bitboard {
	if !p.occupied[c.Other()].Has(dest) && !(dest == p.EnPassant && p.SideToMove == c) {
		return 0
	}
	// a pawn of c attacks dest exactly when an enemy pawn on dest would attack it
	return pawnAttacks(c.Other(), SquareBB(dest)) & p.pieces[c][Pawn]
}

func doubleTargetRank(c Color) Bitboard {
	if c == Black {
		return Rank5
	}
	return Rank4
}

// Attacks returns every square attacked by c. Pawn attacks are diagonal
// only and count whether or not the square is occupied.
func (p *Position) Attacks(c Color) Bitboard {
	var out Bitboard
	out |= pawnAttacks(c, p.pieces[c][Pawn])
	for k := Knight; k <= King; k++ {
		out |= p.reach(k, p.pieces[c][k])
	}
	return out
}

// IsAttacked reports whether any square of squares is attacked by color by.
func (p *Position) IsAttacked(squares Bitboard, by Color) bool {
	return p.Attacks(by)&squares != 0
}

// InCheck reports whether c's king is attacked.
func (p *Position) InCheck(c Color) bool {
	king := p.pieces[c][King]
	return king != 0 && p.IsAttacked(king, c.Other())
}

type castleSpec struct {
	right   CastlingRights
	king    Square
	kingTo  Square
	rook    Square
	rookTo  Square
	between Bitboard // must be empty
	safe    Bitboard // king origin, transit and destination
}

var castleSpecs = [2][2]castleSpec{
	White: {
		{WhiteKingSide, E1, G1, H1, F1, SquareBB(F1) | SquareBB(G1), SquareBB(E1) | SquareBB(F1) | SquareBB(G1)},
		{WhiteQueenSide, E1, C1, A1, D1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), SquareBB(E1) | SquareBB(D1) | SquareBB(C1)},
	},
	Black: {
		{BlackKingSide, E8, G8, H8, F8, SquareBB(F8) | SquareBB(G8), SquareBB(E8) | SquareBB(F8) | SquareBB(G8)},
		{BlackQueenSide, E8, C8, A8, D8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), SquareBB(E8) | SquareBB(D8) | SquareBB(C8)},
	},
}

func castleSide(kingSide bool) int {
	if kingSide {
		return 0
	}
	return 1
}

func (p *Position) canCastle(c Color, cs castleSpec) bool {
	return p.Castling&cs.right != 0 &&
		p.PieceAt(cs.king) == NewPiece(King, c) &&
		p.PieceAt(cs.rook) == NewPiece(Rook, c) &&
		p.all&cs.between == 0 &&
		!p.IsAttacked(cs.safe, c.Other())
}

func (p *Position) castleDestinations(c Color) Bitboard {
	var out Bitboard
	for _, cs := range castleSpecs[c] {
		if p.canCastle(c, cs) {
			out |= SquareBB(cs.kingTo)
		}
	}
	return out
}

// CastleMove returns the king move for the requested castle, or
// ErrIllegalCastle when rights, empty squares or attacked squares forbid it.
func (p *Position) CastleMove(c Color, kingSide bool) (Move, error) {
	cs := castleSpecs[c][castleSide(kingSide)]
	if !p.canCastle(c, cs) {
		return 0, ErrIllegalCastle
	}
	return NewMove(cs.king, cs.kingTo, NoKind), nil
}
