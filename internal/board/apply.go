package board

import "fmt"

// ApplyMove plays m in place. It is the only mutator: every piece-specific
// move goes through here. The move is assumed pseudo-legal; only the origin
// square is checked.
func (p *Position) ApplyMove(m Move) error {
	from, to := m.From(), m.To()
	pc := p.PieceAt(from)
	if pc == NoPiece {
		return fmt.Errorf("%w: %s", ErrEmptyOrigin, from)
	}
	mover := pc.Color()
	if mover != p.SideToMove {
		return fmt.Errorf("%w: %s", ErrWrongSide, from)
	}
	kind := pc.Kind()
	captured := p.PieceAt(to)

	switch {
	case kind == Pawn && to == p.EnPassant && captured == NoPiece && from.File() != to.File():
		// the captured pawn sits beside the origin, behind the destination
		behind := NewSquare(to.File(), from.Rank())
		captured = p.PieceAt(behind)
		p.put(behind, NoPiece)
	case kind == King && abs(to.File()-from.File()) == 2:
		cs := castleSpecs[mover][castleSide(to.File() > from.File())]
		p.put(cs.rook, NoPiece)
		p.put(cs.rookTo, NewPiece(Rook, mover))
	}

	p.put(from, NoPiece)
	if kind == Pawn && (to.Rank() == 0 || to.Rank() == 7) {
		promo := m.Promotion()
		if promo == NoKind {
			promo = Queen
		}
		p.put(to, NewPiece(promo, mover))
	} else {
		p.put(to, pc)
	}

	p.Castling &^= homeRights[from] | homeRights[to]
	if kind == King {
		p.Castling &^= sideRights(mover)
	}

	p.EnPassant = NoSquare
	if kind == Pawn && abs(to.Rank()-from.Rank()) == 2 {
		p.EnPassant = NewSquare(from.File(), (from.Rank()+to.Rank())/2)
	}

	if kind == Pawn || captured != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if mover == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = mover.Other()

	p.refresh()
	return nil
}

// Castle plays the requested castle for the side to move.
func (p *Position) Castle(kingSide bool) error {
	m, err := p.CastleMove(p.SideToMove, kingSide)
	if err != nil {
		return err
	}
	return p.ApplyMove(m)
}

// LeavesKingAttacked reports whether playing m would leave the mover's own
// king attacked. p is not modified.
func (p *Position) LeavesKingAttacked(m Move) bool {
	scratch := p.Copy()
	mover := scratch.SideToMove
	if err := scratch.ApplyMove(m); err != nil {
		return true
	}
	return scratch.InCheck(mover)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
