package san

import "github.com/freeeve/repertoire/internal/board"

// Options tunes candidate filtering.
type Options struct {
	// VerifySingleCandidate applies the own-king safety filter even when only
	// one candidate origin exists. Without it a lone pseudo-legal candidate
	// is accepted as is, which matches how existing study data was recorded.
	VerifySingleCandidate bool
}

// Resolver maps tokens to moves. It holds no position state and is safe for
// concurrent use.
type Resolver struct {
	opts Options
}

// NewResolver returns a resolver using opts.
func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Loose accepts a unique pseudo-legal candidate without a self-check test.
var Loose = NewResolver(Options{})

// Strict always discards candidates that leave the mover's king attacked.
var Strict = NewResolver(Options{VerifySingleCandidate: true})

// Resolution is the outcome of resolving one token.
type Resolution struct {
	Move       board.Move
	Token      Token
	Candidates board.Bitboard // origins that survived filtering
	Ambiguous  bool
	FEN        string // position the token was resolved in
}

// Warning returns a MoveError wrapping ErrAmbiguousMove when the resolution
// had to pick between several origins, or nil.
func (r Resolution) Warning() error {
	if !r.Ambiguous {
		return nil
	}
	return &MoveError{Token: r.Token.Raw, FEN: r.FEN, Err: ErrAmbiguousMove}
}

// Resolve finds the move token describes in p without modifying p.
func (r *Resolver) Resolve(p *board.Position, token string) (Resolution, error) {
	res := Resolution{FEN: p.FEN()}
	fail := func(cause error) (Resolution, error) {
		return res, &MoveError{Token: token, FEN: res.FEN, Err: ErrUnresolvedMove, Cause: cause}
	}

	tok, err := ParseToken(token)
	if err != nil {
		return fail(err)
	}
	res.Token = tok
	side := p.SideToMove

	if tok.IsCastle() {
		m, err := p.CastleMove(side, tok.Castle == CastleKingSide)
		if err != nil {
			return fail(err)
		}
		res.Move = m
		res.Candidates = board.SquareBB(m.From())
		return res, nil
	}

	var candidates board.Bitboard
	if tok.Kind == board.Pawn {
		if tok.pawnCapture() {
			candidates = p.PawnCaptureOrigins(side, tok.Dest)
		} else {
			candidates = p.PawnPushOrigins(side, tok.Dest)
		}
	} else {
		candidates = p.Origins(side, tok.Kind, tok.Dest)
		// a two-square king step is only reachable by castling
		candidates &^= castleOrigin(tok.Dest, p.KingSquare(side))
	}
	if tok.FromFile >= 0 {
		candidates &= board.FileMask[tok.FromFile]
	}
	if tok.FromRank >= 0 {
		candidates &= board.RankMask[tok.FromRank]
	}

	promo := tok.Promotion
	lastRank := tok.Dest.Rank() == 7 || tok.Dest.Rank() == 0
	switch {
	case tok.Kind == board.Pawn && lastRank && promo == board.NoKind:
		promo = board.Queen
	case promo != board.NoKind && (tok.Kind != board.Pawn || !lastRank):
		return fail(nil)
	}

	if candidates.Count() > 1 || (r.opts.VerifySingleCandidate && candidates != 0) {
		for _, from := range candidates.Squares() {
			if p.LeavesKingAttacked(board.NewMove(from, tok.Dest, promo)) {
				candidates &^= board.SquareBB(from)
			}
		}
	}

	switch candidates.Count() {
	case 0:
		return fail(nil)
	case 1:
	default:
		res.Ambiguous = true
	}
	res.Candidates = candidates
	res.Move = board.NewMove(candidates.LSB(), tok.Dest, promo)
	return res, nil
}

// Apply resolves token and plays it on p. On error p is unchanged.
func (r *Resolver) Apply(p *board.Position, token string) (Resolution, error) {
	res, err := r.Resolve(p, token)
	if err != nil {
		return res, err
	}
	if err := p.ApplyMove(res.Move); err != nil {
		return res, &MoveError{Token: token, FEN: res.FEN, Err: ErrUnresolvedMove, Cause: err}
	}
	return res, nil
}

func castleOrigin(dest, king board.Square) board.Bitboard {
	if king.Valid() && dest.Rank() == king.Rank() && abs(dest.File()-king.File()) == 2 {
		return board.SquareBB(king)
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
