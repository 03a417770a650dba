// Package san resolves algebraic move tokens such as "Nbd2", "exd6", "O-O"
// or "e8=Q" against a board.Position.
package san

import (
	"fmt"
	"strings"

	"github.com/freeeve/repertoire/internal/board"
)

// Castle kinds carried by a Token.
const (
	NoCastle = iota
	CastleKingSide
	CastleQueenSide
)

// Token is a parsed move token. FromFile and FromRank are -1 when the token
// carries no disambiguator.
type Token struct {
	Raw        string
	Label      string // Raw without move annotations
	Annotation string // "!", "?!", ... or empty
	Kind       board.Kind
	Castle     int
	Dest       board.Square
	FromFile   int
	FromRank   int
	Capture    bool
	Promotion  board.Kind
}

// ParseToken parses one move token. It does not consult any position.
func ParseToken(raw string) (Token, error) {
	tok := Token{Raw: raw, Dest: board.NoSquare, FromFile: -1, FromRank: -1}
	s := strings.TrimSpace(raw)

	// trailing decorations may be mixed, e.g. "Nf3+!?"
	end := len(s)
	for end > 0 && strings.IndexByte("+#!?", s[end-1]) >= 0 {
		end--
	}
	for i := end; i < len(s); i++ {
		if s[i] == '!' || s[i] == '?' {
			tok.Annotation += string(s[i])
		}
	}
	tok.Label = strings.TrimRight(s, "!?")
	s = s[:end]
	if s == "" {
		return tok, fmt.Errorf("%w: empty token", ErrUnresolvedMove)
	}

	switch strings.ToUpper(strings.ReplaceAll(s, "0", "O")) {
	case "O-O":
		tok.Kind, tok.Castle = board.King, CastleKingSide
		return tok, nil
	case "O-O-O":
		tok.Kind, tok.Castle = board.King, CastleQueenSide
		return tok, nil
	}

	if i := strings.IndexByte(s, '='); i >= 0 {
		if i != len(s)-2 {
			return tok, fmt.Errorf("%w: bad promotion in %q", ErrUnresolvedMove, raw)
		}
		tok.Promotion = board.KindFromLetter(s[i+1])
		s = s[:i]
	} else if last := s[len(s)-1]; strings.IndexByte("NBRQ", last) >= 0 {
		tok.Promotion = board.KindFromLetter(last)
		s = s[:len(s)-1]
	}
	switch tok.Promotion {
	case board.NoKind, board.Knight, board.Bishop, board.Rook, board.Queen:
	default:
		return tok, fmt.Errorf("%w: bad promotion in %q", ErrUnresolvedMove, raw)
	}

	tok.Kind = board.Pawn
	if len(s) > 0 && strings.IndexByte("NBRQK", s[0]) >= 0 {
		tok.Kind = board.KindFromLetter(s[0])
		s = s[1:]
	}

	// a capture marker or long-form '-' may only sit right before the
	// destination square
	if i := strings.IndexAny(s, "x:-"); i >= 0 {
		if i != len(s)-3 {
			return tok, fmt.Errorf("%w: misplaced %q in %q", ErrUnresolvedMove, s[i], raw)
		}
		tok.Capture = s[i] != '-'
		s = s[:i] + s[i+1:]
	}
	if len(s) < 2 || len(s) > 4 {
		return tok, fmt.Errorf("%w: cannot read %q", ErrUnresolvedMove, raw)
	}

	dest, err := board.ParseSquare(s[len(s)-2:])
	if err != nil {
		return tok, fmt.Errorf("%w: bad destination in %q", ErrUnresolvedMove, raw)
	}
	tok.Dest = dest

	for i := 0; i < len(s)-2; i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'h' && tok.FromFile < 0:
			tok.FromFile = int(c - 'a')
		case c >= '1' && c <= '8' && tok.FromRank < 0:
			tok.FromRank = int(c - '1')
		default:
			return tok, fmt.Errorf("%w: bad disambiguator in %q", ErrUnresolvedMove, raw)
		}
	}
	return tok, nil
}

// IsCastle reports whether the token names a castle.
func (t Token) IsCastle() bool { return t.Castle != NoCastle }

// pawnCapture reports whether a pawn token moves diagonally.
func (t Token) pawnCapture() bool {
	return t.Capture || (t.FromFile >= 0 && t.FromFile != t.Dest.File())
}
