package san

import (
	"errors"
	"testing"

	"github.com/freeeve/repertoire/internal/board"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		raw        string
		kind       board.Kind
		castle     int
		dest       string
		fromFile   int
		fromRank   int
		capture    bool
		promo      board.Kind
		label      string
		annotation string
	}{
		{"e4", board.Pawn, NoCastle, "e4", -1, -1, false, board.NoKind, "e4", ""},
		{"exd6", board.Pawn, NoCastle, "d6", 4, -1, true, board.NoKind, "exd6", ""},
		{"Nbd2", board.Knight, NoCastle, "d2", 1, -1, false, board.NoKind, "Nbd2", ""},
		{"R1a3", board.Rook, NoCastle, "a3", -1, 0, false, board.NoKind, "R1a3", ""},
		{"Qh4xe1", board.Queen, NoCastle, "e1", 7, 3, true, board.NoKind, "Qh4xe1", ""},
		{"Qh4+", board.Queen, NoCastle, "h4", -1, -1, false, board.NoKind, "Qh4+", ""},
		{"e8=Q#", board.Pawn, NoCastle, "e8", -1, -1, false, board.Queen, "e8=Q#", ""},
		{"e8=n", board.Pawn, NoCastle, "e8", -1, -1, false, board.Knight, "e8=n", ""},
		{"bxa1R", board.Pawn, NoCastle, "a1", 1, -1, true, board.Rook, "bxa1R", ""},
		{"Nf3!?", board.Knight, NoCastle, "f3", -1, -1, false, board.NoKind, "Nf3", "!?"},
		{"Bb5+?!", board.Bishop, NoCastle, "b5", -1, -1, false, board.NoKind, "Bb5+", "?!"},
		{"O-O", board.King, CastleKingSide, "-", -1, -1, false, board.NoKind, "O-O", ""},
		{"0-0-0", board.King, CastleQueenSide, "-", -1, -1, false, board.NoKind, "0-0-0", ""},
		{"Ng1-f3", board.Knight, NoCastle, "f3", 6, 0, false, board.NoKind, "Ng1-f3", ""},
		{"e5:d6", board.Pawn, NoCastle, "d6", 4, 4, true, board.NoKind, "e5:d6", ""},
		{"o-o+", board.King, CastleKingSide, "-", -1, -1, false, board.NoKind, "o-o+", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			tok, err := ParseToken(tt.raw)
			if err != nil {
				t.Fatalf("ParseToken(%q): %v", tt.raw, err)
			}
			if tok.Kind != tt.kind || tok.Castle != tt.castle || tok.Dest.String() != tt.dest ||
				tok.FromFile != tt.fromFile || tok.FromRank != tt.fromRank ||
				tok.Capture != tt.capture || tok.Promotion != tt.promo {
				t.Errorf("ParseToken(%q) = %+v", tt.raw, tok)
			}
			if tok.Label != tt.label || tok.Annotation != tt.annotation {
				t.Errorf("label/annotation = %q/%q, want %q/%q", tok.Label, tok.Annotation, tt.label, tt.annotation)
			}
		})
	}
}

func TestParseToken_Invalid(t *testing.T) {
	for _, raw := range []string{"", "+", "Zf3", "e9", "Nf", "e8=K", "e8=", "Nabcd3", "O-O-O-O", "Nf3x", "Nfx3", "Nx-f3", "Nxxf3", "e4-"} {
		t.Run(raw, func(t *testing.T) {
			if _, err := ParseToken(raw); !errors.Is(err, ErrUnresolvedMove) {
				t.Errorf("ParseToken(%q) error = %v, want ErrUnresolvedMove", raw, err)
			}
		})
	}
}
