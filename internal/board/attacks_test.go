package board

import (
	"errors"
	"testing"
)

func squares(names ...string) Bitboard {
	var b Bitboard
	for _, n := range names {
		sq, err := ParseSquare(n)
		if err != nil {
			panic(err)
		}
		b |= SquareBB(sq)
	}
	return b
}

func mustParse(t *testing.T, fen string) *Position {
	t.Helper()
	p, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return p
}

func TestDestinations(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		c    Color
		k    Kind
		want Bitboard
	}{
		{"start knights", StartFEN, White, Knight, squares("a3", "c3", "f3", "h3")},
		{"start pawns", StartFEN, White, Pawn, Rank3 | Rank4},
		{"start black pawns", StartFEN, Black, Pawn, Rank6 | Rank5},
		{"start bishops blocked", StartFEN, White, Bishop, 0},
		{"rook on open board", "8/8/8/8/3R4/8/8/k6K w - - 0 1", White, Rook, (FileD | Rank4) &^ squares("d4")},
		{"rook stops at blockers", "8/8/3p4/8/1P1R4/8/8/k6K w - - 0 1", White, Rook,
			squares("c4", "e4", "f4", "g4", "h4", "d5", "d6", "d3", "d2", "d1")},
		{"bishop in corner", "8/8/8/8/8/8/8/B3k2K w - - 0 1", White, Bishop,
			squares("b2", "c3", "d4", "e5", "f6", "g7", "h8")},
		{"knight on rim", "8/8/8/8/8/8/8/N3k2K w - - 0 1", White, Knight, squares("b3", "c2")},
		{"pawn double push blocked", "4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1", White, Pawn, 0},
		{"pawn double push through", "4k3/8/8/8/4n3/8/4P3/4K3 w - - 0 1", White, Pawn, squares("e3")},
		{"pawn captures and ep", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2", White, Pawn, squares("e6", "d6")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParse(t, tt.fen)
			if got := p.Destinations(tt.c, tt.k); got != tt.want {
				t.Errorf("Destinations() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		c    Color
		k    Kind
		dest string
		want Bitboard
	}{
		{"two knights", "rnbqkbnr/pppppppp/8/8/3P4/5N2/PPP1PPPP/RNBQKB1R w KQkq - 0 1", White, Knight, "d2", squares("b1", "f3")},
		{"single push", StartFEN, White, Pawn, "e3", squares("e2")},
		{"double push", StartFEN, White, Pawn, "e4", squares("e2")},
		{"black double push", StartFEN, Black, Pawn, "c5", squares("c7")},
		{"no triple push", StartFEN, White, Pawn, "e5", 0},
		{"own piece on destination", StartFEN, White, Knight, "d2", 0},
		{"pawn capture", "4k3/8/8/3p4/2P1P3/8/8/4K3 w - - 0 1", White, Pawn, "d5", squares("c4", "e4")},
		{"en passant", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2", White, Pawn, "d6", squares("e5")},
		{"rook behind rook", "4k3/8/8/8/8/8/8/RR2K3 w - - 0 1", White, Rook, "a5", squares("a1")},
		{"queen diagonal", "4k3/8/8/8/8/8/8/Q3K3 w - - 0 1", White, Queen, "h8", squares("a1")},
		{"castle target", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", White, King, "g1", squares("e1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParse(t, tt.fen)
			dest, err := ParseSquare(tt.dest)
			if err != nil {
				t.Fatal(err)
			}
			if got := p.Origins(tt.c, tt.k, dest); got != tt.want {
				t.Errorf("Origins(%s) =\n%s\nwant\n%s", tt.dest, got, tt.want)
			}
		})
	}
}

func TestInCheck(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		c    Color
		want bool
	}{
		{"start", StartFEN, White, false},
		{"rook on file", "4k3/8/8/8/8/8/8/4RK2 b - - 0 1", Black, true},
		{"rook blocked", "4k3/4p3/8/8/8/8/8/4RK2 b - - 0 1", Black, false},
		{"pawn", "4k3/3P4/8/8/8/8/8/5K2 b - - 0 1", Black, true},
		{"pawn straight ahead", "4k3/4P3/8/8/8/8/8/5K2 b - - 0 1", Black, false},
		{"knight", "4k3/8/3N4/8/8/8/8/5K2 b - - 0 1", Black, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParse(t, tt.fen)
			if got := p.InCheck(tt.c); got != tt.want {
				t.Errorf("InCheck(%s) = %v, want %v", tt.c, got, tt.want)
			}
		})
	}
}

func TestCastleMove(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		c        Color
		kingSide bool
		want     string
		wantErr  bool
	}{
		{"white king side", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", White, true, "e1g1", false},
		{"white queen side", "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1", White, false, "e1c1", false},
		{"black king side", "r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 0 1", Black, true, "e8g8", false},
		{"intervening piece", "r3k2r/8/8/8/8/8/8/R3KB1R w KQkq - 0 1", White, true, "", true},
		{"queen side knight", "r3k2r/8/8/8/8/8/8/RN2K2R w KQkq - 0 1", White, false, "", true},
		{"no rights", "r3k2r/8/8/8/8/8/8/R3K2R w Qkq - 0 1", White, true, "", true},
		{"transit attacked", "r3k2r/8/8/8/8/8/5r2/R3K2R w KQkq - 0 1", White, true, "", true},
		{"in check", "r3k2r/8/8/8/8/8/4r3/R3K2R w KQkq - 0 1", White, true, "", true},
		{"pawn attacks empty square", "r3k2r/8/8/8/8/8/6p1/R3K2R w KQkq - 0 1", White, true, "", true},
		{"rook attacked is fine", "r3k2r/8/8/8/8/8/7r/R3K2R w KQkq - 0 1", White, true, "e1g1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := mustParse(t, tt.fen)
			m, err := p.CastleMove(tt.c, tt.kingSide)
			if tt.wantErr {
				if !errors.Is(err, ErrIllegalCastle) {
					t.Fatalf("CastleMove() error = %v, want ErrIllegalCastle", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CastleMove() error = %v", err)
			}
			if m.UCI() != tt.want {
				t.Errorf("CastleMove() = %s, want %s", m, tt.want)
			}
		})
	}
}
