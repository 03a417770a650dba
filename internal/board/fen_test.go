package board

import (
	"errors"
	"testing"
)

func TestParseFEN_RoundTrip(t *testing.T) {
	fens := []string{
		StartFEN,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"r1bqkbnr/pppp1ppp/2n5/1B2p3/4P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
		"r3k2r/8/8/8/8/8/8/R3K2R w Kq - 12 40",
		"8/8/8/8/8/8/8/4K2k w - - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			p, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			if got := p.FEN(); got != fen {
				t.Errorf("FEN() = %q, want %q", got, fen)
			}
			again, err := ParseFEN(p.FEN())
			if err != nil {
				t.Fatalf("ParseFEN(FEN()): %v", err)
			}
			if *again != *p {
				t.Errorf("reparsed position differs from original")
			}
		})
	}
}

func TestParseFEN_DefaultsCounters(t *testing.T) {
	p, err := ParseFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if p.HalfMoveClock != 0 || p.FullMoveNumber != 1 {
		t.Errorf("counters = %d %d, want 0 1", p.HalfMoveClock, p.FullMoveNumber)
	}
}

func TestParseFEN_Malformed(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"seven ranks", "rnbqkbnr/pppppppp/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"nine files", "rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"short rank", "rnbqkbn/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"digit overflow", "rnbqkbnr/pppppppp/44p/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"bad piece", "rnbqkbnr/ppppxppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
		{"bad side", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1"},
		{"bad castling", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KX - 0 1"},
		{"bad en passant", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq z9 0 1"},
		{"bad clock", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - x 1"},
		{"zero fullmove", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFEN(tt.fen)
			if !errors.Is(err, ErrMalformedFEN) {
				t.Errorf("ParseFEN(%q) error = %v, want ErrMalformedFEN", tt.fen, err)
			}
		})
	}
}

func TestRefresh_Idempotent(t *testing.T) {
	p, err := ParseFEN("r1bqkbnr/pppp1ppp/2n5/1B2p3/4P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3")
	if err != nil {
		t.Fatal(err)
	}
	pieces, occupied, all := p.pieces, p.occupied, p.all
	p.refresh()
	p.refresh()
	if p.pieces != pieces || p.occupied != occupied || p.all != all {
		t.Error("masks changed after recomputing from the same grid")
	}
	if p.all.Count() != 32 {
		t.Errorf("all.Count() = %d, want 32", p.all.Count())
	}
	if p.occupied[White]&p.occupied[Black] != 0 {
		t.Error("white and black occupancy overlap")
	}
}

func TestKey(t *testing.T) {
	got := Key("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3"
	if got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestPosition_Key(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want string
	}{
		{"no capture onto ep", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
			"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq -"},
		{"capture available", "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2", "4k3/8/8/3pP3/8/8/8/4K3 w - d6"},
		{"counters ignored", "4k3/8/8/8/8/8/8/4K3 w - - 40 90", "4k3/8/8/8/8/8/8/4K3 w - -"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseFEN(tt.fen)
			if err != nil {
				t.Fatal(err)
			}
			if got := p.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}
