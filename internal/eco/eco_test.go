package eco_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/eco"
	"github.com/freeeve/repertoire/internal/san"
)

const sampleTSV = "eco\tname\tpgn\n" +
	"B00\tKing's Pawn Game\t1. e4\n" +
	"C50\tItalian Game\t1. e4 e5 2. Nf3 Nc6 3. Bc4\n" +
	"C60\tRuy Lopez\t1. e4 e5 2. Nf3 Nc6 3. Bb5\n" +
	"X99\tBroken\t1. e4 e5 2. Qxf7\n" +
	"malformed line\n"

func writeTSV(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func play(t *testing.T, moves ...string) *board.Position {
	t.Helper()
	p := board.New()
	for _, m := range moves {
		if _, err := san.Strict.Apply(p, m); err != nil {
			t.Fatalf("apply %s: %v", m, err)
		}
	}
	return p
}

func TestLoadAndLookup(t *testing.T) {
	dir := t.TempDir()
	writeTSV(t, dir, "a.tsv", sampleTSV)
	writeTSV(t, dir, "b.tsv", "eco\tname\tpgn\nA40\tQueen's Pawn Game\t1. d4\n")

	db := eco.NewDatabase(zerolog.Nop())
	if err := db.LoadDir(dir); err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if db.Count() != 4 {
		t.Errorf("Count = %d, want 4", db.Count())
	}

	if o := db.Lookup(board.New()); o != nil {
		t.Errorf("starting position matched %v", o)
	}

	tests := []struct {
		moves []string
		want  string
	}{
		{[]string{"e4"}, "B00"},
		{[]string{"d4"}, "A40"},
		{[]string{"e4", "e5", "Nf3", "Nc6", "Bc4"}, "C50"},
		// transposition reaches the same position
		{[]string{"Nf3", "Nc6", "e4", "e5", "Bb5"}, "C60"},
	}
	for _, tt := range tests {
		o := db.Lookup(play(t, tt.moves...))
		if o == nil {
			t.Errorf("%v: no opening found", tt.moves)
			continue
		}
		if o.ECO != tt.want {
			t.Errorf("%v: got %s, want %s", tt.moves, o.ECO, tt.want)
		}
	}
}

func TestLookupFEN(t *testing.T) {
	dir := t.TempDir()
	writeTSV(t, dir, "a.tsv", sampleTSV)
	db := eco.NewDatabase(zerolog.Nop())
	if err := db.LoadDir(dir); err != nil {
		t.Fatal(err)
	}
	o := db.LookupFEN("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	if o == nil || o.Name != "King's Pawn Game" {
		t.Errorf("LookupFEN(e4) = %v", o)
	}
	if db.LookupFEN("garbage") != nil {
		t.Error("malformed FEN should not match")
	}
}

func TestLoadDirEmpty(t *testing.T) {
	db := eco.NewDatabase(zerolog.Nop())
	if err := db.LoadDir(t.TempDir()); err == nil {
		t.Error("LoadDir on an empty directory should fail")
	}
}
