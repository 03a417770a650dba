package records

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
)

const twoGames = `[Event "Live Chess"]
[Site "Chess.com"]
[Date "2024.01.02"]
[White "alice"]
[Black "bob"]
[Result "1-0"]
[CurrentPosition "r1bqkbnr/pppp1ppp/2n5/1B2p3/4P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3"]
[EndDate "2024.01.02"]
[EndTime "10:00:00"]
[Link "https://www.chess.com/game/live/1"]

1. e4 {[%clk 0:02:59]} 1... e5 2. Nf3 Nc6
3. Bb5 1-0

[Event "Rated Blitz game"]
[Site "https://lichess.org/abcdef"]
[White "carol"]
[Black "Alice"]
[Result "0-1"]
[UTCDate "2024.02.03"]
[UTCTime "12:30:00"]

1. d4 d5 0-1
`

func TestReadPGN(t *testing.T) {
	games, err := ReadPGN(strings.NewReader(twoGames), "alice")
	if err != nil {
		t.Fatalf("ReadPGN: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}

	g := games[0]
	if g.PlayerColor != "white" || g.Result != "1-0" {
		t.Errorf("game 0 color/result = %q/%q", g.PlayerColor, g.Result)
	}
	if g.URL != "https://www.chess.com/game/live/1" {
		t.Errorf("game 0 url = %q", g.URL)
	}
	if g.EndFEN == "" || g.Tags["white"] != "alice" {
		t.Errorf("game 0 tags not lower-cased: %v", g.Tags)
	}
	if g.EndTime != 1704189600 {
		t.Errorf("game 0 end time = %d", g.EndTime)
	}
	moves, err := g.MoveList()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(moves, " ") != "e4 e5 Nf3 Nc6 Bb5" {
		t.Errorf("game 0 moves = %q", moves)
	}

	g = games[1]
	if g.PlayerColor != "black" || g.URL != "https://lichess.org/abcdef" {
		t.Errorf("game 1 color/url = %q/%q", g.PlayerColor, g.URL)
	}
}

func TestReadPGNFile_Zstd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.pgn.zst")

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, enc.EncodeAll([]byte(twoGames), nil), 0o644); err != nil {
		t.Fatal(err)
	}
	enc.Close()

	games, err := ReadPGNFile(path, "bob")
	if err != nil {
		t.Fatalf("ReadPGNFile: %v", err)
	}
	if len(games) != 2 || games[0].PlayerColor != "black" {
		t.Errorf("got %d games, first color %q", len(games), games[0].PlayerColor)
	}
}

func TestStudyFromPGN(t *testing.T) {
	pgn := `[Event "Italian: Main line"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 { The Italian. } *

[Event "Italian: Two knights"]
[FEN "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3"]

3... Nf6 (3... Bc5) 4. Ng5 *
`
	s, err := StudyFromPGN("italian", "w", strings.NewReader(pgn))
	if err != nil {
		t.Fatalf("StudyFromPGN: %v", err)
	}
	if len(s.Studies) != 2 {
		t.Fatalf("got %d chapters, want 2", len(s.Studies))
	}
	if s.Studies[1].StartFEN == "" || s.Studies[1].Event != "Italian: Two knights" {
		t.Errorf("chapter 1 = %+v", s.Studies[1])
	}
	if _, err := StudyFromPGN("x", "green", strings.NewReader(pgn)); err == nil {
		t.Error("expected error for bad study_as")
	}
}

func TestIsPGNFile(t *testing.T) {
	for name, want := range map[string]bool{
		"a.pgn": true, "a.PGN": true, "a.pgn.zst": true, "a.zst": false, "a.txt": false,
	} {
		if got := IsPGNFile(name); got != want {
			t.Errorf("IsPGNFile(%q) = %v, want %v", name, got, want)
		}
	}
}
