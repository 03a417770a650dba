package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/records"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{InMemory: true, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenRequiresDir(t *testing.T) {
	if _, err := Open(Config{Logger: zerolog.Nop()}); err == nil {
		t.Fatal("Open without Dir should fail")
	}
}

func TestPutGamesDeduplicates(t *testing.T) {
	s := openTestStore(t)
	games := []records.Game{
		{ID: "a", Result: "1-0", Moves: "1. e4 e5"},
		{ID: "b", Result: "0-1", Moves: "1. d4 d5"},
		{ID: "a", Result: "1-0", Moves: "1. e4 e5"},
	}
	added, err := s.PutGames("alice", games)
	if err != nil {
		t.Fatalf("PutGames: %v", err)
	}
	if added != 2 {
		t.Errorf("added = %d, want 2", added)
	}

	added, err = s.PutGames("alice", []records.Game{{ID: "b"}, {ID: "c", Moves: "1. c4"}})
	if err != nil {
		t.Fatalf("PutGames: %v", err)
	}
	if added != 1 {
		t.Errorf("second added = %d, want 1", added)
	}

	got, err := s.Games("alice")
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	var ids []string
	for _, g := range got {
		ids = append(ids, g.ID)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
	if got[0].Moves != "1. e4 e5" || got[0].Result != "1-0" {
		t.Errorf("game a = %+v", got[0])
	}
}

func TestCollections(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"bob", "alice", "alice_white", "al"} {
		if _, err := s.PutGames(name, []records.Game{{ID: "1"}, {ID: "2"}}); err != nil {
			t.Fatalf("PutGames %s: %v", name, err)
		}
	}
	got, err := s.Collections()
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	want := []string{"al", "alice", "alice_white", "bob"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Collections = %v, want %v", got, want)
	}

	games, err := s.Games("alice")
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	if len(games) != 2 {
		t.Errorf("alice has %d games, want 2", len(games))
	}
}

func TestGamesUnknownCollection(t *testing.T) {
	s := openTestStore(t)
	games, err := s.Games("nobody")
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	if len(games) != 0 {
		t.Errorf("got %d games, want 0", len(games))
	}
}

func TestStudyRoundTrip(t *testing.T) {
	s := openTestStore(t)
	study := &records.Study{
		Name:    "italian",
		StudyAs: "w",
		Studies: []records.Chapter{
			{Event: "Main", Moves: "1. e4 e5 2. Nf3 {develop} Nc6 3. Bc4"},
			{Event: "Sideline", StartFEN: board.StartFEN, Moves: "1. e4 e5 (1... c5 2. Nf3) 2. Nf3"},
		},
	}
	if err := s.PutStudy(study); err != nil {
		t.Fatalf("PutStudy: %v", err)
	}
	got, err := s.Study("italian")
	if err != nil {
		t.Fatalf("Study: %v", err)
	}
	if !reflect.DeepEqual(got, study) {
		t.Errorf("Study = %+v, want %+v", got, study)
	}

	if err := s.PutStudy(&records.Study{Name: "b-side", StudyAs: "b"}); err != nil {
		t.Fatalf("PutStudy: %v", err)
	}
	names, err := s.Studies()
	if err != nil {
		t.Fatalf("Studies: %v", err)
	}
	if want := []string{"b-side", "italian"}; !reflect.DeepEqual(names, want) {
		t.Errorf("Studies = %v, want %v", names, want)
	}
}

func TestStudyErrors(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Study("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Study(missing) err = %v, want ErrNotFound", err)
	}
	if err := s.PutStudy(&records.Study{Name: "x", StudyAs: "green"}); err == nil {
		t.Error("PutStudy with bad study_as should fail")
	}
}

func TestEvalIgnoresMoveCounters(t *testing.T) {
	s := openTestStore(t)
	fen := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	want := records.Eval{CP: 30, Depth: 20, Engine: "stockfish"}
	if err := s.PutEval(fen, want); err != nil {
		t.Fatalf("PutEval: %v", err)
	}
	got, err := s.Eval("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 4 9")
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != want {
		t.Errorf("Eval = %+v, want %+v", got, want)
	}

	if _, err := s.Eval(board.StartFEN); !errors.Is(err, ErrNotFound) {
		t.Errorf("Eval(start) err = %v, want ErrNotFound", err)
	}
	if err := s.PutEval("not a fen", want); !errors.Is(err, board.ErrMalformedFEN) {
		t.Errorf("PutEval(bad) err = %v, want ErrMalformedFEN", err)
	}
}

func TestPutEvalsAndEachEval(t *testing.T) {
	s := openTestStore(t)
	evals := map[string]records.Eval{
		board.StartFEN: {CP: 20, Depth: 18},
		"rnbqkbnr/pppppppp/8/8/3P4/8/PPP1PPPP/RNBQKBNR b KQkq - 0 1": {CP: 25, Depth: 18},
		"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1":                          {Mate: 1, Depth: 10},
	}
	if err := s.PutEvals(evals); err != nil {
		t.Fatalf("PutEvals: %v", err)
	}

	seen := map[string]records.Eval{}
	err := s.EachEval(func(key string, e records.Eval) error {
		seen[key] = e
		return nil
	})
	if err != nil {
		t.Fatalf("EachEval: %v", err)
	}
	if len(seen) != len(evals) {
		t.Fatalf("EachEval saw %d, want %d", len(seen), len(evals))
	}
	for fen, want := range evals {
		if got := seen[board.Key(fen)]; got != want {
			t.Errorf("%s: got %+v, want %+v", fen, got, want)
		}
	}
}

func TestStatsCounts(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.PutGames("c", []records.Game{{ID: "1"}, {ID: "2"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Games("c"); err != nil {
		t.Fatal(err)
	}
	st := s.Stats()
	if st.TotalWrites != 2 {
		t.Errorf("TotalWrites = %d, want 2", st.TotalWrites)
	}
	if st.TotalReads != 2 {
		t.Errorf("TotalReads = %d, want 2", st.TotalReads)
	}
}

func TestCollectionOf(t *testing.T) {
	tests := []struct {
		key    string
		want   string
		wantOK bool
	}{
		{"g/alice\x00abc", "alice", true},
		{"g/\x00abc", "", true},
		{"g/broken", "", false},
	}
	for _, tt := range tests {
		got, ok := collectionOf([]byte(tt.key))
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("collectionOf(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.wantOK)
		}
	}
}
