package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/san"
)

func newStudy(t *testing.T, color board.Color) *StudyTree {
	t.Helper()
	tree, err := NewStudyTree("test", color, "", nil)
	if err != nil {
		t.Fatalf("NewStudyTree: %v", err)
	}
	return tree
}

func child(t *testing.T, tree *StudyTree, n *StudyNode, move string) *StudyNode {
	t.Helper()
	for _, e := range n.Children {
		if e.Move == move {
			return tree.Node(e.Child)
		}
	}
	t.Fatalf("node %s has no child %s (children %v)", n.FEN, move, n.Answers())
	return nil
}

func TestStudyTree_Variation(t *testing.T) {
	tree := newStudy(t, board.White)
	if _, err := tree.AddChapter(&records.Chapter{Event: "main", Moves: "1. e4 e5 (1... c5 2. Nf3) 2. Nf3 *"}); err != nil {
		t.Fatalf("AddChapter: %v", err)
	}

	root := tree.Node(Root)
	e4 := child(t, tree, root, "e4")
	if got := e4.Answers(); !reflect.DeepEqual(got, []string{"e5", "c5"}) {
		t.Fatalf("after e4 answers = %v, want [e5 c5]", got)
	}

	mainNf3 := child(t, tree, child(t, tree, e4, "e5"), "Nf3")
	sideNf3 := child(t, tree, child(t, tree, e4, "c5"), "Nf3")
	if mainNf3.FEN != "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2" {
		t.Errorf("main line Nf3 = %s", mainNf3.FEN)
	}
	if sideNf3.FEN != "rnbqkbnr/pp1ppppp/8/2p5/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2" {
		t.Errorf("side line Nf3 = %s", sideNf3.FEN)
	}
	if tree.Len() != 6 {
		t.Errorf("Len() = %d, want 6", tree.Len())
	}
	if len(tree.TestableNodes()) != 3 {
		t.Errorf("TestableNodes() = %d, want 3", len(tree.TestableNodes()))
	}
}

func TestStudyTree_NestedVariations(t *testing.T) {
	tree := newStudy(t, board.Black)
	moves := "1. e4 e5 (1... c5 (1... e6 2. d4) 2. Nf3) (1... d5) 2. Nf3 Nc6 *"
	if _, err := tree.AddChapter(&records.Chapter{Event: "nested", Moves: moves}); err != nil {
		t.Fatalf("AddChapter: %v", err)
	}
	e4 := child(t, tree, tree.Node(Root), "e4")
	if got := e4.Answers(); !reflect.DeepEqual(got, []string{"e5", "c5", "e6", "d5"}) {
		t.Errorf("after e4 answers = %v", got)
	}
	child(t, tree, child(t, tree, e4, "e6"), "d4")
	nf3 := child(t, tree, child(t, tree, e4, "e5"), "Nf3")
	child(t, tree, nf3, "Nc6")

	// black to move after e4 and after 2. Nf3 with recorded replies
	if got := len(tree.TestableNodes()); got != 2 {
		t.Errorf("TestableNodes() = %d, want 2", got)
	}
}

func TestStudyTree_Notes(t *testing.T) {
	tree := newStudy(t, board.White)
	ch := &records.Chapter{Event: "notes", Moves: "{Start here} 1. e4 {King's pawn} $1 e5!? 2. Nf3 *"}
	if _, err := tree.AddChapter(ch); err != nil {
		t.Fatalf("AddChapter: %v", err)
	}
	root := tree.Node(Root)
	if !reflect.DeepEqual(root.Notes, []string{"Start here"}) {
		t.Errorf("root notes = %q", root.Notes)
	}
	e4 := child(t, tree, root, "e4")
	if !reflect.DeepEqual(e4.Notes, []string{"King's pawn", "Good move"}) {
		t.Errorf("e4 notes = %q", e4.Notes)
	}
	e5 := child(t, tree, e4, "e5")
	if !reflect.DeepEqual(e5.Notes, []string{"Interesting move"}) {
		t.Errorf("e5 notes = %q", e5.Notes)
	}
	if e5.Hint() != "N" || !e5.Testable || e5.MoveNumber != 2 || e5.SideToMove != board.White {
		t.Errorf("e5 node = %+v", e5)
	}
	if !reflect.DeepEqual(e5.Chapters, []string{"notes"}) {
		t.Errorf("e5 chapters = %q", e5.Chapters)
	}
}

func TestStudyTree_Transposition(t *testing.T) {
	tree := newStudy(t, board.White)
	for _, ch := range []records.Chapter{
		{Event: "a", Moves: "1. Nf3 Nf6 2. g3 *"},
		{Event: "b", Moves: "1. g3 Nf6 2. Nf3 *"},
	} {
		if _, err := tree.AddChapter(&ch); err != nil {
			t.Fatalf("AddChapter(%s): %v", ch.Event, err)
		}
	}
	final, ok := tree.Lookup("rnbqkb1r/pppppppp/5n2/8/8/5NP1/PPPPPP1P/RNBQKB1R b KQkq - 0 2")
	if !ok {
		t.Fatal("final position not found")
	}
	if len(final.Parents) != 2 || !reflect.DeepEqual(final.Chapters, []string{"a", "b"}) {
		t.Errorf("final parents=%d chapters=%q", len(final.Parents), final.Chapters)
	}
	if tree.Len() != 6 {
		t.Errorf("Len() = %d, want 6", tree.Len())
	}
}

func TestStudyTree_Errors(t *testing.T) {
	tests := []struct {
		name  string
		moves string
		want  error
	}{
		{"unresolved", "1. e4 e5 2. Ke3 *", san.ErrUnresolvedMove},
		{"stray close", "1. e4 e5) 2. Nf3", ErrUnbalancedVariation},
		{"unclosed", "1. e4 e5 (1... c5 2. Nf3", ErrUnbalancedVariation},
		{"bad variation move", "1. e4 e5 (1... Ke7 2. Nf3) 2. Nf3", san.ErrUnresolvedMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := newStudy(t, board.White)
			_, err := tree.AddChapter(&records.Chapter{Event: tt.name, Moves: tt.moves})
			if !errors.Is(err, tt.want) {
				t.Fatalf("AddChapter error = %v, want %v", err, tt.want)
			}
			if tree.Len() != 1 || len(tree.Node(Root).Children) != 0 {
				t.Errorf("failed chapter modified tree: len=%d", tree.Len())
			}
		})
	}
}

func TestStudyTree_DuplicateChapter(t *testing.T) {
	tree := newStudy(t, board.White)
	ch := &records.Chapter{Event: "dup", Moves: "1. d4 d5 *"}
	if _, err := tree.AddChapter(ch); err != nil {
		t.Fatal(err)
	}
	if _, err := tree.AddChapter(ch); !errors.Is(err, ErrDuplicateChapter) {
		t.Errorf("second AddChapter error = %v, want ErrDuplicateChapter", err)
	}
	if tree.Len() != 3 {
		t.Errorf("Len() = %d, want 3", tree.Len())
	}
}

func TestStudyTree_ChapterStartFEN(t *testing.T) {
	tree := newStudy(t, board.Black)
	ch := &records.Chapter{
		Event:    "from move 3",
		StartFEN: "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3",
		Moves:    "3... Nf6 (3... Bc5) 4. Ng5 *",
	}
	if _, err := tree.AddChapter(ch); err != nil {
		t.Fatalf("AddChapter: %v", err)
	}
	start, ok := tree.Lookup(ch.StartFEN)
	if !ok {
		t.Fatal("chapter start node missing")
	}
	if got := start.Answers(); !reflect.DeepEqual(got, []string{"Nf6", "Bc5"}) {
		t.Errorf("start answers = %v", got)
	}
	if !start.Testable {
		t.Error("start node should be testable for black")
	}
}

func TestStudyTree_AttachEvals(t *testing.T) {
	tree := newStudy(t, board.White)
	if _, err := tree.AddChapter(&records.Chapter{Event: "main", Moves: "1. e4 e5 2. Nf3"}); err != nil {
		t.Fatalf("AddChapter: %v", err)
	}
	known := map[string]records.Eval{
		board.Key(board.StartFEN): {CP: 20, Depth: 18},
	}
	lookup := func(fen string) (records.Eval, error) {
		e, ok := known[board.Key(fen)]
		if !ok {
			return e, errors.New("not found")
		}
		return e, nil
	}
	if n := tree.AttachEvals(lookup); n != 1 {
		t.Errorf("AttachEvals = %d, want 1", n)
	}
	root := tree.Node(Root)
	if root.Eval == nil || root.Eval.CP != 20 {
		t.Errorf("root eval = %v", root.Eval)
	}
	if e4 := child(t, tree, root, "e4"); e4.Eval != nil {
		t.Errorf("e4 should have no eval, got %v", e4.Eval)
	}
}
