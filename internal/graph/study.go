package graph

import (
	"fmt"
	"strings"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/movetext"
	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/san"
)

// StudyNode is a position in a study tree.
type StudyNode struct {
	ID         NodeID
	FEN        string
	SideToMove board.Color
	MoveNumber int
	Parents    []Link
	Children   []Edge
	Notes      []string
	Chapters   []string // events of the chapters that reached the node
	Testable   bool     // side to move is the studied side
	Eval       *records.Eval
}

// Answers lists the recorded continuations.
func (n *StudyNode) Answers() []string {
	out := make([]string, len(n.Children))
	for i, e := range n.Children {
		out[i] = e.Move
	}
	return out
}

// Hint returns the first letter of each recorded continuation.
func (n *StudyNode) Hint() string {
	firsts := make([]string, 0, len(n.Children))
	for _, e := range n.Children {
		if e.Move != "" {
			firsts = append(firsts, e.Move[:1])
		}
	}
	return strings.Join(firsts, ", ")
}

func (n *StudyNode) String() string {
	lines := []string{n.FEN}
	for _, e := range n.Children {
		lines = append(lines, fmt.Sprintf("   %s Testing:%v", e.Move, n.Testable))
	}
	if n.Eval != nil {
		lines = append(lines, "Eval "+n.Eval.String())
	}
	if len(n.Notes) > 0 {
		lines = append(lines, "", "Notes", strings.Join(n.Notes, "\n"))
	}
	return strings.Join(lines, "\n")
}

func (n *StudyNode) addChapter(event string) {
	for _, c := range n.Chapters {
		if c == event {
			return
		}
	}
	n.Chapters = append(n.Chapters, event)
}

// StudyTree is the merged tree of all chapters of one study.
// It is not safe for concurrent modification.
type StudyTree struct {
	name     string
	color    board.Color
	resolver *san.Resolver
	rootFEN  string
	nodes    []StudyNode
	index    map[string]NodeID
	chapters map[string]bool
}

// NewStudyTree returns an empty study tree rooted at startFEN (the standard
// start position when empty). A nil resolver means san.Loose.
func NewStudyTree(name string, color board.Color, startFEN string, resolver *san.Resolver) (*StudyTree, error) {
	if startFEN == "" {
		startFEN = board.StartFEN
	}
	if resolver == nil {
		resolver = san.Loose
	}
	root, err := board.ParseFEN(startFEN)
	if err != nil {
		return nil, fmt.Errorf("study %q: %w", name, err)
	}
	t := &StudyTree{
		name:     name,
		color:    color,
		resolver: resolver,
		rootFEN:  root.FEN(),
		index:    make(map[string]NodeID),
		chapters: make(map[string]bool),
	}
	t.newNode(root)
	return t, nil
}

func (t *StudyTree) newNode(p *board.Position) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, StudyNode{
		ID:         id,
		FEN:        p.FEN(),
		SideToMove: p.SideToMove,
		MoveNumber: p.FullMoveNumber,
		Testable:   p.SideToMove == t.color,
	})
	t.index[p.Key()] = id
	return id
}

// Name returns the study name.
func (t *StudyTree) Name() string { return t.name }

// Color returns the studied side.
func (t *StudyTree) Color() board.Color { return t.color }

// Len returns the number of nodes.
func (t *StudyTree) Len() int { return len(t.nodes) }

// Node returns the node with id, or nil. The pointer is valid until the
// tree is next modified.
func (t *StudyTree) Node(id NodeID) *StudyNode {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Lookup finds the node for a FEN.
func (t *StudyTree) Lookup(fen string) (*StudyNode, bool) {
	p, err := board.ParseFEN(fen)
	if err != nil {
		return nil, false
	}
	id, ok := t.index[p.Key()]
	if !ok {
		return nil, false
	}
	return &t.nodes[id], true
}

// Nodes returns every node in creation order.
func (t *StudyTree) Nodes() []StudyNode { return t.nodes }

// TestableNodes returns the quiz points: testable nodes with at least one
// recorded continuation.
func (t *StudyTree) TestableNodes() []*StudyNode {
	var out []*StudyNode
	for i := range t.nodes {
		if t.nodes[i].Testable && len(t.nodes[i].Children) > 0 {
			out = append(out, &t.nodes[i])
		}
	}
	return out
}

// AttachEvals sets Eval on every node lookup knows about and returns how
// many were set. Lookup errors mean "no evaluation".
func (t *StudyTree) AttachEvals(lookup func(fen string) (records.Eval, error)) int {
	n := 0
	for i := range t.nodes {
		e, err := lookup(t.nodes[i].FEN)
		if err != nil {
			continue
		}
		t.nodes[i].Eval = &e
		n++
	}
	return n
}

type eventKind uint8

const (
	evVisit eventKind = iota // make sure a node exists
	evEdge
	evNote
)

// studyEvent is one tree mutation produced by replaying a chapter. Nodes are
// named by position so events can be produced before the nodes exist.
type studyEvent struct {
	kind eventKind
	from string // parent key for edges
	to   *board.Position
	move string
	uci  string
	note string
}

// frame is the replay state of one line: the scratch position, the node it
// sits on and the node before the last move, which is where a variation
// opened here branches from.
type frame struct {
	pos  *board.Position
	prev *board.Position
}

// AddChapter replays one chapter's movetext into the tree. Replay happens on
// scratch positions first; the tree changes only if the whole chapter
// resolves. Non-fatal warnings are returned alongside a nil error.
func (t *StudyTree) AddChapter(ch *records.Chapter) ([]error, error) {
	key := ch.Key()
	if t.chapters[key] {
		return nil, ErrDuplicateChapter
	}
	events, warnings, err := t.replay(ch)
	if err != nil {
		return warnings, fmt.Errorf("chapter %q: %w", ch.Event, err)
	}
	t.chapters[key] = true
	t.commit(ch.Event, events)
	return warnings, nil
}

func (t *StudyTree) replay(ch *records.Chapter) ([]studyEvent, []error, error) {
	startFEN := ch.StartFEN
	if startFEN == "" {
		startFEN = t.rootFEN
	}
	start, err := board.ParseFEN(startFEN)
	if err != nil {
		return nil, nil, err
	}
	toks, err := movetext.Lex(ch.Moves)
	if err != nil {
		return nil, nil, err
	}

	events := []studyEvent{{kind: evVisit, to: start.Copy()}}
	var warnings []error
	cur := frame{pos: start, prev: start.Copy()}
	var stack []frame

	for _, tok := range toks {
		switch tok.Kind {
		case movetext.MoveNumber, movetext.Result:
		case movetext.Comment:
			if tok.Text != "" {
				events = append(events, studyEvent{kind: evNote, to: cur.pos.Copy(), note: tok.Text})
			}
		case movetext.NAG:
			events = append(events, studyEvent{kind: evNote, to: cur.pos.Copy(), note: movetext.Describe(tok.Text)})
		case movetext.Open:
			stack = append(stack, cur)
			cur = frame{pos: cur.prev.Copy(), prev: cur.prev}
		case movetext.Close:
			if len(stack) == 0 {
				return nil, warnings, fmt.Errorf("%w: ')' at offset %d", ErrUnbalancedVariation, tok.Pos)
			}
			cur = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case movetext.Move:
			before := cur.pos.Copy()
			res, err := t.resolver.Apply(cur.pos, tok.Text)
			if err != nil {
				return nil, warnings, err
			}
			if w := res.Warning(); w != nil {
				warnings = append(warnings, w)
			}
			after := cur.pos.Copy()
			events = append(events, studyEvent{
				kind: evEdge,
				from: before.Key(),
				to:   after,
				move: res.Token.Label,
				uci:  res.Move.UCI(),
			})
			if res.Token.Annotation != "" {
				events = append(events, studyEvent{kind: evNote, to: after, note: movetext.Describe(res.Token.Annotation)})
			}
			cur.prev = before
		}
	}
	if len(stack) != 0 {
		return nil, warnings, fmt.Errorf("%w: %d variations left open", ErrUnbalancedVariation, len(stack))
	}
	return events, warnings, nil
}

func (t *StudyTree) commit(event string, events []studyEvent) {
	for _, ev := range events {
		key := ev.to.Key()
		id, ok := t.index[key]
		if !ok {
			id = t.newNode(ev.to)
		}
		switch ev.kind {
		case evVisit:
		case evNote:
			t.nodes[id].Notes = append(t.nodes[id].Notes, ev.note)
		case evEdge:
			parent := t.index[ev.from]
			link := Link{Parent: parent, Move: ev.move}
			if !hasLink(t.nodes[id].Parents, link) {
				t.nodes[id].Parents = append(t.nodes[id].Parents, link)
			}
			if !hasEdgeTo(t.nodes[parent].Children, id) {
				t.nodes[parent].Children = append(t.nodes[parent].Children, Edge{Child: id, Move: ev.move, UCI: ev.uci})
			}
			t.nodes[id].addChapter(event)
		}
	}
}
