package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/san"
)

// Node is a position in an opening tree with the games that passed through it.
type Node struct {
	ID       NodeID
	FEN      string // as first reached
	Parents  []Link
	Children []Edge
	Games    []int // indexes into OpeningTree.Games
	Results  []records.Outcome
	Times    []int64
}

// Count is the number of games that reached the node.
func (n *Node) Count() int { return len(n.Games) }

// WinRates returns the win, draw and loss frequencies over the games that
// reached the node with a known result, so they sum to 1 unless no result
// is known. Unfinished games ("*") still count in Count.
func (n *Node) WinRates() [3]float64 {
	var out [3]float64
	known := 0
	for _, r := range n.Results {
		switch r {
		case records.OutcomeWin:
			out[0]++
		case records.OutcomeDraw:
			out[1]++
		case records.OutcomeLoss:
			out[2]++
		default:
			continue
		}
		known++
	}
	if known == 0 {
		return out
	}
	total := float64(known)
	for i := range out {
		out[i] /= total
	}
	return out
}

// LastPlayed returns the latest end time among the node's games.
func (n *Node) LastPlayed() int64 {
	var last int64
	for _, ts := range n.Times {
		if ts > last {
			last = ts
		}
	}
	return last
}

func (n *Node) addGame(game int, result records.Outcome, ts int64) {
	n.Games = append(n.Games, game)
	n.Results = append(n.Results, result)
	n.Times = append(n.Times, ts)
}

func formatRates(r [3]float64) string {
	return fmt.Sprintf("%.2f%% wins, %.2f%% draws, %.2f%% losses", r[0]*100, r[1]*100, r[2]*100)
}

// OpeningConfig configures an opening tree.
type OpeningConfig struct {
	Name     string
	StartFEN string        // defaults to the standard start position
	Color    board.Color   // side the collection is viewed from
	Resolver *san.Resolver // defaults to san.Loose
}

// OpeningTree merges games into one position tree.
// It is not safe for concurrent modification.
type OpeningTree struct {
	cfg   OpeningConfig
	root  *board.Position
	nodes []Node
	index map[string]NodeID
	games []*records.Game
}

// NewOpeningTree returns a tree holding only its root.
func NewOpeningTree(cfg OpeningConfig) (*OpeningTree, error) {
	if cfg.StartFEN == "" {
		cfg.StartFEN = board.StartFEN
	}
	if cfg.Resolver == nil {
		cfg.Resolver = san.Loose
	}
	root, err := board.ParseFEN(cfg.StartFEN)
	if err != nil {
		return nil, fmt.Errorf("opening tree %q: %w", cfg.Name, err)
	}
	t := &OpeningTree{
		cfg:   cfg,
		root:  root,
		index: make(map[string]NodeID),
	}
	t.newNode(root.FEN(), root.Key())
	return t, nil
}

func (t *OpeningTree) newNode(fen, key string) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{ID: id, FEN: fen})
	t.index[key] = id
	return id
}

// Name returns the collection name.
func (t *OpeningTree) Name() string { return t.cfg.Name }

// Color returns the side the tree is viewed from.
func (t *OpeningTree) Color() board.Color { return t.cfg.Color }

// Len returns the number of nodes.
func (t *OpeningTree) Len() int { return len(t.nodes) }

// Node returns the node with id, or nil. The pointer is valid until the
// tree is next modified.
func (t *OpeningTree) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

// Lookup finds the node for a FEN.
func (t *OpeningTree) Lookup(fen string) (*Node, bool) {
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

// Games returns every game added, indexed by Node.Games.
func (t *OpeningTree) Games() []*records.Game { return t.games }

// Replay resolves a game's moves from the root without touching the tree.
// On failure the steps resolved so far are returned with the error.
func (t *OpeningTree) Replay(g *records.Game) ([]Step, error) {
	if g.StartFEN != "" && board.Key(g.StartFEN) != board.Key(t.cfg.StartFEN) {
		return nil, fmt.Errorf("%w: %s", ErrStartMismatch, g.StartFEN)
	}
	moves, err := g.MoveList()
	if err != nil {
		return nil, err
	}
	pos := t.root.Copy()
	steps := make([]Step, 0, len(moves))
	for i, tok := range moves {
		res, err := t.cfg.Resolver.Apply(pos, tok)
		if err != nil {
			return steps, fmt.Errorf("ply %d: %w", i+1, err)
		}
		steps = append(steps, Step{
			Move:    res.Token.Label,
			UCI:     res.Move.UCI(),
			FEN:     pos.FEN(),
			Key:     pos.Key(),
			Warning: res.Warning(),
		})
	}
	return steps, nil
}

// AddGame replays g and merges it into the tree. A game that fails to replay
// leaves the tree unchanged.
func (t *OpeningTree) AddGame(g *records.Game) ([]Step, error) {
	steps, err := t.Replay(g)
	if err != nil {
		return steps, err
	}
	t.commit(g, steps)
	return steps, nil
}

func (t *OpeningTree) commit(g *records.Game, steps []Step) {
	gi := len(t.games)
	t.games = append(t.games, g)
	result, ts := g.Outcome(), g.EndTime

	cur := Root
	t.nodes[cur].addGame(gi, result, ts)
	for _, s := range steps {
		link := Link{Parent: cur, Move: s.Move}
		id, ok := t.index[s.Key]
		if !ok {
			id = t.newNode(s.FEN, s.Key)
		}
		if !hasLink(t.nodes[id].Parents, link) {
			t.nodes[id].Parents = append(t.nodes[id].Parents, link)
		}
		if !hasEdgeTo(t.nodes[cur].Children, id) {
			t.nodes[cur].Children = append(t.nodes[cur].Children, Edge{Child: id, Move: s.Move, UCI: s.UCI})
		}
		t.nodes[id].addGame(gi, result, ts)
		cur = id
	}
}

// SortChildren orders every node's edges.
func (t *OpeningTree) SortChildren(order SortOrder) {
	for i := range t.nodes {
		children := t.nodes[i].Children
		sort.SliceStable(children, func(a, b int) bool {
			ca, cb := &t.nodes[children[a].Child], &t.nodes[children[b].Child]
			if order == SortByRecent {
				return ca.LastPlayed() > cb.LastPlayed()
			}
			return ca.Count() > cb.Count()
		})
	}
}

// Summary renders a node and its continuations.
func (t *OpeningTree) Summary(id NodeID) string {
	n := t.Node(id)
	if n == nil {
		return ""
	}
	lines := []string{
		n.FEN,
		fmt.Sprintf("Reached %d times (%s)", n.Count(), formatRates(n.WinRates())),
	}
	for _, e := range n.Children {
		c := &t.nodes[e.Child]
		lines = append(lines, fmt.Sprintf("   %s : (%d) %s", e.Move, c.Count(), formatRates(c.WinRates())))
	}
	return strings.Join(lines, "\n")
}
