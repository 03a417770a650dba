// Package graph builds position trees from replayed move sequences: an
// opening tree aggregating game statistics and a study tree carrying
// annotations. Nodes live in a per-tree arena and are found by position key,
// so transpositions share a node and may have several parents.
package graph

import "errors"

// NodeID indexes a node in its tree's arena.
type NodeID int32

const (
	// NoNode marks a missing node.
	NoNode NodeID = -1
	// Root is always the first node of a tree.
	Root NodeID = 0
)

// Edge is a child link labelled with the move text that produced it.
type Edge struct {
	Child NodeID
	Move  string
	UCI   string
}

// Link is a parent reference and the move played from it.
type Link struct {
	Parent NodeID
	Move   string
}

// Step is one replayed ply.
type Step struct {
	Move    string // move text as recorded, without annotations
	UCI     string
	FEN     string
	Key     string
	Warning error // non-fatal resolution warning, e.g. an ambiguous move
}

// SortOrder selects how SortChildren orders edges.
type SortOrder uint8

const (
	SortByCount  SortOrder = iota // most games first
	SortByRecent                  // most recently played first
)

var (
	// ErrStartMismatch is returned for a game starting from a position other
	// than the tree root.
	ErrStartMismatch = errors.New("game does not start at tree root")
	// ErrDuplicateChapter is returned when a chapter was already added.
	ErrDuplicateChapter = errors.New("chapter already added")
	// ErrUnbalancedVariation is returned for unmatched parentheses.
	ErrUnbalancedVariation = errors.New("unbalanced variation")
)

func hasLink(links []Link, l Link) bool {
	for _, x := range links {
		if x == l {
			return true
		}
	}
	return false
}

func hasEdgeTo(edges []Edge, child NodeID) bool {
	for _, e := range edges {
		if e.Child == child {
			return true
		}
	}
	return false
}
