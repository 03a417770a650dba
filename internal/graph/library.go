package graph

import (
	"sort"
	"sync"
)

// TestPoint is a quiz position drawn from one study.
type TestPoint struct {
	Study string
	Node  *StudyNode
}

// Library holds the built trees by name. Trees are replaced whole; a tree is
// never modified after it has been put into a Library.
type Library struct {
	mu       sync.RWMutex
	openings map[string]*OpeningTree
	studies  map[string]*StudyTree
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{
		openings: make(map[string]*OpeningTree),
		studies:  make(map[string]*StudyTree),
	}
}

// PutOpening adds or replaces an opening tree.
func (l *Library) PutOpening(t *OpeningTree) {
	l.mu.Lock()
	l.openings[t.Name()] = t
	l.mu.Unlock()
}

// PutStudy adds or replaces a study tree.
func (l *Library) PutStudy(t *StudyTree) {
	l.mu.Lock()
	l.studies[t.Name()] = t
	l.mu.Unlock()
}

// Swap replaces the whole contents of l with those of other, so holders of
// l see a rebuilt library at once. other should not be used afterwards.
func (l *Library) Swap(other *Library) {
	other.mu.RLock()
	openings, studies := other.openings, other.studies
	other.mu.RUnlock()
	l.mu.Lock()
	l.openings, l.studies = openings, studies
	l.mu.Unlock()
}

// Opening returns the named opening tree.
func (l *Library) Opening(name string) (*OpeningTree, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.openings[name]
	return t, ok
}

// Study returns the named study tree.
func (l *Library) Study(name string) (*StudyTree, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.studies[name]
	return t, ok
}

// Names returns the sorted opening and study names.
func (l *Library) Names() (openings, studies []string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for name := range l.openings {
		openings = append(openings, name)
	}
	for name := range l.studies {
		studies = append(studies, name)
	}
	sort.Strings(openings)
	sort.Strings(studies)
	return openings, studies
}

// TestPoints gathers the testable nodes of every study, ordered by study name.
func (l *Library) TestPoints() []TestPoint {
	_, names := l.Names()
	var out []TestPoint
	for _, name := range names {
		st, ok := l.Study(name)
		if !ok {
			continue
		}
		for _, n := range st.TestableNodes() {
			out = append(out, TestPoint{Study: name, Node: n})
		}
	}
	return out
}
