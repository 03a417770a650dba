package records

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/freeeve/repertoire/internal/board"
)

// Chapter is one annotated line of a study. Moves is raw movetext including
// comments, glyphs and variations.
type Chapter struct {
	Event    string            `json:"event,omitempty"`
	StartFEN string            `json:"fen,omitempty"`
	Moves    string            `json:"moves"`
	Tags     map[string]string `json:"tags,omitempty"`
}

// Key identifies a chapter by its content.
func (c *Chapter) Key() string {
	h := xxhash.New()
	_, _ = h.WriteString(c.Event)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(c.StartFEN)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(c.Moves)
	return strconv.FormatUint(h.Sum64(), 16)
}

// Study is a named collection of chapters studied from one side.
type Study struct {
	Name    string    `json:"name"`
	StudyAs string    `json:"study_as"`
	Studies []Chapter `json:"studies"`
}

// Color returns the studied side.
func (s *Study) Color() (board.Color, error) {
	c, ok := board.ParseColor(s.StudyAs)
	if !ok {
		return board.White, fmt.Errorf("study %q: study_as %q is not w or b", s.Name, s.StudyAs)
	}
	return c, nil
}

// Eval is an engine evaluation of a position, always from White's side.
type Eval struct {
	CP     int    `json:"cp"`
	Mate   int    `json:"mate,omitempty"`
	Depth  int    `json:"depth"`
	Engine string `json:"engine,omitempty"`
}

func (e Eval) String() string {
	if e.Mate != 0 {
		return fmt.Sprintf("#%d (depth %d)", e.Mate, e.Depth)
	}
	return fmt.Sprintf("%+.2f (depth %d)", float64(e.CP)/100, e.Depth)
}
