// Package records defines the game and study records the tree builders
// consume, and reads them from PGN.
package records

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/movetext"
)

// Outcome is a game result from the tracked player's side.
type Outcome int8

const (
	OutcomeUnknown Outcome = iota
	OutcomeLoss
	OutcomeDraw
	OutcomeWin
)

// Score returns 1, 0.5 or 0. Unknown outcomes score 0 but are never counted
// as losses by the trees.
func (o Outcome) Score() float64 {
	switch o {
	case OutcomeWin:
		return 1
	case OutcomeDraw:
		return 0.5
	}
	return 0
}

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeDraw:
		return "draw"
	case OutcomeLoss:
		return "loss"
	}
	return "unknown"
}

// ParseOutcome normalizes a PGN result ("1-0", "0-1", "1/2-1/2", "*") for
// the player of color c.
func ParseOutcome(result string, c board.Color) Outcome {
	result = strings.TrimSpace(result)
	if strings.HasPrefix(result, "1/2") || result == "½-½" {
		return OutcomeDraw
	}
	white, black, ok := strings.Cut(result, "-")
	if !ok {
		return OutcomeUnknown
	}
	score := white
	if c == board.Black {
		score = black
	}
	switch score {
	case "1":
		return OutcomeWin
	case "0":
		return OutcomeLoss
	}
	return OutcomeUnknown
}

// Game is one imported game. Moves holds raw movetext; CleanMoves, when set,
// is the main line with numbers and markup already stripped.
type Game struct {
	ID          string            `json:"id,omitempty"`
	URL         string            `json:"url,omitempty"`
	PlayerColor string            `json:"player_color,omitempty"`
	Result      string            `json:"result,omitempty"`
	EndTime     int64             `json:"end_time,omitempty"`
	StartFEN    string            `json:"start_fen,omitempty"`
	EndFEN      string            `json:"end_fen,omitempty"`
	Moves       string            `json:"moves,omitempty"`
	CleanMoves  []string          `json:"clean_moves,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// Color returns the tracked player's color. A missing player_color counts as
// white.
func (g *Game) Color() board.Color {
	c, _ := board.ParseColor(g.PlayerColor)
	return c
}

// Outcome returns the result from the tracked player's side.
func (g *Game) Outcome() Outcome {
	return ParseOutcome(g.Result, g.Color())
}

// MoveList returns the sanitized main line.
func (g *Game) MoveList() ([]string, error) {
	if len(g.CleanMoves) > 0 {
		return g.CleanMoves, nil
	}
	return SanitizeMovetext(g.Moves)
}

// Key identifies the game for deduplication: its id, else its url, else a
// hash of its players, date and movetext.
func (g *Game) Key() string {
	if g.ID != "" {
		return g.ID
	}
	if g.URL != "" {
		return g.URL
	}
	h := xxhash.New()
	for _, tag := range []string{"white", "black", "date", "utcdate", "utctime", "round"} {
		_, _ = h.WriteString(g.Tags[tag])
		_, _ = h.WriteString("\x00")
	}
	_, _ = h.WriteString(g.Moves)
	_, _ = h.WriteString(strings.Join(g.CleanMoves, " "))
	return strconv.FormatUint(h.Sum64(), 16)
}

// SanitizeMovetext reduces movetext to its main-line move tokens, dropping
// numbers, comments, glyphs, variations and the result.
func SanitizeMovetext(text string) ([]string, error) {
	toks, err := movetext.Lex(text)
	if err != nil {
		return nil, err
	}
	moves := movetext.MainLine(toks)
	for i, m := range moves {
		moves[i] = strings.TrimRight(m, "!?")
	}
	return moves, nil
}
