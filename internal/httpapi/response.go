package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/freeeve/repertoire/internal/eco"
	"github.com/freeeve/repertoire/internal/graph"
	"github.com/freeeve/repertoire/internal/records"
)

// RatesResponse holds win/draw/loss percentages from the tracked player's side.
type RatesResponse struct {
	Win  float64 `json:"win"`
	Draw float64 `json:"draw"`
	Loss float64 `json:"loss"`
}

func toRates(r [3]float64) RatesResponse {
	return RatesResponse{Win: r[0] * 100, Draw: r[1] * 100, Loss: r[2] * 100}
}

// OpeningNodeResponse is one position of an opening tree.
type OpeningNodeResponse struct {
	Tree       string          `json:"tree"`
	FEN        string          `json:"fen"`
	Count      int             `json:"count"`
	Rates      RatesResponse   `json:"rates"`
	LastPlayed int64           `json:"last_played,omitempty"`
	Opening    *eco.Opening    `json:"opening,omitempty"`
	Moves      []ChildResponse `json:"moves"`
}

// ChildResponse is one continuation of an opening node.
type ChildResponse struct {
	Move       string        `json:"move"`
	UCI        string        `json:"uci"`
	FEN        string        `json:"fen"`
	Count      int           `json:"count"`
	Rates      RatesResponse `json:"rates"`
	LastPlayed int64         `json:"last_played,omitempty"`
}

// StudyNodeResponse is one position of a study tree.
type StudyNodeResponse struct {
	Study      string              `json:"study"`
	FEN        string              `json:"fen"`
	SideToMove string              `json:"side_to_move"`
	MoveNumber int                 `json:"move_number"`
	Testable   bool                `json:"testable"`
	Notes      []string            `json:"notes,omitempty"`
	Chapters   []string            `json:"chapters,omitempty"`
	Moves      []StudyMoveResponse `json:"moves"`
	Eval       *EvalResponse       `json:"eval,omitempty"`
	Opening    *eco.Opening        `json:"opening,omitempty"`
}

// StudyMoveResponse is one recorded continuation of a study node.
type StudyMoveResponse struct {
	Move string `json:"move"`
	UCI  string `json:"uci"`
	FEN  string `json:"fen"`
}

type EvalResponse struct {
	CP     int    `json:"cp"`
	Mate   int    `json:"mate,omitempty"`
	Depth  int    `json:"depth"`
	Engine string `json:"engine,omitempty"`
	Text   string `json:"text"`
}

func toEval(e *records.Eval) *EvalResponse {
	if e == nil {
		return nil
	}
	return &EvalResponse{CP: e.CP, Mate: e.Mate, Depth: e.Depth, Engine: e.Engine, Text: e.String()}
}

// TestPointResponse is one quiz position with its accepted answers.
type TestPointResponse struct {
	FEN     string   `json:"fen"`
	Answers []string `json:"answers"`
	Hint    string   `json:"hint"`
	Notes   []string `json:"notes,omitempty"`
}

// PlayRequest asks the resolver to apply a typed move.
type PlayRequest struct {
	FEN  string `json:"fen"`
	Move string `json:"move"`
}

// PlayResponse is the position after a resolved move.
type PlayResponse struct {
	FEN  string `json:"fen"`
	UCI  string `json:"uci"`
	From string `json:"from"`
	To   string `json:"to"`
}

// ErrorResponse carries a user-facing error.
type ErrorResponse struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// ToOpeningNodeResponse converts an opening node and its children.
func ToOpeningNodeResponse(t *graph.OpeningTree, n *graph.Node) *OpeningNodeResponse {
	if n == nil {
		return nil
	}
	resp := &OpeningNodeResponse{
		Tree:       t.Name(),
		FEN:        n.FEN,
		Count:      n.Count(),
		Rates:      toRates(n.WinRates()),
		LastPlayed: n.LastPlayed(),
		Moves:      make([]ChildResponse, 0, len(n.Children)),
	}
	for _, e := range n.Children {
		c := t.Node(e.Child)
		if c == nil {
			continue
		}
		resp.Moves = append(resp.Moves, ChildResponse{
			Move:       e.Move,
			UCI:        e.UCI,
			FEN:        c.FEN,
			Count:      c.Count(),
			Rates:      toRates(c.WinRates()),
			LastPlayed: c.LastPlayed(),
		})
	}
	return resp
}

// ToStudyNodeResponse converts a study node and its children.
func ToStudyNodeResponse(t *graph.StudyTree, n *graph.StudyNode) *StudyNodeResponse {
	if n == nil {
		return nil
	}
	resp := &StudyNodeResponse{
		Study:      t.Name(),
		FEN:        n.FEN,
		SideToMove: n.SideToMove.FENChar(),
		MoveNumber: n.MoveNumber,
		Testable:   n.Testable,
		Notes:      n.Notes,
		Chapters:   n.Chapters,
		Moves:      make([]StudyMoveResponse, 0, len(n.Children)),
		Eval:       toEval(n.Eval),
	}
	for _, e := range n.Children {
		c := t.Node(e.Child)
		if c == nil {
			continue
		}
		resp.Moves = append(resp.Moves, StudyMoveResponse{Move: e.Move, UCI: e.UCI, FEN: c.FEN})
	}
	return resp
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:     msg,
		Detail:    detail,
		RequestID: GetRequestID(r.Context()),
	})
}
