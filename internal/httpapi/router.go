package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/eco"
	"github.com/freeeve/repertoire/internal/eval"
	"github.com/freeeve/repertoire/internal/graph"
	"github.com/freeeve/repertoire/internal/san"
	"github.com/freeeve/repertoire/internal/store"
)

// Handler serves the built trees.
type Handler struct {
	lib      *graph.Library
	st       store.ReadStore
	evalPool *eval.Pool
	ecoDB    *eco.Database
	log      zerolog.Logger
}

// NewRouter creates the HTTP router over lib.
// st, evalPool and ecoDB are optional. With evalPool set, browsed study
// positions without an evaluation are queued for the engine. With ecoDB set,
// responses carry opening names.
func NewRouter(log zerolog.Logger, lib *graph.Library, st store.ReadStore, evalPool *eval.Pool, ecoDB *eco.Database) http.Handler {
	h := &Handler{
		lib:      lib,
		st:       st,
		evalPool: evalPool,
		ecoDB:    ecoDB,
		log:      log,
	}

	if evalPool != nil {
		log.Info().Msg("browse eval enabled - study positions without evals will be queued")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("GET /readyz", h.health)
	mux.HandleFunc("GET /v1/trees", h.trees)
	mux.HandleFunc("GET /v1/stats", h.stats)
	mux.HandleFunc("GET /v1/opening/{name}", h.opening)
	mux.HandleFunc("GET /v1/opening/{name}/summary", h.openingSummary)
	mux.HandleFunc("GET /v1/study/{name}", h.study)
	mux.HandleFunc("GET /v1/study/{name}/testable", h.testable)
	mux.HandleFunc("POST /v1/move", h.play)
	mux.HandleFunc("GET /v1/locate", h.locate)

	return CORS(RequestID(log, AccessLog(mux)))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) trees(w http.ResponseWriter, r *http.Request) {
	openings, studies := h.lib.Names()
	if openings == nil {
		openings = []string{}
	}
	if studies == nil {
		studies = []string{}
	}
	writeJSON(w, map[string]any{
		"openings": openings,
		"studies":  studies,
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{}
	if h.st != nil {
		s := h.st.Stats()
		out["total_reads"] = s.TotalReads
		out["total_writes"] = s.TotalWrites
		out["lsm_bytes"] = s.LSMBytes
		out["vlog_bytes"] = s.VLogBytes
	}
	if h.evalPool != nil {
		out["eval"] = h.evalPool.Status()
	}
	if h.ecoDB != nil {
		out["eco_openings"] = h.ecoDB.Count()
	}
	out["test_points"] = len(h.lib.TestPoints())
	writeJSON(w, out)
}

func (h *Handler) opening(w http.ResponseWriter, r *http.Request) {
	t, n, ok := h.openingNode(w, r)
	if !ok {
		return
	}
	resp := ToOpeningNodeResponse(t, n)
	resp.Opening = h.lookupECO(n.FEN)
	writeJSON(w, resp)
}

func (h *Handler) openingSummary(w http.ResponseWriter, r *http.Request) {
	t, n, ok := h.openingNode(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(t.Summary(n.ID)))
}

func (h *Handler) openingNode(w http.ResponseWriter, r *http.Request) (*graph.OpeningTree, *graph.Node, bool) {
	name := r.PathValue("name")
	t, ok := h.lib.Opening(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown opening tree", name)
		return nil, nil, false
	}
	fen := r.URL.Query().Get("fen")
	if fen == "" {
		return t, t.Node(graph.Root), true
	}
	n, ok := t.Lookup(fen)
	if !ok {
		writeError(w, r, http.StatusNotFound, "position not in tree", fen)
		return nil, nil, false
	}
	return t, n, true
}

func (h *Handler) study(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	t, ok := h.lib.Study(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown study", name)
		return
	}
	n := t.Node(graph.Root)
	if fen := r.URL.Query().Get("fen"); fen != "" {
		if n, ok = t.Lookup(fen); !ok {
			writeError(w, r, http.StatusNotFound, "position not in study", fen)
			return
		}
	}

	resp := ToStudyNodeResponse(t, n)
	resp.Opening = h.lookupECO(n.FEN)
	if resp.Eval == nil {
		h.fillEval(r, resp)
	}
	writeJSON(w, resp)
}

// fillEval reads an evaluation stored after the tree was built, or queues
// the position for the engine.
func (h *Handler) fillEval(r *http.Request, resp *StudyNodeResponse) {
	if h.st != nil {
		if e, err := h.st.Eval(resp.FEN); err == nil {
			resp.Eval = toEval(&e)
			return
		}
	}
	if h.evalPool != nil && h.evalPool.EnqueueBrowse(resp.FEN) {
		zerolog.Ctx(r.Context()).Debug().Str("fen", resp.FEN).Msg("queued for eval")
	}
}

func (h *Handler) testable(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	t, ok := h.lib.Study(name)
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown study", name)
		return
	}
	nodes := t.TestableNodes()
	out := make([]TestPointResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, TestPointResponse{FEN: n.FEN, Answers: n.Answers(), Hint: n.Hint(), Notes: n.Notes})
	}
	writeJSON(w, out)
}

// play resolves a user-typed move against a position.
func (h *Handler) play(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid JSON body", err.Error())
		return
	}
	if req.FEN == "" {
		req.FEN = board.StartFEN
	}
	fen, mv, err := san.Play(req.FEN, req.Move)
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Msg("move rejected")
		writeError(w, r, http.StatusUnprocessableEntity, "invalid move", err.Error())
		return
	}
	writeJSON(w, PlayResponse{FEN: fen, UCI: mv.UCI(), From: mv.From().String(), To: mv.To().String()})
}

// locate returns the squares of a move for highlighting.
func (h *Handler) locate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to, err := san.Locate(q.Get("fen"), q.Get("move"))
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid move", err.Error())
		return
	}
	writeJSON(w, map[string]string{"from": from.String(), "to": to.String()})
}

func (h *Handler) lookupECO(fen string) *eco.Opening {
	if h.ecoDB == nil {
		return nil
	}
	return h.ecoDB.LookupFEN(fen)
}
