// Package eval evaluates study positions with an external UCI engine and
// stores the results.
package eval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/freeeve/uci"

	"github.com/freeeve/repertoire/internal/records"
)

// ErrNoResults is returned when the engine finishes without a score.
var ErrNoResults = errors.New("no results from engine")

// Analyzer evaluates one position at a time. Implementations need not be
// safe for concurrent use; the pool gives each worker its own.
type Analyzer interface {
	Analyze(fen string, depth int) (records.Eval, error)
	Close()
}

// EngineConfig configures one engine process.
type EngineConfig struct {
	Path    string
	HashMB  int
	Threads int
}

// Stockfish drives a UCI engine process.
type Stockfish struct {
	engine *uci.Engine
	name   string
}

// NewStockfish starts the engine at cfg.Path.
func NewStockfish(cfg EngineConfig) (*Stockfish, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("stockfish path required")
	}
	if cfg.HashMB == 0 {
		cfg.HashMB = 256
	}
	if cfg.Threads == 0 {
		cfg.Threads = 2
	}

	engine, err := uci.NewEngine(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	opts := uci.Options{
		Hash:    cfg.HashMB,
		Threads: cfg.Threads,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	}
	if err := engine.SetOptions(opts); err != nil {
		engine.Close()
		return nil, fmt.Errorf("set options: %w", err)
	}
	return &Stockfish{engine: engine, name: engineName(cfg.Path)}, nil
}

func engineName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		path = path[i+1:]
	}
	return path
}

// Analyze searches fen to depth and returns the score from White's side.
func (s *Stockfish) Analyze(fen string, depth int) (records.Eval, error) {
	if err := s.engine.SetFEN(fen); err != nil {
		return records.Eval{}, fmt.Errorf("set FEN: %w", err)
	}
	results, err := s.engine.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return records.Eval{}, fmt.Errorf("stockfish eval: %w", err)
	}
	if len(results.Results) == 0 {
		return records.Eval{}, ErrNoResults
	}
	best := results.Results[0]
	for _, r := range results.Results {
		if r.Depth > best.Depth {
			best = r
		}
	}
	e := normalize(fen, best.Score, best.Mate)
	e.Depth = best.Depth
	e.Engine = s.name
	return e, nil
}

// Close stops the engine process.
func (s *Stockfish) Close() {
	s.engine.Close()
}

// normalize turns a side-to-move score into a White-relative Eval.
func normalize(fen string, score int, mate bool) records.Eval {
	if strings.Contains(fen, " b ") {
		score = -score
	}
	if mate {
		return records.Eval{Mate: score}
	}
	return records.Eval{CP: score}
}
