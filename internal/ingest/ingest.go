// Package ingest imports PGN files into the store and builds trees from
// stored records.
package ingest

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/board"
	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/san"
	"github.com/freeeve/repertoire/internal/verify"
)

// Pausable is an interface for components that can be paused during ingest.
type Pausable interface {
	Pause()
	Resume()
}

// GameStore receives imported games.
type GameStore interface {
	PutGames(collection string, games []records.Game) (int, error)
}

// Config configures the ingest worker.
type Config struct {
	WatchDir     string              // Directory to watch for PGN files
	IngestedDir  string              // Directory to move processed files to
	Username     string              // Tracked player; sets player_color
	Collection   string              // Collection name; defaults to Username, then the file name
	NumWorkers   int                 // Files processed in parallel
	PollInterval time.Duration       // How often to check for new files
	Verify       bool                // Cross-check every game against the reference generator
	Logger       zerolog.Logger      // Logger
	PauseDuring  []Pausable          // Components to pause during ingest
	AfterBatch   func(processed int) // Called after a batch that imported at least one file
}

// Worker watches a folder and ingests PGN files.
type Worker struct {
	cfg Config
	gs  GameStore
	log zerolog.Logger
}

// FileStats summarizes one imported file.
type FileStats struct {
	Collection string
	Games      int
	Added      int
	Skipped    int // games whose movetext could not be sanitized
	Unverified int // games that failed verification
}

// NewWorker creates a new ingest worker. It returns nil when WatchDir is
// empty, meaning watching is disabled.
func NewWorker(cfg Config, gs GameStore) (*Worker, error) {
	if cfg.WatchDir == "" {
		return nil, nil
	}
	if cfg.IngestedDir == "" {
		cfg.IngestedDir = filepath.Join(cfg.WatchDir, "ingested")
	}
	if cfg.NumWorkers == 0 {
		cfg.NumWorkers = 2
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}

	if err := os.MkdirAll(cfg.WatchDir, 0755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.IngestedDir, 0755); err != nil {
		return nil, err
	}

	return &Worker{
		cfg: cfg,
		gs:  gs,
		log: cfg.Logger.With().Str("component", "ingest").Logger(),
	}, nil
}

// Run starts the folder watcher.
func (w *Worker) Run(ctx context.Context) error {
	w.log.Info().
		Str("watch_dir", w.cfg.WatchDir).
		Str("ingested_dir", w.cfg.IngestedDir).
		Str("username", w.cfg.Username).
		Msg("ingest worker started")

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, _, err := w.ProcessNewFiles(ctx); err != nil && ctx.Err() == nil {
			w.log.Warn().Err(err).Msg("process files failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ProcessNewFiles ingests every PGN file in the watch directory, up to
// NumWorkers at a time, and moves successful ones to the ingested directory.
func (w *Worker) ProcessNewFiles(ctx context.Context) (processed, failed int, err error) {
	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	default:
	}

	entries, err := os.ReadDir(w.cfg.WatchDir)
	if err != nil {
		return 0, 0, err
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && records.IsPGNFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return 0, 0, nil
	}
	sort.Strings(files)

	w.log.Info().Int("files", len(files)).Int("workers", w.cfg.NumWorkers).Msg("found PGN files to process")

	for _, p := range w.cfg.PauseDuring {
		p.Pause()
	}
	defer func() {
		if ctx.Err() == nil {
			for _, p := range w.cfg.PauseDuring {
				p.Resume()
			}
		}
	}()

	type fileResult struct {
		name  string
		stats FileStats
		err   error
	}

	fileChan := make(chan string, len(files))
	resultChan := make(chan fileResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < w.cfg.NumWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for name := range fileChan {
				select {
				case <-ctx.Done():
					resultChan <- fileResult{name: name, err: ctx.Err()}
					continue
				default:
				}
				stats, err := w.ProcessFile(filepath.Join(w.cfg.WatchDir, name))
				resultChan <- fileResult{name: name, stats: stats, err: err}
			}
		}(i)
	}

	for _, name := range files {
		fileChan <- name
	}
	close(fileChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for result := range resultChan {
		if result.err != nil {
			w.log.Error().Err(result.err).Str("file", result.name).Msg("ingest failed")
			failed++
			continue
		}
		src := filepath.Join(w.cfg.WatchDir, result.name)
		dst := filepath.Join(w.cfg.IngestedDir, result.name)
		if err := os.Rename(src, dst); err != nil {
			w.log.Warn().Err(err).Str("file", result.name).Msg("move to ingested failed")
		} else {
			w.log.Debug().Str("file", result.name).Msg("moved to ingested")
		}
		processed++
	}

	w.log.Info().Int("processed", processed).Int("failed", failed).Msg("batch complete")
	if processed > 0 && w.cfg.AfterBatch != nil && ctx.Err() == nil {
		w.cfg.AfterBatch(processed)
	}
	return processed, failed, ctx.Err()
}

// ProcessFile imports one .pgn or .pgn.zst file. Games are stored in the
// collection and in its _white or _black view.
func (w *Worker) ProcessFile(path string) (FileStats, error) {
	start := time.Now()
	stats := FileStats{Collection: w.collectionFor(path)}

	games, err := records.ReadPGNFile(path, w.cfg.Username)
	if err != nil {
		return stats, err
	}
	stats.Games = len(games)

	kept := games[:0]
	for _, g := range games {
		moves, err := records.SanitizeMovetext(g.Moves)
		if err != nil {
			stats.Skipped++
			w.log.Warn().Err(err).Str("file", filepath.Base(path)).Str("game", g.Key()).Msg("skipping game")
			continue
		}
		g.CleanMoves = moves
		kept = append(kept, g)
	}
	games = kept

	if w.cfg.Verify {
		sum := verify.Games(games, san.Loose, w.log)
		stats.Unverified = len(sum.Failed)
	}

	added, err := w.gs.PutGames(stats.Collection, games)
	if err != nil {
		return stats, err
	}
	stats.Added = added

	views := SplitByColor(games)
	for _, c := range []board.Color{board.White, board.Black} {
		if len(views[c]) == 0 {
			continue
		}
		if _, err := w.gs.PutGames(ViewName(stats.Collection, c), views[c]); err != nil {
			return stats, err
		}
	}

	w.log.Info().
		Str("file", filepath.Base(path)).
		Str("collection", stats.Collection).
		Int("games", stats.Games).
		Int("added", stats.Added).
		Int("skipped", stats.Skipped).
		Int("unverified", stats.Unverified).
		Dur("elapsed", time.Since(start)).
		Msg("file ingest complete")
	return stats, nil
}

func (w *Worker) collectionFor(path string) string {
	if w.cfg.Collection != "" {
		return w.cfg.Collection
	}
	if w.cfg.Username != "" {
		return w.cfg.Username
	}
	return CollectionName(path)
}

// CollectionName derives a collection name from a file name by dropping
// the .pgn and .zst extensions.
func CollectionName(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".zst")
	return strings.TrimSuffix(name, ".pgn")
}

// ViewName is the name of a collection's per-color view.
func ViewName(collection string, c board.Color) string {
	if c == board.Black {
		return collection + "_black"
	}
	return collection + "_white"
}

// ViewColor returns the color a collection is viewed from: Black for
// _black views, White otherwise.
func ViewColor(collection string) board.Color {
	if strings.HasSuffix(collection, "_black") {
		return board.Black
	}
	return board.White
}

// SplitByColor groups games by the tracked player's color. Games without a
// player_color belong to neither view.
func SplitByColor(games []records.Game) [2][]records.Game {
	var out [2][]records.Game
	for _, g := range games {
		c, ok := board.ParseColor(g.PlayerColor)
		if !ok {
			continue
		}
		out[c] = append(out[c], g)
	}
	return out
}
