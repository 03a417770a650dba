package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/config"
	"github.com/freeeve/repertoire/internal/eval"
	"github.com/freeeve/repertoire/internal/graph"
	"github.com/freeeve/repertoire/internal/ingest"
	"github.com/freeeve/repertoire/internal/logx"
	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/san"
	"github.com/freeeve/repertoire/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.json (optional)")
		storeDir   = flag.String("store", "", "store directory")
		inputPath  = flag.String("pgn", "", "PGN file of games to import (supports .zst)")
		watchDir   = flag.String("watch", "", "directory to watch for PGN files")
		collection = flag.String("collection", "", "collection name (default: username, then file name)")
		username   = flag.String("username", "", "tracked player")
		verifyFlag = flag.Bool("verify", false, "cross-check games against the reference move generator")

		studyPath = flag.String("study", "", "study export to import (.pgn or .json)")
		studyName = flag.String("study-name", "", "study name (default: file name)")
		studyAs   = flag.String("study-as", "w", "side the study is played from: w or b")

		evaluate  = flag.Bool("evaluate", false, "evaluate every position of the imported study")
		stockfish = flag.String("stockfish", "", "path to Stockfish executable")
		evalDepth = flag.Int("eval-depth", 0, "Stockfish evaluation depth")
		workers   = flag.Int("eval-workers", 0, "number of engine processes")
		logLevel  = flag.String("log-level", "", "trace, debug, info, warn or error")
	)
	flag.Parse()

	if *inputPath == "" && *watchDir == "" && *studyPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: ingest (-pgn <file.pgn[.zst]> | -watch <dir> | -study <file>) [options]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ApplyEnv(os.Getenv)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "store":
			cfg.StoreDir = *storeDir
		case "username":
			cfg.ChessComUser = *username
		case "stockfish":
			cfg.EnginePath = *stockfish
		case "eval-depth":
			cfg.EvalDepth = *evalDepth
		case "eval-workers":
			cfg.EvalWorkers = *workers
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	logger := logx.NewLogger(logx.Options{Level: cfg.LogLevel})
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.Open(store.Config{
		Dir:    cfg.StoreDir,
		Logger: logger.With().Str("component", "store").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	startTime := time.Now()

	if *inputPath != "" {
		// One-shot imports never move the file, so both directories point
		// at its own folder.
		dir := filepath.Dir(*inputPath)
		w, err := ingest.NewWorker(ingest.Config{
			WatchDir:    dir,
			IngestedDir: dir,
			Username:    cfg.Username(),
			Collection:  *collection,
			Verify:      *verifyFlag,
			Logger:      logger,
		}, st)
		if err != nil {
			logger.Fatal().Err(err).Msg("create ingest worker")
		}
		stats, err := w.ProcessFile(*inputPath)
		if err != nil {
			logger.Fatal().Err(err).Str("pgn", *inputPath).Msg("ingest failed")
		}
		if stats.Unverified > 0 {
			logger.Warn().Int("games", stats.Unverified).Msg("games failed verification")
		}
	}

	if *studyPath != "" {
		if err := importStudy(ctx, logger, st, *studyPath, *studyName, *studyAs, *evaluate, cfg); err != nil {
			logger.Fatal().Err(err).Str("study", *studyPath).Msg("study import failed")
		}
	}

	if *watchDir != "" {
		w, err := ingest.NewWorker(ingest.Config{
			WatchDir:    *watchDir,
			IngestedDir: cfg.IngestedDir,
			Username:    cfg.Username(),
			Collection:  *collection,
			Verify:      *verifyFlag,
			Logger:      logger,
		}, st)
		if err != nil {
			logger.Fatal().Err(err).Msg("create ingest worker")
		}
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("ingest worker stopped")
		}
	}

	stats := st.Stats()
	logger.Info().
		Uint64("writes", stats.TotalWrites).
		Dur("elapsed", time.Since(startTime)).
		Msg("ingest complete")
}

func importStudy(ctx context.Context, logger zerolog.Logger, st *store.Store, path, name, studyAs string, evaluate bool, cfg config.Config) error {
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var study *records.Study
	if strings.EqualFold(filepath.Ext(path), ".json") {
		study = &records.Study{}
		if err := json.NewDecoder(f).Decode(study); err != nil {
			return fmt.Errorf("decode study: %w", err)
		}
		if study.Name == "" {
			study.Name = name
		}
	} else {
		study, err = records.StudyFromPGN(name, studyAs, f)
		if err != nil {
			return err
		}
	}
	if err := st.PutStudy(study); err != nil {
		return err
	}

	tree, stats, err := graph.BuildStudyTree(study, san.Loose, logger)
	if err != nil {
		return err
	}
	logger.Info().
		Str("study", study.Name).
		Int("chapters", len(study.Studies)).
		Int("skipped", stats.Skipped).
		Int("nodes", tree.Len()).
		Msg("study imported")

	if !evaluate {
		return nil
	}
	pool, err := eval.NewPool(eval.PoolConfig{
		Engine:     eval.EngineConfig{Path: cfg.EnginePath},
		Logger:     logger,
		Depth:      cfg.EvalDepth,
		NumWorkers: cfg.EvalWorkers,
	}, st)
	if err != nil {
		return err
	}
	nodes := tree.Nodes()
	fens := make([]string, len(nodes))
	for i := range nodes {
		fens[i] = nodes[i].FEN
	}
	n, err := pool.EvaluateAll(ctx, fens)
	logger.Info().Int("evaluated", n).Int("positions", len(fens)).Msg("study evaluated")
	return err
}
