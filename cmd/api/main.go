package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/freeeve/repertoire/internal/config"
	"github.com/freeeve/repertoire/internal/eco"
	"github.com/freeeve/repertoire/internal/eval"
	"github.com/freeeve/repertoire/internal/httpapi"
	"github.com/freeeve/repertoire/internal/ingest"
	"github.com/freeeve/repertoire/internal/logx"
	"github.com/freeeve/repertoire/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.json (optional)")

		// Data directories
		storeDir  = flag.String("store", "", "store directory")
		ecoDir    = flag.String("eco-dir", "", "directory containing ECO .tsv files")
		ingestDir = flag.String("ingest-dir", "", "directory to watch for PGN files (empty = disabled)")

		// Server
		addr = flag.String("addr", "", "listen address")

		// Stockfish
		stockfishPath = flag.String("stockfish", "", "path to Stockfish executable")
		evalWorker    = flag.Bool("eval", true, "evaluate browsed study positions")
		evalDepth     = flag.Int("eval-depth", 0, "Stockfish evaluation depth")
		evalWorkers   = flag.Int("eval-workers", 0, "number of engine processes")
		evalThreads   = flag.Int("eval-threads", 1, "Stockfish threads per worker")
		evalHash      = flag.Int("eval-hash", 128, "Stockfish hash MB per worker")

		username = flag.String("username", "", "tracked player for ingested games")
		logLevel = flag.String("log-level", "", "trace, debug, info, warn or error")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err == nil {
		err = cfg.ApplyEnv(os.Getenv)
	}
	// Flags given on the command line win over file and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "store":
			cfg.StoreDir = *storeDir
		case "eco-dir":
			cfg.EcoDir = *ecoDir
		case "ingest-dir":
			cfg.IngestDir = *ingestDir
		case "addr":
			cfg.Addr = *addr
		case "stockfish":
			cfg.EnginePath = *stockfishPath
		case "eval-depth":
			cfg.EvalDepth = *evalDepth
		case "eval-workers":
			cfg.EvalWorkers = *evalWorkers
		case "username":
			cfg.ChessComUser = *username
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	logger := logx.NewLogger(logx.Options{Level: cfg.LogLevel})
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}

	st, err := store.Open(store.Config{
		Dir:    cfg.StoreDir,
		Logger: logger.With().Str("component", "store").Logger(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer st.Close()

	stats := st.Stats()
	logger.Info().
		Str("dir", cfg.StoreDir).
		Int64("lsm_bytes", stats.LSMBytes).
		Int64("vlog_bytes", stats.VLogBytes).
		Msg("store opened")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load ECO opening database
	var ecoDB *eco.Database
	if cfg.EcoDir != "" {
		ecoDB = eco.NewDatabase(logger.With().Str("component", "eco").Logger())
		if err := ecoDB.LoadDir(cfg.EcoDir); err != nil {
			logger.Warn().Err(err).Str("dir", cfg.EcoDir).Msg("failed to load ECO database")
			ecoDB = nil
		} else {
			logger.Info().Int("openings", ecoDB.Count()).Msg("ECO database loaded")
		}
	}

	// Create eval pool before the router so browsed positions can be queued
	var evalPool *eval.Pool
	if *evalWorker && cfg.EnginePath != "" {
		evalPool, err = eval.NewPool(eval.PoolConfig{
			Engine: eval.EngineConfig{
				Path:    cfg.EnginePath,
				HashMB:  *evalHash,
				Threads: *evalThreads,
			},
			Logger:     logger.With().Str("component", "eval-pool").Logger(),
			Depth:      cfg.EvalDepth,
			NumWorkers: cfg.EvalWorkers,
		}, st)
		if err != nil {
			logger.Fatal().Err(err).Msg("create eval pool")
		}
	} else if *evalWorker {
		logger.Warn().Msg("no engine path configured, browse evaluation disabled")
	}

	builder := ingest.NewBuilder(ingest.BuilderConfig{
		Evals:  true,
		Logger: logger,
	}, st)
	lib, report, err := builder.Build(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("build trees")
	}
	for name, err := range report.Failed {
		logger.Warn().Err(err).Str("tree", name).Msg("tree left out")
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      httpapi.NewRouter(logger, lib, st, evalPool, ecoDB),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("api server")
		}
	}()

	// Start ingest worker if configured
	if cfg.IngestDir != "" {
		icfg := ingest.Config{
			WatchDir:    cfg.IngestDir,
			IngestedDir: cfg.IngestedDir,
			Username:    cfg.Username(),
			Logger:      logger.With().Str("component", "ingest").Logger(),
			// Rebuild so new games show up without a restart
			AfterBatch: func(processed int) {
				next, report, err := builder.Build(ctx)
				if err != nil {
					logger.Error().Err(err).Msg("rebuild trees")
					return
				}
				lib.Swap(next)
				logger.Info().
					Int("files", processed).
					Int("openings", len(report.Openings)).
					Int("studies", len(report.Studies)).
					Msg("trees rebuilt")
			},
		}
		// Pause the engines while files are imported
		if evalPool != nil {
			icfg.PauseDuring = append(icfg.PauseDuring, evalPool)
		}
		worker, err := ingest.NewWorker(icfg, st)
		if err != nil {
			logger.Fatal().Err(err).Msg("create ingest worker")
		}
		if worker != nil {
			go func() {
				if err := worker.Run(ctx); err != nil && err != context.Canceled {
					logger.Error().Err(err).Msg("ingest worker stopped")
				}
			}()
			logger.Info().Str("watch_dir", cfg.IngestDir).Msg("started ingest worker")
		}
	}

	if evalPool != nil {
		go func() {
			if err := evalPool.Run(ctx); err != nil && err != context.Canceled {
				logger.Error().Err(err).Msg("eval pool stopped")
			}
		}()
		logger.Info().Int("workers", cfg.EvalWorkers).Int("depth", cfg.EvalDepth).Msg("started eval pool")
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http server shutdown error")
	}

	// Give workers a moment to finish their current position
	time.Sleep(1 * time.Second)

	stats = st.Stats()
	logger.Info().
		Uint64("reads", stats.TotalReads).
		Uint64("writes", stats.TotalWrites).
		Msg("shutdown complete")
}
