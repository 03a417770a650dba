package ingest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/repertoire/internal/graph"
	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/san"
)

// Source is the read side of the store the builder loads records from.
type Source interface {
	Collections() ([]string, error)
	Games(collection string) ([]records.Game, error)
	Studies() ([]string, error)
	Study(name string) (*records.Study, error)
	Eval(fen string) (records.Eval, error)
}

// BuilderConfig configures the tree builder.
type BuilderConfig struct {
	Workers  int           // trees built in parallel; defaults to GOMAXPROCS
	Resolver *san.Resolver // defaults to san.Loose
	Evals    bool          // attach stored evaluations to study nodes
	Logger   zerolog.Logger
}

// Builder builds one tree per collection and study. Each tree is built by a
// single goroutine that owns it; finished trees go into a graph.Library.
type Builder struct {
	cfg BuilderConfig
	src Source
	log zerolog.Logger
}

// BuildReport holds per-tree build statistics and the trees that failed.
type BuildReport struct {
	Openings map[string]graph.BuildStats
	Studies  map[string]graph.BuildStats
	Failed   map[string]error
}

// NewBuilder creates a builder reading from src.
func NewBuilder(cfg BuilderConfig, src Source) *Builder {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Resolver == nil {
		cfg.Resolver = san.Loose
	}
	return &Builder{
		cfg: cfg,
		src: src,
		log: cfg.Logger.With().Str("component", "builder").Logger(),
	}
}

// Build loads every collection and study and builds their trees in
// parallel. A tree that fails to load or build is recorded in the report
// and left out of the library; only cancellation and listing errors are
// returned.
func (b *Builder) Build(ctx context.Context) (*graph.Library, BuildReport, error) {
	start := time.Now()
	lib := graph.NewLibrary()
	rep := BuildReport{
		Openings: make(map[string]graph.BuildStats),
		Studies:  make(map[string]graph.BuildStats),
		Failed:   make(map[string]error),
	}

	collections, err := b.src.Collections()
	if err != nil {
		return nil, rep, err
	}
	studies, err := b.src.Studies()
	if err != nil {
		return nil, rep, err
	}

	var mu sync.Mutex
	fail := func(name string, err error) {
		b.log.Warn().Err(err).Str("tree", name).Msg("tree build failed")
		mu.Lock()
		rep.Failed[name] = err
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.cfg.Workers)

	for _, name := range collections {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, stats, err := b.buildOpening(name)
			if err != nil {
				fail(name, err)
				return nil
			}
			lib.PutOpening(t)
			mu.Lock()
			rep.Openings[name] = stats
			mu.Unlock()
			return nil
		})
	}
	for _, name := range studies {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, stats, err := b.buildStudy(name)
			if err != nil {
				fail(name, err)
				return nil
			}
			lib.PutStudy(t)
			mu.Lock()
			rep.Studies[name] = stats
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, rep, err
	}
	b.log.Info().
		Int("openings", len(rep.Openings)).
		Int("studies", len(rep.Studies)).
		Int("failed", len(rep.Failed)).
		Dur("elapsed", time.Since(start)).
		Msg("library built")
	return lib, rep, nil
}

func (b *Builder) buildOpening(name string) (*graph.OpeningTree, graph.BuildStats, error) {
	games, err := b.src.Games(name)
	if err != nil {
		return nil, graph.BuildStats{}, err
	}
	cfg := graph.OpeningConfig{
		Name:     name,
		Color:    ViewColor(name),
		Resolver: b.cfg.Resolver,
	}
	t, stats, err := graph.BuildOpeningTree(cfg, games, b.log)
	if err != nil {
		return nil, stats, err
	}
	t.SortChildren(graph.SortByCount)
	return t, stats, nil
}

func (b *Builder) buildStudy(name string) (*graph.StudyTree, graph.BuildStats, error) {
	study, err := b.src.Study(name)
	if err != nil {
		return nil, graph.BuildStats{}, err
	}
	t, stats, err := graph.BuildStudyTree(study, b.cfg.Resolver, b.log)
	if err != nil {
		return nil, stats, err
	}
	if b.cfg.Evals {
		n := t.AttachEvals(b.src.Eval)
		b.log.Debug().Str("study", name).Int("evals", n).Msg("evaluations attached")
	}
	return t, stats, nil
}
