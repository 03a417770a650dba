package eval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/repertoire/internal/records"
	"github.com/freeeve/repertoire/internal/store"
)

// Sink is where the pool looks up and stores evaluations.
type Sink interface {
	Eval(fen string) (records.Eval, error)
	PutEval(fen string, e records.Eval) error
}

// PoolConfig configures the evaluation pool.
type PoolConfig struct {
	Engine       EngineConfig
	Logger       zerolog.Logger
	Depth        int // search depth per position
	NumWorkers   int // engine processes
	QueueSize    int // browse queue capacity
	PollInterval time.Duration

	// NewAnalyzer overrides engine creation. Defaults to NewStockfish(Engine).
	NewAnalyzer func() (Analyzer, error)
}

// Pool runs a fixed number of engine workers. Batch jobs go through
// EvaluateAll; positions browsed through the API are queued with
// EnqueueBrowse and drained by Run.
type Pool struct {
	cfg    PoolConfig
	log    zerolog.Logger
	sink   Sink
	browse *BrowseQueue

	activeWorkers int32
	maxWorkers    int32

	evaluated    int64
	skipped      int64
	failed       int64
	browseEvaled int64
}

// Status is a snapshot of pool counters.
type Status struct {
	ActiveWorkers  int   `json:"active_workers"`
	MaxWorkers     int   `json:"max_workers"`
	BrowseQueueLen int   `json:"browse_queue_len"`
	Evaluated      int64 `json:"evaluated"`
	Skipped        int64 `json:"skipped"`
	Failed         int64 `json:"failed"`
	BrowseEvaled   int64 `json:"browse_evaled"`
}

// NewPool creates a pool writing into sink.
func NewPool(cfg PoolConfig, sink Sink) (*Pool, error) {
	if cfg.NewAnalyzer == nil {
		if cfg.Engine.Path == "" {
			return nil, fmt.Errorf("stockfish path required")
		}
		ec := cfg.Engine
		cfg.NewAnalyzer = func() (Analyzer, error) { return NewStockfish(ec) }
	}
	if cfg.Depth == 0 {
		cfg.Depth = 20
	}
	if cfg.NumWorkers == 0 {
		cfg.NumWorkers = 1
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	return &Pool{
		cfg:           cfg,
		log:           cfg.Logger.With().Str("component", "eval").Logger(),
		sink:          sink,
		browse:        NewBrowseQueue(cfg.QueueSize),
		activeWorkers: int32(cfg.NumWorkers),
		maxWorkers:    int32(cfg.NumWorkers),
	}, nil
}

// Status returns the current counters.
func (p *Pool) Status() Status {
	return Status{
		ActiveWorkers:  int(atomic.LoadInt32(&p.activeWorkers)),
		MaxWorkers:     int(p.maxWorkers),
		BrowseQueueLen: p.browse.Len(),
		Evaluated:      atomic.LoadInt64(&p.evaluated),
		Skipped:        atomic.LoadInt64(&p.skipped),
		Failed:         atomic.LoadInt64(&p.failed),
		BrowseEvaled:   atomic.LoadInt64(&p.browseEvaled),
	}
}

// Pause stops browse workers from picking up work (implements ingest.Pausable).
func (p *Pool) Pause() {
	old := atomic.SwapInt32(&p.activeWorkers, 0)
	p.log.Info().Int("old", int(old)).Msg("eval paused")
}

// Resume lets browse workers run again.
func (p *Pool) Resume() {
	atomic.StoreInt32(&p.activeWorkers, p.maxWorkers)
	p.log.Info().Int("workers", int(p.maxWorkers)).Msg("eval resumed")
}

// EnqueueBrowse queues fen for evaluation by Run. It reports whether the
// position was added.
func (p *Pool) EnqueueBrowse(fen string) bool {
	return p.browse.Enqueue(fen)
}

// evaluate analyzes fen unless the sink already has it. It reports whether
// the engine ran.
func (p *Pool) evaluate(a Analyzer, fen string) (bool, error) {
	if _, err := p.sink.Eval(fen); err == nil {
		atomic.AddInt64(&p.skipped, 1)
		return false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	e, err := a.Analyze(fen, p.cfg.Depth)
	if err != nil {
		atomic.AddInt64(&p.failed, 1)
		return false, err
	}
	if err := p.sink.PutEval(fen, e); err != nil {
		return false, fmt.Errorf("put eval: %w", err)
	}
	atomic.AddInt64(&p.evaluated, 1)
	p.log.Debug().Str("fen", fen).Str("eval", e.String()).Msg("evaluated position")
	return true, nil
}

// EvaluateAll evaluates every fen not already stored, spreading the work
// over NumWorkers engines. Per-position failures are logged and counted;
// the returned error is non-nil only for cancellation or engine startup.
func (p *Pool) EvaluateAll(ctx context.Context, fens []string) (int, error) {
	p.log.Info().Int("positions", len(fens)).Int("workers", p.cfg.NumWorkers).Msg("evaluating positions")

	work := make(chan string)
	var wg sync.WaitGroup
	var evaluated int64
	startErr := make(chan error, p.cfg.NumWorkers)

	for i := 0; i < p.cfg.NumWorkers; i++ {
		a, err := p.cfg.NewAnalyzer()
		if err != nil {
			startErr <- fmt.Errorf("worker %d: %w", i, err)
			continue
		}
		wg.Add(1)
		go func(workerID int, a Analyzer) {
			defer wg.Done()
			defer a.Close()
			for fen := range work {
				ran, err := p.evaluate(a, fen)
				if err != nil {
					p.log.Warn().Err(err).Int("worker", workerID).Str("fen", fen).Msg("eval failed")
					continue
				}
				if ran {
					atomic.AddInt64(&evaluated, 1)
				}
			}
		}(i, a)
	}
	close(startErr)
	var errs []error
	for err := range startErr {
		errs = append(errs, err)
	}
	if len(errs) == p.cfg.NumWorkers {
		close(work)
		wg.Wait()
		return 0, errors.Join(errs...)
	}
	for _, err := range errs {
		p.log.Warn().Err(err).Msg("engine start failed")
	}

	var ctxErr error
feed:
	for _, fen := range fens {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		case work <- fen:
		}
	}
	close(work)
	wg.Wait()

	n := int(atomic.LoadInt64(&evaluated))
	p.log.Info().Int("evaluated", n).Int("positions", len(fens)).Msg("evaluation batch complete")
	return n, ctxErr
}

// Run drains the browse queue until ctx is cancelled.
func (p *Pool) Run(ctx context.Context) error {
	p.log.Info().
		Int("eval_depth", p.cfg.Depth).
		Int("num_workers", p.cfg.NumWorkers).
		Msg("eval pool started")

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.NumWorkers; i++ {
		a, err := p.cfg.NewAnalyzer()
		if err != nil {
			p.log.Error().Err(err).Int("worker", i).Msg("engine start failed")
			continue
		}
		wg.Add(1)
		go func(workerID int, a Analyzer) {
			defer wg.Done()
			defer a.Close()
			p.runWorker(ctx, workerID, a)
		}(i, a)
	}
	wg.Wait()

	p.log.Info().Int64("total_evaluated", atomic.LoadInt64(&p.evaluated)).Msg("eval pool stopped")
	return ctx.Err()
}

func (p *Pool) runWorker(ctx context.Context, workerID int, a Analyzer) {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()
	for {
		for int32(workerID) < atomic.LoadInt32(&p.activeWorkers) {
			if ctx.Err() != nil {
				return
			}
			fen, ok := p.browse.Dequeue()
			if !ok {
				break
			}
			ran, err := p.evaluate(a, fen)
			if err != nil {
				p.log.Warn().Err(err).Int("worker", workerID).Str("fen", fen).Msg("browse eval failed")
				continue
			}
			if ran {
				atomic.AddInt64(&p.browseEvaled, 1)
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
