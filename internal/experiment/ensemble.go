package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/beatsim/internal/engine"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/scene"
)

// BuildFunc builds an independent scene and feature source for one seed.
type BuildFunc func(seed int64) (*scene.Scene, features.Sampler, error)

// SweepResult is the outcome of one variant of an Ensemble.
type SweepResult struct {
	Seed   int64
	Result *engine.Result
}

// Ensemble renders the same scene under consecutive seeds in parallel,
// without sinks, to compare how the seeded effects behave.
type Ensemble struct {
	cfg       Config
	build     BuildFunc
	numRuns   int
	seedStart int64
	reg       *Registry
	log       *slog.Logger
}

func NewEnsemble(cfg Config, build BuildFunc, numRuns int, seedStart int64, log *slog.Logger) *Ensemble {
	if log == nil {
		log = slog.Default()
	}
	return &Ensemble{cfg: cfg, build: build, numRuns: numRuns, seedStart: seedStart, reg: NewRegistry(), log: log}
}

// Run returns one result per seed in seed order. The first failing variant
// fails the sweep.
func (e *Ensemble) Run(ctx context.Context) ([]SweepResult, error) {
	results := make([]SweepResult, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			seed := e.seedStart + int64(idx)
			results[idx].Seed = seed

			sc, src, err := e.build(seed)
			if err != nil {
				errs[idx] = fmt.Errorf("seed %d: %w", seed, err)
				return
			}

			cfg := e.cfg
			cfg.Live = false
			exp := New(cfg, e.log.With("seed", seed))
			if err := exp.Setup(sc, src, nil, e.reg.DefaultMetrics()); err != nil {
				errs[idx] = fmt.Errorf("seed %d: %w", seed, err)
				return
			}
			results[idx].Result, errs[idx] = exp.Run(ctx)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
