package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/beatsim/internal/engine"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/scene"
)

// Config describes one render: how long, how fast and how to treat seeks.
type Config struct {
	Name       string
	FPS        float64
	Duration   float64
	SeekPolicy engine.SeekPolicy
	Live       bool
}

// Frames is the number of ticks needed to cover Duration.
func (c Config) Frames() int {
	if c.Duration <= 0 || c.FPS <= 0 {
		return 0
	}
	return int(math.Ceil(c.Duration*c.FPS - 1e-9))
}

type Experiment struct {
	cfg    Config
	driver *engine.Driver
	log    *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Experiment {
	if log == nil {
		log = slog.Default()
	}
	return &Experiment{cfg: cfg, log: log}
}

func (e *Experiment) Config() Config { return e.cfg }

func (e *Experiment) Setup(sc *scene.Scene, src features.Sampler, sink engine.Sink, metrics []engine.Metric) error {
	d, err := engine.New(sc, src, engine.Config{FPS: e.cfg.FPS, SeekPolicy: e.cfg.SeekPolicy},
		engine.WithSink(sink), engine.WithLogger(e.log))
	if err != nil {
		return fmt.Errorf("experiment setup: %w", err)
	}
	for _, m := range metrics {
		d.AddMetric(m)
	}
	e.driver = d
	return nil
}

// Run renders the configured number of frames, paced in real time when the
// experiment is live.
func (e *Experiment) Run(ctx context.Context) (*engine.Result, error) {
	if e.driver == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	var pacer engine.Pacer = engine.BatchPacer{}
	if e.cfg.Live {
		tp := engine.NewTickerPacer(e.cfg.FPS)
		defer tp.Stop()
		pacer = tp
	}

	frames := e.cfg.Frames()
	e.log.Info("render started", "name", e.cfg.Name, "frames", frames, "fps", e.cfg.FPS, "live", e.cfg.Live)
	res, err := e.driver.Run(ctx, frames, pacer)
	if err != nil {
		return res, err
	}
	e.log.Info("render finished", "name", e.cfg.Name, "frames", res.Frames, "elapsed", res.Elapsed, "failures", len(res.Failures))
	return res, nil
}

// Driver returns the underlying driver for adding observers or queueing
// commands.
func (e *Experiment) Driver() *engine.Driver {
	return e.driver
}
