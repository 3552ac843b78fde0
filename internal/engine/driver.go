// Package engine advances simulation time in fixed steps and turns every
// step into one composed frame. Live playback and batch export share the
// same Tick and differ only in their Pacer and Sink.
package engine

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/palette"
	"github.com/san-kum/beatsim/internal/scene"
)

type pending struct {
	cmd  Command
	done chan error
}

// Driver owns a scene and its clock. Tick, Run and the accessors must be
// called from one goroutine; Enqueue and Seek are safe from any goroutine.
type Driver struct {
	scene   *scene.Scene
	sampler features.Sampler
	cycle   *palette.Cycle
	cfg     Config
	dt      float64
	index   int

	frame     *image.RGBA
	sink      Sink
	metrics   []Metric
	observers []Observer
	last      Stats
	log       *slog.Logger

	mu    sync.Mutex
	queue []pending
}

type Option func(*Driver)

func WithSink(s Sink) Option { return func(d *Driver) { d.sink = s } }

func WithLogger(l *slog.Logger) Option { return func(d *Driver) { d.log = l } }

func New(sc *scene.Scene, src features.Sampler, cfg Config, opts ...Option) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.SeekPolicy == "" {
		cfg.SeekPolicy = SeekReset
	}
	d := &Driver{
		scene: sc,
		cycle: palette.NewCycle(),
		cfg:   cfg,
		dt:    1 / cfg.FPS,
		frame: sc.NewFrame(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.sampler = features.Safe(src, d.log)
	return d, nil
}

func (d *Driver) AddMetric(m Metric)     { d.metrics = append(d.metrics, m) }
func (d *Driver) AddObserver(o Observer) { d.observers = append(d.observers, o) }

func (d *Driver) SetSink(s Sink) { d.sink = s }

func (d *Driver) Scene() *scene.Scene { return d.scene }

// Index is the index of the next frame to be produced.
func (d *Driver) Index() int { return d.index }

// Time is the timestamp of the next frame.
func (d *Driver) Time() float64 { return float64(d.index) * d.dt }

func (d *Driver) Dt() float64 { return d.dt }

func (d *Driver) Cycle() palette.Cycle { return *d.cycle }

// Frame is the most recently composed frame.
func (d *Driver) Frame() *image.RGBA { return d.frame }

func (d *Driver) LastStats() Stats { return d.last }

func (d *Driver) Policy() SeekPolicy { return d.cfg.SeekPolicy }

// Enqueue schedules cmd to run before the next tick. The returned channel
// receives its result once applied.
func (d *Driver) Enqueue(cmd Command) <-chan error {
	done := make(chan error, 1)
	d.mu.Lock()
	d.queue = append(d.queue, pending{cmd: cmd, done: done})
	d.mu.Unlock()
	return done
}

// Seek moves the clock to t seconds before the next tick, handling
// population state according to the configured policy.
func (d *Driver) Seek(t float64) <-chan error {
	return d.Enqueue(func(*scene.Scene) error {
		d.seek(t)
		return nil
	})
}

func (d *Driver) drain() {
	d.mu.Lock()
	queue := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, p := range queue {
		err := p.cmd(d.scene)
		if err != nil {
			d.log.Warn("command rejected", "error", err)
		}
		p.done <- err
	}
}

func (d *Driver) seek(t float64) {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	target := int(math.Round(t / d.dt))

	switch d.cfg.SeekPolicy {
	case SeekStale:
		d.index = target
	case SeekFastForward:
		if target < d.index {
			d.restart()
		}
		for d.index < target {
			d.step()
			d.index++
		}
	default:
		d.scene.Reset()
		d.index = target
	}
	d.log.Debug("seek", "policy", d.cfg.SeekPolicy, "index", d.index)
}

// restart rebuilds all path-dependent state as if the driver were new.
func (d *Driver) restart() {
	d.scene.Reset()
	d.cycle = palette.NewCycle()
	d.index = 0
}

// step runs one tick's update and compose without emitting the frame.
func (d *Driver) step() (layer.Frame, []error) {
	t := float64(d.index) * d.dt
	rec := d.sampler.Sample(t)
	d.cycle.Update(t, rec.DominantHue, rec.BeatIntensity)

	f := layer.Frame{Index: d.index, Time: t, Features: rec, Cycle: *d.cycle}
	d.scene.Update(f)
	errs := d.scene.Compose(d.frame, f)
	d.scene.Capture(d.frame)
	return f, errs
}

// Tick applies queued commands, advances one step and hands the frame to
// the sink.
func (d *Driver) Tick() error {
	d.drain()

	f, errs := d.step()
	stats := Stats{
		Index:       f.Index,
		Time:        f.Time,
		Beat:        f.Features.BeatIntensity,
		RMS:         f.Features.RMS,
		Hue:         f.Cycle.Hue,
		Frame:       d.frame,
		Populations: d.scene.Populations(),
		Errors:      errs,
	}
	for _, m := range d.metrics {
		m.Observe(stats)
	}
	for _, o := range d.observers {
		o.OnFrame(stats)
	}
	d.last = stats
	d.index++

	if d.sink != nil {
		if err := d.sink.Consume(d.frame, f.Index); err != nil {
			return fmt.Errorf("engine: sink: frame %d: %w", f.Index, err)
		}
	}
	return nil
}

// Run ticks frames times, or until ctx ends when frames is negative,
// waiting on pacer before every tick.
func (d *Driver) Run(ctx context.Context, frames int, pacer Pacer) (*Result, error) {
	if pacer == nil {
		pacer = BatchPacer{}
	}
	for _, m := range d.metrics {
		m.Reset()
	}

	result := &Result{Start: d.index, Metrics: make(map[string]float64)}
	began := time.Now()
	defer func() {
		result.Elapsed = time.Since(began)
		for _, m := range d.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
	}()

	for i := 0; frames < 0 || i < frames; i++ {
		if err := pacer.Wait(ctx); err != nil {
			return result, err
		}
		if err := d.Tick(); err != nil {
			return result, err
		}
		result.Frames++
		result.Failures = append(result.Failures, d.last.Errors...)
	}
	return result, nil
}
