package engine

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/san-kum/beatsim/internal/scene"
)

var (
	ErrInvalidFPS    = errors.New("engine: fps must be positive")
	ErrInvalidPolicy = errors.New("engine: unknown seek policy")
)

// Sink receives every composed frame. The frame buffer is reused by the
// next tick, so Consume must copy anything it keeps.
type Sink interface {
	Consume(frame *image.RGBA, index int) error
}

type SinkFunc func(frame *image.RGBA, index int) error

func (f SinkFunc) Consume(frame *image.RGBA, index int) error { return f(frame, index) }

// Stats describes one finished tick. Frame is only valid during the call
// that receives it.
type Stats struct {
	Index       int
	Time        float64
	Beat        float64
	RMS         float64
	Hue         float64
	Frame       *image.RGBA
	Populations map[string]int
	Errors      []error
}

type Metric interface {
	Name() string
	Observe(s Stats)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(s Stats)
}

// Command mutates the scene between ticks.
type Command func(s *scene.Scene) error

// SeekPolicy decides what happens to path-dependent state on a seek.
type SeekPolicy string

const (
	// SeekReset empties every population and smoothed value.
	SeekReset SeekPolicy = "reset"
	// SeekFastForward replays every tick up to the target without emitting
	// frames, so the result matches an uninterrupted run.
	SeekFastForward SeekPolicy = "fastforward"
	// SeekStale moves the clock and leaves state as it was.
	SeekStale SeekPolicy = "stale"
)

func ParseSeekPolicy(s string) (SeekPolicy, error) {
	switch p := SeekPolicy(s); p {
	case SeekReset, SeekFastForward, SeekStale:
		return p, nil
	case "":
		return SeekReset, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

type Config struct {
	FPS        float64
	SeekPolicy SeekPolicy
}

func DefaultConfig() Config {
	return Config{FPS: 30, SeekPolicy: SeekReset}
}

func (c Config) Validate() error {
	if c.FPS <= 0 {
		return fmt.Errorf("%w, got %f", ErrInvalidFPS, c.FPS)
	}
	if _, err := ParseSeekPolicy(string(c.SeekPolicy)); err != nil {
		return err
	}
	return nil
}

// Result summarises a Run.
type Result struct {
	Frames   int
	Start    int
	Elapsed  time.Duration
	Metrics  map[string]float64
	Failures []error
}
