package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/beatsim/internal/engine"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/timing"
)

const (
	DefaultWidth    = 1280
	DefaultHeight   = 720
	DefaultFPS      = 30.0
	DefaultDuration = 10.0
	DefaultSeed     = 42
)

var (
	ErrNoSize      = errors.New("config: width and height must be positive")
	ErrNoFPS       = errors.New("config: fps must be positive")
	ErrLayerKind   = errors.New("config: layer needs a kind")
	ErrSourceType  = errors.New("config: unknown feature source")
	ErrTrackSource = errors.New("config: track source needs a path")
)

type Config struct {
	Name       string            `yaml:"name"`
	Width      int               `yaml:"width"`
	Height     int               `yaml:"height"`
	FPS        float64           `yaml:"fps"`
	Duration   float64           `yaml:"duration"`
	Seed       int64             `yaml:"seed"`
	SeekPolicy engine.SeekPolicy `yaml:"seek_policy"`
	Source     SourceConfig      `yaml:"source"`
	Background BackgroundConfig  `yaml:"background"`
	Layers     []LayerConfig     `yaml:"layers"`
	Effects    []EffectConfig    `yaml:"effects"`
	Output     OutputConfig      `yaml:"output"`
}

// SourceConfig picks where feature records come from.
type SourceConfig struct {
	Type  string               `yaml:"type"` // synth or track
	Path  string               `yaml:"path,omitempty"`
	Synth features.SynthConfig `yaml:"synth,omitempty"`
}

type BackgroundConfig struct {
	Type   string    `yaml:"type"`
	Color1 layer.RGB `yaml:"color1"`
	Color2 layer.RGB `yaml:"color2"`
	Image  string    `yaml:"image,omitempty"`
}

// LayerConfig describes one layer. Zero width or height means the full
// canvas; a missing end means the layer never expires.
type LayerConfig struct {
	Name        string             `yaml:"name"`
	Kind        layer.Kind         `yaml:"kind"`
	X           int                `yaml:"x"`
	Y           int                `yaml:"y"`
	W           int                `yaml:"w"`
	H           int                `yaml:"h"`
	Color       *layer.RGB         `yaml:"color,omitempty"`
	Alpha       *int               `yaml:"alpha,omitempty"`
	Start       float64            `yaml:"start"`
	End         *float64           `yaml:"end,omitempty"`
	FadeIn      float64            `yaml:"fade_in"`
	FadeOut     float64            `yaml:"fade_out"`
	Enabled     *bool              `yaml:"enabled,omitempty"`
	FollowCycle bool               `yaml:"follow_cycle"`
	Params      map[string]float64 `yaml:"params,omitempty"`
}

type EffectConfig struct {
	Name    string             `yaml:"name"`
	Enabled *bool              `yaml:"enabled,omitempty"`
	Params  map[string]float64 `yaml:"params,omitempty"`
}

// OutputConfig selects the sinks of a render. Frames and the gif are
// written inside the run directory.
type OutputConfig struct {
	PNG       bool    `yaml:"png"`
	GIF       string  `yaml:"gif,omitempty"`
	GIFStride int     `yaml:"gif_stride"`
	GIFScale  float64 `yaml:"gif_scale"`
}

// KindColors are the colours a layer gets when its config names none.
var KindColors = map[layer.Kind]layer.RGB{
	layer.KindWaveform:  {R: 100, G: 255, B: 200},
	layer.KindBars:      {R: 255, G: 150, B: 50},
	layer.KindCircular:  {R: 150, G: 100, B: 255},
	layer.KindParticles: {R: 255, G: 200, B: 50},
	layer.KindRadial:    {R: 100, G: 255, B: 255},
	layer.KindOrbs:      {R: 255, G: 100, B: 255},
}

func DefaultConfig() *Config {
	return &Config{
		Name:       "default",
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		FPS:        DefaultFPS,
		Duration:   DefaultDuration,
		Seed:       DefaultSeed,
		SeekPolicy: engine.SeekReset,
		Source: SourceConfig{
			Type:  "synth",
			Synth: features.DefaultSynthConfig(),
		},
		Background: BackgroundConfig{
			Type:   "black",
			Color1: layer.RGB{R: 10, G: 10, B: 30},
			Color2: layer.RGB{R: 50, G: 10, B: 50},
		},
		Output: OutputConfig{
			GIFStride: 2,
			GIFScale:  0.5,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the canvas, timing and every layer's props.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w (%dx%d)", ErrNoSize, c.Width, c.Height)
	}
	if c.FPS <= 0 || math.IsNaN(c.FPS) {
		return fmt.Errorf("%w, got %f", ErrNoFPS, c.FPS)
	}
	if _, err := engine.ParseSeekPolicy(string(c.SeekPolicy)); err != nil {
		return err
	}
	switch c.Source.Type {
	case "", "synth", "none":
	case "track":
		if c.Source.Path == "" {
			return ErrTrackSource
		}
	default:
		return fmt.Errorf("%w: %q", ErrSourceType, c.Source.Type)
	}
	for i, lc := range c.Layers {
		if lc.Kind == "" {
			return fmt.Errorf("%w (layer %d)", ErrLayerKind, i)
		}
		if err := c.Props(i).Validate(); err != nil {
			return err
		}
	}
	return nil
}

// LayerName is the configured name of layer i or, when empty, its kind
// suffixed with the index.
func (c *Config) LayerName(i int) string {
	lc := c.Layers[i]
	if lc.Name != "" {
		return lc.Name
	}
	return fmt.Sprintf("%s-%d", lc.Kind, i)
}

// Props converts layer i into validated-ready layer props.
func (c *Config) Props(i int) layer.Props {
	lc := c.Layers[i]
	p := layer.DefaultProps(c.LayerName(i), c.Width, c.Height)
	p.X, p.Y = lc.X, lc.Y
	if lc.W != 0 {
		p.W = lc.W
	}
	if lc.H != 0 {
		p.H = lc.H
	}
	if col, ok := KindColors[lc.Kind]; ok {
		p.Color = col
	}
	if lc.Color != nil {
		p.Color = *lc.Color
	}
	if lc.Alpha != nil {
		p.Alpha = *lc.Alpha
	}
	p.Window = timing.Window{Start: lc.Start, End: math.Inf(1), FadeIn: lc.FadeIn, FadeOut: lc.FadeOut}
	if lc.End != nil {
		p.Window.End = *lc.End
	}
	if lc.Enabled != nil {
		p.Enabled = *lc.Enabled
	}
	p.FollowCycle = lc.FollowCycle
	return p
}

// Frames is the number of frames covering Duration.
func (c *Config) Frames() int {
	if c.Duration <= 0 || c.FPS <= 0 {
		return 0
	}
	return int(math.Ceil(c.Duration*c.FPS - 1e-9))
}

// Clone deep-copies the config so presets are never mutated.
func (c *Config) Clone() *Config {
	out := *c
	out.Layers = make([]LayerConfig, len(c.Layers))
	for i, lc := range c.Layers {
		lc.Params = cloneParams(lc.Params)
		if lc.Color != nil {
			col := *lc.Color
			lc.Color = &col
		}
		if lc.Alpha != nil {
			a := *lc.Alpha
			lc.Alpha = &a
		}
		if lc.End != nil {
			end := *lc.End
			lc.End = &end
		}
		if lc.Enabled != nil {
			on := *lc.Enabled
			lc.Enabled = &on
		}
		out.Layers[i] = lc
	}
	out.Effects = make([]EffectConfig, len(c.Effects))
	for i, ec := range c.Effects {
		ec.Params = cloneParams(ec.Params)
		if ec.Enabled != nil {
			on := *ec.Enabled
			ec.Enabled = &on
		}
		out.Effects[i] = ec
	}
	return &out
}

func cloneParams(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
