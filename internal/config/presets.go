package config

import (
	"sort"

	"github.com/san-kum/beatsim/internal/engine"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/layer"
)

func ptr[T any](v T) *T { return &v }

func preset(name string, bg string, layers []LayerConfig, effects ...EffectConfig) *Config {
	c := DefaultConfig()
	c.Name = name
	c.Background.Type = bg
	c.Layers = layers
	c.Effects = effects
	return c
}

// Presets are ready-made scenes at 1280x720. "showcase" follows the classic
// arrangement: circular spectrum centred, bars along the bottom, waveform
// along the top and particles over everything.
var Presets = map[string]*Config{
	"showcase": preset("showcase", "gradient", []LayerConfig{
		{Name: "circle", Kind: layer.KindCircular, X: 440, Y: 160, W: 400, H: 400, Color: &layer.RGB{R: 150, G: 100, B: 255}, Alpha: ptr(200)},
		{Name: "bars", Kind: layer.KindBars, X: 67, Y: 553, W: 1146, H: 133, Alpha: ptr(220)},
		{Name: "wave", Kind: layer.KindWaveform, X: 67, Y: 33, W: 1146, H: 100, Alpha: ptr(180)},
		{Name: "particles", Kind: layer.KindParticles},
		{Name: "sparkles", Kind: layer.KindSparkle, Color: &layer.RGB{R: 255, G: 255, B: 255}},
	}, EffectConfig{Name: "glow"}),

	"minimal": preset("minimal", "black", []LayerConfig{
		{Name: "wave", Kind: layer.KindWaveform, Y: 260, H: 200},
	}),

	"spectrum": preset("spectrum", "pulse", []LayerConfig{
		{Name: "radial", Kind: layer.KindRadial, X: 240, W: 800},
		{Name: "circle", Kind: layer.KindCircular, X: 340, Y: 60, W: 600, H: 600},
		{Name: "orbs", Kind: layer.KindOrbs, FollowCycle: true},
	}, EffectConfig{Name: "glow", Params: map[string]float64{"follow": 1}}),

	"rain": preset("rain", "gradient", []LayerConfig{
		{Name: "bars", Kind: layer.KindBars, Y: 420, H: 300, FollowCycle: true, Params: map[string]float64{"count": 32, "spacing": 4}},
		{Name: "ripples", Kind: layer.KindRipple, Color: &layer.RGB{R: 100, G: 200, B: 255}},
		{Name: "sparkles", Kind: layer.KindSparkle, Color: &layer.RGB{R: 255, G: 255, B: 255}},
	}, EffectConfig{Name: "blur", Params: map[string]float64{"trail": 4}}),

	"timeline": func() *Config {
		c := preset("timeline", "black", []LayerConfig{
			{Name: "intro", Kind: layer.KindWaveform, End: ptr(4.0), FadeIn: 1, FadeOut: 1},
			{Name: "drop", Kind: layer.KindBars, Start: 3, FadeIn: 1},
			{Name: "burst", Kind: layer.KindParticles, Start: 3},
		})
		c.Duration = 8
		c.SeekPolicy = engine.SeekFastForward
		c.Source.Synth = features.SynthConfig{Seed: 7, BPM: 140}
		return c
	}(),
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
