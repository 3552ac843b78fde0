package config

import (
	"fmt"
	"image/color"
	"log/slog"

	"github.com/san-kum/beatsim/internal/effects"
	"github.com/san-kum/beatsim/internal/experiment"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
	"github.com/san-kum/beatsim/internal/scene"
)

// Build validates the config and assembles a scene from it. Each layer gets
// its own seed derived from the config seed and its position.
func Build(c *Config, reg *experiment.Registry, log *slog.Logger) (*scene.Scene, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.Default()
	}

	bg, err := c.background()
	if err != nil {
		return nil, err
	}
	sc, err := scene.New(c.Width, c.Height, scene.WithLogger(log), scene.WithBackground(bg))
	if err != nil {
		return nil, err
	}

	for i, lc := range c.Layers {
		l, err := reg.NewLayer(lc.Kind, c.Props(i), lc.Params, c.Seed+int64(i)+1)
		if err != nil {
			return nil, fmt.Errorf("config: layer %d: %w", i, err)
		}
		if reg.IsOverlay(lc.Kind) {
			err = sc.AddOverlay(l)
		} else {
			err = sc.Add(l)
		}
		if err != nil {
			return nil, fmt.Errorf("config: layer %d: %w", i, err)
		}
	}

	for _, ec := range c.Effects {
		a, err := reg.NewAmbient(ec.Name, ec.Params)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := sc.AddAmbient(a); err != nil {
			return nil, fmt.Errorf("config: effect %s: %w", ec.Name, err)
		}
		if ec.Enabled != nil && !*ec.Enabled {
			if err := sc.SetEnabled(a.Name(), false); err != nil {
				return nil, err
			}
		}
	}

	log.Debug("scene built", "name", c.Name, "layers", len(c.Layers), "effects", len(c.Effects))
	return sc, nil
}

func (c *Config) background() (*effects.Background, error) {
	t := effects.BackgroundType(c.Background.Type)
	if t == "" {
		t = effects.BackgroundBlack
	}
	bg := effects.NewBackground(t)
	bg.Color1 = nrgba(c.Background.Color1)
	bg.Color2 = nrgba(c.Background.Color2)

	switch t {
	case effects.BackgroundBlack, effects.BackgroundGradient, effects.BackgroundPulse:
	case effects.BackgroundImage:
		if c.Background.Image == "" {
			bg.Type = effects.BackgroundBlack
			break
		}
		img, err := raster.LoadImage(c.Background.Image)
		if err != nil {
			return nil, fmt.Errorf("config: background: %w", err)
		}
		bg.SetImage(img)
	default:
		return nil, fmt.Errorf("config: unknown background type %q", t)
	}
	return bg, nil
}

func nrgba(c layer.RGB) color.NRGBA {
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}

// Sampler opens the configured feature source.
func (c *Config) Sampler() (features.Sampler, error) {
	switch c.Source.Type {
	case "", "synth":
		return features.NewSynth(c.Source.Synth), nil
	case "track":
		tr, err := features.LoadTrack(c.Source.Path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return tr, nil
	case "none":
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrSourceType, c.Source.Type)
}
