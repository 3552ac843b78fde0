package experiment

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"github.com/san-kum/beatsim/internal/effects"
	"github.com/san-kum/beatsim/internal/engine"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/metrics"
	"github.com/san-kum/beatsim/internal/visual"
)

// LayerFactory builds a layer from its props, free-form numeric params and a
// seed for layers that draw random numbers. Out-of-range params are
// reported as *layer.ValidationError.
type LayerFactory func(p layer.Props, params map[string]float64, seed int64) (layer.Layer, error)

type AmbientFactory func(params map[string]float64) (effects.Ambient, error)

// Upper bounds for count-like params.
const (
	maxShapes   = 4096
	maxEntities = 100000
	maxTrail    = 120
)

type layerEntry struct {
	build   LayerFactory
	overlay bool
}

type Registry struct {
	layers  map[layer.Kind]layerEntry
	ambient map[string]AmbientFactory
}

func NewRegistry() *Registry {
	r := &Registry{
		layers:  make(map[layer.Kind]layerEntry),
		ambient: make(map[string]AmbientFactory),
	}

	r.layers[layer.KindWaveform] = layerEntry{build: func(p layer.Props, params map[string]float64, _ int64) (layer.Layer, error) {
		w := visual.NewWaveform(p)
		var err error
		if w.Thickness, err = floatParam(p.Name, params, "thickness", w.Thickness); err != nil {
			return nil, err
		}
		return w, nil
	}}
	r.layers[layer.KindBars] = layerEntry{build: func(p layer.Props, params map[string]float64, _ int64) (layer.Layer, error) {
		b := visual.NewBars(p)
		var err error
		if b.Count, err = intParam(p.Name, params, "count", b.Count, maxShapes); err != nil {
			return nil, err
		}
		if b.Spacing, err = floatParam(p.Name, params, "spacing", b.Spacing); err != nil {
			return nil, err
		}
		b.Reset()
		return b, nil
	}}
	r.layers[layer.KindCircular] = layerEntry{build: func(p layer.Props, params map[string]float64, _ int64) (layer.Layer, error) {
		c := visual.NewCircular(p)
		var err error
		if c.Count, err = intParam(p.Name, params, "count", c.Count, maxShapes); err != nil {
			return nil, err
		}
		c.Reset()
		return c, nil
	}}
	r.layers[layer.KindRadial] = layerEntry{build: func(p layer.Props, params map[string]float64, _ int64) (layer.Layer, error) {
		rl := visual.NewRadial(p)
		var err error
		if rl.Lines, err = intParam(p.Name, params, "lines", rl.Lines, maxShapes); err != nil {
			return nil, err
		}
		return rl, nil
	}}
	r.layers[layer.KindOrbs] = layerEntry{build: func(p layer.Props, params map[string]float64, _ int64) (layer.Layer, error) {
		o := visual.NewOrbs(p)
		var err error
		if o.Count, err = intParam(p.Name, params, "count", o.Count, maxShapes); err != nil {
			return nil, err
		}
		o.Reset()
		return o, nil
	}}

	r.layers[layer.KindSparkle] = layerEntry{overlay: true, build: func(p layer.Props, params map[string]float64, seed int64) (layer.Layer, error) {
		n, err := intParam(p.Name, params, "max", 200, maxEntities)
		if err != nil {
			return nil, err
		}
		return effects.NewSparkle(p, n, seed), nil
	}}
	r.layers[layer.KindRipple] = layerEntry{overlay: true, build: func(p layer.Props, params map[string]float64, seed int64) (layer.Layer, error) {
		n, err := intParam(p.Name, params, "max", 20, maxEntities)
		if err != nil {
			return nil, err
		}
		return effects.NewRipple(p, n, seed), nil
	}}
	r.layers[layer.KindParticles] = layerEntry{overlay: true, build: func(p layer.Props, params map[string]float64, seed int64) (layer.Layer, error) {
		n, err := intParam(p.Name, params, "max", 500, maxEntities)
		if err != nil {
			return nil, err
		}
		return effects.NewBurst(p, n, seed), nil
	}}

	r.ambient["glow"] = func(params map[string]float64) (effects.Ambient, error) {
		g := effects.NewGlow()
		var err error
		if g.Intensity, err = floatParam("glow", params, "intensity", g.Intensity); err != nil {
			return nil, err
		}
		follow, err := floatParam("glow", params, "follow", 0)
		if err != nil {
			return nil, err
		}
		g.Follow = follow != 0
		if _, ok := params["r"]; ok {
			var rgb [3]int
			for i, key := range []string{"r", "g", "b"} {
				if rgb[i], err = intParam("glow", params, key, 0, 255); err != nil {
					return nil, err
				}
			}
			g.Color = color.NRGBA{R: uint8(rgb[0]), G: uint8(rgb[1]), B: uint8(rgb[2]), A: 255}
		}
		return g, nil
	}
	r.ambient["blur"] = func(params map[string]float64) (effects.Ambient, error) {
		m := effects.NewMotionBlur()
		var err error
		if m.TrailLength, err = intParam("blur", params, "trail", m.TrailLength, maxTrail); err != nil {
			return nil, err
		}
		return m, nil
	}

	return r
}

func (r *Registry) NewLayer(kind layer.Kind, p layer.Props, params map[string]float64, seed int64) (layer.Layer, error) {
	e, ok := r.layers[kind]
	if !ok {
		return nil, fmt.Errorf("unknown layer kind: %s", kind)
	}
	return e.build(p, params, seed)
}

// IsOverlay reports whether kind is drawn above the ambient effects rather
// than as part of the reorderable stack.
func (r *Registry) IsOverlay(kind layer.Kind) bool {
	return r.layers[kind].overlay
}

func (r *Registry) NewAmbient(name string, params map[string]float64) (effects.Ambient, error) {
	fn, ok := r.ambient[name]
	if !ok {
		return nil, fmt.Errorf("unknown effect: %s", name)
	}
	return fn(params)
}

func (r *Registry) ListKinds() []string {
	names := make([]string, 0, len(r.layers))
	for k := range r.layers {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListEffects() []string {
	names := make([]string, 0, len(r.ambient))
	for name := range r.ambient {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics() []engine.Metric {
	return metrics.Default()
}

// intParam reads a whole-number param in [0, hi].
func intParam(name string, params map[string]float64, key string, def, hi int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	if math.IsNaN(v) || v < 0 || v > float64(hi) {
		return 0, &layer.ValidationError{Layer: name, Field: key, Value: v, Err: layer.ErrInvalidParam}
	}
	return int(v), nil
}

// floatParam reads a finite, non-negative param.
func floatParam(name string, params map[string]float64, key string, def float64) (float64, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, &layer.ValidationError{Layer: name, Field: key, Value: v, Err: layer.ErrInvalidParam}
	}
	return v, nil
}
