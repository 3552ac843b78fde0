package effects

import (
	"math/rand"

	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

const (
	rippleThreshold   = 0.5
	rippleStartRadius = 5
	rippleGrowth      = 3
	rippleDecay       = 0.01
	rippleRings       = 3
	rippleRingGap     = 5
)

// Ripple spawns expanding water rings on beats.
type Ripple struct {
	layer.Base
	pop  Population
	seed int64
	rng  *rand.Rand
}

// NewRipple seeds the layer's own random source so spawns are reproducible.
func NewRipple(p layer.Props, capacity int, seed int64) *Ripple {
	return &Ripple{
		Base: layer.NewBase(p),
		pop:  Population{Max: capacity},
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (r *Ripple) Kind() layer.Kind { return layer.KindRipple }

func (r *Ripple) Population() *Population { return &r.pop }

// Reset empties the population and reseeds the random source.
func (r *Ripple) Reset() {
	r.pop.Clear()
	r.rng = rand.New(rand.NewSource(r.seed))
}

func (r *Ripple) Update(f layer.Frame) {
	beat := f.Features.BeatIntensity
	if beat >= rippleThreshold {
		r.spawn(beat)
	}
	r.advance()
}

func (r *Ripple) spawn(beat float64) {
	props := r.Props()
	r.pop.Spawn(Entity{
		X:         float64(r.rng.Intn(max(1, props.W))),
		Y:         float64(r.rng.Intn(max(1, props.H))),
		Radius:    rippleStartRadius,
		MaxRadius: 50 + beat*100,
		Life:      1,
	})
}

func (r *Ripple) advance() {
	r.pop.Advance(func(e *Entity) bool {
		e.Radius += rippleGrowth
		e.Life -= rippleDecay
		return e.Life > 0 && e.Radius <= e.MaxRadius
	})
}

func (r *Ripple) Draw(p raster.Painter, f layer.Frame, opacity int) error {
	base := r.Color(f, 255)
	for _, e := range r.pop.Items() {
		alpha := int(float64(opacity) * e.Life)
		if alpha <= 10 {
			continue
		}
		radius := int(e.Radius)
		for i := 0; i < rippleRings; i++ {
			ring := radius + i*rippleRingGap
			if ring <= 2 {
				continue
			}
			c := base
			c.A = uint8(min(255, alpha/(i+1)))
			p.StrokeCircle(e.X, e.Y, float64(ring), 1, c)
		}
	}
	return nil
}
