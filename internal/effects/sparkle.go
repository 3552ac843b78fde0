package effects

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

const (
	sparkleThreshold = 0.6
	sparkleFactor    = 15
	sparkleDecay     = 0.015
	sparkleTwinkle   = 0.3
)

// Sparkle scatters twinkling points over the layer on strong beats.
type Sparkle struct {
	layer.Base
	pop  Population
	seed int64
	rng  *rand.Rand
}

// NewSparkle seeds the layer's own random source so spawns are reproducible.
func NewSparkle(p layer.Props, capacity int, seed int64) *Sparkle {
	return &Sparkle{
		Base: layer.NewBase(p),
		pop:  Population{Max: capacity},
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (s *Sparkle) Kind() layer.Kind { return layer.KindSparkle }

func (s *Sparkle) Population() *Population { return &s.pop }

// Reset empties the population and reseeds the random source.
func (s *Sparkle) Reset() {
	s.pop.Clear()
	s.rng = rand.New(rand.NewSource(s.seed))
}

func (s *Sparkle) Update(f layer.Frame) {
	beat := f.Features.BeatIntensity
	if beat >= sparkleThreshold {
		s.spawn(s.pop.Quota(beat, sparkleFactor))
	}
	s.pop.Advance(func(e *Entity) bool {
		e.Life -= sparkleDecay
		e.Phase += sparkleTwinkle
		return e.Life > 0
	})
}

func (s *Sparkle) spawn(n int) {
	props := s.Props()
	for i := 0; i < n; i++ {
		s.pop.Spawn(Entity{
			X:     float64(s.rng.Intn(max(1, props.W))),
			Y:     float64(s.rng.Intn(max(1, props.H))),
			Life:  1,
			Size:  float64(2 + s.rng.Intn(4)),
			Phase: s.rng.Float64() * 2 * math.Pi,
		})
	}
}

func (s *Sparkle) Draw(p raster.Painter, f layer.Frame, opacity int) error {
	base := s.Color(f, 255)
	for _, e := range s.pop.Items() {
		twinkle := (math.Sin(e.Phase) + 1) / 2
		alpha := int(float64(opacity) * e.Life * twinkle)
		if alpha <= 10 {
			continue
		}

		c := base
		c.A = uint8(min(255, alpha))
		p.FillCircle(e.X, e.Y, e.Size, c)

		if e.Size > 2 {
			centre := color.NRGBA{R: 255, G: 255, B: 255, A: uint8(min(255, alpha+50))}
			p.FillCircle(e.X, e.Y, float64(int(e.Size)/2), centre)
		}
	}
	return nil
}
