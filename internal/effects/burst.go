package effects

import (
	"math"
	"math/rand"

	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

const (
	burstThreshold = 0.5
	burstFactor    = 20
	burstDecay     = 0.02
	burstGravity   = 0.2
)

// Burst fires particles out of the layer centre on beats. Particles fall
// under gravity and only die when their life runs out.
type Burst struct {
	layer.Base
	pop  Population
	seed int64
	rng  *rand.Rand
}

// NewBurst seeds the layer's own random source so spawns are reproducible.
func NewBurst(p layer.Props, capacity int, seed int64) *Burst {
	return &Burst{
		Base: layer.NewBase(p),
		pop:  Population{Max: capacity},
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

func (b *Burst) Kind() layer.Kind { return layer.KindParticles }

func (b *Burst) Population() *Population { return &b.pop }

// Reset empties the population and reseeds the random source.
func (b *Burst) Reset() {
	b.pop.Clear()
	b.rng = rand.New(rand.NewSource(b.seed))
}

func (b *Burst) Update(f layer.Frame) {
	beat := f.Features.BeatIntensity
	if beat >= burstThreshold {
		b.spawn(b.pop.Quota(beat, burstFactor), f.Features.OnsetStrength)
	}
	b.pop.Advance(func(e *Entity) bool {
		e.X += e.VX
		e.Y += e.VY
		e.Life -= burstDecay
		e.VY += burstGravity
		return e.Life > 0
	})
}

func (b *Burst) spawn(n int, onset float64) {
	props := b.Props()
	speed := 2 + onset*8
	size := float64(2 + int(onset*6))
	for i := 0; i < n; i++ {
		angle := b.rng.Float64() * 2 * math.Pi
		b.pop.Spawn(Entity{
			X:    float64(props.W) / 2,
			Y:    float64(props.H) / 2,
			VX:   math.Cos(angle) * speed,
			VY:   math.Sin(angle) * speed,
			Life: 1,
			Size: size,
		})
	}
}

func (b *Burst) Draw(p raster.Painter, f layer.Frame, opacity int) error {
	props := b.Props()
	base := b.Color(f, 255)
	for _, e := range b.pop.Items() {
		x, y := int(e.X), int(e.Y)
		if x < 0 || x >= props.W || y < 0 || y >= props.H {
			continue
		}
		c := base
		c.A = uint8(max(0, min(255, int(float64(opacity)*e.Life))))
		p.FillCircle(float64(x), float64(y), e.Size, c)
	}
	return nil
}
