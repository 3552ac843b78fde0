package visual

import (
	"image/color"
	"math"

	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

const (
	orbBaseSize  = 20
	orbDrift     = 30
	orbPhaseRate = 0.05
)

// Orbs draws glowing circles that float on a sine path and swell with their
// spectrum band and the beat.
type Orbs struct {
	layer.Base
	Count int

	phases []float64
}

func NewOrbs(p layer.Props) *Orbs {
	o := &Orbs{Base: layer.NewBase(p), Count: 5}
	o.Reset()
	return o
}

func (o *Orbs) Kind() layer.Kind { return layer.KindOrbs }

func (o *Orbs) Reset() {
	o.phases = make([]float64, o.Count)
	for i := range o.phases {
		o.phases[i] = float64(i) * 2 * math.Pi / float64(o.Count)
	}
}

func (o *Orbs) Phases() []float64 { return o.phases }

func (o *Orbs) Update(layer.Frame) {
	if len(o.phases) != o.Count {
		o.Reset()
	}
	for i := range o.phases {
		o.phases[i] += orbPhaseRate
	}
}

func (o *Orbs) Draw(p raster.Painter, f layer.Frame, opacity int) error {
	props := o.Props()
	base := o.Color(f, opacity)
	core := color.NRGBA{
		R: uint8(min(255, int(base.R)+50)),
		G: uint8(min(255, int(base.G)+50)),
		B: uint8(min(255, int(base.B)+50)),
		A: base.A,
	}

	for i, phase := range o.phases {
		band := f.Features.Band(float64(i) / float64(o.Count))
		size := int(orbBaseSize + band*40 + f.Features.BeatIntensity*20)

		x := int(float64(i+1) * float64(props.W) / float64(o.Count+1))
		y := int(float64(props.H)/2 + math.Sin(phase)*orbDrift)

		for ring := 3; ring > 0; ring-- {
			glow := base
			glow.A = uint8(int(base.A) / (ring * 2))
			p.FillCircle(float64(x), float64(y), float64(size*ring/2), glow)
		}
		p.FillCircle(float64(x), float64(y), float64(size/3), core)
	}
	return nil
}
