package visual

import (
	"image/color"
	"math"

	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

// Radial draws spokes that rotate faster on beats and lengthen with RMS.
type Radial struct {
	layer.Base
	Lines int

	rotation float64 // degrees
	pulse    float64
}

func NewRadial(p layer.Props) *Radial {
	return &Radial{Base: layer.NewBase(p), Lines: 12}
}

func (r *Radial) Kind() layer.Kind { return layer.KindRadial }

func (r *Radial) Reset() {
	r.rotation = 0
	r.pulse = 0
}

func (r *Radial) Rotation() float64 { return r.rotation }

func (r *Radial) Update(f layer.Frame) {
	r.rotation += 0.5 + f.Features.BeatIntensity*2
	r.pulse = f.Features.RMS * 0.3
}

func (r *Radial) Draw(p raster.Painter, f layer.Frame, opacity int) error {
	props := r.Props()
	cx, cy := props.W/2, props.H/2
	radius := float64(min(props.W, props.H)) * (0.4 + r.pulse)
	base := r.Color(f, opacity)

	for i := 0; i < r.Lines; i++ {
		angle := (r.rotation + float64(i)/float64(r.Lines)*360) * math.Pi / 180
		ex := cx + int(radius*math.Cos(angle))
		ey := cy + int(radius*math.Sin(angle))

		intensity := 0.5 + 0.5*math.Sin(angle+f.Time)
		c := color.NRGBA{
			R: uint8(float64(base.R) * intensity),
			G: uint8(float64(base.G) * intensity),
			B: uint8(float64(base.B) * intensity),
			A: base.A,
		}
		p.Line(float64(cx), float64(cy), float64(ex), float64(ey), 3, c)
	}
	return nil
}
