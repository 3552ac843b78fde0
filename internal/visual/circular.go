package visual

import (
	"image/color"
	"math"

	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/palette"
	"github.com/san-kum/beatsim/internal/raster"
)

const circularSmoothing = 0.6

// Circular draws spectrum bars radiating from the layer centre, coloured
// around the hue wheel.
type Circular struct {
	layer.Base
	Count int

	levels []float64
}

func NewCircular(p layer.Props) *Circular {
	c := &Circular{Base: layer.NewBase(p), Count: 64}
	c.Reset()
	return c
}

func (c *Circular) Kind() layer.Kind { return layer.KindCircular }

func (c *Circular) Reset() {
	c.levels = make([]float64, c.Count)
}

func (c *Circular) Levels() []float64 { return c.levels }

func (c *Circular) Update(f layer.Frame) {
	if len(c.levels) != c.Count {
		c.Reset()
	}
	for i := range c.levels {
		target := f.Features.Band(float64(i) / float64(c.Count))
		c.levels[i] = c.levels[i]*circularSmoothing + target*(1-circularSmoothing)
	}
}

func (c *Circular) Draw(p raster.Painter, f layer.Frame, opacity int) error {
	props := c.Props()
	side := float64(min(props.W, props.H))
	inner := side * 0.1
	outer := side * 0.45
	cx, cy := props.W/2, props.H/2

	for i, level := range c.levels {
		angle := float64(i) / float64(c.Count) * 2 * math.Pi
		cos, sin := math.Cos(angle), math.Sin(angle)

		x0 := cx + int(inner*cos)
		y0 := cy + int(inner*sin)
		length := inner + level*(outer-inner)
		x1 := cx + int(length*cos)
		y1 := cy + int(length*sin)

		r, g, b := palette.HSV(float64(i)/float64(c.Count)*360, 0.8, 1)
		col := color.NRGBA{R: r, G: g, B: b, A: uint8(max(0, min(255, opacity)))}
		p.Line(float64(x0), float64(y0), float64(x1), float64(y1), 3, col)
	}
	return nil
}
