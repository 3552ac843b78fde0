package visual

import (
	"image/color"

	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

const barsSmoothing = 0.7

// Bars draws vertical frequency bars with exponentially smoothed heights.
type Bars struct {
	layer.Base
	Count   int
	Spacing float64

	heights []float64
}

func NewBars(p layer.Props) *Bars {
	b := &Bars{Base: layer.NewBase(p), Count: 64, Spacing: 2}
	b.Reset()
	return b
}

func (b *Bars) Kind() layer.Kind { return layer.KindBars }

func (b *Bars) Reset() {
	b.heights = make([]float64, b.Count)
}

// Heights returns the smoothed bar heights in pixels.
func (b *Bars) Heights() []float64 { return b.heights }

func (b *Bars) Update(f layer.Frame) {
	if len(b.heights) != b.Count {
		b.Reset()
	}
	h := float64(b.Props().H)
	for i := range b.heights {
		target := f.Features.Band(float64(i)/float64(b.Count)) * h * 0.9
		b.heights[i] = b.heights[i]*barsSmoothing + target*(1-barsSmoothing)
	}
}

func (b *Bars) Draw(p raster.Painter, f layer.Frame, opacity int) error {
	props := b.Props()
	if b.Count <= 0 {
		return nil
	}
	w, h := float64(props.W), float64(props.H)

	spacing := b.Spacing
	barWidth := (w - float64(b.Count-1)*spacing) / float64(b.Count)
	if barWidth <= 0 {
		spacing = 0
		barWidth = w / float64(b.Count)
	}

	base := b.Color(f, opacity)
	for i, bh := range b.heights {
		height := float64(max(2, int(bh)))
		intensity := min(1.0, bh/h)
		scale := 0.5 + 0.5*intensity

		c := color.NRGBA{
			R: uint8(float64(base.R) * scale),
			G: uint8(float64(base.G) * scale),
			B: uint8(float64(base.B) * scale),
			A: base.A,
		}
		p.FillRect(float64(i)*(barWidth+spacing), h-height, barWidth, height, c)
	}
	return nil
}
