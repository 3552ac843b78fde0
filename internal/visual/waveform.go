package visual

import (
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

type Waveform struct {
	layer.Base
	Thickness float64
}

func NewWaveform(p layer.Props) *Waveform {
	return &Waveform{Base: layer.NewBase(p), Thickness: 2}
}

func (w *Waveform) Kind() layer.Kind { return layer.KindWaveform }

func (w *Waveform) Update(layer.Frame) {}

func (w *Waveform) Reset() {}

func (w *Waveform) Draw(p raster.Painter, f layer.Frame, opacity int) error {
	pts := w.points(f.Features.Waveform)
	if len(pts) > 1 {
		p.Polyline(pts, w.Thickness, w.Color(f, opacity))
	}
	return nil
}

// points decimates the window to at most one sample per pixel column.
func (w *Waveform) points(wave []float64) []raster.Point {
	props := w.Props()
	width, height := props.W, float64(props.H)

	n := len(wave)
	if n == 0 || width <= 0 {
		return nil
	}
	step := n / min(width, n)
	if step == 0 {
		step = 1
	}

	pts := make([]raster.Point, 0, min(width, n))
	for i := 0; i < n && len(pts) < width; i += step {
		y := int(height/2 + wave[i]*height/2*0.8)
		y = max(0, min(props.H-1, y))
		pts = append(pts, raster.Point{X: float64(len(pts)), Y: float64(y)})
	}
	return pts
}
