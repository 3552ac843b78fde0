package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/san-kum/beatsim/internal/effects"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

// SVG records painter calls as SVG elements. It satisfies raster.Painter so
// any layer can be drawn as vectors instead of pixels.
type SVG struct {
	width, height int
	sb            strings.Builder
	depth         int
	err           error
}

func NewSVG(width, height int) *SVG {
	s := &SVG{width: width, height: height}
	s.sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
`, width, height, width, height))
	return s
}

func (s *SVG) Bounds() image.Rectangle { return image.Rect(0, 0, s.width, s.height) }

func (s *SVG) Err() error { return s.err }

func (s *SVG) bad(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if s.err == nil {
				s.err = fmt.Errorf("%w: %v", raster.ErrDegenerate, vals)
			}
			return true
		}
	}
	return false
}

func rgb(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func alpha(c color.NRGBA) string {
	return fmt.Sprintf("%.3f", float64(c.A)/255)
}

func (s *SVG) FillRect(x, y, w, h float64, c color.NRGBA) {
	if s.bad(x, y, w, h) || c.A == 0 {
		return
	}
	if w < 0 || h < 0 {
		if s.err == nil {
			s.err = fmt.Errorf("%w: rect size %gx%g", raster.ErrDegenerate, w, h)
		}
		return
	}
	s.sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" fill-opacity="%s"/>
`, x, y, w, h, rgb(c), alpha(c)))
}

func (s *SVG) FillCircle(cx, cy, r float64, c color.NRGBA) {
	if s.bad(cx, cy, r) || c.A == 0 || r <= 0 {
		return
	}
	s.sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="%s"/>
`, cx, cy, r, rgb(c), alpha(c)))
}

func (s *SVG) StrokeCircle(cx, cy, r, width float64, c color.NRGBA) {
	if s.bad(cx, cy, r, width) || c.A == 0 || r <= 0 || width <= 0 {
		return
	}
	s.sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="%s" stroke-opacity="%s" stroke-width="%.1f"/>
`, cx, cy, r, rgb(c), alpha(c), width))
}

func (s *SVG) Line(x0, y0, x1, y1, width float64, c color.NRGBA) {
	if s.bad(x0, y0, x1, y1, width) || c.A == 0 {
		return
	}
	s.sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-opacity="%s" stroke-width="%.1f" stroke-linecap="round"/>
`, x0, y0, x1, y1, rgb(c), alpha(c), width))
}

func (s *SVG) Polyline(pts []raster.Point, width float64, c color.NRGBA) {
	if len(pts) < 2 || c.A == 0 {
		return
	}
	var path strings.Builder
	for i, p := range pts {
		if s.bad(p.X, p.Y) {
			return
		}
		if i > 0 {
			path.WriteByte(' ')
		}
		path.WriteString(fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
	}
	s.sb.WriteString(fmt.Sprintf(`<polyline points="%s" fill="none" stroke="%s" stroke-opacity="%s" stroke-width="%.1f" stroke-linejoin="round"/>
`, path.String(), rgb(c), alpha(c), width))
}

// Begin opens a translated group; every Begin needs a matching End.
func (s *SVG) Begin(x, y int) {
	s.sb.WriteString(fmt.Sprintf(`<g transform="translate(%d,%d)">
`, x, y))
	s.depth++
}

func (s *SVG) End() {
	if s.depth == 0 {
		return
	}
	s.sb.WriteString("</g>\n")
	s.depth--
}

// String closes any open groups and the document.
func (s *SVG) String() string {
	for s.depth > 0 {
		s.End()
	}
	return s.sb.String() + "</svg>\n"
}

// SceneSource is the part of a scene needed to draw it as vectors.
type SceneSource interface {
	Bounds() image.Rectangle
	Layers() []layer.Layer
	Overlays() []layer.Layer
}

// FrameToSVG draws the stack and overlays of a scene for frame f. Ambient
// effects are raster-only and are skipped. Failing layers are left out and
// their errors joined.
func FrameToSVG(src SceneSource, bg *effects.Background, f layer.Frame) (string, error) {
	b := src.Bounds()
	s := NewSVG(b.Dx(), b.Dy())
	writeBackground(s, bg, f)

	var errs []error
	for _, l := range append(append([]layer.Layer{}, src.Layers()...), src.Overlays()...) {
		p := l.Props()
		if !p.Enabled || !p.Window.Contains(f.Time) {
			continue
		}
		opacity := p.Window.Opacity(p.Alpha, f.Time)
		if opacity == 0 {
			continue
		}

		layerSVG := &SVG{width: p.W, height: p.H}
		if err := l.Draw(layerSVG, f, opacity); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		if err := layerSVG.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
			continue
		}
		s.Begin(p.X, p.Y)
		s.sb.WriteString(layerSVG.sb.String())
		s.End()
	}
	return s.String(), errors.Join(errs...)
}

func writeBackground(s *SVG, bg *effects.Background, f layer.Frame) {
	if bg == nil {
		bg = effects.NewBackground(effects.BackgroundBlack)
	}
	switch bg.Type {
	case effects.BackgroundGradient:
		s.sb.WriteString(fmt.Sprintf(`<defs><linearGradient id="bg" x1="0" y1="0" x2="0" y2="1"><stop offset="0" stop-color="%s"/><stop offset="1" stop-color="%s"/></linearGradient></defs>
<rect width="100%%" height="100%%" fill="url(#bg)"/>
`, rgb(bg.Color1), rgb(bg.Color2)))
	case effects.BackgroundPulse:
		s.sb.WriteString(fmt.Sprintf(`<rect width="100%%" height="100%%" fill="%s"/>
`, rgb(bg.PulseColor(f))))
	default:
		s.sb.WriteString(`<rect width="100%" height="100%" fill="#000000"/>
`)
	}
}

// SeriesToSVG plots values as a line chart, for example per-frame beat
// intensity from a stored run.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minV, maxV := values[0], values[0]
	for _, v := range values {
		minV = math.Min(minV, v)
		maxV = math.Max(maxV, v)
	}
	span := maxV - minV
	if span == 0 {
		span = 1
	}
	minV -= span * 0.1
	span *= 1.2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	step := float64(width) / float64(len(values)-1)
	for i, v := range values {
		x := float64(i) * step
		y := float64(height) - (v-minV)/span*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
