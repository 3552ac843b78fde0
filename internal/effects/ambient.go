package effects

import (
	"image"
	"image/color"

	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

// Ambient is a screen-space effect applied to the whole frame after the
// layer stack.
type Ambient interface {
	Name() string
	Update(f layer.Frame)
	Apply(dst *image.RGBA, f layer.Frame) error
	Reset()
}

// Glow pulses a soft radial light from the frame centre with RMS and beat.
type Glow struct {
	Color     color.NRGBA
	Intensity float64
	Follow    bool
}

func NewGlow() *Glow {
	return &Glow{Color: color.NRGBA{R: 255, G: 100, B: 200, A: 255}, Intensity: 0.5}
}

func (g *Glow) Name() string { return "glow" }

func (g *Glow) Update(layer.Frame) {}

func (g *Glow) Reset() {}

// Strength is the glow level for a frame; nothing is drawn at or below 0.1.
func (g *Glow) Strength(f layer.Frame) float64 {
	return (f.Features.RMS*0.5 + f.Features.BeatIntensity*0.5) * g.Intensity
}

func (g *Glow) Apply(dst *image.RGBA, f layer.Frame) error {
	strength := g.Strength(f)
	if strength <= 0.1 {
		return nil
	}

	b := dst.Bounds()
	cx := float64(b.Min.X + b.Dx()/2)
	cy := float64(b.Min.Y + b.Dy()/2)
	maxRadius := int(float64(min(b.Dx(), b.Dy())) * 0.6)

	base := g.Color
	if g.Follow {
		base = f.Cycle.Color(255)
	}

	c := raster.NewCanvas(dst)
	for i := 5; i > 0; i-- {
		radius := int(float64(maxRadius) * float64(i) / 5 * strength)
		alpha := int(100 * strength / float64(i))
		if radius <= 0 || alpha <= 5 {
			continue
		}
		col := base
		col.A = uint8(alpha)
		c.FillCircle(cx, cy, float64(radius), col)
	}
	return c.Err()
}

// MotionBlur keeps the last few composed frames and lays them back over the
// current one with increasing opacity, oldest first.
type MotionBlur struct {
	TrailLength int

	trail []*image.RGBA
}

func NewMotionBlur() *MotionBlur {
	return &MotionBlur{TrailLength: 5}
}

func (m *MotionBlur) Name() string { return "blur" }

func (m *MotionBlur) Update(layer.Frame) {}

func (m *MotionBlur) Reset() {
	m.trail = m.trail[:0]
}

func (m *MotionBlur) Len() int { return len(m.trail) }

// Capture records a finished frame. Buffers that fall off the end of the
// trail are reused.
func (m *MotionBlur) Capture(frame *image.RGBA) {
	if m.TrailLength <= 0 {
		return
	}
	var buf *image.RGBA
	if len(m.trail) >= m.TrailLength {
		buf = m.trail[0]
		copy(m.trail, m.trail[1:])
		m.trail = m.trail[:len(m.trail)-1]
	}
	if buf == nil || buf.Bounds() != frame.Bounds() {
		buf = image.NewRGBA(frame.Bounds())
	}
	copy(buf.Pix, frame.Pix)
	m.trail = append(m.trail, buf)
}

func (m *MotionBlur) Apply(dst *image.RGBA, f layer.Frame) error {
	n := len(m.trail)
	for i := 0; i < n-1; i++ {
		frame := m.trail[i]
		if frame.Bounds() != dst.Bounds() {
			continue
		}
		raster.CompositeAlpha(dst, frame, uint8(128*(i+1)/n))
	}
	return nil
}
