// Package layer defines the capability shared by every visual element and
// the mutable properties a host may set on it.
package layer

import (
	"image"
	"image/color"

	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/palette"
	"github.com/san-kum/beatsim/internal/raster"
)

type Kind string

const (
	KindWaveform  Kind = "waveform"
	KindBars      Kind = "bars"
	KindCircular  Kind = "circular"
	KindRadial    Kind = "radial"
	KindOrbs      Kind = "orbs"
	KindSparkle   Kind = "sparkle"
	KindRipple    Kind = "ripple"
	KindParticles Kind = "particles"
)

// Frame is the read-only session context for one tick.
type Frame struct {
	Index    int
	Time     float64
	Features features.Record
	Cycle    palette.Cycle
}

// Layer is implemented by renderables and animated populations alike.
// Update runs once per tick before any Draw of that tick; Draw must not
// mutate state so that drawing the same frame twice is identical.
type Layer interface {
	Kind() Kind
	Props() Props
	SetProps(Props)
	Update(f Frame)
	Draw(p raster.Painter, f Frame, opacity int) error
	Reset()
}

// Base carries the props of a layer and is embedded by implementations.
type Base struct {
	props Props
}

func NewBase(p Props) Base { return Base{props: p} }

func (b *Base) Props() Props { return b.props }

func (b *Base) SetProps(p Props) { b.props = p }

// Color returns the layer colour at the given alpha, taken from the colour
// cycle when the layer follows it.
func (b *Base) Color(f Frame, alpha int) color.NRGBA {
	a := clampByte(alpha)
	if b.props.FollowCycle {
		return f.Cycle.Color(a)
	}
	return color.NRGBA{R: uint8(b.props.Color.R), G: uint8(b.props.Color.G), B: uint8(b.props.Color.B), A: a}
}

// Bounds returns the layer rectangle in canvas coordinates.
func (b *Base) Bounds() image.Rectangle { return b.props.Rect() }

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
