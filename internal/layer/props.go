package layer

import (
	"errors"
	"fmt"
	"image"

	"github.com/san-kum/beatsim/internal/timing"
)

var (
	ErrInvalidSize   = errors.New("layer: width and height must be positive")
	ErrInvalidAlpha  = errors.New("layer: alpha must be within 0..255")
	ErrInvalidColor  = errors.New("layer: colour channels must be within 0..255")
	ErrInvalidWindow = errors.New("layer: invalid timing window")
	ErrInvalidParam  = errors.New("layer: parameter out of range")
)

// ValidationError reports which property of a layer was rejected.
type ValidationError struct {
	Layer string
	Field string
	Value interface{}
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Layer == "" {
		return fmt.Sprintf("%s (%s=%v)", e.Err, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: %s (%s=%v)", e.Layer, e.Err, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type RGB struct {
	R int `yaml:"r" json:"r"`
	G int `yaml:"g" json:"g"`
	B int `yaml:"b" json:"b"`
}

// Props are the host-settable properties of a layer. Changes take effect on
// the next tick.
type Props struct {
	Name        string
	X, Y        int
	W, H        int
	Color       RGB
	Alpha       int
	Window      timing.Window
	Enabled     bool
	FollowCycle bool
}

// DefaultProps covers a w×h canvas with an opaque white, always visible layer.
func DefaultProps(name string, w, h int) Props {
	return Props{
		Name:    name,
		W:       w,
		H:       h,
		Color:   RGB{R: 255, G: 255, B: 255},
		Alpha:   255,
		Window:  timing.Always(),
		Enabled: true,
	}
}

func (p Props) Rect() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.W, p.Y+p.H)
}

// Validate returns a *ValidationError for the first bad field.
func (p Props) Validate() error {
	if p.W <= 0 || p.H <= 0 {
		return &ValidationError{Layer: p.Name, Field: "size", Value: fmt.Sprintf("%dx%d", p.W, p.H), Err: ErrInvalidSize}
	}
	if p.Alpha < 0 || p.Alpha > 255 {
		return &ValidationError{Layer: p.Name, Field: "alpha", Value: p.Alpha, Err: ErrInvalidAlpha}
	}
	for _, ch := range []struct {
		name string
		v    int
	}{{"r", p.Color.R}, {"g", p.Color.G}, {"b", p.Color.B}} {
		if ch.v < 0 || ch.v > 255 {
			return &ValidationError{Layer: p.Name, Field: "color." + ch.name, Value: ch.v, Err: ErrInvalidColor}
		}
	}
	if err := p.Window.Validate(); err != nil {
		return &ValidationError{Layer: p.Name, Field: "window", Value: err, Err: ErrInvalidWindow}
	}
	return nil
}
