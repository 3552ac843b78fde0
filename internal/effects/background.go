package effects

import (
	"fmt"
	"image"
	"image/color"

	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

type BackgroundType string

const (
	BackgroundBlack    BackgroundType = "black"
	BackgroundGradient BackgroundType = "gradient"
	BackgroundPulse    BackgroundType = "pulse"
	BackgroundImage    BackgroundType = "image"
	BackgroundFrames   BackgroundType = "frames"
)

// FrameSource supplies a background picture per timestamp, typically the
// decoded frames of a video.
type FrameSource interface {
	FrameAt(t float64) (image.Image, error)
}

// Background paints the bottom of every frame.
type Background struct {
	Type   BackgroundType
	Color1 color.NRGBA
	Color2 color.NRGBA

	still  image.Image
	scaled *image.RGBA
	frames FrameSource
}

func NewBackground(t BackgroundType) *Background {
	return &Background{
		Type:   t,
		Color1: color.NRGBA{R: 10, G: 10, B: 30, A: 255},
		Color2: color.NRGBA{R: 50, G: 10, B: 50, A: 255},
	}
}

// SetImage switches to a still image background.
func (b *Background) SetImage(img image.Image) {
	b.still = img
	b.scaled = nil
	b.Type = BackgroundImage
}

// SetFrames switches to a per-timestamp frame source.
func (b *Background) SetFrames(src FrameSource) {
	b.frames = src
	b.Type = BackgroundFrames
}

// Clear drops any image or frame source and returns to black.
func (b *Background) Clear() {
	b.still = nil
	b.scaled = nil
	b.frames = nil
	b.Type = BackgroundBlack
}

// Draw fills dst. A frame source that fails falls back to black and the
// error is returned for logging.
func (b *Background) Draw(dst *image.RGBA, f layer.Frame) error {
	switch b.Type {
	case BackgroundGradient:
		raster.VerticalGradient(dst, b.Color1, b.Color2)
	case BackgroundPulse:
		raster.Fill(dst, b.PulseColor(f))
	case BackgroundImage:
		if b.still == nil {
			raster.Fill(dst, color.Black)
			return nil
		}
		if b.scaled == nil || b.scaled.Bounds() != dst.Bounds() {
			b.scaled = image.NewRGBA(dst.Bounds())
			raster.Scale(b.scaled, b.still)
		}
		copy(dst.Pix, b.scaled.Pix)
	case BackgroundFrames:
		raster.Fill(dst, color.Black)
		if b.frames == nil {
			return nil
		}
		img, err := b.frames.FrameAt(f.Time)
		if err != nil {
			return fmt.Errorf("effects: background frame at %.3fs: %w", f.Time, err)
		}
		raster.Scale(dst, img)
	default:
		raster.Fill(dst, color.Black)
	}
	return nil
}

// PulseColor is Color1 brightened by up to 30% on the beat.
func (b *Background) PulseColor(f layer.Frame) color.NRGBA {
	boost := 1 + f.Features.BeatIntensity*0.3
	return color.NRGBA{
		R: pulseChannel(b.Color1.R, boost),
		G: pulseChannel(b.Color1.G, boost),
		B: pulseChannel(b.Color1.B, boost),
		A: 255,
	}
}

func pulseChannel(c uint8, boost float64) uint8 {
	return uint8(min(255, int(float64(c)*boost)))
}
