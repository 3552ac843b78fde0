package export

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/gif"
	"io"

	"golang.org/x/image/draw"
)

// GIF accumulates every Stride-th frame, downscaled by Scale, and writes an
// animated GIF on Encode.
type GIF struct {
	Stride int
	Scale  float64

	delay  int
	frames []*image.Paletted
}

// NewGIF keeps every stride-th frame of a render running at fps.
func NewGIF(fps float64, stride int, scale float64) *GIF {
	if stride < 1 {
		stride = 1
	}
	if scale <= 0 || scale > 1 {
		scale = 1
	}
	delay := int(100 * float64(stride) / fps)
	if delay < 2 {
		delay = 2
	}
	return &GIF{Stride: stride, Scale: scale, delay: delay}
}

func (g *GIF) Consume(frame *image.RGBA, index int) error {
	if index%g.Stride != 0 {
		return nil
	}
	b := frame.Bounds()
	w := max(1, int(float64(b.Dx())*g.Scale))
	h := max(1, int(float64(b.Dy())*g.Scale))

	dst := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
	if w == b.Dx() && h == b.Dy() {
		draw.FloydSteinberg.Draw(dst, dst.Bounds(), frame, b.Min)
	} else {
		scaled := image.NewRGBA(dst.Bounds())
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), frame, b, draw.Src, nil)
		draw.FloydSteinberg.Draw(dst, dst.Bounds(), scaled, image.Point{})
	}
	g.frames = append(g.frames, dst)
	return nil
}

func (g *GIF) Len() int { return len(g.frames) }

func (g *GIF) Encode(w io.Writer) error {
	if len(g.frames) == 0 {
		return fmt.Errorf("export: gif has no frames")
	}
	anim := &gif.GIF{
		Image: g.frames,
		Delay: make([]int, len(g.frames)),
	}
	for i := range anim.Delay {
		anim.Delay[i] = g.delay
	}
	return gif.EncodeAll(w, anim)
}
