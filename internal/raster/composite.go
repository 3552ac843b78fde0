package raster

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Fill paints the whole image with c, replacing what was there.
func Fill(dst *image.RGBA, c color.Color) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Composite blends src over dst with its top-left corner at at.
func Composite(dst, src *image.RGBA, at image.Point) {
	r := src.Bounds().Sub(src.Bounds().Min).Add(at)
	draw.Draw(dst, r, src, src.Bounds().Min, draw.Over)
}

// CompositeAlpha blends src over dst scaled by alpha.
func CompositeAlpha(dst, src *image.RGBA, alpha uint8) {
	if alpha == 0 {
		return
	}
	mask := image.NewUniform(color.Alpha{A: alpha})
	draw.DrawMask(dst, dst.Bounds(), src, src.Bounds().Min, mask, image.Point{}, draw.Over)
}

// Scale resamples src to cover dst entirely.
func Scale(dst *image.RGBA, src image.Image) {
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
}

// VerticalGradient fills dst top to bottom, blending from a at the first
// row towards b.
func VerticalGradient(dst *image.RGBA, a, b color.NRGBA) {
	bounds := dst.Bounds()
	h := float64(bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		ratio := float64(y-bounds.Min.Y) / h
		r := mix(a.R, b.R, ratio)
		g := mix(a.G, b.G, ratio)
		bl := mix(a.B, b.B, ratio)

		off := dst.PixOffset(bounds.Min.X, y)
		for x := 0; x < bounds.Dx(); x++ {
			i := off + x*4
			dst.Pix[i+0] = r
			dst.Pix[i+1] = g
			dst.Pix[i+2] = bl
			dst.Pix[i+3] = 255
		}
	}
}

// Luminance returns the mean Rec. 601 luma of img in [0,1].
func Luminance(img *image.RGBA) float64 {
	bounds := img.Bounds()
	n := bounds.Dx() * bounds.Dy()
	if n == 0 {
		return 0
	}
	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		off := img.PixOffset(bounds.Min.X, y)
		for x := 0; x < bounds.Dx(); x++ {
			i := off + x*4
			sum += 0.299*float64(img.Pix[i]) + 0.587*float64(img.Pix[i+1]) + 0.114*float64(img.Pix[i+2])
		}
	}
	return sum / float64(n) / 255
}

func mix(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
