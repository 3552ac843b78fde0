// Package raster draws anti-aliased primitives onto RGBA buffers and
// composites layer buffers onto a frame.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// ErrDegenerate marks geometry that cannot be rasterized (NaN or infinite
// coordinates, negative sizes).
var ErrDegenerate = errors.New("raster: degenerate geometry")

// kappa places cubic control points so four arcs approximate a circle.
const kappa = 0.5522847498

type Point struct {
	X, Y float64
}

// Painter is the drawing surface handed to layers. Implementations keep the
// first error they hit and keep accepting calls, like bufio.Writer.
type Painter interface {
	Bounds() image.Rectangle
	FillRect(x, y, w, h float64, c color.NRGBA)
	FillCircle(cx, cy, r float64, c color.NRGBA)
	StrokeCircle(cx, cy, r, width float64, c color.NRGBA)
	Line(x0, y0, x1, y1, width float64, c color.NRGBA)
	Polyline(pts []Point, width float64, c color.NRGBA)
	Err() error
}

// Canvas rasterizes shapes onto an *image.RGBA using source-over blending.
type Canvas struct {
	img *image.RGBA
	z   vector.Rasterizer
	err error
}

func NewCanvas(img *image.RGBA) *Canvas {
	return &Canvas{img: img}
}

// Reset points the canvas at a new target and clears the sticky error.
func (c *Canvas) Reset(img *image.RGBA) {
	c.img = img
	c.err = nil
}

func (c *Canvas) Image() *image.RGBA { return c.img }

func (c *Canvas) Bounds() image.Rectangle { return c.img.Bounds() }

func (c *Canvas) Err() error { return c.err }

func (c *Canvas) fail(op string, vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if c.err == nil {
				c.err = fmt.Errorf("%w: %s(%v)", ErrDegenerate, op, vals)
			}
			return true
		}
	}
	return false
}

func (c *Canvas) FillRect(x, y, w, h float64, col color.NRGBA) {
	if c.fail("rect", x, y, w, h) || col.A == 0 {
		return
	}
	if w < 0 || h < 0 {
		c.setErr(fmt.Errorf("%w: rect size %gx%g", ErrDegenerate, w, h))
		return
	}
	c.fill(bbox(x, y, x+w, y+h), col, func(ox, oy float64) {
		c.moveTo(x-ox, y-oy)
		c.lineTo(x+w-ox, y-oy)
		c.lineTo(x+w-ox, y+h-oy)
		c.lineTo(x-ox, y+h-oy)
		c.z.ClosePath()
	})
}

func (c *Canvas) FillCircle(cx, cy, r float64, col color.NRGBA) {
	if c.fail("circle", cx, cy, r) || col.A == 0 || r <= 0 {
		return
	}
	c.fill(bbox(cx-r, cy-r, cx+r, cy+r), col, func(ox, oy float64) {
		c.circle(cx-ox, cy-oy, r, false)
	})
}

// StrokeCircle draws a ring of the given width centred on radius r.
func (c *Canvas) StrokeCircle(cx, cy, r, width float64, col color.NRGBA) {
	if c.fail("ring", cx, cy, r, width) || col.A == 0 || r <= 0 || width <= 0 {
		return
	}
	outer := r + width/2
	inner := r - width/2
	c.fill(bbox(cx-outer, cy-outer, cx+outer, cy+outer), col, func(ox, oy float64) {
		c.circle(cx-ox, cy-oy, outer, false)
		if inner > 0 {
			c.circle(cx-ox, cy-oy, inner, true)
		}
	})
}

func (c *Canvas) Line(x0, y0, x1, y1, width float64, col color.NRGBA) {
	if c.fail("line", x0, y0, x1, y1, width) || col.A == 0 || width <= 0 {
		return
	}
	dx, dy := x1-x0, y1-y0
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	hw := width / 2
	px, py := -dy/length*hw, dx/length*hw

	c.fill(bbox(x0-hw, y0-hw, x1+hw, y1+hw), col, func(ox, oy float64) {
		c.moveTo(x0+px-ox, y0+py-oy)
		c.lineTo(x1+px-ox, y1+py-oy)
		c.lineTo(x1-px-ox, y1-py-oy)
		c.lineTo(x0-px-ox, y0-py-oy)
		c.z.ClosePath()
	})
}

func (c *Canvas) Polyline(pts []Point, width float64, col color.NRGBA) {
	for i := 1; i < len(pts); i++ {
		c.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y, width, col)
	}
}

func (c *Canvas) setErr(err error) {
	if c.err == nil {
		c.err = err
	}
}

// fill rasterizes the path built by path into the clipped bounding box r.
// path receives the offset to subtract from absolute coordinates.
func (c *Canvas) fill(r image.Rectangle, col color.NRGBA, path func(ox, oy float64)) {
	r = r.Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	c.z.Reset(r.Dx(), r.Dy())
	c.z.DrawOp = draw.Over
	path(float64(r.Min.X), float64(r.Min.Y))
	c.z.Draw(c.img, r, image.NewUniform(col), image.Point{})
}

func (c *Canvas) moveTo(x, y float64) { c.z.MoveTo(float32(x), float32(y)) }
func (c *Canvas) lineTo(x, y float64) { c.z.LineTo(float32(x), float32(y)) }

func (c *Canvas) cubeTo(bx, by, cx, cy, dx, dy float64) {
	c.z.CubeTo(float32(bx), float32(by), float32(cx), float32(cy), float32(dx), float32(dy))
}

// circle appends a closed circle. Reversed circles cut holes out of the
// shape drawn before them.
func (c *Canvas) circle(cx, cy, r float64, reverse bool) {
	k := r * kappa
	if !reverse {
		c.moveTo(cx+r, cy)
		c.cubeTo(cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		c.cubeTo(cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		c.cubeTo(cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		c.cubeTo(cx+k, cy-r, cx+r, cy-k, cx+r, cy)
	} else {
		c.moveTo(cx+r, cy)
		c.cubeTo(cx+r, cy-k, cx+k, cy-r, cx, cy-r)
		c.cubeTo(cx-k, cy-r, cx-r, cy-k, cx-r, cy)
		c.cubeTo(cx-r, cy+k, cx-k, cy+r, cx, cy+r)
		c.cubeTo(cx+k, cy+r, cx+r, cy+k, cx+r, cy)
	}
	c.z.ClosePath()
}

func bbox(x0, y0, x1, y1 float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(math.Min(x0, x1)))-1,
		int(math.Floor(math.Min(y0, y1)))-1,
		int(math.Ceil(math.Max(x0, x1)))+1,
		int(math.Ceil(math.Max(y0, y1)))+1,
	)
}
