package viz

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBase = 0x2800

var dotBits = [4][2]uint8{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a terminal-sized grid of braille cells, each with one colour.
type Canvas struct {
	Width, Height int

	dots   []uint8
	colors []color.RGBA
}

func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		Width:  w,
		Height: h,
		dots:   make([]uint8, w*h),
		colors: make([]color.RGBA, w*h),
	}
}

// Set lights the dot at sub-pixel (x, y); the canvas is Width*2 by
// Height*4 sub-pixels.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.dots[row*c.Width+col] |= dotBits[y%4][x%2]
}

func (c *Canvas) Clear() {
	clear(c.dots)
	clear(c.colors)
}

// Blit samples img onto the dot grid. A dot is lit when the sampled pixel
// is brighter than threshold (0..255); each cell takes the mean colour of
// its lit dots.
func (c *Canvas) Blit(img *image.RGBA, threshold uint8) {
	c.Clear()
	b := img.Bounds()
	if b.Empty() {
		return
	}
	sw, sh := c.Width*2, c.Height*4

	sums := make([][4]int, len(c.dots))
	for y := 0; y < sh; y++ {
		py := b.Min.Y + y*b.Dy()/sh
		for x := 0; x < sw; x++ {
			px := b.Min.X + x*b.Dx()/sw
			p := img.RGBAAt(px, py)
			luma := (299*int(p.R) + 587*int(p.G) + 114*int(p.B)) / 1000
			if luma <= int(threshold) {
				continue
			}
			c.Set(x, y)
			i := (y/4)*c.Width + x/2
			sums[i][0] += int(p.R)
			sums[i][1] += int(p.G)
			sums[i][2] += int(p.B)
			sums[i][3]++
		}
	}
	for i, s := range sums {
		if s[3] == 0 {
			continue
		}
		c.colors[i] = color.RGBA{R: uint8(s[0] / s[3]), G: uint8(s[1] / s[3]), B: uint8(s[2] / s[3]), A: 255}
	}
}

// Lit reports how many dots are set.
func (c *Canvas) Lit() int {
	n := 0
	for _, d := range c.dots {
		for ; d != 0; d &= d - 1 {
			n++
		}
	}
	return n
}

// String renders the grid without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			b.WriteRune(rune(brailleBase + int(c.dots[row*c.Width+col])))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Render is String with each cell in its sampled colour; runs of equal
// colour share one style.
func (c *Canvas) Render() string {
	var b strings.Builder
	for row := 0; row < c.Height; row++ {
		var run strings.Builder
		var runColor color.RGBA
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runColor.A == 0 {
				b.WriteString(run.String())
			} else {
				hex := hexColor(int(runColor.R), int(runColor.G), int(runColor.B))
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < c.Width; col++ {
			i := row*c.Width + col
			if c.colors[i] != runColor {
				flush()
				runColor = c.colors[i]
			}
			run.WriteRune(rune(brailleBase + int(c.dots[i])))
		}
		flush()
		b.WriteByte('\n')
	}
	return b.String()
}
