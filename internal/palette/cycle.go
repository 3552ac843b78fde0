// Package palette holds the colour dynamics shared by all layers: a hue that
// drifts with time and with the music, and HSV helpers.
package palette

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	hueRate      = 20.0 // degrees per second of the time-based cycle
	timeWeight   = 0.7
	audioWeight  = 0.3
	hueFollow    = 0.1
	satBase      = 0.8
	satBeatGain  = 0.2
	satSmoothing = 0.9
	defaultSat   = 0.8
	defaultValue = 1.0
)

// Cycle is the process-lifetime colour state. It is mutated once per tick by
// Update and only reset by constructing a new Cycle.
type Cycle struct {
	Hue        float64
	Saturation float64
	Value      float64
}

func NewCycle() *Cycle {
	return &Cycle{Saturation: defaultSat, Value: defaultValue}
}

// Update advances the cycle one tick at time t.
func (c *Cycle) Update(t, dominantHue, beatIntensity float64) {
	timeHue := math.Mod(t*hueRate, 360)
	if timeHue < 0 {
		timeHue += 360
	}
	target := timeHue*timeWeight + dominantHue*audioWeight
	c.step(target, beatIntensity)
}

func (c *Cycle) step(targetHue, beatIntensity float64) {
	diff := ShortestArc(c.Hue, targetHue)
	c.Hue = wrap(c.Hue + diff*hueFollow)

	targetSat := satBase + beatIntensity*satBeatGain
	c.Saturation = c.Saturation*satSmoothing + targetSat*(1-satSmoothing)
}

// RGB returns the current colour as 8-bit channels.
func (c *Cycle) RGB() (r, g, b uint8) {
	return HSV(c.Hue, c.Saturation, c.Value)
}

// Color returns the current colour with the given alpha.
func (c *Cycle) Color(alpha uint8) color.NRGBA {
	r, g, b := c.RGB()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}
}

// ShortestArc returns the signed angular distance from -> to in (-180, 180].
func ShortestArc(from, to float64) float64 {
	diff := math.Mod(to-from, 360)
	if diff > 180 {
		diff -= 360
	} else if diff <= -180 {
		diff += 360
	}
	return diff
}

// HSV converts hue in degrees and saturation/value in [0,1] to RGB.
func HSV(h, s, v float64) (r, g, b uint8) {
	return colorful.Hsv(wrap(h), clamp01(s), clamp01(v)).Clamped().RGB255()
}

func wrap(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	if h >= 360 {
		h = 0
	}
	return h
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
