// Package timing models when a layer is on screen and how strongly.
package timing

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNegativeFade = errors.New("timing: fade durations must not be negative")
	ErrInverted     = errors.New("timing: end time precedes start time")
	ErrNotANumber   = errors.New("timing: window contains NaN")
)

// Window bounds a layer in time. End is math.Inf(1) for layers that never
// leave the screen.
type Window struct {
	Start   float64
	End     float64
	FadeIn  float64
	FadeOut float64
}

// Always returns an unbounded window with no fades.
func Always() Window {
	return Window{End: math.Inf(1)}
}

// Bounded reports whether the window has a finite end.
func (w Window) Bounded() bool { return !math.IsInf(w.End, 1) }

// Contains reports whether t lies inside [Start, End].
func (w Window) Contains(t float64) bool {
	return t >= w.Start && t <= w.End
}

// Opacity returns base modulated by the fade ramps at time t, clamped to
// [0,255]. A zero FadeIn means full opacity from Start; an unbounded End
// disables fading out.
func (w Window) Opacity(base int, t float64) int {
	opacity := float64(base)

	switch {
	case w.FadeIn > 0 && t < w.Start+w.FadeIn:
		opacity = float64(base) * clamp01((t-w.Start)/w.FadeIn)
	case w.Bounded() && w.FadeOut > 0 && t > w.End-w.FadeOut:
		opacity = float64(base) * clamp01((w.End-t)/w.FadeOut)
	}

	o := int(opacity)
	if o < 0 {
		return 0
	}
	if o > 255 {
		return 255
	}
	return o
}

// Validate checks the window for values a caller could not have meant.
func (w Window) Validate() error {
	if math.IsNaN(w.Start) || math.IsNaN(w.End) || math.IsNaN(w.FadeIn) || math.IsNaN(w.FadeOut) {
		return ErrNotANumber
	}
	if w.FadeIn < 0 || w.FadeOut < 0 {
		return fmt.Errorf("%w (in=%g, out=%g)", ErrNegativeFade, w.FadeIn, w.FadeOut)
	}
	if w.End < w.Start {
		return fmt.Errorf("%w (start=%g, end=%g)", ErrInverted, w.Start, w.End)
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
