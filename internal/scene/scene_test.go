package scene

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/beatsim/internal/effects"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/logger"
	"github.com/san-kum/beatsim/internal/raster"
	"github.com/san-kum/beatsim/internal/timing"
	"github.com/san-kum/beatsim/internal/visual"
)

type solid struct {
	layer.Base
	panics  bool
	broken  bool
	updates int
}

func newSolid(name string, x, y, w, h int, c layer.RGB) *solid {
	p := layer.DefaultProps(name, w, h)
	p.X, p.Y = x, y
	p.Color = c
	return &solid{Base: layer.NewBase(p)}
}

func (s *solid) Kind() layer.Kind { return "solid" }

func (s *solid) Update(layer.Frame) { s.updates++ }

func (s *solid) Reset() { s.updates = 0 }

func (s *solid) Draw(p raster.Painter, f layer.Frame, opacity int) error {
	if s.panics {
		panic("boom")
	}
	b := p.Bounds()
	p.FillRect(0, 0, float64(b.Dx()), float64(b.Dy()), s.Color(f, opacity))
	if s.broken {
		p.Line(0, 0, math.NaN(), 1, 1, s.Color(f, opacity))
	}
	return nil
}

var (
	red  = layer.RGB{R: 255}
	blue = layer.RGB{B: 255}
)

func newScene(t *testing.T, w, h int) *Scene {
	t.Helper()
	s, err := New(w, h, WithLogger(logger.NewTestLogger()))
	require.NoError(t, err)
	return s
}

func frameAt(t float64) layer.Frame {
	return layer.Frame{Time: t, Features: features.Zero()}
}

func TestNewRejectsEmptyCanvas(t *testing.T) {
	_, err := New(0, 10)
	assert.ErrorIs(t, err, ErrEmptyCanvas)
}

func TestComposeDrawOrder(t *testing.T) {
	s := newScene(t, 20, 20)
	require.NoError(t, s.Add(newSolid("a", 0, 0, 20, 20, red)))
	require.NoError(t, s.Add(newSolid("b", 5, 5, 10, 10, blue)))

	dst := s.NewFrame()
	assert.Empty(t, s.Compose(dst, frameAt(0)))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, dst.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, dst.RGBAAt(10, 10))

	require.NoError(t, s.Move(1, 0))
	assert.Empty(t, s.Compose(dst, frameAt(0)))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, dst.RGBAAt(10, 10))
}

func TestComposeRespectsWindow(t *testing.T) {
	s := newScene(t, 10, 10)
	l := newSolid("late", 0, 0, 10, 10, red)
	require.NoError(t, s.Add(l))
	require.NoError(t, s.Configure(0, func(p *layer.Props) {
		p.Window = timing.Window{Start: 2, End: 4, FadeIn: 1}
	}))

	dst := s.NewFrame()
	s.Compose(dst, frameAt(1))
	assert.Equal(t, color.RGBA{A: 255}, dst.RGBAAt(5, 5), "before start")

	s.Compose(dst, frameAt(2.5))
	assert.InDelta(t, 127, int(dst.RGBAAt(5, 5).R), 2, "half way through the fade")

	s.Compose(dst, frameAt(3))
	assert.Equal(t, uint8(255), dst.RGBAAt(5, 5).R)

	s.Compose(dst, frameAt(4.5))
	assert.Equal(t, uint8(0), dst.RGBAAt(5, 5).R, "after end")
}

func TestComposeIsolatesFailures(t *testing.T) {
	s := newScene(t, 10, 10)
	bad := newSolid("bad", 0, 0, 10, 10, red)
	bad.panics = true
	broken := newSolid("broken", 0, 0, 10, 10, red)
	broken.broken = true
	good := newSolid("good", 0, 0, 5, 5, blue)

	require.NoError(t, s.Add(bad))
	require.NoError(t, s.Add(broken))
	require.NoError(t, s.Add(good))

	dst := s.NewFrame()
	errs := s.Compose(dst, frameAt(0))
	require.Len(t, errs, 2)

	var le *LayerError
	require.True(t, errors.As(errs[0], &le))
	assert.Equal(t, "bad", le.Name)
	assert.ErrorIs(t, errs[0], ErrLayerPanic)
	assert.ErrorIs(t, errs[1], raster.ErrDegenerate)

	assert.Equal(t, color.RGBA{B: 255, A: 255}, dst.RGBAAt(2, 2))
	assert.Equal(t, color.RGBA{A: 255}, dst.RGBAAt(8, 8), "failed layers leave no trace")
}

func TestConfigureRejectsInvalidProps(t *testing.T) {
	s := newScene(t, 10, 10)
	require.NoError(t, s.Add(newSolid("a", 0, 0, 10, 10, red)))

	err := s.Configure(0, func(p *layer.Props) { p.Alpha = -5 })
	var ve *layer.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.ErrorIs(t, err, layer.ErrInvalidAlpha)
	assert.Equal(t, 255, s.Layers()[0].Props().Alpha, "props untouched")

	assert.ErrorIs(t, s.Configure(3, func(*layer.Props) {}), ErrIndex)
	assert.ErrorIs(t, s.ConfigureNamed("nope", func(*layer.Props) {}), ErrUnknownName)
}

func TestStackEditing(t *testing.T) {
	s := newScene(t, 10, 10)
	require.NoError(t, s.Add(newSolid("a", 0, 0, 1, 1, red)))
	require.NoError(t, s.Add(newSolid("b", 0, 0, 1, 1, red)))
	require.NoError(t, s.AddAmbient(effects.NewGlow()))

	assert.ErrorIs(t, s.Add(newSolid("a", 0, 0, 1, 1, red)), ErrDuplicate)
	assert.ErrorIs(t, s.Add(newSolid("zero", 0, 0, 0, 1, red)), layer.ErrInvalidSize)

	require.NoError(t, s.Select(1))
	require.NoError(t, s.Remove(1))
	assert.Equal(t, 0, s.SelectedIndex())
	assert.Equal(t, "a", s.Selected().Props().Name)
	assert.Equal(t, []string{"a", "glow"}, s.Names())

	assert.ErrorIs(t, s.Remove(5), ErrIndex)
	assert.ErrorIs(t, s.Move(0, 2), ErrIndex)
}

func TestRemoveKeepsSelectedLayer(t *testing.T) {
	s := newScene(t, 10, 10)
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, s.Add(newSolid(name, 0, 0, 1, 1, red)))
	}

	require.NoError(t, s.Select(1))
	require.NoError(t, s.Remove(0))
	assert.Equal(t, 0, s.SelectedIndex())
	assert.Equal(t, "b", s.Selected().Props().Name)

	require.NoError(t, s.Remove(2))
	assert.Equal(t, "b", s.Selected().Props().Name, "removing above the selection leaves it alone")

	require.NoError(t, s.Remove(0))
	assert.Equal(t, 0, s.SelectedIndex())
	assert.Equal(t, "c", s.Selected().Props().Name)
}

func TestDisabledLayersArePaused(t *testing.T) {
	s := newScene(t, 64, 64)
	sp := effects.NewSparkle(layer.DefaultProps("sparkles", 64, 64), 100, 1)
	require.NoError(t, s.AddOverlay(sp))

	beat := frameAt(0)
	beat.Features.BeatIntensity = 1
	s.Update(beat)
	before := append([]effects.Entity(nil), sp.Population().Items()...)
	require.NotEmpty(t, before)

	require.NoError(t, s.SetEnabled("sparkles", false))
	for i := 0; i < 30; i++ {
		s.Update(beat)
	}
	assert.Equal(t, before, sp.Population().Items(), "nothing aged while disabled")

	dst := s.NewFrame()
	s.Compose(dst, beat)
	assert.Zero(t, raster.Luminance(dst), "disabled overlays are not drawn")

	require.NoError(t, s.SetEnabled("sparkles", true))
	s.Update(frameAt(0))
	assert.InDelta(t, before[0].Life-0.015, sp.Population().Items()[0].Life, 1e-12)
	assert.Equal(t, map[string]int{"sparkles": len(before)}, s.Populations())
}

func TestAmbientToggle(t *testing.T) {
	s := newScene(t, 40, 40)
	require.NoError(t, s.AddAmbient(effects.NewGlow()))

	loud := frameAt(0)
	loud.Features.BeatIntensity = 1
	loud.Features.RMS = 1

	dst := s.NewFrame()
	s.Compose(dst, loud)
	assert.Greater(t, raster.Luminance(dst), 0.0)

	require.NoError(t, s.SetEnabled("glow", false))
	on, err := s.Enabled("glow")
	require.NoError(t, err)
	assert.False(t, on)

	s.Compose(dst, loud)
	assert.Zero(t, raster.Luminance(dst))
	assert.ErrorIs(t, s.SetEnabled("missing", true), ErrUnknownName)
}

func TestSetKindEnabled(t *testing.T) {
	s := newScene(t, 40, 40)
	require.NoError(t, s.Add(visual.NewBars(layer.DefaultProps("bars1", 40, 40))))
	require.NoError(t, s.Add(visual.NewBars(layer.DefaultProps("bars2", 40, 40))))
	require.NoError(t, s.Add(visual.NewWaveform(layer.DefaultProps("wave", 40, 40))))

	assert.Equal(t, 2, s.SetKindEnabled(layer.KindBars, false))
	assert.False(t, s.Layers()[1].Props().Enabled)
	assert.True(t, s.Layers()[2].Props().Enabled)
}

func TestComposeIsIdempotent(t *testing.T) {
	s := newScene(t, 160, 90)
	s.Background = effects.NewBackground(effects.BackgroundGradient)
	require.NoError(t, s.Add(visual.NewBars(layer.DefaultProps("bars", 160, 90))))
	require.NoError(t, s.Add(visual.NewOrbs(layer.DefaultProps("orbs", 160, 90))))
	require.NoError(t, s.AddAmbient(effects.NewGlow()))
	require.NoError(t, s.AddOverlay(effects.NewRipple(layer.DefaultProps("water", 160, 90), 20, 2)))
	require.NoError(t, s.AddOverlay(effects.NewSparkle(layer.DefaultProps("sparkles", 160, 90), 100, 3)))

	synth := features.NewSynth(features.DefaultSynthConfig())
	for i := 0; i < 10; i++ {
		s.Update(layer.Frame{Index: i, Time: float64(i) / 30, Features: synth.Sample(2)})
	}

	f := layer.Frame{Index: 10, Time: 2, Features: synth.Sample(2)}
	a, b := s.NewFrame(), s.NewFrame()
	require.Empty(t, s.Compose(a, f))
	require.Empty(t, s.Compose(b, f))
	assert.True(t, bytes.Equal(a.Pix, b.Pix))
}

func TestResetClearsState(t *testing.T) {
	s := newScene(t, 64, 64)
	sp := effects.NewSparkle(layer.DefaultProps("sparkles", 64, 64), 100, 1)
	bars := visual.NewBars(layer.DefaultProps("bars", 64, 64))
	require.NoError(t, s.AddOverlay(sp))
	require.NoError(t, s.Add(bars))

	f := frameAt(0)
	f.Features.BeatIntensity = 1
	for i := range f.Features.Spectrum {
		f.Features.Spectrum[i] = 1
	}
	s.Update(f)
	require.NotZero(t, sp.Population().Len())
	require.NotZero(t, bars.Heights()[0])

	s.Reset()
	assert.Zero(t, sp.Population().Len())
	assert.Zero(t, bars.Heights()[0])
}

func TestCaptureFeedsMotionBlur(t *testing.T) {
	s := newScene(t, 8, 8)
	blur := effects.NewMotionBlur()
	require.NoError(t, s.AddAmbient(blur))

	frame := image.NewRGBA(s.Bounds())
	s.Capture(frame)
	s.Capture(frame)
	assert.Equal(t, 2, blur.Len())

	require.NoError(t, s.SetEnabled("blur", false))
	s.Capture(frame)
	assert.Equal(t, 2, blur.Len())
}
