package effects

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

func beatFrame(beat, onset, rms float64) layer.Frame {
	rec := features.Zero()
	rec.BeatIntensity = beat
	rec.OnsetStrength = onset
	rec.RMS = rms
	return layer.Frame{Features: rec}
}

func canvasProps(w, h int) layer.Props {
	return layer.DefaultProps("fx", w, h)
}

func TestPopulationAdvanceKeepsOrder(t *testing.T) {
	p := Population{Max: 10}
	for i := 0; i < 6; i++ {
		require.True(t, p.Spawn(Entity{X: float64(i), Life: float64(i % 2)}))
	}
	p.Advance(func(e *Entity) bool { return e.Life > 0 })

	require.Equal(t, 3, p.Len())
	assert.Equal(t, []float64{1, 3, 5}, []float64{p.Items()[0].X, p.Items()[1].X, p.Items()[2].X})
}

func TestPopulationQuota(t *testing.T) {
	p := Population{Max: 10}
	assert.Equal(t, 9, p.Quota(0.6, 15))
	assert.Equal(t, 10, p.Quota(1, 15))

	for i := 0; i < 10; i++ {
		p.Spawn(Entity{})
	}
	assert.Zero(t, p.Quota(1, 15))
	assert.False(t, p.Spawn(Entity{}))
}

func TestSparkleSpawnCount(t *testing.T) {
	s := NewSparkle(canvasProps(640, 360), 100, 1)
	s.Update(beatFrame(0.6, 0, 0))
	assert.Equal(t, 9, s.Population().Len())

	quiet := NewSparkle(canvasProps(640, 360), 100, 1)
	quiet.Update(beatFrame(0.59, 0, 0))
	assert.Zero(t, quiet.Population().Len())
}

func TestSparkleNeverExceedsMax(t *testing.T) {
	s := NewSparkle(canvasProps(640, 360), 100, 7)
	for i := 0; i < 200; i++ {
		s.Update(beatFrame(1, 0, 0))
		require.LessOrEqual(t, s.Population().Len(), 100)
	}
	assert.Greater(t, s.Population().Len(), 80)
}

func TestSparkleDecay(t *testing.T) {
	s := NewSparkle(canvasProps(100, 100), 100, 3)
	s.Update(beatFrame(1, 0, 0))
	require.Equal(t, 15, s.Population().Len())

	e := s.Population().Items()[0]
	assert.InDelta(t, 0.985, e.Life, 1e-12)
	assert.GreaterOrEqual(t, e.Size, 2.0)
	assert.LessOrEqual(t, e.Size, 5.0)

	for i := 0; i < 70; i++ {
		s.Update(beatFrame(0, 0, 0))
	}
	assert.Zero(t, s.Population().Len())
}

func TestRippleCulledByRadius(t *testing.T) {
	r := NewRipple(canvasProps(640, 360), 20, 1)
	r.Update(beatFrame(0.5, 0, 0))
	require.Equal(t, 1, r.Population().Len())
	assert.InDelta(t, 100, r.Population().Items()[0].MaxRadius, 1e-12)

	tick := 1
	for r.Population().Len() > 0 && tick < 200 {
		r.Update(beatFrame(0, 0, 0))
		tick++
	}
	assert.Equal(t, 32, tick)
}

func TestRippleCulledByLife(t *testing.T) {
	r := NewRipple(canvasProps(640, 360), 20, 1)
	r.pop.Spawn(Entity{Radius: rippleStartRadius, MaxRadius: 1e9, Life: 1})

	for i := 0; i < 99; i++ {
		r.advance()
	}
	require.Equal(t, 1, r.Population().Len())
	r.advance()
	r.advance()
	assert.Zero(t, r.Population().Len())
}

func TestRippleOnePerTick(t *testing.T) {
	r := NewRipple(canvasProps(640, 360), 3, 1)
	for i := 0; i < 5; i++ {
		r.Update(beatFrame(1, 0, 0))
	}
	assert.Equal(t, 3, r.Population().Len())
}

func TestBurstKinematics(t *testing.T) {
	b := NewBurst(canvasProps(10, 10), 200, 5)
	b.Update(beatFrame(0.5, 1, 0))
	require.Equal(t, 10, b.Population().Len())

	e := b.Population().Items()[0]
	assert.Equal(t, 8.0, e.Size)
	assert.InDelta(t, 0.98, e.Life, 1e-12)
	assert.InDelta(t, 10.0, math.Hypot(e.VX, e.VY-burstGravity), 1e-9, "speed is 2 + onset*8")

	for i := 0; i < 10; i++ {
		b.Update(beatFrame(0, 0, 0))
	}
	assert.Equal(t, 10, b.Population().Len(), "leaving the canvas does not cull")

	for i := 0; i < 60; i++ {
		b.Update(beatFrame(0, 0, 0))
	}
	assert.Zero(t, b.Population().Len())
}

func TestSeededLayersAreReproducible(t *testing.T) {
	a := NewSparkle(canvasProps(320, 240), 100, 42)
	b := NewSparkle(canvasProps(320, 240), 100, 42)
	for i := 0; i < 20; i++ {
		f := beatFrame(float64(i%4)/3, 0, 0)
		a.Update(f)
		b.Update(f)
	}
	assert.Equal(t, a.Population().Items(), b.Population().Items())
}

func TestResetReplaysIdentically(t *testing.T) {
	r := NewRipple(canvasProps(320, 240), 20, 11)
	r.Update(beatFrame(0.9, 0, 0))
	first := append([]Entity(nil), r.Population().Items()...)

	r.Reset()
	r.Update(beatFrame(0.9, 0, 0))
	assert.Equal(t, first, r.Population().Items())
}

func TestEffectLayersDraw(t *testing.T) {
	const seed = 9
	layers := []layer.Layer{
		NewSparkle(canvasProps(120, 80), 100, seed),
		NewRipple(canvasProps(120, 80), 20, seed),
		NewBurst(canvasProps(120, 80), 200, seed),
	}
	for _, l := range layers {
		l.Update(beatFrame(1, 0.5, 0))
		l.Update(beatFrame(1, 0.5, 0))

		img := image.NewRGBA(image.Rect(0, 0, 120, 80))
		c := raster.NewCanvas(img)
		require.NoError(t, l.Draw(c, layer.Frame{}, 255))
		require.NoError(t, c.Err())

		l.Reset()
		assert.Zero(t, l.(interface{ Population() *Population }).Population().Len())
	}
}

func TestGlow(t *testing.T) {
	g := NewGlow()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	require.NoError(t, g.Apply(img, beatFrame(0.1, 0, 0.1)))
	assert.Zero(t, raster.Luminance(img), "weak glow is skipped")

	require.NoError(t, g.Apply(img, beatFrame(1, 0, 1)))
	assert.Greater(t, img.RGBAAt(50, 50).R, uint8(0))
	assert.Zero(t, img.RGBAAt(0, 0).A)
}

func TestMotionBlurTrail(t *testing.T) {
	m := NewMotionBlur()
	frame := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < 8; i++ {
		raster.Fill(frame, color.Gray{Y: uint8(i * 30)})
		m.Capture(frame)
	}
	assert.Equal(t, 5, m.Len())

	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	raster.Fill(dst, color.Black)
	require.NoError(t, m.Apply(dst, layer.Frame{}))
	assert.Greater(t, dst.Pix[0], uint8(0))

	m.Reset()
	assert.Zero(t, m.Len())
}

type failingFrames struct{}

func (failingFrames) FrameAt(float64) (image.Image, error) {
	return nil, errors.New("decoder closed")
}

func TestBackground(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 8, 8))

	bg := NewBackground(BackgroundPulse)
	require.NoError(t, bg.Draw(dst, beatFrame(1, 0, 0)))
	assert.Equal(t, color.RGBA{13, 13, 39, 255}, dst.RGBAAt(3, 3))

	bg = NewBackground(BackgroundGradient)
	require.NoError(t, bg.Draw(dst, layer.Frame{}))
	assert.Equal(t, color.RGBA{10, 10, 30, 255}, dst.RGBAAt(0, 0))

	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	raster.Fill(src, color.White)
	bg.SetImage(src)
	require.NoError(t, bg.Draw(dst, layer.Frame{}))
	assert.Equal(t, BackgroundImage, bg.Type)
	assert.GreaterOrEqual(t, dst.RGBAAt(4, 4).R, uint8(250))

	bg.SetFrames(failingFrames{})
	assert.Error(t, bg.Draw(dst, layer.Frame{}))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, dst.RGBAAt(4, 4))

	bg.Clear()
	require.NoError(t, bg.Draw(dst, layer.Frame{}))
	assert.Equal(t, BackgroundBlack, bg.Type)
}
