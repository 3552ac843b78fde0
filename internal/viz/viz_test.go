package viz

import (
	"image"
	"image/color"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/beatsim/internal/effects"
	"github.com/san-kum/beatsim/internal/engine"
	"github.com/san-kum/beatsim/internal/features"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/logger"
	"github.com/san-kum/beatsim/internal/raster"
	"github.com/san-kum/beatsim/internal/scene"
	"github.com/san-kum/beatsim/internal/visual"
)

func TestCanvasSetAndString(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	assert.Equal(t, "⠁⢀\n", c.String())
	assert.Equal(t, 2, c.Lit())

	c.Clear()
	assert.Equal(t, "⠀⠀\n", c.String())
}

func TestCanvasBlit(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	raster.Fill(img, color.Black)
	half := img.SubImage(image.Rect(0, 0, 20, 40)).(*image.RGBA)
	raster.Fill(half, color.NRGBA{R: 255, A: 255})

	c := NewCanvas(4, 2)
	c.Blit(img, 24)
	assert.Equal(t, 32, c.Lit(), "left half of 8x8 sub-pixels is lit")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, c.colors[0])
	assert.Equal(t, color.RGBA{}, c.colors[3])
	assert.Contains(t, c.Render(), "⣿")
}

func TestSparklineAndProgress(t *testing.T) {
	assert.Equal(t, "▁█", Sparkline([]float64{0, 1}, 10))
	assert.Equal(t, "█", Sparkline([]float64{0, 1}, 1))
	assert.Equal(t, "███░", ProgressBar(0.75, 4))
	assert.Equal(t, "████", ProgressBar(2, 4))
}

func TestThemes(t *testing.T) {
	assert.Equal(t, "retro", GetTheme("retro").Name)
	assert.Equal(t, Themes[0].Name, GetTheme("nope").Name)
	assert.Equal(t, Themes[0].Name, NextTheme(Themes[len(Themes)-1]).Name)
	assert.Len(t, ThemeNames(), len(Themes))
}

func newModel(t *testing.T) Model {
	t.Helper()
	sc, err := scene.New(64, 48, scene.WithLogger(logger.NewTestLogger()))
	require.NoError(t, err)
	require.NoError(t, sc.Add(visual.NewBars(layer.DefaultProps("bars", 64, 48))))
	require.NoError(t, sc.Add(visual.NewOrbs(layer.DefaultProps("orbs", 64, 48))))
	require.NoError(t, sc.AddAmbient(effects.NewGlow()))
	require.NoError(t, sc.AddOverlay(effects.NewSparkle(layer.DefaultProps("sparkles", 64, 48), 50, 1)))

	d, err := engine.New(sc, features.NewSynth(features.DefaultSynthConfig()), engine.DefaultConfig(),
		engine.WithLogger(logger.NewTestLogger()))
	require.NoError(t, err)
	return NewModel(d, "test", 1)
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func key(s string) tea.Msg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelTicksDriver(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 3; i++ {
		m = send(m, TickMsg{})
	}
	assert.Equal(t, 3, m.driver.Index())
	assert.Len(t, m.beats, 3)

	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	assert.False(t, m.Running())
	m = send(m, TickMsg{})
	assert.Equal(t, 3, m.driver.Index(), "paused preview does not tick")

	view := m.View()
	assert.Contains(t, view, "TEST")
	assert.Contains(t, view, "PAUSED")
	assert.Contains(t, view, "bars")
	assert.Contains(t, view, "sparkles")
}

func TestModelLoopsAtDuration(t *testing.T) {
	m := newModel(t)
	for i := 0; i < 31; i++ {
		m = send(m, TickMsg{})
	}
	assert.Equal(t, 1, m.driver.Index(), "wrapped back to the start after one second")
}

func TestModelEditsGoThroughQueue(t *testing.T) {
	m := newModel(t)
	sc := m.driver.Scene()

	m = send(m, tea.KeyMsg{Type: tea.KeyTab})
	m = send(m, key("e"))
	m = send(m, key("1"))
	m = send(m, key("2"))
	on, err := sc.Enabled("bars")
	require.NoError(t, err)
	assert.True(t, on, "nothing applied before the next tick")

	m = send(m, TickMsg{})
	on, _ = sc.Enabled("bars")
	assert.False(t, on)
	on, _ = sc.Enabled("glow")
	assert.False(t, on)
	on, _ = sc.Enabled("sparkles")
	assert.False(t, on)
	assert.Contains(t, m.View(), "> bars")
}

func TestModelSeek(t *testing.T) {
	m := newModel(t)
	m = send(m, key("]"))
	m = send(m, TickMsg{})
	assert.Equal(t, 151, m.driver.Index())
	assert.True(t, strings.Contains(m.status, "seek 5.0s"))

	m = send(m, key("r"))
	m = send(m, TickMsg{})
	assert.Equal(t, 1, m.driver.Index())
}

func TestModelQuit(t *testing.T) {
	m := newModel(t)
	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
