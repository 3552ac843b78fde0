package viz

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/beatsim/internal/engine"
	"github.com/san-kum/beatsim/internal/scene"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 240
	seekStep        = 5.0
	litThreshold    = 24
)

type TickMsg time.Time

// Model previews a driver in the terminal. The driver is ticked from
// Update, so the program goroutine is the only one touching the scene.
type Model struct {
	driver   *engine.Driver
	name     string
	duration float64
	canvas   *Canvas
	theme    Theme
	st       styles
	running  bool
	colored  bool
	showHelp bool
	beats    []float64
	lastErr  error
	status   string
}

// NewModel previews d. A non-positive duration loops forever.
func NewModel(d *engine.Driver, name string, duration float64) Model {
	theme := Themes[0]
	return Model{
		driver:   d,
		name:     name,
		duration: duration,
		canvas:   NewCanvas(width, height),
		theme:    theme,
		st:       newStyles(theme),
		running:  true,
		colored:  true,
		beats:    make([]float64, 0, historyCapacity),
	}
}

func (m Model) tick() tea.Cmd {
	period := time.Duration(m.driver.Dt() * float64(time.Second))
	return tea.Tick(period, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles keys and advances the driver on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.driver.Seek(0)
			m.beats = m.beats[:0]
			m.status = "seek 0.0s"
		case "[":
			m.seekBy(-seekStep)
		case "]":
			m.seekBy(seekStep)
		case "tab":
			m.selectNext()
		case "e":
			m.toggleSelected()
		case "c":
			m.colored = !m.colored
		case "t":
			m.theme = NextTheme(m.theme)
			m.st = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		default:
			if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
				m.toggle(int(key[0] - '1'))
			}
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	if m.duration > 0 && m.driver.Time() >= m.duration-1e-9 {
		m.driver.Seek(0)
		m.beats = m.beats[:0]
	}
	if err := m.driver.Tick(); err != nil {
		m.lastErr = err
		m.running = false
		return
	}
	s := m.driver.LastStats()
	if len(m.beats) == historyCapacity {
		copy(m.beats, m.beats[1:])
		m.beats = m.beats[:historyCapacity-1]
	}
	m.beats = append(m.beats, s.Beat)
	m.canvas.Blit(m.driver.Frame(), litThreshold)
}

func (m *Model) seekBy(dt float64) {
	t := max(0, m.driver.Time()+dt)
	m.driver.Seek(t)
	m.status = fmt.Sprintf("seek %.1fs (%s)", t, m.driver.Policy())
}

func (m *Model) selectNext() {
	m.driver.Enqueue(func(s *scene.Scene) error {
		n := len(s.Layers())
		if n == 0 {
			return nil
		}
		return s.Select((s.SelectedIndex() + 1) % n)
	})
}

func (m *Model) toggleSelected() {
	m.driver.Enqueue(func(s *scene.Scene) error {
		l := s.Selected()
		if l == nil {
			return nil
		}
		return s.SetEnabled(l.Props().Name, !l.Props().Enabled)
	})
}

// toggle flips the i-th ambient effect or overlay, in draw order.
func (m *Model) toggle(i int) {
	m.driver.Enqueue(func(s *scene.Scene) error {
		names := toggleNames(s)
		if i >= len(names) {
			return nil
		}
		on, err := s.Enabled(names[i])
		if err != nil {
			return err
		}
		return s.SetEnabled(names[i], !on)
	})
}

func toggleNames(s *scene.Scene) []string {
	return s.Names()[len(s.Layers()):]
}

// Canvas returns the braille canvas holding the last frame.
func (m Model) Canvas() *Canvas { return m.canvas }

func (m Model) Running() bool { return m.running }

func (m Model) Err() error { return m.lastErr }

// View renders the frame next to a stats panel.
func (m Model) View() string {
	frame := m.canvas.String()
	if m.colored {
		frame = m.canvas.Render()
	}
	canvasView := lipgloss.NewStyle().Padding(1, 2).Render(frame)

	st := m.st
	stats := m.driver.LastStats()
	sc := m.driver.Scene()

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.name)) + "\n")

	status := "PLAYING"
	if !m.running {
		status = "PAUSED"
	}
	if m.lastErr != nil {
		status = st.warn.Render("STOPPED: " + m.lastErr.Error())
	}
	s.WriteString(status + "\n")
	if m.duration > 0 {
		s.WriteString(ProgressBar(m.driver.Time()/m.duration, 30) + "\n")
	}
	s.WriteString("\n")

	if len(m.beats) > 1 {
		chart := asciigraph.Plot(m.beats, asciigraph.Height(4), asciigraph.Width(30),
			asciigraph.LowerBound(0), asciigraph.UpperBound(1), asciigraph.Caption("Beat"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", stats.Time))
	row("Frame", fmt.Sprintf("%d", stats.Index))
	row("RMS", fmt.Sprintf("%.2f", stats.RMS))
	row("Hue", fmt.Sprintf("%.0f°", stats.Hue))

	pops := make([]string, 0, len(stats.Populations))
	for name := range stats.Populations {
		pops = append(pops, name)
	}
	sort.Strings(pops)
	for _, name := range pops {
		row(name, fmt.Sprintf("%d", stats.Populations[name]))
	}
	if n := len(stats.Errors); n > 0 {
		s.WriteString(st.warn.Render(fmt.Sprintf("%d layer failures", n)) + "\n")
	}

	s.WriteString("\nLAYERS\n")
	for i, l := range sc.Layers() {
		p := l.Props()
		line := fmt.Sprintf("%-12s %s", p.Name, onOff(p.Enabled))
		if i == sc.SelectedIndex() {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.muted.Render(line) + "\n")
		}
	}
	s.WriteString("\nTOGGLES\n")
	for i, name := range toggleNames(sc) {
		on, _ := sc.Enabled(name)
		s.WriteString(st.muted.Render(fmt.Sprintf("  %d %-10s %s", i+1, name, onOff(on))) + "\n")
	}
	if m.status != "" {
		s.WriteString("\n" + st.muted.Render(m.status) + "\n")
	}
	s.WriteString(st.muted.Render("\n──────────────────────\nSP:Pause R:Restart Q:Quit\n[ ]:Seek TAB:Select E:Enable\n1-9:Toggle T:Theme ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.panel.Render(s.String()))
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  R        - Seek to the start        ║
║  [ / ]    - Seek -5s / +5s           ║
║  Tab      - Select next layer        ║
║  E        - Enable/disable layer     ║
║  1-9      - Toggle effect/overlay    ║
║  C        - Toggle colour            ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
` + "\n\n" + mainView
	}
	return mainView
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
