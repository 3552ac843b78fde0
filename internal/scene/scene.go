// Package scene holds the composition stack and the session state around
// it, and composes a frame from background, layers, ambient effects and
// overlays.
package scene

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/san-kum/beatsim/internal/effects"
	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

type ambientSlot struct {
	effect  effects.Ambient
	enabled bool
}

// Scene owns every layer it holds. It is not safe for concurrent use; the
// engine drives it from a single goroutine.
type Scene struct {
	Width, Height int
	Background    *effects.Background

	stack    []layer.Layer
	overlays []layer.Layer
	ambient  []ambientSlot
	selected int

	pool   *raster.BufferPool
	canvas *raster.Canvas
	log    *slog.Logger
}

type Option func(*Scene)

func WithLogger(l *slog.Logger) Option {
	return func(s *Scene) { s.log = l }
}

func WithBackground(bg *effects.Background) Option {
	return func(s *Scene) { s.Background = bg }
}

func New(width, height int, opts ...Option) (*Scene, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w (%dx%d)", ErrEmptyCanvas, width, height)
	}
	s := &Scene{
		Width:      width,
		Height:     height,
		Background: effects.NewBackground(effects.BackgroundBlack),
		selected:   -1,
		pool:       raster.NewBufferPool(),
		canvas:     raster.NewCanvas(image.NewRGBA(image.Rectangle{})),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Scene) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// NewFrame allocates a frame buffer of the scene size.
func (s *Scene) NewFrame() *image.RGBA {
	return image.NewRGBA(s.Bounds())
}

// Add appends l to the top of the stack after validating its props.
func (s *Scene) Add(l layer.Layer) error {
	if err := s.admit(l); err != nil {
		return err
	}
	s.stack = append(s.stack, l)
	return nil
}

// AddOverlay registers an animated layer drawn above the ambient effects.
func (s *Scene) AddOverlay(l layer.Layer) error {
	if err := s.admit(l); err != nil {
		return err
	}
	s.overlays = append(s.overlays, l)
	return nil
}

func (s *Scene) AddAmbient(a effects.Ambient) error {
	if s.nameTaken(a.Name()) {
		return fmt.Errorf("%w: %s", ErrDuplicate, a.Name())
	}
	s.ambient = append(s.ambient, ambientSlot{effect: a, enabled: true})
	return nil
}

func (s *Scene) admit(l layer.Layer) error {
	p := l.Props()
	if err := p.Validate(); err != nil {
		return err
	}
	if p.Name != "" && s.nameTaken(p.Name) {
		return fmt.Errorf("%w: %s", ErrDuplicate, p.Name)
	}
	return nil
}

func (s *Scene) nameTaken(name string) bool {
	_, _, ok := s.lookup(name)
	return ok
}

// Remove deletes the stack layer at i, keeping the selection in range.
func (s *Scene) Remove(i int) error {
	if i < 0 || i >= len(s.stack) {
		return fmt.Errorf("%w: %d", ErrIndex, i)
	}
	s.stack = append(s.stack[:i], s.stack[i+1:]...)
	if i < s.selected {
		s.selected--
	} else if s.selected >= len(s.stack) {
		s.selected = len(s.stack) - 1
	}
	return nil
}

// Move changes the draw order by moving the layer at from to index to.
func (s *Scene) Move(from, to int) error {
	n := len(s.stack)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: %d -> %d", ErrIndex, from, to)
	}
	l := s.stack[from]
	s.stack = append(s.stack[:from], s.stack[from+1:]...)
	s.stack = append(s.stack[:to], append([]layer.Layer{l}, s.stack[to:]...)...)
	return nil
}

func (s *Scene) Layers() []layer.Layer { return s.stack }

func (s *Scene) Overlays() []layer.Layer { return s.overlays }

func (s *Scene) Layer(i int) (layer.Layer, error) {
	if i < 0 || i >= len(s.stack) {
		return nil, fmt.Errorf("%w: %d", ErrIndex, i)
	}
	return s.stack[i], nil
}

func (s *Scene) Select(i int) error {
	if i < 0 || i >= len(s.stack) {
		return fmt.Errorf("%w: %d", ErrIndex, i)
	}
	s.selected = i
	return nil
}

// Selected returns the selected stack layer, or nil.
func (s *Scene) Selected() layer.Layer {
	if s.selected < 0 || s.selected >= len(s.stack) {
		return nil
	}
	return s.stack[s.selected]
}

func (s *Scene) SelectedIndex() int { return s.selected }

// Configure edits a copy of the props of stack layer i and applies it only
// when it validates, so a bad edit never reaches the render loop.
func (s *Scene) Configure(i int, edit func(*layer.Props)) error {
	l, err := s.Layer(i)
	if err != nil {
		return err
	}
	return configure(l, edit)
}

// ConfigureNamed is Configure for any stack layer or overlay by name.
func (s *Scene) ConfigureNamed(name string, edit func(*layer.Props)) error {
	l, _, ok := s.lookup(name)
	if !ok || l == nil {
		return fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	return configure(l, edit)
}

func configure(l layer.Layer, edit func(*layer.Props)) error {
	p := l.Props()
	edit(&p)
	if err := p.Validate(); err != nil {
		return err
	}
	l.SetProps(p)
	return nil
}

// SetEnabled toggles a layer, overlay or ambient effect by name. Disabled
// entries are paused: neither updated nor drawn.
func (s *Scene) SetEnabled(name string, on bool) error {
	l, slot, ok := s.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	if slot != nil {
		slot.enabled = on
		return nil
	}
	p := l.Props()
	p.Enabled = on
	l.SetProps(p)
	return nil
}

// SetKindEnabled toggles every layer and overlay of a kind and returns how
// many were touched.
func (s *Scene) SetKindEnabled(kind layer.Kind, on bool) int {
	n := 0
	for _, l := range s.all() {
		if l.Kind() == kind {
			p := l.Props()
			p.Enabled = on
			l.SetProps(p)
			n++
		}
	}
	return n
}

// Enabled reports the toggle state of a named entry.
func (s *Scene) Enabled(name string) (bool, error) {
	l, slot, ok := s.lookup(name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownName, name)
	}
	if slot != nil {
		return slot.enabled, nil
	}
	return l.Props().Enabled, nil
}

// Names lists stack layers, ambient effects and overlays in draw order.
func (s *Scene) Names() []string {
	var names []string
	for _, l := range s.stack {
		names = append(names, l.Props().Name)
	}
	for _, a := range s.ambient {
		names = append(names, a.effect.Name())
	}
	for _, l := range s.overlays {
		names = append(names, l.Props().Name)
	}
	return names
}

func (s *Scene) lookup(name string) (layer.Layer, *ambientSlot, bool) {
	for _, l := range s.all() {
		if l.Props().Name == name {
			return l, nil, true
		}
	}
	for i := range s.ambient {
		if s.ambient[i].effect.Name() == name {
			return nil, &s.ambient[i], true
		}
	}
	return nil, nil, false
}

func (s *Scene) all() []layer.Layer {
	out := make([]layer.Layer, 0, len(s.stack)+len(s.overlays))
	out = append(out, s.stack...)
	return append(out, s.overlays...)
}

// Populations reports the entity count of every animated layer by name.
func (s *Scene) Populations() map[string]int {
	out := make(map[string]int)
	for _, l := range s.all() {
		if a, ok := l.(interface{ Population() *effects.Population }); ok {
			out[l.Props().Name] = a.Population().Len()
		}
	}
	return out
}

// Reset returns every layer and ambient effect to its initial state.
func (s *Scene) Reset() {
	for _, l := range s.all() {
		l.Reset()
	}
	for _, a := range s.ambient {
		a.effect.Reset()
	}
}
