package scene

import (
	"fmt"
	"image"

	"github.com/san-kum/beatsim/internal/layer"
	"github.com/san-kum/beatsim/internal/raster"
)

// Update advances every enabled layer, ambient effect and overlay by one
// tick. Visibility does not matter here; a faded-out layer keeps simulating.
func (s *Scene) Update(f layer.Frame) {
	for _, l := range s.stack {
		if l.Props().Enabled {
			l.Update(f)
		}
	}
	for _, a := range s.ambient {
		if a.enabled {
			a.effect.Update(f)
		}
	}
	for _, l := range s.overlays {
		if l.Props().Enabled {
			l.Update(f)
		}
	}
}

// Compose draws frame f into dst: background, stack, ambient effects, then
// overlays. Failures are isolated per layer and returned; the frame is
// always completed. Compose does not change simulation state.
func (s *Scene) Compose(dst *image.RGBA, f layer.Frame) []error {
	var errs []error
	report := func(name string, err error) {
		le := &LayerError{Frame: f.Index, Name: name, Err: err}
		s.log.Warn("layer failed", "frame", f.Index, "layer", name, "error", err)
		errs = append(errs, le)
	}

	if err := s.Background.Draw(dst, f); err != nil {
		report("background", err)
	}

	for _, l := range s.stack {
		if err := s.drawLayer(dst, l, f); err != nil {
			report(l.Props().Name, err)
		}
	}

	for _, a := range s.ambient {
		if !a.enabled {
			continue
		}
		err := guard(func() error { return a.effect.Apply(dst, f) })
		if err != nil {
			report(a.effect.Name(), err)
		}
	}

	for _, l := range s.overlays {
		if err := s.drawLayer(dst, l, f); err != nil {
			report(l.Props().Name, err)
		}
	}

	return errs
}

// drawLayer renders l into a scratch buffer of its own size and composites
// it at the layer offset. A failed draw discards the buffer.
func (s *Scene) drawLayer(dst *image.RGBA, l layer.Layer, f layer.Frame) error {
	p := l.Props()
	if !p.Enabled || !p.Window.Contains(f.Time) {
		return nil
	}
	opacity := p.Window.Opacity(p.Alpha, f.Time)
	if opacity == 0 {
		return nil
	}

	buf := s.pool.Get(p.W, p.H)
	defer s.pool.Put(buf)

	s.canvas.Reset(buf)
	err := guard(func() error { return l.Draw(s.canvas, f, opacity) })
	if err == nil {
		err = s.canvas.Err()
	}
	if err != nil {
		return err
	}

	raster.Composite(dst, buf, image.Pt(p.X, p.Y))
	return nil
}

// Capture hands a finished frame to effects that keep frame history.
func (s *Scene) Capture(frame *image.RGBA) {
	for _, a := range s.ambient {
		if c, ok := a.effect.(interface{ Capture(*image.RGBA) }); ok && a.enabled {
			c.Capture(frame)
		}
	}
}

func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLayerPanic, r)
		}
	}()
	return fn()
}
