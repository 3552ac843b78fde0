package export

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/san-kum/beatsim/internal/engine"
)

// PNGSequence writes every frame as dir/frame_000000.png.
type PNGSequence struct {
	dir     string
	enc     png.Encoder
	written int
}

func NewPNGSequence(dir string) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("export: create frame dir: %w", err)
	}
	return &PNGSequence{dir: dir, enc: png.Encoder{CompressionLevel: png.BestSpeed}}, nil
}

func FrameName(index int) string {
	return fmt.Sprintf("frame_%06d.png", index)
}

func (p *PNGSequence) Consume(frame *image.RGBA, index int) error {
	path := filepath.Join(p.dir, FrameName(index))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := p.enc.Encode(w, frame); err != nil {
		f.Close()
		return fmt.Errorf("export: encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	p.written++
	return nil
}

func (p *PNGSequence) Written() int { return p.written }

func (p *PNGSequence) Dir() string { return p.dir }

// Multi fans every frame out to all sinks, stopping at the first error.
func Multi(sinks ...engine.Sink) engine.Sink {
	return engine.SinkFunc(func(frame *image.RGBA, index int) error {
		for _, s := range sinks {
			if s == nil {
				continue
			}
			if err := s.Consume(frame, index); err != nil {
				return err
			}
		}
		return nil
	})
}
