package raster

import (
	"image"
	"sync"
)

// BufferPool recycles transparent scratch buffers by size. Layers of the
// same size share one sync.Pool.
type BufferPool struct {
	mu    sync.Mutex
	pools map[image.Point]*sync.Pool
}

func NewBufferPool() *BufferPool {
	return &BufferPool{pools: make(map[image.Point]*sync.Pool)}
}

func (p *BufferPool) pool(size image.Point) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp, ok := p.pools[size]
	if !ok {
		sp = &sync.Pool{
			New: func() interface{} {
				return image.NewRGBA(image.Rectangle{Max: size})
			},
		}
		p.pools[size] = sp
	}
	return sp
}

// Get returns a cleared buffer with bounds (0,0)-(w,h).
func (p *BufferPool) Get(w, h int) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rectangle{})
	}
	return p.pool(image.Pt(w, h)).Get().(*image.RGBA)
}

// Put clears buf and hands it back for reuse.
func (p *BufferPool) Put(buf *image.RGBA) {
	size := buf.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 || buf.Bounds().Min != (image.Point{}) {
		return
	}
	clear(buf.Pix)
	p.pool(size).Put(buf)
}
