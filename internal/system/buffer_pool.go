package system

import (
	"image"
)

// GrayPool recycles *image.Gray scratch buffers keyed by rectangle so that
// repeated pipeline calls on one handle do not reallocate binarization and
// mask buffers.
//
// A GrayPool belongs to a single engine handle and is not safe for concurrent
// use; handles are never shared between goroutines without external
// serialization.
type GrayPool struct {
	free  map[image.Rectangle][]*image.Gray
	limit int
}

// maxSizes bounds how many distinct rectangles are tracked; inputs of
// ever-changing size reset the pool instead of growing it.
const maxSizes = 8

// NewGrayPool creates a pool keeping at most limit idle buffers per size.
func NewGrayPool(limit int) *GrayPool {
	if limit <= 0 {
		limit = 4
	}
	return &GrayPool{
		free:  make(map[image.Rectangle][]*image.Gray),
		limit: limit,
	}
}

// Get returns a zeroed buffer covering rect.
func (p *GrayPool) Get(rect image.Rectangle) *image.Gray {
	list := p.free[rect]
	if n := len(list); n > 0 {
		img := list[n-1]
		p.free[rect] = list[:n-1]
		clear(img.Pix)
		return img
	}
	return image.NewGray(rect)
}

// Put hands a buffer back for reuse.
func (p *GrayPool) Put(img *image.Gray) {
	if img == nil || p.free == nil {
		return
	}
	key := img.Rect
	list, known := p.free[key]
	if !known && len(p.free) >= maxSizes {
		clear(p.free)
	}
	if len(list) >= p.limit {
		return
	}
	p.free[key] = append(p.free[key], img)
}

// Idle reports the number of buffers currently held.
func (p *GrayPool) Idle() int {
	n := 0
	for _, list := range p.free {
		n += len(list)
	}
	return n
}

// Release drops every held buffer. The pool is unusable afterwards.
func (p *GrayPool) Release() {
	p.free = nil
}
