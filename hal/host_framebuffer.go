//go:build !tinygo

package hal

import "sync"

// hostFramebuffer is an in-memory RGB565 surface. The mutex only guards
// whole-buffer operations (clear, snapshot); per-pixel writers go through
// Buffer and are expected to be the single drawing goroutine.
type hostFramebuffer struct {
	mu  sync.Mutex
	w   int
	h   int
	buf []byte
}

func newHostFramebuffer(w, h int) *hostFramebuffer {
	return &hostFramebuffer{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *hostFramebuffer) Width() int          { return f.w }
func (f *hostFramebuffer) Height() int         { return f.h }
func (f *hostFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *hostFramebuffer) StrideBytes() int    { return f.w * 2 }
func (f *hostFramebuffer) Buffer() []byte      { return f.buf }
func (f *hostFramebuffer) Present() error      { return nil }

func (f *hostFramebuffer) ClearRGB(r, g, b uint8) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := packRGB565(r, g, b)
	lo, hi := byte(p), byte(p>>8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i], f.buf[i+1] = lo, hi
	}
}

// snapshotRGB565 copies the surface for a presenter running on another
// goroutine.
func (f *hostFramebuffer) snapshotRGB565(dst []byte) {
	f.mu.Lock()
	copy(dst, f.buf)
	f.mu.Unlock()
}

func packRGB565(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}
