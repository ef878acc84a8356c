package monitor

import (
	"image/color"
	"testing"

	"nucleus/hal"
)

type memFB struct {
	w, h int
	buf  []byte
}

func newMemFB(w, h int) *memFB {
	return &memFB{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *memFB) Width() int              { return f.w }
func (f *memFB) Height() int             { return f.h }
func (f *memFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *memFB) StrideBytes() int        { return f.w * 2 }
func (f *memFB) Buffer() []byte          { return f.buf }
func (f *memFB) ClearRGB(r, g, b uint8)  {}
func (f *memFB) Present() error          { return nil }

func TestSetPixelRGB565(t *testing.T) {
	fb := newMemFB(4, 4)
	d := newFBDisplay(fb)

	d.SetPixel(1, 2, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})

	off := 2*fb.StrideBytes() + 1*2
	if fb.buf[off] != 0xFF || fb.buf[off+1] != 0xFF {
		t.Fatalf("white pixel bytes = %#x %#x, want 0xff 0xff", fb.buf[off], fb.buf[off+1])
	}

	// Out-of-bounds writes are dropped.
	d.SetPixel(-1, 0, color.RGBA{R: 0xFF})
	d.SetPixel(4, 0, color.RGBA{R: 0xFF})
	d.SetPixel(0, 4, color.RGBA{R: 0xFF})
	if fb.buf[0] != 0 || fb.buf[1] != 0 {
		t.Fatalf("out-of-bounds SetPixel touched the buffer")
	}
}

func TestFillRectangleClamps(t *testing.T) {
	fb := newMemFB(4, 4)
	d := newFBDisplay(fb)

	if err := d.FillRectangle(-2, -2, 10, 10, color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF}); err != nil {
		t.Fatalf("FillRectangle: %v", err)
	}
	for i, b := range fb.buf {
		if b != 0xFF {
			t.Fatalf("buf[%d] = %#x, want 0xff after full fill", i, b)
		}
	}
}

func TestSizeNilSafe(t *testing.T) {
	d := newFBDisplay(nil)
	if x, y := d.Size(); x != 0 || y != 0 {
		t.Fatalf("Size() = %d,%d for nil framebuffer, want 0,0", x, y)
	}
	d.SetPixel(0, 0, color.RGBA{})
	if err := d.Display(); err != nil {
		t.Fatalf("Display() = %v for nil framebuffer, want nil", err)
	}
}
