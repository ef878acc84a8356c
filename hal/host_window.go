//go:build !tinygo && cgo

package hal

import (
	"nucleus/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

const windowScale = 2

// RunWindow opens a desktop window mirroring the framebuffer and blocks
// until the window closes.
func RunWindow(newApp func(HAL) func() error) error {
	h := New().(*hostHAL)
	g := &hostGame{h: h, step: newApp(h)}

	ebiten.SetWindowTitle("nucleus (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.w*windowScale, h.fb.h*windowScale)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h    *hostHAL
	step func() error

	img    *ebiten.Image
	raw565 []byte
	rgba   []byte
}

func (g *hostGame) Update() error {
	g.h.time.step()
	if g.step != nil {
		return g.step()
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil {
		g.img = ebiten.NewImage(fb.w, fb.h)
		g.raw565 = make([]byte, len(fb.buf))
		g.rgba = make([]byte, fb.w*fb.h*4)
	}

	fb.snapshotRGB565(g.raw565)
	for px := 0; px < fb.w*fb.h; px++ {
		p := uint16(g.raw565[px*2]) | uint16(g.raw565[px*2+1])<<8
		r := uint8(p >> 11)
		gr := uint8(p >> 5 & 0x3F)
		b := uint8(p & 0x1F)

		// 5/6-bit channels widened by bit replication.
		o := px * 4
		g.rgba[o+0] = r<<3 | r>>2
		g.rgba[o+1] = gr<<2 | gr>>4
		g.rgba[o+2] = b<<3 | b>>2
		g.rgba[o+3] = 0xFF
	}
	g.img.WritePixels(g.rgba)
	screen.DrawImage(g.img, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.w, g.h.fb.h
}
