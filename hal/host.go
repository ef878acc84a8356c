//go:build !tinygo

package hal

import (
	"fmt"
	"io"
	"os"
	"sync"
)

const fbWidth, fbHeight = 320, 320

type hostHAL struct {
	cpu  CPU
	log  *lineLogger
	fb   *hostFramebuffer
	time *hostTime
}

// New returns the host HAL: emulated CPU, stdout logger, in-memory
// framebuffer, and the display timebase.
func New() HAL {
	return &hostHAL{
		cpu:  NewCPU(),
		log:  &lineLogger{w: os.Stdout},
		fb:   newHostFramebuffer(fbWidth, fbHeight),
		time: newHostTime(),
	}
}

func (h *hostHAL) CPU() CPU         { return h.cpu }
func (h *hostHAL) Logger() Logger   { return h.log }
func (h *hostHAL) Display() Display { return hostDisplay{h.fb} }
func (h *hostHAL) Time() Time       { return h.time }

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

// lineLogger serializes whole lines so task logs do not interleave
// mid-line.
type lineLogger struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lineLogger) WriteLineString(s string) {
	l.mu.Lock()
	fmt.Fprintln(l.w, s)
	l.mu.Unlock()
}

func (l *lineLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	l.w.Write(b)
	io.WriteString(l.w, "\n")
	l.mu.Unlock()
}
