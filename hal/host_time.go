//go:build !tinygo

package hal

// hostTime is the display timebase, stepped by the window or headless run
// loop. The channel drops ticks for consumers that fall behind; the
// sequence number still advances, so a slow consumer sees gaps rather
// than stale time.
type hostTime struct {
	seq uint64
	ch  chan uint64
}

func newHostTime() *hostTime {
	return &hostTime{ch: make(chan uint64, 256)}
}

func (t *hostTime) Ticks() <-chan uint64 { return t.ch }

func (t *hostTime) step() {
	t.seq++
	select {
	case t.ch <- t.seq:
	default:
	}
}
