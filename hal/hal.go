package hal

import "errors"

var ErrNotImplemented = errors.New("not implemented")

// Context is an opaque saved execution context. It is produced by
// CPU.ContextInit, consumed by CPU.ContextSwitch, and must never be
// inspected by the kernel: its shape is a private matter of the CPU
// implementation.
type Context interface{}

// IRQState captures the interrupt mask at IRQSave time so nested critical
// sections restore the outer state instead of unconditionally unmasking.
type IRQState uint8

// CPU is the architecture contract the kernel is written against: interrupt
// masking, a memory barrier, the periodic timer, and raw context transfer.
//
// Exactly one CPU instance exists per system; the design assumes a single
// physical core.
type CPU interface {
	// IRQDisable masks interrupts. Idempotent.
	IRQDisable()
	// IRQEnable unmasks interrupts and delivers any latched timer ticks.
	IRQEnable()
	// IRQSave masks interrupts and returns the previous mask state.
	IRQSave() IRQState
	// IRQRestore restores a mask state returned by IRQSave.
	IRQRestore(IRQState)

	// Barrier is a full memory barrier.
	Barrier()

	// Idle waits for the next interrupt (low-power instruction on
	// hardware). With interrupts masked it only burns time.
	Idle()

	// TimerStart begins the periodic tick at the given rate and installs
	// the handler. The handler runs in interrupt context: interrupts are
	// masked around it and it must not block.
	TimerStart(hz int, handler func())

	// ContextInit prepares a saved context such that the first switch
	// into it begins executing entry with interrupts enabled. A nil
	// entry yields a capture-only context for the caller's own flow of
	// control (used once, by the scheduler's bootstrap).
	ContextInit(entry func(), stack []byte) Context

	// ContextSwitch suspends the calling flow of control into from and
	// resumes to. It returns only when somebody switches back into from.
	ContextSwitch(from, to Context)
}

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// Display provides access to the framebuffer (if available).
type Display interface {
	Framebuffer() Framebuffer
}

// Time provides a base tick stream for host-side consumers (the monitor).
//
// This is the display timebase, not the kernel timer: the kernel's 1 kHz
// tick is owned by CPU.TimerStart.
type Time interface {
	Ticks() <-chan uint64
}

// HAL is the only contact point between the kernel and the outside world.
type HAL interface {
	CPU() CPU
	Logger() Logger
	Display() Display
	Time() Time
}
