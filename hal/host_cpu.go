//go:build !tinygo

package hal

import (
	"runtime"
	"sync/atomic"
	"time"
)

// hostContext is a saved execution context on the host: a goroutine parked
// on its resume channel. The first switch into the context starts the
// goroutine at its entry function; later switches unpark it.
type hostContext struct {
	entry   func()
	resume  chan struct{}
	started bool
}

func (c *hostContext) run() {
	if !c.started {
		c.started = true
		if c.entry != nil {
			go c.entry()
		}
		return
	}
	select {
	case c.resume <- struct{}{}:
	default:
	}
}

func (c *hostContext) park() {
	<-c.resume
}

// hostCPU models the single core. Interrupt masking is a flag, not a mutex:
// only the one running task goroutine touches kernel state, so masking only
// has to defer tick delivery. The timer goroutine never runs the handler
// itself; it latches ticks into pending, and they are delivered on the
// running goroutine when interrupts are unmasked - the same moment a real
// core takes a latched IRQ.
type hostCPU struct {
	irqOn   atomic.Bool
	pending atomic.Uint32
	handler func()
	started atomic.Bool
}

// NewCPU returns the host CPU implementation.
func NewCPU() CPU {
	return &hostCPU{}
}

func (c *hostCPU) IRQDisable() {
	c.irqOn.Store(false)
}

func (c *hostCPU) IRQEnable() {
	c.irqOn.Store(true)
	c.deliver()
}

func (c *hostCPU) IRQSave() IRQState {
	var st IRQState
	if c.irqOn.Load() {
		st = 1
	}
	c.irqOn.Store(false)
	return st
}

func (c *hostCPU) IRQRestore(st IRQState) {
	if st != 0 {
		c.IRQEnable()
	}
}

func (c *hostCPU) Barrier() {
	// Every sync/atomic operation is a full barrier on the host; a
	// dedicated no-op keeps the call sites aligned with the contract.
}

func (c *hostCPU) Idle() {
	if c.pending.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	if c.irqOn.Load() {
		c.deliver()
	} else {
		runtime.Gosched()
	}
}

func (c *hostCPU) TimerStart(hz int, handler func()) {
	if hz <= 0 || handler == nil {
		return
	}
	c.handler = handler
	if !c.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		t := time.NewTicker(time.Second / time.Duration(hz))
		defer t.Stop()
		for range t.C {
			c.pending.Add(1)
		}
	}()
}

// deliver runs the tick handler once per latched tick, with interrupts
// masked for the duration of each handler run. The handler may context
// switch away; the loop then continues when this goroutine is switched
// back into.
func (c *hostCPU) deliver() {
	h := c.handler
	if h == nil {
		return
	}
	for c.irqOn.Load() && c.pending.Load() > 0 {
		c.pending.Add(^uint32(0))
		c.irqOn.Store(false)
		h()
		c.irqOn.Store(true)
	}
}

func (c *hostCPU) ContextInit(entry func(), stack []byte) Context {
	_ = stack // host contexts live on goroutine stacks
	ctx := &hostContext{resume: make(chan struct{}, 1)}
	if entry == nil {
		// Capture-only context for the caller's own flow of control:
		// there is no goroutine to start, switches into it unpark it.
		ctx.started = true
		return ctx
	}
	ctx.entry = func() {
		c.IRQEnable()
		entry()
		// A task entry must not return (Exit never does). If one does
		// anyway, keep the context parkable instead of wedging whoever
		// switches into it.
		for {
			<-ctx.resume
		}
	}
	return ctx
}

func (c *hostCPU) ContextSwitch(from, to Context) {
	f, _ := from.(*hostContext)
	t, _ := to.(*hostContext)
	if t != nil {
		t.run()
	}
	if f != nil {
		f.park()
	}
}
