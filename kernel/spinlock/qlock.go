package spinlock

import (
	"runtime"
	"sync/atomic"
)

// Qlock is the fair ticket lock: acquirers draw consecutive tickets and are
// served in strict FIFO order, so waiting is starvation-free at the cost of
// one extra word of state.
type Qlock struct {
	next    atomic.Uint32
	serving atomic.Uint32
}

// Init resets the lock to the unlocked state.
func (l *Qlock) Init() {
	l.next.Store(0)
	l.serving.Store(0)
}

// TryLock acquires the lock only if nobody holds it and nobody is queued.
func (l *Qlock) TryLock() bool {
	t := l.serving.Load()
	return l.next.CompareAndSwap(t, t+1)
}

// Lock draws a ticket and spins until it is being served.
func (l *Qlock) Lock() {
	my := l.next.Add(1) - 1
	for l.serving.Load() != my {
		runtime.Gosched()
	}
}

// Unlock serves the next ticket.
func (l *Qlock) Unlock() {
	l.serving.Add(1)
}
