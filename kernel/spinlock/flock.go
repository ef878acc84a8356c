// Package spinlock implements the kernel's spinlock hierarchy: a fast
// test-and-set lock, a strictly fair ticket lock, a composable smart lock
// with optional lattice fairness and dependency tracking, and a composite
// lock layered over the global Big Kernel Lock.
//
// All locks are fixed-size, allocation-free, and usable with interrupts
// enabled: they never touch the scheduler's tables. A holder must not
// block or yield while holding a lock - waiters only make progress while
// the holder runs.
package spinlock

import (
	"runtime"
	"sync/atomic"
)

// Flock is the fast test-and-set lock: one word, zero value unlocked, no
// fairness. Under contention any waiter may win.
type Flock struct {
	flag atomic.Uint32
}

// Init resets the lock to the unlocked state.
func (l *Flock) Init() {
	l.flag.Store(0)
}

// TryLock performs a single test-and-set and reports whether it acquired
// the lock.
func (l *Flock) TryLock() bool {
	return l.flag.CompareAndSwap(0, 1)
}

// Lock spins until the lock is acquired.
func (l *Flock) Lock() {
	for !l.TryLock() {
		runtime.Gosched()
	}
}

// Unlock releases the lock. The atomic store is the release barrier.
func (l *Flock) Unlock() {
	l.flag.Store(0)
}
