package spinlock

import (
	"runtime"
	"sync/atomic"
)

// LatticeDelta is the ticket increment for lattice fairness: the largest
// 32-bit Beatty/golden-ratio constant, floor(2^32 / phi). It is odd, so it
// is a unit in Z/2^32 and successive tickets walk the full 2^32 ring; two
// outstanding tickets can alias only after 2^32 draws, far beyond any
// possible waiter population.
const LatticeDelta uint32 = 0x9E3779B9

// Option selects the smart-lock features at Init time, the runtime
// equivalent of the original build-time knobs.
type Option uint8

const (
	// Fair enables lattice ticket fairness: waiters are served in ticket
	// order instead of racing for the raw test-and-set.
	Fair Option = 1 << iota
	// DAG enables the 8-bit wait-for dependency mask.
	DAG
)

// Slock is the smart lock: a Flock as the physical mutex, plus optional
// lattice fairness and an optional dependency mask.
//
// With Fair enabled the lock hands itself to "the next" ticket value on
// release rather than to whichever waiter observes the flag first. Tickets
// advance by LatticeDelta per draw; the counter is per lock, so tickets
// drawn on one lock never stall another lock's waiters.
//
// The zero value is an unlocked lock with no options.
type Slock struct {
	base   Flock
	opts   Option
	ticket atomic.Uint32
	owner  atomic.Uint32
	deps   atomic.Uint32
}

// Init resets the lock and selects its feature set.
func (s *Slock) Init(opts Option) {
	s.base.Init()
	s.opts = opts
	s.ticket.Store(0)
	s.owner.Store(0)
	s.deps.Store(0)
}

// Lock acquires the lock, waiting for the caller's ticket turn when
// fairness is enabled.
func (s *Slock) Lock() {
	if s.opts&Fair == 0 {
		s.base.Lock()
		return
	}
	my := s.ticket.Add(LatticeDelta) - LatticeDelta
	for {
		s.base.Lock()
		if s.owner.Load() == my {
			return
		}
		s.base.Unlock()
		runtime.Gosched()
	}
}

// TryLock acquires the lock without blocking. With fairness enabled it
// claims a ticket only when no waiter is queued ahead, so a failed attempt
// leaves no ticket outstanding.
func (s *Slock) TryLock() bool {
	if !s.base.TryLock() {
		return false
	}
	if s.opts&Fair != 0 {
		cur := s.owner.Load()
		if !s.ticket.CompareAndSwap(cur, cur+LatticeDelta) {
			s.base.Unlock()
			return false
		}
	}
	return true
}

// Unlock releases the lock, advancing ownership to the next ticket when
// fairness is enabled.
func (s *Slock) Unlock() {
	if s.opts&Fair != 0 {
		s.owner.Add(LatticeDelta)
	}
	s.base.Unlock()
}

// SetWaitMask records the producers this lock is currently waiting on.
// No-op unless the DAG option is enabled.
func (s *Slock) SetWaitMask(mask uint8) {
	if s.opts&DAG == 0 {
		return
	}
	s.deps.Store(uint32(mask))
}

// WaitMask returns the recorded dependency mask.
func (s *Slock) WaitMask() uint8 {
	return uint8(s.deps.Load())
}
