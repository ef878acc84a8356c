package spinlock

import (
	"sync"
	"testing"
)

func TestSlockMutualExclusionFair(t *testing.T) {
	var l Slock
	l.Init(Fair)

	const goroutines = 8
	const rounds = 2000

	var counter int
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				l.Lock()
				counter++
				l.Unlock()
			}
		}()
	}
	wg.Wait()

	if counter != goroutines*rounds {
		t.Fatalf("counter = %d, want %d", counter, goroutines*rounds)
	}
}

func TestSlockTryLockPlain(t *testing.T) {
	var l Slock
	l.Init(0)

	if !l.TryLock() {
		t.Fatalf("TryLock() = false on free lock, want true")
	}
	if l.TryLock() {
		t.Fatalf("TryLock() = true on held lock, want false")
	}
	l.Unlock()
}

// A failed fair TryLock must leave no ticket drawn: a later Lock would
// otherwise wait for a turn nobody holds.
func TestSlockTryLockNoTicketLeak(t *testing.T) {
	var l Slock
	l.Init(Fair)

	l.Lock()
	before := l.ticket.Load()
	if l.TryLock() {
		t.Fatalf("TryLock() = true on held lock, want false")
	}
	if got := l.ticket.Load(); got != before {
		t.Fatalf("ticket after failed TryLock = %#x, want %#x", got, before)
	}
	l.Unlock()

	// The lock must still be acquirable through both paths.
	if !l.TryLock() {
		t.Fatalf("TryLock() = false after Unlock, want true")
	}
	l.Unlock()
	l.Lock()
	l.Unlock()
}

func TestSlockTicketLattice(t *testing.T) {
	var l Slock
	l.Init(Fair)

	l.Lock()
	if got := l.ticket.Load(); got != LatticeDelta {
		t.Fatalf("ticket after first draw = %#x, want %#x", got, LatticeDelta)
	}
	l.Unlock()
	if got := l.owner.Load(); got != LatticeDelta {
		t.Fatalf("owner after release = %#x, want %#x", got, LatticeDelta)
	}
}

func TestSlockWaitMask(t *testing.T) {
	var l Slock
	l.Init(Fair | DAG)

	l.SetWaitMask(0x05)
	if got := l.WaitMask(); got != 0x05 {
		t.Fatalf("WaitMask() = %#x, want 0x05", got)
	}
	l.SetWaitMask(0)
	if got := l.WaitMask(); got != 0 {
		t.Fatalf("WaitMask() = %#x, want 0", got)
	}
}

func TestSlockWaitMaskDisabled(t *testing.T) {
	var l Slock
	l.Init(Fair)

	l.SetWaitMask(0xFF)
	if got := l.WaitMask(); got != 0 {
		t.Fatalf("WaitMask() = %#x with DAG disabled, want 0", got)
	}
}
