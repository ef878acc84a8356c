package spinlock

// bkl is the Big Kernel Lock: one process-wide smart lock shared by every
// composite lock. Acquisition order is fixed, BKL before instance lock.
var bkl Slock

// GlobalInit resets the Big Kernel Lock. The zero value is already a valid
// unlocked BKL; explicit initialization exists for system startup and for
// tests that want a clean slate.
func GlobalInit() {
	bkl.Init(Fair)
}

// Snapshot is the plain-value form of a composite lock's metadata, used for
// speculative copy-on-write state exchange between a holder and a
// serialized encoder/decoder pair.
type Snapshot struct {
	DAGMask uint8
	RTMode  uint8
	Matrix  [4]uint32
}

// Spinlock is the composite lock: a per-instance smart lock layered under
// the global BKL, a dependency mask, a real-time bypass flag, and a 4-word
// snapshot buffer. Lock buys serialization against every other composite
// critical section in the system; LockRT trades that away for latency.
//
// The snapshot buffer is only touched by Encode/Decode/MatrixSet, never by
// lock and unlock themselves.
type Spinlock struct {
	core    Slock
	dagMask uint8
	rtMode  bool
	matrix  [4]uint32
}

// Init resets the lock. The instance lock carries fairness and dependency
// tracking.
func (s *Spinlock) Init() {
	s.core.Init(Fair | DAG)
	s.dagMask = 0
	s.rtMode = false
	for i := range s.matrix {
		s.matrix[i] = 0
	}
}

// Lock acquires the BKL, then the instance lock, and records the mask.
func (s *Spinlock) Lock(mask uint8) {
	bkl.Lock()
	s.core.Lock()
	s.dagMask = mask
	s.rtMode = false
}

// TryLock is the non-blocking Lock; on failure any partially acquired lock
// is released.
func (s *Spinlock) TryLock(mask uint8) bool {
	if !bkl.TryLock() {
		return false
	}
	if !s.core.TryLock() {
		bkl.Unlock()
		return false
	}
	s.dagMask = mask
	s.rtMode = false
	return true
}

// Unlock clears the metadata and releases in reverse acquisition order.
func (s *Spinlock) Unlock() {
	s.dagMask = 0
	s.rtMode = false
	s.core.Unlock()
	bkl.Unlock()
}

// LockRT acquires only the instance lock, bypassing the BKL, for
// latency-sensitive sections known not to race with BKL-protected code.
func (s *Spinlock) LockRT(mask uint8) {
	s.core.Lock()
	s.dagMask = mask
	s.rtMode = true
}

// TryLockRT is the non-blocking LockRT.
func (s *Spinlock) TryLockRT(mask uint8) bool {
	if !s.core.TryLock() {
		return false
	}
	s.dagMask = mask
	s.rtMode = true
	return true
}

// UnlockRT releases a lock acquired with LockRT or TryLockRT.
func (s *Spinlock) UnlockRT() {
	s.dagMask = 0
	s.rtMode = false
	s.core.Unlock()
}

// DAGMask returns the mask recorded at acquisition.
func (s *Spinlock) DAGMask() uint8 { return s.dagMask }

// RTMode reports whether the lock was acquired in real-time mode.
func (s *Spinlock) RTMode() bool { return s.rtMode }

// MatrixSet stores one word of the snapshot buffer. Out-of-range indices
// are ignored.
func (s *Spinlock) MatrixSet(i int, v uint32) {
	if i < 0 || i >= len(s.matrix) {
		return
	}
	s.matrix[i] = v
}

// Encode copies the lock metadata into a plain snapshot value. The caller
// must hold the lock.
func (s *Spinlock) Encode() Snapshot {
	snap := Snapshot{DAGMask: s.dagMask, Matrix: s.matrix}
	if s.rtMode {
		snap.RTMode = 1
	}
	return snap
}

// Decode installs a snapshot's mask and matrix into the lock. The caller
// must hold the lock.
func (s *Spinlock) Decode(snap Snapshot) {
	s.dagMask = snap.DAGMask
	s.rtMode = snap.RTMode != 0
	s.matrix = snap.Matrix
}
