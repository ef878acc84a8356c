package sched

import "nucleus/hal"

// State is the task lifecycle state.
type State uint8

const (
	Ready State = iota
	Running
	Sleeping
	Blocked
	Terminated
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case Running:
		return "running"
	case Sleeping:
		return "sleeping"
	case Blocked:
		return "blocked"
	case Terminated:
		return "terminated"
	default:
		return "invalid"
	}
}

const (
	// MaxTasks is the fixed task-table capacity, including the idle task.
	MaxTasks = 8
	// MaxPriority is the numerically largest (weakest) priority.
	MaxPriority = 63
	// StackSize is the per-task stack allotment, the upper bound for
	// Create's stack length.
	StackSize = 2048
	// MinStack is the smallest stack length Create accepts.
	MinStack = 32
)

// TCB is the task control block. The caller of Create allocates it; after
// that it is mutated only by the scheduler and by the owning task's own
// yield/sleep/exit calls. Terminated is a sink state: the slot is never
// reclaimed.
type TCB struct {
	ctx        hal.Context // saved context, owned by the CPU implementation
	state      State
	priority   uint8 // 0 = highest, 63 = lowest
	id         uint8
	sleepTicks uint16
	deps       uint8
}

// ID returns the task's stable slot index.
func (t *TCB) ID() uint8 { return t.id }

// State returns the task's current lifecycle state.
func (t *TCB) State() State { return t.state }

// Priority returns the task's priority (0 = highest).
func (t *TCB) Priority() uint8 { return t.priority }

// TaskInfo is one row of a task-table snapshot.
type TaskInfo struct {
	ID         uint8
	State      State
	Priority   uint8
	SleepTicks uint16
	Deps       uint8
}
