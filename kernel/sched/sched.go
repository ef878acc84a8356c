// Package sched implements the fixed-capacity preemptive task scheduler:
// priority-based round-robin selection, tick-driven preemption and sleep
// countdowns, optional stack-overflow detection, and an optional DAG
// wait/signal dependency primitive.
//
// The scheduler's own tables are protected by interrupt masking alone.
// Every suspension point - tick preemption, voluntary yield, sleep - runs
// through the same atomic-schedule choke point with interrupts masked
// around table inspection and the switch itself. No lock object guards the
// table; on a single core with no nested interrupt reentrancy, masking is
// sufficient.
package sched

import (
	"sync/atomic"

	"nucleus/hal"
)

// TickHz is the nominal periodic tick rate.
const TickHz = 1000

// DefaultQuantum is the time slice, in ticks, used when Config.Quantum is
// zero.
const DefaultQuantum = 10

// Config selects scheduler features at construction time, the runtime
// equivalent of the original build-time profile knobs.
type Config struct {
	// Quantum is the time slice in ticks; 0 means DefaultQuantum.
	Quantum uint8
	// Preempt enables time-slice preemption from the tick handler.
	Preempt bool
	// StackGuard enables guard-word checking on every context switch.
	StackGuard bool
	// DAGWait enables the Wait/Signal dependency primitive.
	DAGWait bool
}

// Sched is the scheduler instance. Construct exactly one per system.
type Sched struct {
	cpu hal.CPU
	cfg Config

	tasks   [MaxTasks]*TCB
	count   uint8
	current uint8
	quantum uint8

	stacks [MaxTasks]guardedStack

	boot  hal.Context
	ticks atomic.Uint64
	fault func(tid uint8)
}

// New creates a scheduler bound to the given CPU.
func New(cpu hal.CPU, cfg Config) *Sched {
	if cfg.Quantum == 0 {
		cfg.Quantum = DefaultQuantum
	}
	return &Sched{cpu: cpu, cfg: cfg, quantum: cfg.Quantum}
}

// Init arms the stack guards and starts the periodic tick. Call once at
// startup, before Run.
func (s *Sched) Init() {
	if s.cfg.StackGuard {
		for i := range s.stacks {
			s.stacks[i].arm()
		}
	}
	s.cpu.TimerStart(TickHz, s.HandleTick)
}

// SetFaultHandler installs a hook invoked, with interrupts masked, when a
// stack guard is found corrupted. The scheduler halts afterwards whether or
// not the hook returns; the hook exists so a host harness can observe the
// fault instead of timing out on the halt loop.
func (s *Sched) SetFaultHandler(fn func(tid uint8)) {
	s.fault = fn
}

// Create registers a task. It fails if the TCB or entry is nil, the table
// is full, or stackLen is outside [MinStack, StackSize]. On success the
// task's first activation begins at entry with interrupts enabled.
func (s *Sched) Create(tcb *TCB, entry func(), priority uint8, stackLen int) bool {
	if tcb == nil || entry == nil {
		return false
	}
	if s.count >= MaxTasks {
		return false
	}
	if stackLen < MinStack || stackLen > StackSize {
		return false
	}

	slot := s.count
	tcb.ctx = s.cpu.ContextInit(entry, s.stacks[slot].data[:stackLen])
	tcb.state = Ready
	tcb.priority = priority & MaxPriority
	tcb.id = slot
	tcb.sleepTicks = 0
	tcb.deps = 0

	st := s.cpu.IRQSave()
	s.tasks[slot] = tcb
	s.count++
	s.cpu.IRQRestore(st)
	return true
}

// findNext scans the table round-robin starting just after the current
// task and picks the ready task with the numerically lowest priority;
// ties go to the earlier-encountered task. With nothing else ready the
// current task is re-selected - a true idle condition must be represented
// by an always-ready idle task at lowest priority, by construction.
func (s *Sched) findNext() uint8 {
	best := s.current
	bestPrio := uint8(0xFF)

	for i := uint8(0); i < s.count; i++ {
		idx := (s.current + i + 1) % s.count
		t := s.tasks[idx]

		ready := t.state == Ready
		if s.cfg.DAGWait {
			ready = ready && t.deps == 0
		}
		if ready && t.priority < bestPrio {
			best = idx
			bestPrio = t.priority
		}
	}
	return best
}

// switchTo transfers control to the task at index next. Interrupts must be
// masked by the caller. No-op when next is already current.
func (s *Sched) switchTo(next uint8) {
	if next == s.current {
		return
	}

	if s.cfg.StackGuard && !s.stacks[s.current].intact() {
		s.haltStackFault()
	}

	from := s.tasks[s.current]
	to := s.tasks[next]

	if from.state == Running {
		from.state = Ready
	}
	to.state = Running

	s.current = next
	s.cpu.ContextSwitch(from.ctx, to.ctx)
}

// haltStackFault is the unrecoverable stack-corruption path: a corrupted
// stack cannot be trusted to unwind, so scheduling stops for good.
func (s *Sched) haltStackFault() {
	s.cpu.IRQDisable()
	if s.fault != nil {
		s.fault(s.current)
	}
	for {
		s.cpu.Idle()
	}
}

// atomicSchedule is the single choke point for every voluntary suspension:
// mask, pick, switch, unmask.
func (s *Sched) atomicSchedule() {
	s.cpu.IRQDisable()
	s.quantum = s.cfg.Quantum
	s.switchTo(s.findNext())
	s.cpu.IRQEnable()
}

// Run starts the scheduler. It never returns.
func (s *Sched) Run() {
	s.boot = s.cpu.ContextInit(nil, nil)

	s.cpu.IRQDisable()
	if s.count == 0 {
		for {
			s.cpu.Idle()
		}
	}

	next := s.findNext()
	t := s.tasks[next]
	t.state = Running
	s.current = next
	s.quantum = s.cfg.Quantum
	s.cpu.ContextSwitch(s.boot, t.ctx)

	// Nothing ever switches back into the boot context.
	for {
		s.cpu.Idle()
	}
}

// Yield gives up the processor; the next scheduling decision is
// unconditional and the time slice starts fresh.
func (s *Sched) Yield() {
	s.atomicSchedule()
}

// Sleep suspends the calling task for ms ticks. The task becomes eligible
// again only when the tick handler's countdown reaches zero; it cannot be
// woken early.
func (s *Sched) Sleep(ms uint16) {
	s.cpu.IRQDisable()

	t := s.tasks[s.current]
	t.state = Sleeping
	t.sleepTicks = ms

	s.atomicSchedule()
}

// Exit terminates the calling task. Terminated is terminal; the slot is
// not reclaimed. Never returns.
func (s *Sched) Exit(status int) {
	_ = status

	s.cpu.IRQDisable()
	s.tasks[s.current].state = Terminated
	s.atomicSchedule()

	for {
		s.cpu.Idle()
	}
}

// CurrentID returns the id of the running task.
func (s *Sched) CurrentID() uint8 {
	return s.current
}

// SwitchTo transfers control directly to the given task, bypassing the
// normal selection. This is the door RPC hand-off primitive. It reports
// false for out-of-range ids and self-transfers, which move no control.
func (s *Sched) SwitchTo(tid uint8) bool {
	if tid >= s.count || tid == s.current {
		return false
	}
	st := s.cpu.IRQSave()
	s.switchTo(tid)
	s.cpu.IRQRestore(st)
	return true
}

// Wait records deps outstanding dependencies for the calling task and
// blocks it until they are signaled away. No-op unless DAGWait is enabled.
func (s *Sched) Wait(deps uint8) {
	if !s.cfg.DAGWait {
		return
	}
	s.cpu.IRQDisable()

	t := s.tasks[s.current]
	t.deps = deps
	t.state = Blocked

	s.atomicSchedule()
}

// Signal decrements a blocked task's dependency count, readying it when
// the count reaches zero. Reports false for out-of-range ids.
func (s *Sched) Signal(tid uint8) bool {
	if !s.cfg.DAGWait || tid >= s.count {
		return false
	}
	st := s.cpu.IRQSave()
	t := s.tasks[tid]
	if t.deps > 0 {
		t.deps--
		if t.deps == 0 && t.state == Blocked {
			t.state = Ready
		}
	}
	s.cpu.IRQRestore(st)
	return true
}

// HandleTick is the periodic tick handler. It runs in interrupt context:
// interrupts are serialized around it and it must not block. Sleep
// countdowns run on every tick; preemption happens when the quantum
// expires.
func (s *Sched) HandleTick() {
	s.ticks.Add(1)

	for i := uint8(0); i < s.count; i++ {
		t := s.tasks[i]
		if t.state == Sleeping && t.sleepTicks > 0 {
			t.sleepTicks--
			if t.sleepTicks == 0 {
				t.state = Ready
			}
		}
	}

	if !s.cfg.Preempt {
		return
	}
	if s.quantum > 0 {
		s.quantum--
	}
	if s.quantum == 0 {
		s.quantum = s.cfg.Quantum
		next := s.findNext()
		if next != s.current {
			s.switchTo(next)
		}
	}
}

// Ticks returns the number of tick-handler invocations so far.
func (s *Sched) Ticks() uint64 {
	return s.ticks.Load()
}

// Snapshot copies the task table for display. The copy is advisory: it is
// taken without masking interrupts and may observe a task mid-transition.
func (s *Sched) Snapshot() []TaskInfo {
	n := s.count
	out := make([]TaskInfo, 0, n)
	for i := uint8(0); i < n; i++ {
		t := s.tasks[i]
		if t == nil {
			continue
		}
		out = append(out, TaskInfo{
			ID:         t.id,
			State:      t.state,
			Priority:   t.priority,
			SleepTicks: t.sleepTicks,
			Deps:       t.deps,
		})
	}
	return out
}
