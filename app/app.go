// Package app assembles the demo system: the scheduler with its task set,
// the door subsystem, the global lock hierarchy, and the on-screen
// monitor.
package app

import (
	"nucleus/hal"
	"nucleus/kernel/door"
	"nucleus/kernel/sched"
	"nucleus/kernel/spinlock"
	"nucleus/monitor"
)

type Config struct {
	Quantum uint8
}

type system struct {
	h   hal.HAL
	sch *sched.Sched
	drs *door.Doors

	tcbs [sched.MaxTasks]sched.TCB
	next int
}

// New initializes and starts the system with the default config.
func New(h hal.HAL) func() error {
	return NewWithConfig(h, Config{})
}

// NewWithConfig initializes and starts the system. The returned step
// function is invoked once per display frame by the host shell; the
// kernel itself runs on its own goroutines.
func NewWithConfig(h hal.HAL, cfg Config) func() error {
	_ = newSystem(h, cfg)
	return func() error { return nil }
}

func newSystem(h hal.HAL, cfg Config) *system {
	spinlock.GlobalInit()

	cpu := h.CPU()
	sch := sched.New(cpu, sched.Config{
		Quantum:    cfg.Quantum,
		Preempt:    true,
		StackGuard: true,
		DAGWait:    true,
	})
	drs := door.New(sch, cpu)

	s := &system{h: h, sch: sch, drs: drs}
	sch.Init()
	sch.SetFaultHandler(func(tid uint8) {
		h.Logger().WriteLineString("FATAL: stack guard corrupted, task " + itoa(int(tid)))
	})

	// Task 0: door echo server, entered only through door hand-offs.
	s.spawn(s.echoServer, 1)
	// Task 1: door client exercising plain and checksummed calls.
	s.spawn(s.doorClient, 8)
	// Tasks 2,3: composite-lock contenders sharing a counter.
	s.spawn(s.contender, 16)
	s.spawn(s.contender, 16)
	// Task 4: idle. Always ready, weakest priority.
	s.spawn(s.idle, sched.MaxPriority)

	go monitor.New(h, sch, drs).Run()
	go sch.Run()
	return s
}

func (s *system) spawn(entry func(), prio uint8) {
	if s.next >= len(s.tcbs) {
		return
	}
	if s.sch.Create(&s.tcbs[s.next], entry, prio, sched.StackSize) {
		s.next++
	}
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	return string(b[i:])
}
