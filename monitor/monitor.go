// Package monitor renders a live view of the kernel onto the framebuffer:
// the task table, tick count, and door traffic counters. It runs outside
// the scheduled task set and reads kernel state through advisory
// snapshots only.
package monitor

import (
	"nucleus/hal"
	"nucleus/kernel/door"
	"nucleus/kernel/sched"

	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// redrawEvery is the number of display ticks between redraws; at the
// host's 60 Hz timebase this is roughly twice a second.
const redrawEvery = 30

type Service struct {
	h   hal.HAL
	sch *sched.Sched
	drs *door.Doors

	fb hal.Framebuffer
	d  *fbDisplay
	t  *tinyterm.Terminal
}

func New(h hal.HAL, sch *sched.Sched, drs *door.Doors) *Service {
	return &Service{h: h, sch: sch, drs: drs}
}

// Run drives the monitor off the display timebase. It blocks; run it on
// its own goroutine.
func (s *Service) Run() {
	disp := s.h.Display()
	if disp == nil {
		return
	}
	s.fb = disp.Framebuffer()
	if s.fb == nil {
		return
	}
	s.d = newFBDisplay(s.fb)

	ticks := s.h.Time().Ticks()
	var n uint64
	s.redraw()
	for range ticks {
		n++
		if n%redrawEvery == 0 {
			s.redraw()
		}
	}
}

func (s *Service) redraw() {
	// Recreate the terminal instead of scrolling: the whole screen is
	// repainted every redraw anyway.
	s.t = tinyterm.NewTerminal(s.d)
	s.t.Configure(&tinyterm.Config{
		Font:              &proggy.TinySZ8pt7b,
		FontHeight:        10,
		FontOffset:        6,
		UseSoftwareScroll: true,
	})
	s.fb.ClearRGB(0, 0, 0)

	s.t.Printf("nucleus  tick=%d\r\n", s.sch.Ticks())
	s.t.Printf("doors    calls=%d returns=%d\r\n", s.drs.Calls(), s.drs.Returns())
	s.t.Printf("\r\n id state      prio sleep deps\r\n")
	for _, ti := range s.sch.Snapshot() {
		s.t.Printf(" %2d %-10s %4d %5d %4d\r\n",
			ti.ID, ti.State.String(), ti.Priority, ti.SleepTicks, ti.Deps)
	}
	s.t.Display()
}
