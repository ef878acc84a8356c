package app

import (
	"nucleus/kernel/door"
	"nucleus/kernel/spinlock"
)

// Shared state for the lock-contender tasks.
var (
	demoLock    spinlock.Spinlock
	demoCounter uint32
)

func init() {
	demoLock.Init()
}

// echoServer services door calls by reversing the payload in place.
// Between calls it parks on a dependency it never satisfies; the door
// hand-off switches into it directly, bypassing the ready scan, so the
// park only hides it from normal selection.
func (s *system) echoServer() {
	for {
		if s.drs.Pending() {
			msg := s.drs.Message()
			for i, j := 0, len(msg)-1; i < j; i, j = i+1, j-1 {
				msg[i], msg[j] = msg[j], msg[i]
			}
			s.drs.Return()
			continue
		}
		s.sch.Wait(1)
	}
}

// doorClient exercises a plain door and a checksummed door against the
// echo server, verifying the reversed reply each round.
func (s *system) doorClient() {
	const server = 0
	s.drs.Register(0, server, 1, 0)
	s.drs.Register(1, server, 1, door.FlagCRC)

	log := s.h.Logger()
	var round uint32
	for {
		round++
		slot := int(round & 1)

		var buf [8]byte
		copy(buf[:], "nucleus!")
		if !s.drs.Call(slot, buf[:]) {
			log.WriteLineString("door: call failed")
			s.sch.Sleep(1000)
			continue
		}
		if string(buf[:]) != "!suelcun" {
			log.WriteLineString("door: bad echo " + string(buf[:]))
		} else {
			log.WriteLineString("door: echo ok, slot " + itoa(slot))
		}
		s.sch.Sleep(500)
	}
}

// contender bumps a shared counter under the composite lock, tagging its
// critical sections with its own bit in the dependency mask.
func (s *system) contender() {
	mask := uint8(1) << (s.sch.CurrentID() & 3)
	for {
		demoLock.Lock(mask)
		demoCounter++
		demoLock.MatrixSet(int(s.sch.CurrentID()&3), demoCounter)
		demoLock.Unlock()
		s.sch.Sleep(50)
	}
}

// idle is the always-ready fallback task at the weakest priority. It
// halts the CPU until the next interrupt instead of spinning.
func (s *system) idle() {
	cpu := s.h.CPU()
	for {
		cpu.Idle()
		s.sch.Yield()
	}
}
