// Package door implements synchronous same-address-space RPC in the
// Solaris doors style: a caller copies its request into a shared slab,
// hands the processor directly to the server task, and resumes only when
// the server hands it back. One call is in flight at a time; the slab is
// the message, so neither direction allocates.
package door

import (
	"sync/atomic"

	"nucleus/hal"
	"nucleus/kernel/sched"
)

const (
	// Slots is the number of door descriptors per task.
	Slots = 4
	// SlabSize is the size of the shared message slab in bytes.
	SlabSize = 128
	// FlagCRC requests a CRC-8 trailer after the payload.
	FlagCRC = 0x01
)

// noCaller marks the transfer-state caller field as empty.
const noCaller = 0xFF

// descriptor packs a door binding into 16 bits:
// target task (8) | payload words (4) | flags (4).
type descriptor uint16

func makeDescriptor(target, words, flags uint8) descriptor {
	return descriptor(uint16(target)<<8 | uint16(words&0x0F)<<4 | uint16(flags&0x0F))
}

func (d descriptor) target() uint8 { return uint8(d >> 8) }
func (d descriptor) words() uint8  { return uint8(d>>4) & 0x0F }
func (d descriptor) flags() uint8  { return uint8(d) & 0x0F }

// Doors is the door subsystem: the descriptor table, the shared slab, and
// the single in-flight transfer state.
type Doors struct {
	sched *sched.Sched
	cpu   hal.CPU

	slab [SlabSize]byte
	vec  [sched.MaxTasks][Slots]descriptor

	// Transfer state for the one in-flight call.
	caller uint8
	words  uint8
	flags  uint8

	calls   atomic.Uint64
	returns atomic.Uint64
}

// New creates the door subsystem bound to a scheduler.
func New(s *sched.Sched, cpu hal.CPU) *Doors {
	return &Doors{sched: s, cpu: cpu, caller: noCaller}
}

// Register binds one of the calling task's door slots to a server task.
// words is the payload length in 8-byte words, 1..15, and must fit the
// slab. Reports false on a bad slot or word count.
func (d *Doors) Register(slot int, target, words, flags uint8) bool {
	if slot < 0 || slot >= Slots {
		return false
	}
	if words == 0 || words > 0x0F || int(words)*8 > SlabSize {
		return false
	}
	tid := d.sched.CurrentID()
	d.vec[tid][slot] = makeDescriptor(target&(sched.MaxTasks-1), words, flags)
	d.cpu.Barrier()
	return true
}

// Call invokes the door bound to slot. The payload is copied from buf into
// the slab, control transfers to the server, and on resume the server's
// reply is copied back into buf. The reply overwrites the request in
// place, so buf holds the reply afterwards. Reports false when the slot is
// unbound or buf is shorter than the registered payload size.
func (d *Doors) Call(slot int, buf []byte) bool {
	if slot < 0 || slot >= Slots {
		return false
	}
	tid := d.sched.CurrentID()
	desc := d.vec[tid][slot]
	if desc == 0 {
		return false
	}
	target := desc.target()
	if target == tid {
		return false
	}

	n := int(desc.words()) * 8
	if len(buf) < n {
		return false
	}

	copy(d.slab[:n], buf[:n])
	if desc.flags()&FlagCRC != 0 && n < SlabSize {
		d.slab[n] = CRC8(d.slab[:n])
	}

	d.caller = tid
	d.words = desc.words()
	d.flags = desc.flags()
	d.cpu.Barrier()

	if !d.sched.SwitchTo(target) {
		// The target task does not exist, so nothing ran. Clear the
		// transfer state instead of stranding a pending call that a
		// later Return would hand to a stale caller.
		d.caller = noCaller
		return false
	}

	// Resumed by the server's Return; the slab now holds the reply.
	d.cpu.Barrier()
	copy(buf[:n], d.slab[:n])
	d.calls.Add(1)
	return true
}

// Return hands the processor back to the blocked caller. The transfer
// state is consumed before the switch, so a double Return is a harmless
// no-op rather than a stale hand-off. Reports false when no call is
// pending.
func (d *Doors) Return() bool {
	if d.caller == noCaller {
		return false
	}
	target := d.caller
	d.caller = noCaller
	d.returns.Add(1)
	d.cpu.Barrier()

	d.sched.SwitchTo(target)
	return true
}

// Message returns the live payload region of the slab for the pending
// call. It is valid only between the server being entered and its Return;
// the server writes its reply into the same region.
func (d *Doors) Message() []byte {
	return d.slab[:int(d.words)*8]
}

// Words returns the pending call's payload size in 8-byte words.
func (d *Doors) Words() uint8 { return d.words }

// Flags returns the pending call's flags.
func (d *Doors) Flags() uint8 { return d.flags }

// Pending reports whether a call is awaiting a Return.
func (d *Doors) Pending() bool { return d.caller != noCaller }

// Calls returns the total number of completed Call hand-offs.
func (d *Doors) Calls() uint64 { return d.calls.Load() }

// Returns returns the total number of Return hand-offs.
func (d *Doors) Returns() uint64 { return d.returns.Load() }
