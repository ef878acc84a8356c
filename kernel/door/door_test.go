package door

import (
	"bytes"
	"testing"
	"time"

	"nucleus/hal"
	"nucleus/kernel/sched"
)

func TestDescriptorPacking(t *testing.T) {
	d := makeDescriptor(5, 3, FlagCRC)
	if got := d.target(); got != 5 {
		t.Fatalf("target() = %d, want 5", got)
	}
	if got := d.words(); got != 3 {
		t.Fatalf("words() = %d, want 3", got)
	}
	if got := d.flags(); got != FlagCRC {
		t.Fatalf("flags() = %#x, want %#x", got, FlagCRC)
	}

	// Oversized fields are truncated to their bit widths.
	d = makeDescriptor(0xFF, 0xFF, 0xFF)
	if got := d.words(); got != 0x0F {
		t.Fatalf("words() = %d, want 15", got)
	}
	if got := d.flags(); got != 0x0F {
		t.Fatalf("flags() = %d, want 15", got)
	}
}

func newTestDoors() *Doors {
	cpu := hal.NewCPU()
	return New(sched.New(cpu, sched.Config{}), cpu)
}

func TestRegisterValidation(t *testing.T) {
	d := newTestDoors()

	if d.Register(-1, 0, 1, 0) {
		t.Fatalf("Register(slot=-1) = true, want false")
	}
	if d.Register(Slots, 0, 1, 0) {
		t.Fatalf("Register(slot=%d) = true, want false", Slots)
	}
	if d.Register(0, 0, 0, 0) {
		t.Fatalf("Register(words=0) = true, want false")
	}
	if d.Register(0, 0, 16, 0) {
		t.Fatalf("Register(words=16) = true, want false")
	}
	if !d.Register(0, 0, 15, 0) {
		t.Fatalf("Register(words=15) = false, want true")
	}
}

func TestCallInvalid(t *testing.T) {
	d := newTestDoors()

	var buf [16]byte
	if d.Call(0, buf[:]) {
		t.Fatalf("Call() = true on unbound slot, want false")
	}
	if d.Call(-1, buf[:]) {
		t.Fatalf("Call(slot=-1) = true, want false")
	}

	d.Register(0, 1, 2, 0)
	if d.Call(0, buf[:8]) {
		t.Fatalf("Call() = true with short buffer, want false")
	}
}

// A call whose target task does not exist transfers no control and must
// not leave transfer state behind for a later Return to consume.
func TestCallDeadTargetLeavesNoPendingCall(t *testing.T) {
	d := newTestDoors()

	if !d.Register(0, 5, 1, 0) {
		t.Fatalf("Register() = false, want true")
	}
	buf := []byte("abcdefgh")
	if d.Call(0, buf) {
		t.Fatalf("Call() = true for nonexistent target, want false")
	}
	if d.Pending() {
		t.Fatalf("Pending() = true after failed call, want false")
	}
	if d.Return() {
		t.Fatalf("Return() = true after failed call, want false")
	}
	if d.Calls() != 0 {
		t.Fatalf("Calls() = %d after failed call, want 0", d.Calls())
	}
}

func TestCallSelfTarget(t *testing.T) {
	d := newTestDoors()

	// The scheduler's current task is 0; a door bound back to it would
	// deadlock the caller, so the call is refused.
	d.Register(0, 0, 1, 0)
	var buf [8]byte
	if d.Call(0, buf[:]) {
		t.Fatalf("Call() = true for self-targeted door, want false")
	}
	if d.Pending() {
		t.Fatalf("Pending() = true after refused self-call, want false")
	}
}

func TestReturnWithoutCall(t *testing.T) {
	d := newTestDoors()
	if d.Return() {
		t.Fatalf("Return() = true with no pending call, want false")
	}
	if d.Pending() {
		t.Fatalf("Pending() = true at rest, want false")
	}
}

// doorHarness runs a one-server, one-client system on the host CPU and
// reports the client's verdict.
func doorHarness(t *testing.T, server, client func(*sched.Sched, *Doors), verdict chan string) {
	t.Helper()

	cpu := hal.NewCPU()
	s := sched.New(cpu, sched.Config{DAGWait: true})
	d := New(s, cpu)

	var stcb, ctcb sched.TCB
	if !s.Create(&stcb, func() { server(s, d) }, 1, sched.MinStack) {
		t.Fatalf("Create(server) = false, want true")
	}
	if !s.Create(&ctcb, func() { client(s, d) }, 8, sched.MinStack) {
		t.Fatalf("Create(client) = false, want true")
	}
	go s.Run()

	select {
	case msg := <-verdict:
		if msg != "" {
			t.Fatal(msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("door exchange timed out")
	}
}

func TestCallRoundTrip(t *testing.T) {
	verdict := make(chan string, 1)

	server := func(s *sched.Sched, d *Doors) {
		for {
			if d.Pending() {
				msg := d.Message()
				for i := range msg {
					msg[i]++
				}
				d.Return()
				continue
			}
			s.Wait(1)
		}
	}

	client := func(s *sched.Sched, d *Doors) {
		if !d.Register(0, 0, 1, 0) {
			verdict <- "Register() = false, want true"
			return
		}
		buf := []byte("abcdefgh")
		if !d.Call(0, buf) {
			verdict <- "Call() = false, want true"
			return
		}
		if !bytes.Equal(buf, []byte("bcdefghi")) {
			verdict <- "reply = " + string(buf) + ", want bcdefghi"
			return
		}
		if d.Calls() != 1 || d.Returns() != 1 {
			verdict <- "counters not 1/1 after one exchange"
			return
		}
		if d.Pending() {
			verdict <- "Pending() = true after completed exchange, want false"
			return
		}
		verdict <- ""
	}

	doorHarness(t, server, client, verdict)
}

func TestCallCRCTrailer(t *testing.T) {
	verdict := make(chan string, 1)

	server := func(s *sched.Sched, d *Doors) {
		for {
			if d.Pending() {
				if d.Flags()&FlagCRC == 0 {
					verdict <- "Flags() missing CRC bit on checksummed door"
					return
				}
				msg := d.Message()
				if got := d.slab[len(msg)]; got != CRC8(msg) {
					verdict <- "slab trailer does not match payload CRC"
					return
				}
				d.Return()
				continue
			}
			s.Wait(1)
		}
	}

	client := func(s *sched.Sched, d *Doors) {
		d.Register(0, 0, 1, FlagCRC)
		buf := []byte("checkme\x00")
		if !d.Call(0, buf) {
			verdict <- "Call() = false, want true"
			return
		}
		verdict <- ""
	}

	doorHarness(t, server, client, verdict)
}

// A second exchange reuses the same slab and transfer state.
func TestCallSequential(t *testing.T) {
	verdict := make(chan string, 1)

	server := func(s *sched.Sched, d *Doors) {
		for {
			if d.Pending() {
				msg := d.Message()
				for i, j := 0, len(msg)-1; i < j; i, j = i+1, j-1 {
					msg[i], msg[j] = msg[j], msg[i]
				}
				d.Return()
				continue
			}
			s.Wait(1)
		}
	}

	client := func(s *sched.Sched, d *Doors) {
		d.Register(0, 0, 1, 0)
		for i := 0; i < 3; i++ {
			buf := []byte("12345678")
			if !d.Call(0, buf) {
				verdict <- "Call() = false, want true"
				return
			}
			if !bytes.Equal(buf, []byte("87654321")) {
				verdict <- "reply = " + string(buf) + ", want 87654321"
				return
			}
		}
		if d.Calls() != 3 || d.Returns() != 3 {
			verdict <- "counters not 3/3 after three exchanges"
			return
		}
		verdict <- ""
	}

	doorHarness(t, server, client, verdict)
}
