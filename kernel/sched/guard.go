package sched

// guardPattern brackets each task stack. A mismatch at context-switch time
// means the stack overflowed into the guard; the scheduler must not keep
// running on a stack it cannot trust.
const guardPattern uint32 = 0xDEADBEEF

type guardedStack struct {
	guardLo uint32
	data    [StackSize]byte
	guardHi uint32
}

func (g *guardedStack) arm() {
	g.guardLo = guardPattern
	g.guardHi = guardPattern
}

func (g *guardedStack) intact() bool {
	return g.guardLo == guardPattern && g.guardHi == guardPattern
}
