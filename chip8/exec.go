// Package chip8 provides an implementation of a CHIP-8 virtual machine,
// called Machine, that can be used to execute CHIP-8 programs.
//
// A Machine does no scheduling of its own. The host calls Step some number
// of times per frame, then TickTimers exactly once, and reads the Display
// to render it. Keys are reported with SetKey between steps.
package chip8

import (
	"fmt"
	"math/rand"
	"time"
)

// Machine is an implementation of a CHIP-8 CPU and its peripherals.
type Machine struct {
	Mem     Memory
	V       [16]byte
	I       uint16
	PC      uint16
	Stack   Stack
	Timers  Timers
	Keys    Keypad
	Display Display

	// Rand is the source for RND. NewMachine seeds it from the clock.
	Rand *rand.Rand
}

// NewMachine returns a reset Machine with no program loaded.
func NewMachine() *Machine {
	m := &Machine{Rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
	m.Reset()
	return m
}

// Reset returns the machine to its power-on state: memory holds only the
// font, all registers, timers and keys are zero, the display is clear,
// and PC is at the program base.
func (m *Machine) Reset() {
	m.Mem = Memory{}
	copy(m.Mem[FontBase:], font[:])
	m.V = [16]byte{}
	m.I = 0
	m.PC = ProgramBase
	m.Stack = Stack{}
	m.Timers = Timers{}
	m.Keys.reset()
	m.Display.Clear()
}

// Load copies rom into memory at the program base. It does not reset the
// machine. If rom is larger than MaxProgramSize it returns a *LoadError and
// memory is left unchanged.
func (m *Machine) Load(rom []byte) error {
	return m.Mem.WriteRange(ProgramBase, rom)
}

// SetKey records the state of key k. It returns ErrInvalidKey, and changes
// nothing, if k is not in the range 0x0-0xf.
func (m *Machine) SetKey(k Key, pressed bool) error {
	if k >= NumKeys {
		return fmt.Errorf("%w: %d", ErrInvalidKey, k)
	}
	m.Keys.set(k, pressed)
	return nil
}

// TickTimers decrements the delay and sound timers.
// It should be called at 60Hz regardless of how often Step is called.
func (m *Machine) TickTimers() { m.Timers.Tick() }

// SoundActive reports whether the sound timer is running.
func (m *Machine) SoundActive() bool { return m.Timers.Sound > 0 }

// Waiting reports whether execution is stalled on FX0A.
func (m *Machine) Waiting() bool { return m.Keys.waiting }

// Op returns the instruction at PC.
func (m *Machine) Op() Op { return m.opAt(m.PC) }

func (m *Machine) opAt(addr uint16) Op {
	return Op(short(m.Mem.Byte(addr), m.Mem.Byte(addr+1)))
}

// Step executes the instruction at PC. If the machine is waiting for a key
// (FX0A) it instead checks for a key press, stores it in the waiting
// register if there is one, and returns without executing anything.
//
// Step returns a HaltError if the instruction cannot be executed.
// In that case PC is left pointing at the faulting instruction.
func (m *Machine) Step() (err error) {
	if m.Keys.waiting {
		if reg, k, ok := m.Keys.resolve(); ok {
			m.V[reg] = byte(k)
		}
		return nil
	}

	var (
		opPC = m.PC
		op   = m.opAt(opPC)
	)
	defer func() {
		if e := recover(); e != nil {
			if code, ok := e.(HaltCode); ok {
				m.PC = opPC
				err = HaltError{
					HaltCode: code,
					Op:       op,
					Addr:     opPC,
				}
			} else {
				panic(e)
			}
		}
	}()

	m.PC = (m.PC + 2) & addrMask
	m.exec(op)
	return nil
}

func (m *Machine) exec(op Op) {
	x, y := op.X(), op.Y()

	switch op.Family() {
	case 0x0:
		switch op {
		case 0x00e0:
			m.Display.Clear()
		case 0x00ee:
			m.PC = m.Stack.pop()
		default:
			// SYS: machine code routine, ignored by interpreters.
		}
	case 0x1:
		m.PC = op.NNN()
	case 0x2:
		m.Stack.push(m.PC)
		m.PC = op.NNN()
	case 0x3:
		m.skipIf(m.V[x] == op.NN())
	case 0x4:
		m.skipIf(m.V[x] != op.NN())
	case 0x5:
		if op.N() != 0 {
			panic(UnknownOp)
		}
		m.skipIf(m.V[x] == m.V[y])
	case 0x6:
		m.V[x] = op.NN()
	case 0x7:
		m.V[x] += op.NN()
	case 0x8:
		m.execALU(op)
	case 0x9:
		if op.N() != 0 {
			panic(UnknownOp)
		}
		m.skipIf(m.V[x] != m.V[y])
	case 0xa:
		m.I = op.NNN()
	case 0xb:
		m.PC = (op.NNN() + uint16(m.V[0])) & addrMask
	case 0xc:
		m.V[x] = byte(m.Rand.Intn(0x100)) & op.NN()
	case 0xd:
		var sprite [15]byte
		n := int(op.N())
		for i := 0; i < n; i++ {
			sprite[i] = m.Mem.Byte(m.I + uint16(i))
		}
		m.V[0xf] = flag(m.Display.Blit(m.V[x], m.V[y], sprite[:n]))
	case 0xe:
		down := m.Keys.Down[m.V[x]&0xf]
		switch op.NN() {
		case 0x9e:
			m.skipIf(down)
		case 0xa1:
			m.skipIf(!down)
		default:
			panic(UnknownOp)
		}
	case 0xf:
		m.execMisc(op)
	}
}

// execALU executes the 8XYN register arithmetic instructions.
// OR, AND and XOR leave VF unchanged. Where VF is also the destination,
// the flag is written last and wins.
func (m *Machine) execALU(op Op) {
	var (
		x, y   = op.X(), op.Y()
		vx, vy = m.V[x], m.V[y]
	)
	switch op.N() {
	case 0x0:
		m.V[x] = vy
	case 0x1:
		m.V[x] = vx | vy
	case 0x2:
		m.V[x] = vx & vy
	case 0x3:
		m.V[x] = vx ^ vy
	case 0x4:
		sum := uint16(vx) + uint16(vy)
		m.V[x] = byte(sum)
		m.V[0xf] = flag(sum > 0xff)
	case 0x5:
		m.V[x] = vx - vy
		m.V[0xf] = flag(vx >= vy)
	case 0x6:
		m.V[x] = vx >> 1
		m.V[0xf] = vx & 0x01
	case 0x7:
		m.V[x] = vy - vx
		m.V[0xf] = flag(vy >= vx)
	case 0xe:
		m.V[x] = vx << 1
		m.V[0xf] = vx >> 7
	default:
		panic(UnknownOp)
	}
}

// execMisc executes the FXNN timer, key and memory instructions.
// FX55 and FX65 leave I unchanged.
func (m *Machine) execMisc(op Op) {
	x := op.X()
	switch op.NN() {
	case 0x07:
		m.V[x] = m.Timers.Delay
	case 0x0a:
		m.Keys.wait(x)
	case 0x15:
		m.Timers.Delay = m.V[x]
	case 0x18:
		m.Timers.Sound = m.V[x]
	case 0x1e:
		m.I = (m.I + uint16(m.V[x])) & addrMask
	case 0x29:
		m.I = FontAddr(m.V[x])
	case 0x33:
		v := m.V[x]
		m.Mem.SetByte(m.I, v/100)
		m.Mem.SetByte(m.I+1, v/10%10)
		m.Mem.SetByte(m.I+2, v%10)
	case 0x55:
		for i := uint16(0); i <= uint16(x); i++ {
			m.Mem.SetByte(m.I+i, m.V[i])
		}
	case 0x65:
		for i := uint16(0); i <= uint16(x); i++ {
			m.V[i] = m.Mem.Byte(m.I + i)
		}
	default:
		panic(UnknownOp)
	}
}

func (m *Machine) skipIf(cond bool) {
	if cond {
		m.PC = (m.PC + 2) & addrMask
	}
}

// HaltError is returned by Step if the program cannot continue.
type HaltError struct {
	HaltCode
	Op   Op
	Addr uint16
}

func (e HaltError) Error() string {
	return fmt.Sprintf("%s executing %s at %.3x", e.HaltCode, e.Op, e.Addr)
}

// HaltCode signifies the type of condition that halted execution.
type HaltCode byte

const (
	Overflow  HaltCode = 0x01
	Underflow HaltCode = 0x02
	UnknownOp HaltCode = 0x03
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		Overflow:  "stack overflow",
		Underflow: "stack underflow",
		UnknownOp: "unknown instruction",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 + uint16(lo)
}
