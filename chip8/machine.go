// Package chip8 provides an implementation of a CHIP-8 virtual machine,
// called Machine, that can be used to execute CHIP-8 programs.
package chip8

import (
	"errors"
	"fmt"
	"slices"
)

const (
	MemSize   = 0x1000
	ProgAddr  = 0x200 // where programs are loaded and execution starts
	FontAddr  = 0x050
	StackSize = 16
	NumKeys   = 16

	MaxProgSize = MemSize - ProgAddr
)

// Machine is an implementation of a CHIP-8 CPU and the hardware it can see.
type Machine struct {
	Mem   [MemSize]byte
	V     [16]byte
	I     uint16
	PC    uint16
	SP    byte // number of occupied Stack slots
	Stack [StackSize]uint16

	DT, ST byte // delay and sound timers

	Screen Screen
	Keys   [NumKeys]bool // written by the host only
	Wait   KeyWait

	Rand Rand

	rom []byte // as passed to Load, restored by Reset
}

// KeyWait holds the state of a suspended LD Vx, K instruction.
type KeyWait struct {
	Active bool
	Reg    byte
	Held   [NumKeys]bool // keys that were down when the wait began
}

// NewMachine returns a CHIP-8 CPU with the font loaded and PC at ProgAddr.
// If r is nil a randomly seeded source is used.
func NewMachine(r Rand) *Machine {
	if r == nil {
		r = NewRand(0)
	}
	m := &Machine{Rand: r}
	m.init()
	return m
}

func (m *Machine) init() {
	copy(m.Mem[FontAddr:], Font[:])
	m.PC = ProgAddr
}

var ErrProgramTooLarge = errors.New("program too large")

// Load copies rom into memory at ProgAddr.
func (m *Machine) Load(rom []byte) error {
	if len(rom) > MaxProgSize {
		return fmt.Errorf("%w: %d bytes, %d available", ErrProgramTooLarge, len(rom), MaxProgSize)
	}
	m.rom = slices.Clone(rom)
	copy(m.Mem[ProgAddr:], rom)
	return nil
}

// Reset returns the machine to its power-on state, keeping the
// randomness source. Memory is cleared and the program most recently
// passed to Load is copied back, undoing anything it wrote.
func (m *Machine) Reset() {
	*m = Machine{Rand: m.Rand, rom: m.rom}
	m.init()
	copy(m.Mem[ProgAddr:], m.rom)
}

// Tick decrements the delay and sound timers. It should be called 60
// times per second regardless of the instruction rate.
func (m *Machine) Tick() {
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
	}
}

// Waiting reports whether the machine is suspended on a key press,
// and which register will receive the key.
func (m *Machine) Waiting() (reg byte, ok bool) {
	return m.Wait.Reg, m.Wait.Active
}

// Looping reports whether the instruction at PC is a jump to itself.
func (m *Machine) Looping() bool {
	if int(m.PC)+1 >= MemSize {
		return false
	}
	in := Decode(short(m.Mem[m.PC], m.Mem[m.PC+1]))
	return in.Kind == JP && in.NNN == m.PC
}

func short(hi, lo byte) uint16 {
	return uint16(hi)<<8 | uint16(lo)
}
