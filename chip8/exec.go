package chip8

import (
	"errors"
	"fmt"
)

// ErrKeyWait is returned by Exec while an LD Vx, K instruction is waiting
// for a key to be pressed. PC is left pointing at the instruction, which
// completes when it is executed again after a new key press.
var ErrKeyWait = errors.New("waiting for key")

// Exec executes the instruction at m.PC. It returns ErrKeyWait if that
// instruction is waiting for input, and otherwise only returns a non-nil
// error (a HaltError) if it encounters a fault. A faulting instruction
// leaves the machine unchanged.
func (m *Machine) Exec() error {
	pc := m.PC
	if int(pc)+1 >= MemSize {
		return HaltError{HaltCode: OutOfBounds, Addr: pc}
	}
	return m.Execute(Decode(short(m.Mem[pc], m.Mem[pc+1])))
}

// Execute executes in as if it had been fetched from m.PC.
func (m *Machine) Execute(in Instruction) error {
	pc := m.PC
	err := m.execute(in)
	if code, ok := err.(HaltCode); ok {
		return HaltError{HaltCode: code, Op: in.Op, Addr: pc}
	}
	return err
}

func (m *Machine) execute(in Instruction) error {
	var (
		x, y   = in.X, in.Y
		vx, vy = m.V[x], m.V[y]
	)
	switch in.Kind {
	case CLS:
		m.Screen.Clear()
	case RET:
		if m.SP == 0 {
			return StackUnderflow
		}
		m.SP--
		m.PC = m.Stack[m.SP]
		return nil
	case JP:
		m.PC = in.NNN
		return nil
	case CALL:
		if m.SP == StackSize {
			return StackOverflow
		}
		m.Stack[m.SP] = m.PC + 2
		m.SP++
		m.PC = in.NNN
		return nil
	case JPV0:
		m.PC = in.NNN + uint16(m.V[0])
		return nil

	case SE:
		return m.skip(vx == in.NN)
	case SNE:
		return m.skip(vx != in.NN)
	case SEV:
		return m.skip(vx == vy)
	case SNEV:
		return m.skip(vx != vy)
	case SKP, SKNP:
		if vx >= NumKeys {
			return InvalidOpcode
		}
		return m.skip(m.Keys[vx] == (in.Kind == SKP))

	case LD:
		m.V[x] = in.NN
	case ADD:
		m.V[x] += in.NN
	case LDV:
		m.V[x] = vy
	case OR:
		m.V[x] = vx | vy
	case AND:
		m.V[x] = vx & vy
	case XOR:
		m.V[x] = vx ^ vy

	// The flag is written after the result so that it wins when x is F.
	case ADDV:
		sum := uint16(vx) + uint16(vy)
		m.V[x] = byte(sum)
		m.V[0xf] = flag(sum > 0xff)
	case SUB:
		m.V[x] = vx - vy
		m.V[0xf] = flag(vx > vy)
	case SUBN:
		m.V[x] = vy - vx
		m.V[0xf] = flag(vy > vx)
	case SHR:
		m.V[x] = vx >> 1
		m.V[0xf] = vx & 0x01
	case SHL:
		m.V[x] = vx << 1
		m.V[0xf] = vx >> 7

	case LDI:
		m.I = in.NNN
	case ADDI:
		m.I += uint16(vx) // not masked to 12 bits
	case LDF:
		if vx > 0xf {
			return InvalidOpcode
		}
		m.I = FontAddr + uint16(vx)*glyphSize
	case RND:
		m.V[x] = in.NN & m.Rand.Byte()
	case DRW:
		sprite, err := m.mem(m.I, int(in.N))
		if err != nil {
			return err
		}
		m.V[0xf] = flag(m.Screen.Draw(vx, vy, sprite))

	case LDVDT:
		m.V[x] = m.DT
	case LDDT:
		m.DT = vx
	case LDST:
		m.ST = vx
	case LDK:
		return m.waitKey(x)

	case LDB:
		b, err := m.mem(m.I, 3)
		if err != nil {
			return err
		}
		b[0], b[1], b[2] = vx/100, vx/10%10, vx%10
	case STR:
		b, err := m.mem(m.I, int(x)+1)
		if err != nil {
			return err
		}
		copy(b, m.V[:x+1])
	case LDR:
		b, err := m.mem(m.I, int(x)+1)
		if err != nil {
			return err
		}
		copy(m.V[:x+1], b)

	default:
		return InvalidOpcode
	}
	m.PC += 2
	return nil
}

func (m *Machine) skip(cond bool) error {
	if cond {
		m.PC += 4
	} else {
		m.PC += 2
	}
	return nil
}

// mem returns the n bytes of memory at addr.
func (m *Machine) mem(addr uint16, n int) ([]byte, error) {
	if int(addr)+n > MemSize {
		return nil, OutOfBounds
	}
	return m.Mem[addr : int(addr)+n], nil
}

func (m *Machine) waitKey(x byte) error {
	w := &m.Wait
	if !w.Active {
		*w = KeyWait{Active: true, Reg: x, Held: m.Keys}
		return ErrKeyWait
	}
	for k, down := range m.Keys {
		if down && !w.Held[k] {
			m.V[x] = byte(k)
			*w = KeyWait{}
			m.PC += 2
			return nil
		}
		// A held key that is released counts when pressed again.
		w.Held[k] = w.Held[k] && down
	}
	return ErrKeyWait
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// OpAddr returns the memory address the instruction at addr refers to,
// either from the instruction itself or from the I register, and reports
// whether the instruction has an associated address.
func (m *Machine) OpAddr(addr uint16) (uint16, bool) {
	if int(addr)+1 >= MemSize {
		return 0, false
	}
	switch in := Decode(short(m.Mem[addr], m.Mem[addr+1])); in.Kind {
	case JP, CALL, LDI:
		return in.NNN, true
	case JPV0:
		return in.NNN + uint16(m.V[0]), true
	case DRW, LDB, STR, LDR:
		return m.I, true
	}
	return 0, false
}

// HaltError is returned by Exec if execution is halted by a fault.
type HaltError struct {
	HaltCode
	Op   Op
	Addr uint16
}

func (e HaltError) Error() string {
	return fmt.Sprintf("%s executing %s at %.4x", e.HaltCode, e.Op, e.Addr)
}

// HaltCode signifies the type of fault that halted execution.
type HaltCode byte

const (
	InvalidOpcode  HaltCode = 0x01
	StackOverflow  HaltCode = 0x02
	StackUnderflow HaltCode = 0x03
	OutOfBounds    HaltCode = 0x04
)

func (c HaltCode) String() string {
	if s, ok := map[HaltCode]string{
		InvalidOpcode:  "invalid opcode",
		StackOverflow:  "stack overflow",
		StackUnderflow: "stack underflow",
		OutOfBounds:    "out of bounds memory access",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}

func (c HaltCode) Error() string { return c.String() }
