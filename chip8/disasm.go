package chip8

import (
	"fmt"
	"strings"

	cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Mnemonic returns the assembler mnemonic for o as named by the
// retrogolib CHIP-8 opcode table, falling back to the Kind name for
// words the table does not list.
func Mnemonic(o Op) string {
	w := uint16(o)
	for _, op := range cpu.Opcodes[int(o.Category())] {
		if op.Instruction != nil && op.Info.Mask&w == op.Info.Value {
			return strings.ToLower(op.Instruction.Name)
		}
	}
	return strings.ToLower(kindOf(o).String())
}

// Disasm returns the assembly text for the instruction word o.
func Disasm(o Op) string {
	in := Decode(uint16(o))
	if in.Kind == Unknown {
		return fmt.Sprintf("db $%.2X, $%.2X", byte(o>>8), byte(o))
	}
	name := Mnemonic(o)
	if args := operands(in); args != "" {
		return name + " " + args
	}
	return name
}

func operands(in Instruction) string {
	switch in.Kind {
	case CLS, RET:
		return ""
	case JP, CALL:
		return fmt.Sprintf("$%.3X", in.NNN)
	case JPV0:
		return fmt.Sprintf("V0, $%.3X", in.NNN)
	case SE, SNE, LD, ADD, RND:
		return fmt.Sprintf("V%X, $%.2X", in.X, in.NN)
	case SEV, SNEV, LDV, OR, AND, XOR, ADDV, SUB, SUBN:
		return fmt.Sprintf("V%X, V%X", in.X, in.Y)
	case SHR, SHL, SKP, SKNP:
		return fmt.Sprintf("V%X", in.X)
	case LDI:
		return fmt.Sprintf("I, $%.3X", in.NNN)
	case DRW:
		return fmt.Sprintf("V%X, V%X, $%X", in.X, in.Y, in.N)
	case LDVDT:
		return fmt.Sprintf("V%X, DT", in.X)
	case LDK:
		return fmt.Sprintf("V%X, K", in.X)
	case LDDT:
		return fmt.Sprintf("DT, V%X", in.X)
	case LDST:
		return fmt.Sprintf("ST, V%X", in.X)
	case ADDI:
		return fmt.Sprintf("I, V%X", in.X)
	case LDF:
		return fmt.Sprintf("F, V%X", in.X)
	case LDB:
		return fmt.Sprintf("B, V%X", in.X)
	case STR:
		return fmt.Sprintf("[I], V%X", in.X)
	case LDR:
		return fmt.Sprintf("V%X, [I]", in.X)
	}
	return ""
}
