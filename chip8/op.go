package chip8

import "fmt"

// Op represents a CHIP-8 instruction word.
type Op uint16

// Category returns the top nibble, which selects the instruction group.
func (o Op) Category() byte { return byte(o >> 12) }

func (o Op) X() byte     { return byte(o>>8) & 0xf }
func (o Op) Y() byte     { return byte(o>>4) & 0xf }
func (o Op) N() byte     { return byte(o) & 0xf }
func (o Op) NN() byte    { return byte(o) }
func (o Op) NNN() uint16 { return uint16(o) & 0xfff }

func (o Op) String() string { return fmt.Sprintf("%.4x", uint16(o)) }

// Kind identifies the operation an instruction word performs.
type Kind byte

const (
	Unknown Kind = iota
	CLS          // 00E0
	RET          // 00EE
	JP           // 1nnn
	CALL         // 2nnn
	SE           // 3xnn
	SNE          // 4xnn
	SEV          // 5xy0
	LD           // 6xnn
	ADD          // 7xnn
	LDV          // 8xy0
	OR           // 8xy1
	AND          // 8xy2
	XOR          // 8xy3
	ADDV         // 8xy4
	SUB          // 8xy5
	SHR          // 8xy6
	SUBN         // 8xy7
	SHL          // 8xyE
	SNEV         // 9xy0
	LDI          // Annn
	JPV0         // Bnnn
	RND          // Cxnn
	DRW          // Dxyn
	SKP          // Ex9E
	SKNP         // ExA1
	LDVDT        // Fx07
	LDK          // Fx0A
	LDDT         // Fx15
	LDST         // Fx18
	ADDI         // Fx1E
	LDF          // Fx29
	LDB          // Fx33
	STR          // Fx55
	LDR          // Fx65
)

var kindNames = [...]string{
	Unknown: "???",
	CLS:     "CLS",
	RET:     "RET",
	JP:      "JP",
	CALL:    "CALL",
	SE:      "SE",
	SNE:     "SNE",
	SEV:     "SE",
	LD:      "LD",
	ADD:     "ADD",
	LDV:     "LD",
	OR:      "OR",
	AND:     "AND",
	XOR:     "XOR",
	ADDV:    "ADD",
	SUB:     "SUB",
	SHR:     "SHR",
	SUBN:    "SUBN",
	SHL:     "SHL",
	SNEV:    "SNE",
	LDI:     "LD",
	JPV0:    "JP",
	RND:     "RND",
	DRW:     "DRW",
	SKP:     "SKP",
	SKNP:    "SKNP",
	LDVDT:   "LD",
	LDK:     "LD",
	LDDT:    "LD",
	LDST:    "LD",
	ADDI:    "ADD",
	LDF:     "LD",
	LDB:     "LD",
	STR:     "LD",
	LDR:     "LD",
}

// String returns the assembler mnemonic of the kind.
// Several kinds share a mnemonic and differ only in their operands.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op   Op
	Kind Kind

	X, Y byte // register indices
	N    byte
	NN   byte
	NNN  uint16
}

// Decode splits w into its operand fields and identifies its Kind.
// It never fails: words that are not part of the instruction set
// decode with Kind Unknown and are rejected by Execute.
func Decode(w uint16) Instruction {
	o := Op(w)
	return Instruction{
		Op:   o,
		Kind: kindOf(o),
		X:    o.X(),
		Y:    o.Y(),
		N:    o.N(),
		NN:   o.NN(),
		NNN:  o.NNN(),
	}
}

var aluKinds = [16]Kind{
	0x0: LDV, 0x1: OR, 0x2: AND, 0x3: XOR, 0x4: ADDV,
	0x5: SUB, 0x6: SHR, 0x7: SUBN, 0xe: SHL,
}

var miscKinds = map[byte]Kind{
	0x07: LDVDT, 0x0a: LDK, 0x15: LDDT, 0x18: LDST, 0x1e: ADDI,
	0x29: LDF, 0x33: LDB, 0x55: STR, 0x65: LDR,
}

func kindOf(o Op) Kind {
	switch o.Category() {
	case 0x0:
		switch o {
		case 0x00e0:
			return CLS
		case 0x00ee:
			return RET
		}
	case 0x1:
		return JP
	case 0x2:
		return CALL
	case 0x3:
		return SE
	case 0x4:
		return SNE
	case 0x5:
		if o.N() == 0 {
			return SEV
		}
	case 0x6:
		return LD
	case 0x7:
		return ADD
	case 0x8:
		return aluKinds[o.N()]
	case 0x9:
		if o.N() == 0 {
			return SNEV
		}
	case 0xa:
		return LDI
	case 0xb:
		return JPV0
	case 0xc:
		return RND
	case 0xd:
		return DRW
	case 0xe:
		switch o.NN() {
		case 0x9e:
			return SKP
		case 0xa1:
			return SKNP
		}
	case 0xf:
		return miscKinds[o.NN()]
	}
	return Unknown
}
