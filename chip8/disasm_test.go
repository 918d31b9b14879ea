package chip8

import (
	"strings"
	"testing"

	cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

func TestMnemonic(t *testing.T) {
	for _, c := range []struct {
		op   Op
		want string
	}{
		{0x00e0, cpu.ClsName},
		{0x00ee, cpu.RetName},
		{0x1234, cpu.JpName},
		{0x2234, cpu.CallName},
		{0x6a12, cpu.LdName},
	} {
		if g := Mnemonic(c.op); !strings.EqualFold(g, c.want) {
			t.Errorf("Mnemonic(%v) = %q, want %q", c.op, g, c.want)
		}
	}
}

func TestDisasm(t *testing.T) {
	for _, c := range []struct {
		op   Op
		args string
	}{
		{0x00e0, ""},
		{0x1234, " $234"},
		{0xb234, " V0, $234"},
		{0x3a12, " VA, $12"},
		{0x8ab4, " VA, VB"},
		{0x8a06, " VA"},
		{0xa123, " I, $123"},
		{0xd125, " V1, V2, $5"},
		{0xf30a, " V3, K"},
		{0xf315, " DT, V3"},
		{0xf307, " V3, DT"},
		{0xf329, " F, V3"},
		{0xf333, " B, V3"},
		{0xf355, " [I], V3"},
		{0xf365, " V3, [I]"},
	} {
		if g, w := Disasm(c.op), Mnemonic(c.op)+c.args; g != w {
			t.Errorf("Disasm(%v) = %q, want %q", c.op, g, w)
		}
	}
}

func TestDisasmUnknown(t *testing.T) {
	for op, want := range map[Op]string{
		0x0123: "db $01, $23",
		0x8abf: "db $8A, $BF",
		0xffff: "db $FF, $FF",
	} {
		if g := Disasm(op); g != want {
			t.Errorf("Disasm(%v) = %q, want %q", op, g, want)
		}
	}
}
