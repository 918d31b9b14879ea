package chip8

import (
	"bytes"
	"strings"
	"testing"
)

func TestDumpMem(t *testing.T) {
	m := newTestMachine(0x00e0, 0x1200)
	var b bytes.Buffer
	if err := m.DumpMem(&b); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(b.String(), "\n"), "\n")
	if len(lines) != MemSize/16 {
		t.Fatalf("got %d lines, want %d", len(lines), MemSize/16)
	}
	if g, w := lines[ProgAddr/16], "200:  00e0 1200 0000 0000 0000 0000 0000 0000"; g != w {
		t.Errorf("program line is\n%q\nwant\n%q", g, w)
	}
	if g, w := lines[FontAddr/16], "050:  f090 9090 f020 6020 2070 f010 f080 f0f0"; g != w {
		t.Errorf("font line is\n%q\nwant\n%q", g, w)
	}
}

func TestDumpRegs(t *testing.T) {
	m := newTestMachine()
	m.V[0], m.V[0xf] = 0x12, 0x01
	m.I, m.DT = 0x345, 9
	m.Stack[0], m.SP = 0x202, 1
	want := "pc 0200  i 0345  dt 09  st 00  sp 1 ( 0202 )\n" +
		"v0 12 v1 00 v2 00 v3 00 v4 00 v5 00 v6 00 v7 00 " +
		"v8 00 v9 00 va 00 vb 00 vc 00 vd 00 ve 00 vf 01"
	if g := m.DumpRegs(); g != want {
		t.Errorf("DumpRegs() =\n%s\nwant\n%s", g, want)
	}
}
