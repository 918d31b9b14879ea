package chip8

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DumpMem writes memory to w in the style of xxd: sixteen bytes per line,
// grouped as big-endian words, prefixed with the address.
func (m *Machine) DumpMem(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for addr := 0; addr < MemSize; addr += 16 {
		fmt.Fprintf(bw, "%.3x: ", addr)
		for i := 0; i < 16; i += 2 {
			fmt.Fprintf(bw, " %.2x%.2x", m.Mem[addr+i], m.Mem[addr+i+1])
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// DumpRegs returns a two line summary of the registers, timers and stack.
func (m *Machine) DumpRegs() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pc %.4x  i %.4x  dt %.2x  st %.2x  sp %d (", m.PC, m.I, m.DT, m.ST, m.SP)
	for _, a := range m.Stack[:m.SP] {
		fmt.Fprintf(&b, " %.4x", a)
	}
	b.WriteString(" )\n")
	for i, v := range m.V {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "v%x %.2x", i, v)
	}
	return b.String()
}
