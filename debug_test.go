package main

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

func TestStateMsg(t *testing.T) {
	m := chip8.NewMachine(nil)
	assert.NoError(t, m.Load([]byte{0x22, 0x04, 0x12, 0x02, 0x00, 0xee}))
	syms := symbols{{0x200, "main"}, {0x204, "sub"}}

	msg := stateMsg(syms, m, vip.BreakState)
	first, _, _ := strings.Cut(msg, "\n")
	assert.Contains(t, first, "0200 2204")
	assert.Contains(t, first, chip8.Disasm(0x2204))
	assert.Contains(t, first, "[break]")
	assert.Contains(t, first, "main (0200) -> sub (0204)")
	assert.Contains(t, msg, "pc 0200")
}

func TestWatchContent(t *testing.T) {
	d := &debugger{}
	m := chip8.NewMachine(nil)
	m.Mem[0x300], m.Mem[0x301] = 0xab, 0xcd
	d.brk = &symbol{0x200, "main"}
	d.watches = []watch{
		{symbol: symbol{0x300, "score"}},
		{symbol: symbol{0x300, "word"}, short: true},
	}
	assert.Equal(t, "main [0200] brk!\n\nscore [0300]   ab\nword [0300] abcd", d.watchContent(m))
}
