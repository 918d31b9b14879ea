package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

type debugger struct {
	run *vip.Runner

	log   *tview.TextView
	watch *tview.TextView
	state *tview.TextView
	input *tview.InputField
	cols  *tview.Flex
	rows  *tview.Flex
	app   *tview.Application

	mu       sync.Mutex
	syms     symbols
	dbg, brk *symbol
	watches  []watch
}

type watch struct {
	symbol
	short bool
}

func (d *debugger) symbols() symbols {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.syms
}

func (d *debugger) setSymbols(s symbols) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syms = s
}

func newDebugger() *debugger {
	d := &debugger{
		log: tview.NewTextView().
			SetDynamicColors(true).
			SetMaxLines(1000),
		watch: tview.NewTextView().
			SetWrap(false).
			SetTextAlign(tview.AlignRight),
		state: tview.NewTextView().
			SetWrap(false),
		input: tview.NewInputField(),
		cols:  tview.NewFlex(),
		rows: tview.NewFlex().
			SetDirection(tview.FlexRow),
		app: tview.NewApplication(),
	}
	d.log.SetChangedFunc(func() { d.app.Draw() })
	d.watch.SetBackgroundColor(tcell.ColorDarkBlue)
	d.state.SetBackgroundColor(tcell.ColorDarkGrey)
	d.cols.
		AddItem(d.watch, 0, 1, false).
		AddItem(d.log, 0, 2, false)
	d.rows.
		AddItem(d.cols, 0, 1, false).
		AddItem(d.state, 4, 0, false).
		AddItem(d.input, 1, 0, true)
	d.app.SetRoot(d.rows, true)

	d.input.SetAutocompleteFunc(func(t string) (entries []string) {
		if cmd, arg, ok := strings.Cut(t, " "); ok {
			switch cmd {
			case "b", "break", "d", "debug", "w", "w2", "watch", "watch2":
				for _, s := range d.symbols().withLabelPrefix(arg) {
					entries = append(entries, cmd+" "+s.label)
				}
			}
		}
		return
	})
	d.input.SetAutocompletedFunc(func(t string, index, src int) bool {
		if src != tview.AutocompletedNavigate {
			d.input.SetText(t)
		}
		return src == tview.AutocompletedEnter || src == tview.AutocompletedClick
	})
	d.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		cmd := d.input.GetText()
		if cmd == "" {
			return
		}
		d.input.SetText("")
		if cmd == "exit" {
			d.app.Stop()
			return
		}
		d.command(cmd)
	})
	return d
}

// command interprets a line typed into the debugger. Commands not
// handled here go to the runner as they are.
func (d *debugger) command(line string) {
	cmd, arg, hasArg := strings.Cut(line, " ")
	switch cmd {
	case "b", "break", "d", "debug":
		if !hasArg {
			d.run.Debug(cmd, 0)
			d.mu.Lock()
			if cmd[0] == 'b' {
				d.brk = nil
			} else {
				d.dbg = nil
			}
			d.mu.Unlock()
			d.logf("cleared %s", cmd)
			return
		}
		s, ok := d.symbols().resolve(arg)
		if !ok {
			d.logf("invalid address %q", arg)
			return
		}
		d.run.Debug(cmd, s.addr)
		d.mu.Lock()
		if cmd[0] == 'b' {
			d.brk = &s
		} else {
			d.dbg = &s
		}
		d.mu.Unlock()
		d.logf("set %s %.4x", cmd, s.addr)
	case "w", "w2", "watch", "watch2":
		s, ok := d.symbols().resolve(arg)
		if !ok {
			d.logf("invalid address %q", arg)
			return
		}
		d.mu.Lock()
		d.watches = append(d.watches,
			watch{symbol: s, short: strings.HasSuffix(cmd, "2")})
		d.mu.Unlock()
		d.logf("watching %.4x", s.addr)
	case "uw", "unwatch":
		d.mu.Lock()
		d.watches = nil
		d.mu.Unlock()
		d.logf("cleared watches")
	case "p", "pause", "c", "cont", "s", "step", "r", "reset":
		d.run.Debug(cmd, 0)
	default:
		d.logf("unknown command %q (b, d, w, w2, uw, p, c, s, r, exit)", cmd)
	}
}

func (d *debugger) logf(format string, args ...any) {
	fmt.Fprintf(d.log, format+"\n", args...)
}

// captureOutput sends everything written to standard output and standard
// error into the log view, since the debugger draws on the terminal.
func (d *debugger) captureOutput() error {
	r, w, err := os.Pipe()
	if err != nil {
		return err
	}
	os.Stdout, os.Stderr = w, w
	go io.Copy(tview.ANSIWriter(d.log), r)
	return nil
}

func (d *debugger) Run() error { return d.app.Run() }

func (d *debugger) Stop() { d.app.Stop() }

func (d *debugger) StateFunc(m *chip8.Machine, k vip.StateKind) {
	var (
		watch = d.watchContent(m)
		state string
	)
	if k != vip.ClearState && k != vip.QuietState {
		state = stateMsg(d.symbols(), m, k)
	}
	d.app.QueueUpdateDraw(func() {
		switch k {
		case vip.DebugState, vip.ClearState:
			d.state.SetTextColor(tcell.ColorBlack)
			d.state.SetBackgroundColor(tcell.ColorDarkGrey)
		case vip.BreakState:
			d.state.SetTextColor(tcell.ColorYellow)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case vip.PauseState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkBlue)
		case vip.HaltState:
			d.state.SetTextColor(tcell.ColorWhite)
			d.state.SetBackgroundColor(tcell.ColorDarkRed)
		}
		d.watch.SetText(watch)
		if k != vip.QuietState {
			d.state.SetText(state)
		}
	})
}

func stateMsg(syms symbols, m *chip8.Machine, k vip.StateKind) string {
	var (
		op    chip8.Op
		pcSym string
		sym   string
	)
	if int(m.PC)+1 < chip8.MemSize {
		op = chip8.Op(uint16(m.Mem[m.PC])<<8 | uint16(m.Mem[m.PC+1]))
	}
	if s := syms.forAddr(m.PC); len(s) > 0 {
		pcSym = s[0].String() + " -> "
	}
	if addr, ok := m.OpAddr(m.PC); ok {
		for i, s := range syms.forAddr(addr) {
			if i != 0 {
				sym += " "
			}
			sym += s.String()
		}
	}
	kind := "       "
	switch k {
	case vip.BreakState:
		kind = "[break]"
	case vip.DebugState:
		kind = "[debug]"
	case vip.PauseState:
		kind = "[pause]"
	case vip.HaltState:
		kind = "[HALT!]"
	}
	return fmt.Sprintf("%.4x %v %-16s %s %s%s\n%s\n",
		m.PC, op, chip8.Disasm(op), kind, pcSym, sym, m.DumpRegs())
}

func (d *debugger) watchContent(m *chip8.Machine) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	var b strings.Builder
	if s := d.brk; s != nil {
		fmt.Fprintf(&b, "%s [%.4x] brk!\n", s.label, s.addr)
	}
	if s := d.dbg; s != nil {
		fmt.Fprintf(&b, "%s [%.4x] dbg?\n", s.label, s.addr)
	}
	for _, w := range d.watches {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s [%.4x] ", w.label, w.addr)
		if w.short && int(w.addr)+1 < chip8.MemSize {
			fmt.Fprintf(&b, "%.2x%.2x", m.Mem[w.addr], m.Mem[w.addr+1])
		} else {
			fmt.Fprintf(&b, "  %.2x", m.Mem[w.addr])
		}
	}
	return b.String()
}
