// Package vip runs CHIP-8 programs on a host modelled after the COSMAC VIP:
// a 60 Hz frame loop driving the instruction and timer clocks, a hex
// keypad, a monochrome display and a buzzer.
package vip

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/retroenv/retrogolib/log"

	"github.com/nf/c8/chip8"
)

const (
	DefaultHz = 700
	MaxHz     = 1000000
)

// Options configures a VIP.
type Options struct {
	Hz         int    // instructions per second; zero means DefaultHz
	Seed       uint64 // seed for RND; zero picks a random one
	ExitOnLoop bool   // stop when the program jumps to itself
	Trace      bool   // log every instruction at debug level

	Logger *log.Logger
	Keys   *Keypad   // shared with the frontend; nil allocates one
	State  StateFunc // may be nil
}

// ErrLoop is returned by Exec when Options.ExitOnLoop is set and the
// program reaches a jump to itself, the conventional way to end.
var ErrLoop = errors.New("program is looping")

// errYield stops the instructions due in the current frame.
var errYield = errors.New("yield")

// Output receives what the program shows and sounds.
// Its methods are called from the goroutine running Exec.
type Output interface {
	Draw(s chip8.Screen)
	Beep(on bool)
}

// StateKind tells a StateFunc why it was called.
type StateKind int

const (
	ClearState StateKind = iota // execution resumed
	QuietState                  // end of a frame
	DebugState                  // the debug address was reached
	BreakState                  // the break address was reached
	PauseState                  // execution is paused
	HaltState                   // the machine faulted
)

// StateFunc is called from the goroutine running Exec with the machine
// in a consistent state. It must not retain m.
type StateFunc func(m *chip8.Machine, k StateKind)

// VIP is a CHIP-8 machine together with the clocks and devices around it.
type VIP struct {
	m    *chip8.Machine
	opts Options
	log  *log.Logger
	keys *Keypad

	cpu, timer chip8.Clock

	dirty   bool // screen changed since last Draw
	beeping bool
	waiting bool
	looping bool

	paused   bool
	resume   bool // ignore the break address once
	brk, dbg uint16

	debug    chan debugCmd
	halt     chan bool
	haltOnce sync.Once
	done     chan bool // closed when Exec returns
}

type debugCmd struct {
	cmd  string
	addr uint16
}

// New returns a VIP with rom loaded and ready to run.
func New(rom []byte, opts Options) (*VIP, error) {
	switch {
	case opts.Hz == 0:
		opts.Hz = DefaultHz
	case opts.Hz < 0 || opts.Hz > MaxHz:
		return nil, fmt.Errorf("instruction rate %d Hz out of range 1-%d", opts.Hz, MaxHz)
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithConfig(log.DefaultConfig())
	}
	if opts.Keys == nil {
		opts.Keys = &Keypad{}
	}
	m := chip8.NewMachine(chip8.NewRand(opts.Seed))
	if err := m.Load(rom); err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}
	return &VIP{
		m:     m,
		opts:  opts,
		log:   opts.Logger,
		keys:  opts.Keys,
		cpu:   chip8.Clock{Period: time.Second / time.Duration(opts.Hz)},
		timer: chip8.Clock{Period: chip8.TimerPeriod},
		dirty: true,
		debug: make(chan debugCmd),
		halt:  make(chan bool),
		done:  make(chan bool),
	}, nil
}

// Machine returns the underlying machine. It must only be inspected while
// Exec is not running, or from a StateFunc.
func (v *VIP) Machine() *chip8.Machine { return v.m }

// Halt stops a running Exec. It may be called more than once.
func (v *VIP) Halt() {
	v.haltOnce.Do(func() { close(v.halt) })
}

// Exec runs the machine at 60 frames per second, presenting each frame to
// out (which may be nil), until ctx is done or Halt is called, in which
// case it returns nil. Otherwise it returns the fault that stopped the
// machine, or ErrLoop. Exec may only be called once.
func (v *VIP) Exec(ctx context.Context, out Output) error {
	defer close(v.done)
	t := time.NewTicker(chip8.TimerPeriod)
	defer t.Stop()
	v.log.Debug("Starting machine", log.Int("hz", v.opts.Hz))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-v.halt:
			return nil
		case c := <-v.debug:
			if err := v.command(c); err != nil {
				v.present(out)
				return err
			}
		case now := <-t.C:
			err := v.Frame(now)
			v.present(out)
			if err != nil {
				if errors.As(err, new(chip8.HaltError)) {
					v.state(HaltState)
				}
				return err
			}
			v.state(QuietState)
		}
	}
}

// Frame advances the machine to now: it decrements the timers once per
// elapsed 1/60 s, then executes the instructions due at the configured
// rate. It stops early while the program waits for a key or loops.
func (v *VIP) Frame(now time.Time) error {
	if v.paused {
		return nil
	}
	v.m.Keys = v.keys.State()
	for n := v.timer.Ticks(now); n > 0; n-- {
		v.m.Tick()
	}
	for n := v.cpu.Ticks(now); n > 0; n-- {
		if err := v.step(); err == errYield {
			break
		} else if err != nil {
			return err
		}
	}
	return nil
}

func (v *VIP) step() error {
	m := v.m
	pc := m.PC
	// A suspended key wait already passed these checks.
	if !m.Wait.Active {
		if v.brk != 0 && pc == v.brk && !v.resume {
			v.paused = true
			v.log.Info("Break", log.Hex("pc", pc))
			v.state(BreakState)
			return errYield
		}
		if v.dbg != 0 && pc == v.dbg {
			v.state(DebugState)
		}
	}
	v.resume = false

	in, ok := v.fetch()
	if v.opts.Trace && ok && !v.waiting {
		v.log.Debug("Exec", log.Hex("pc", pc), log.String("op", chip8.Disasm(in.Op)))
	}
	switch err := m.Exec(); {
	case err == chip8.ErrKeyWait:
		if !v.waiting {
			v.waiting = true
			reg, _ := m.Waiting()
			v.log.Debug("Waiting for key", log.Hex("pc", pc), log.Uint8("reg", reg))
		}
		return errYield
	case err != nil:
		v.log.Error("Machine halted", log.Err(err))
		return err
	}
	v.waiting = false
	if in.Kind == chip8.CLS || in.Kind == chip8.DRW {
		v.dirty = true
	}
	if m.Looping() {
		if v.opts.ExitOnLoop {
			return ErrLoop
		}
		if !v.looping {
			v.looping = true
			v.log.Info("Program is looping", log.Hex("pc", m.PC))
		}
		return errYield
	}
	return nil
}

func (v *VIP) fetch() (chip8.Instruction, bool) {
	pc := int(v.m.PC)
	if pc+1 >= chip8.MemSize {
		return chip8.Instruction{}, false
	}
	return chip8.Decode(uint16(v.m.Mem[pc])<<8 | uint16(v.m.Mem[pc+1])), true
}

func (v *VIP) present(out Output) {
	if out == nil {
		return
	}
	if beep := v.m.ST > 0; beep != v.beeping {
		v.beeping = beep
		out.Beep(beep)
	}
	if v.dirty {
		v.dirty = false
		out.Draw(v.m.Screen)
	}
}

func (v *VIP) state(k StateKind) {
	if f := v.opts.State; f != nil {
		f(v.m, k)
	}
}

// Debug sends a command to the goroutine running Exec. The commands are:
//
//	b, break  pause before executing addr; zero clears
//	d, debug  report state whenever addr is executed; zero clears
//	p, pause  pause execution
//	c, cont   continue after a pause or break
//	s, step   execute one instruction while paused
//	r, reset  reset the machine, keeping the program
func (v *VIP) Debug(cmd string, addr uint16) {
	select {
	case v.debug <- debugCmd{cmd, addr}:
	case <-v.halt:
	case <-v.done:
	}
}

func (v *VIP) command(c debugCmd) error {
	switch c.cmd {
	case "b", "break":
		v.brk = c.addr
	case "d", "debug":
		v.dbg = c.addr
	case "p", "pause":
		v.paused = true
		v.state(PauseState)
	case "c", "cont":
		if !v.paused {
			return nil
		}
		v.paused, v.resume = false, true
		v.cpu.Reset()
		v.timer.Reset()
		v.state(ClearState)
	case "s", "step":
		if !v.paused {
			return nil
		}
		v.resume = true
		v.m.Keys = v.keys.State()
		if err := v.step(); err != nil && err != errYield && err != ErrLoop {
			v.state(HaltState)
			return err
		}
		v.paused = true
		v.state(PauseState)
	case "r", "reset":
		v.m.Reset()
		v.dirty = true
		v.waiting, v.looping = false, false
		v.cpu.Reset()
		v.timer.Reset()
		v.log.Info("Machine reset")
		v.state(ClearState)
	default:
		v.log.Error("Unknown debug command", log.String("cmd", c.cmd))
	}
	return nil
}
