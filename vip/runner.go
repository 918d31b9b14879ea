package vip

import (
	"context"
	"errors"

	"github.com/retroenv/retrogolib/log"
)

// Frontend presents a running VIP to the user.
type Frontend interface {
	Output

	// Run drives the frontend, feeding keys, until exit is closed or the
	// user quits. It may need to be called from the main goroutine.
	Run(keys *Keypad, exit <-chan bool) error
}

// Runner executes programs and, in dev mode, lets them be swapped and
// debugged while running.
type Runner struct {
	fe   Frontend
	dev  bool
	opts Options
	log  *log.Logger

	swap     chan *VIP
	swapDone chan bool
	debug    chan debugCmd
	done     chan bool

	brk, dbg uint16 // carried across swaps
}

// NewRunner returns a Runner that presents programs on fe, or runs them
// headless if fe is nil. In dev mode a program that halts leaves the
// Runner waiting for Swap instead of returning.
func NewRunner(fe Frontend, devMode bool, opts Options) *Runner {
	if opts.Logger == nil {
		opts.Logger = log.NewWithConfig(log.DefaultConfig())
	}
	if opts.Keys == nil {
		opts.Keys = &Keypad{}
	}
	return &Runner{
		fe:       fe,
		dev:      devMode,
		opts:     opts,
		log:      opts.Logger,
		swap:     make(chan *VIP),
		swapDone: make(chan bool),
		debug:    make(chan debugCmd),
		done:     make(chan bool),
	}
}

// Swap replaces the running program with rom, keeping the frontend and
// the debugger's break and debug addresses.
func (r *Runner) Swap(rom []byte) error {
	if !r.dev {
		panic("Swap called while not running in dev mode")
	}
	v, err := New(rom, r.opts)
	if err != nil {
		return err
	}
	select {
	case r.swap <- v:
		<-r.swapDone
	case <-r.done:
	}
	return nil
}

// Debug passes a command to the running VIP (see VIP.Debug).
// The "exit" command stops the Runner.
func (r *Runner) Debug(cmd string, addr uint16) {
	select {
	case r.debug <- debugCmd{cmd, addr}:
	case <-r.done:
	}
}

// Run executes rom until the program ends, faults (outside dev mode), the
// frontend is closed or ctx is done. It returns the process exit code.
func (r *Runner) Run(ctx context.Context, rom []byte) (exitCode int) {
	v, err := New(rom, r.opts)
	if err != nil {
		r.log.Error("Loading program failed", log.Err(err))
		close(r.done)
		return 1
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go r.loop(ctx, v, &exitCode)

	feCode := 0
	if r.fe != nil {
		if err := r.fe.Run(r.opts.Keys, r.done); err != nil {
			r.log.Error("Frontend failed", log.Err(err))
			feCode = 1
		}
		cancel()
	}
	<-r.done
	return max(exitCode, feCode)
}

func (r *Runner) loop(ctx context.Context, v *VIP, code *int) {
	defer close(r.done)
	var (
		execErr = make(chan error)
		running = true
		out     Output
	)
	if r.fe != nil {
		out = r.fe
	}
	start := func(v *VIP) {
		go func() { execErr <- v.Exec(ctx, out) }()
	}
	start(v)
	for {
		select {
		case nv := <-r.swap:
			if running {
				v.Halt()
				<-execErr
			}
			v, running, *code = nv, true, 0
			start(v)
			if r.brk != 0 {
				v.Debug("b", r.brk)
			}
			if r.dbg != 0 {
				v.Debug("d", r.dbg)
			}
			r.swapDone <- true

		case c := <-r.debug:
			switch c.cmd {
			case "exit":
				if running {
					v.Halt()
					<-execErr
				}
				return
			case "b", "break":
				r.brk = c.addr
			case "d", "debug":
				r.dbg = c.addr
			}
			if running {
				v.Debug(c.cmd, c.addr)
			}

		case err := <-execErr:
			running = false
			switch {
			case err == nil:
				return
			case errors.Is(err, ErrLoop):
				r.log.Info("Program finished", log.String("reason", err.Error()))
			default:
				*code = 1
			}
			if !r.dev {
				return
			}

		case <-ctx.Done():
			if running {
				<-execErr
			}
			return
		}
	}
}
