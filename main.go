// Command c8 executes CHIP-8 programs on an emulated COSMAC VIP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"

	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/c8/vip"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type options struct {
	rom string

	cli        bool
	dev        bool
	debug      bool
	cpuProfile string

	hz         int
	seed       uint64
	scale      int
	trace      bool
	exitOnLoop bool
	quiet      bool
	version    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			usageErr.ShowUsage()
			os.Exit(2)
		}
		newLogger(false, false).Fatal(err.Error())
	}
	if opts.version {
		fmt.Printf("c8 version %s\n", buildinfo.Version(version, commit, date))
		return
	}

	var dbg *debugger
	if opts.debug {
		// The debugger owns the terminal, so log output goes to its log view.
		dbg = newDebugger()
		if err := dbg.captureOutput(); err != nil {
			newLogger(false, false).Fatal(err.Error())
		}
	}
	logger := newLogger(opts.debug || opts.trace, opts.quiet)
	ctx := app.Context()

	if opts.dev || opts.debug {
		code, err := devMode(ctx, opts, newFrontend(opts, logger), dbg, logger)
		if err != nil {
			logger.Fatal("Dev mode failed", log.Err(err))
		}
		os.Exit(code)
	}

	var cpuProfile io.Closer
	if prof := opts.cpuProfile; prof != "" {
		f, err := os.Create(prof)
		if err != nil {
			logger.Fatal("Creating CPU profile file failed", log.Err(err))
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal("Starting CPU profile failed", log.Err(err))
		}
		cpuProfile = f
	}

	code, err := run(ctx, opts, logger)

	if f := cpuProfile; f != nil {
		pprof.StopCPUProfile()
		f.Close()
	}

	if err != nil {
		logger.Fatal("Running program failed", log.Err(err))
	}
	os.Exit(code)
}

func run(ctx context.Context, o options, logger *log.Logger) (int, error) {
	tmp, err := os.MkdirTemp("", "c8-build-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(tmp)

	rom, err := build(os.Stderr, o.rom, tmp)
	if err != nil {
		return 0, err
	}
	logger.Debug("Loaded program",
		log.String("file", o.rom),
		log.Int("size", len(rom)))

	r := vip.NewRunner(newFrontend(o, logger), false, o.vipOptions(logger, nil))
	return r.Run(ctx, rom), nil
}

func newLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// newFrontend picks the window, the terminal, or nothing when the
// terminal belongs to the debugger.
func newFrontend(o options, logger *log.Logger) vip.Frontend {
	switch {
	case !o.cli:
		return vip.NewGUI("c8 - "+filepath.Base(o.rom), o.scale, logger)
	case o.debug:
		return nil
	default:
		return newTerminal(logger)
	}
}

func (o options) vipOptions(logger *log.Logger, state vip.StateFunc) vip.Options {
	return vip.Options{
		Hz:         o.hz,
		Seed:       o.seed,
		ExitOnLoop: o.exitOnLoop,
		Trace:      o.trace,
		Logger:     logger,
		State:      state,
	}
}

func parseFlags(args []string) (options, error) {
	flags := flag.NewFlagSet("c8", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var opts options
	flags.BoolVar(&opts.cli, "cli", false, "use the terminal instead of a window")
	flags.BoolVar(&opts.dev, "dev", false, "enable developer mode (reload or re-build the program when it changes)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debugger (implies -dev)")
	flags.StringVar(&opts.cpuProfile, "cpu_profile", "", "write CPU profile to `file`")
	flags.IntVar(&opts.hz, "hz", vip.DefaultHz, "instructions executed per second")
	flags.Uint64Var(&opts.seed, "seed", 0, "seed for the random number generator (0 picks one)")
	flags.IntVar(&opts.scale, "scale", 10, "initial window size as a multiple of 64x32")
	flags.BoolVar(&opts.trace, "trace", false, "log every executed instruction")
	flags.BoolVar(&opts.exitOnLoop, "exit_on_loop", false, "exit when the program jumps to itself")
	flags.BoolVar(&opts.quiet, "q", false, "only log errors")
	flags.BoolVar(&opts.version, "version", false, "print version and exit")

	if err := flags.Parse(args); err != nil {
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}
	if opts.version {
		return opts, nil
	}
	if flags.NArg() != 1 {
		return opts, &UsageError{flags: flags, msg: "expected one program file"}
	}
	opts.rom = flags.Arg(0)
	if opts.hz < 1 || opts.hz > vip.MaxHz {
		return opts, &UsageError{flags: flags, msg: fmt.Sprintf("-hz must be between 1 and %d", vip.MaxHz)}
	}
	if opts.scale < 1 {
		return opts, &UsageError{flags: flags, msg: "-scale must be positive"}
	}
	if ext := strings.ToLower(filepath.Ext(opts.rom)); (opts.dev || opts.debug) && ext != ".ch8" && ext != ".8o" {
		return opts, &UsageError{flags: flags, msg: "dev mode needs a .ch8 or .8o file"}
	}
	return opts, nil
}

// UsageError is returned by parseFlags when the command line is invalid.
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	w := os.Stderr
	if e.msg != "" && e.msg != flag.ErrHelp.Error() {
		fmt.Fprintf(w, "c8: %s\n", e.msg)
	}
	fmt.Fprintf(w, "usage: c8 [options] <program.ch8 | program.8o>\n")
	fmt.Fprintf(w, "       c8 [options] <-dev | -debug> <program.ch8 | program.8o>\n\n")
	e.flags.SetOutput(w)
	e.flags.PrintDefaults()
	fmt.Fprintln(w)
}
