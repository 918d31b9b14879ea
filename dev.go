package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/c8/vip"
)

// devMode runs the program and reloads it, re-building it first if it is
// Octo source, whenever it or its symbol file changes. If dbg is not nil
// the debugger is shown on the terminal.
func devMode(ctx context.Context, o options, fe vip.Frontend, dbg *debugger, logger *log.Logger) (int, error) {
	src := filepath.Clean(o.rom)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return 0, err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(src)); err != nil {
		return 0, err
	}
	tmp, err := os.MkdirTemp("", "c8-dev-*")
	if err != nil {
		return 0, err
	}
	defer os.RemoveAll(tmp)

	// Leaving the debugger ends the session, even before the first
	// successful build has started the runner.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var state vip.StateFunc
	if dbg != nil {
		state = dbg.StateFunc
	}
	runner := vip.NewRunner(fe, true, o.vipOptions(logger, state))
	if dbg != nil {
		dbg.run = runner
		go func() {
			if err := dbg.Run(); err != nil {
				logger.Error("Debugger failed", log.Err(err))
			}
			cancel()
		}()
		defer dbg.Stop()
	}

	var buildOut io.Writer = os.Stderr
	if dbg != nil {
		buildOut = dbg.log
	}
	romCh := make(chan []byte)
	go func() {
		started := false
		run := time.After(1 * time.Millisecond)
		for {
			select {
			case <-run:
				logger.Info("Building", log.String("file", filepath.Base(src)))
				rom, err := build(buildOut, src, tmp)
				if err != nil {
					logger.Error("Build failed", log.Err(err))
					break
				}
				if dbg != nil {
					syms, err := parseSymbols(src + ".sym")
					if err != nil && !errors.Is(err, fs.ErrNotExist) {
						logger.Error("Reading symbols failed", log.Err(err))
					}
					dbg.setSymbols(syms)
				}
				if !started {
					logger.Info("Starting")
					select {
					case romCh <- rom:
						started = true
					case <-ctx.Done():
						return
					}
				} else {
					logger.Info("Reloading")
					if err := runner.Swap(rom); err != nil {
						logger.Error("Reload failed", log.Err(err))
					}
				}
			case ev, ok := <-watcher.Event:
				if !ok {
					return
				}
				if (ev.Name == src || ev.Name == src+".sym") && !ev.IsAttrib() {
					run = time.After(100 * time.Millisecond)
				}
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				logger.Error("Watcher failed", log.Err(err))
			case <-ctx.Done():
				return
			}
		}
	}()

	select {
	case rom := <-romCh:
		return runner.Run(ctx, rom), nil
	case <-ctx.Done():
		return 0, nil
	}
}

// build returns the program in file, assembling it with octo into dir
// first if it is Octo source.
func build(out io.Writer, file, dir string) ([]byte, error) {
	if strings.ToLower(filepath.Ext(file)) != ".8o" {
		return os.ReadFile(file)
	}
	rom := filepath.Join(dir, strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))+".ch8")
	cmd := exec.Command("octo", file, rom)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("octo: %w", err)
	}
	return os.ReadFile(rom)
}
