package main

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestBuildBinary(t *testing.T) {
	p := writeFile(t, "game.ch8", "\x12\x00")
	rom, err := build(nil, p, t.TempDir())
	assert.NoError(t, err)
	assert.Equal(t, "\x12\x00", string(rom))
}

func TestBuildOcto(t *testing.T) {
	if _, err := exec.LookPath("octo"); err != nil {
		t.Skip("octo not installed")
	}
	p := writeFile(t, "game.8o", ": main\n  loop again\n")
	var out bytes.Buffer
	rom, err := build(&out, p, t.TempDir())
	assert.NoError(t, err, out.String())
	assert.NotEmpty(t, rom)
}

func TestDevModeCancelBeforeBuild(t *testing.T) {
	dir := t.TempDir()
	o := options{rom: filepath.Join(dir, "missing.ch8"), hz: 600}
	ctx, cancel := context.WithCancel(context.Background())
	codec := make(chan int)
	go func() {
		code, err := devMode(ctx, o, nil, nil, log.NewNop())
		assert.NoError(t, err)
		codec <- code
	}()
	time.Sleep(50 * time.Millisecond) // let the first build fail
	cancel()
	select {
	case code := <-codec:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("dev mode did not stop after the build failed")
	}
}
