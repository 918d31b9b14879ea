package vip

import (
	"context"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/c8/chip8"
)

func TestRunnerExitOnLoop(t *testing.T) {
	r := NewRunner(nil, false, Options{ExitOnLoop: true, Logger: log.NewTestLogger(t)})
	code := r.Run(context.Background(), []byte{0x60, 0x01, 0x12, 0x02})
	assert.Equal(t, 0, code)
}

func TestRunnerFault(t *testing.T) {
	r := NewRunner(nil, false, Options{Logger: log.NewNop()})
	code := r.Run(context.Background(), []byte{0xff, 0xff})
	assert.Equal(t, 1, code)
}

func TestRunnerLoadError(t *testing.T) {
	r := NewRunner(nil, false, Options{Logger: log.NewNop()})
	code := r.Run(context.Background(), make([]byte, chip8.MaxProgSize+1))
	assert.Equal(t, 1, code)
	r.Debug("exit", 0) // does not block after Run returns
}

func TestRunnerCancel(t *testing.T) {
	r := NewRunner(nil, false, Options{Logger: log.NewTestLogger(t)})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	code := r.Run(ctx, []byte{0x12, 0x00})
	assert.Equal(t, 0, code)
}

// testFrontend stands in for a window, running until exit is closed.
type testFrontend struct {
	testOutput
	started chan bool
	quit    chan bool
}

func (f *testFrontend) Run(keys *Keypad, exit <-chan bool) error {
	close(f.started)
	select {
	case <-exit:
	case <-f.quit:
	}
	return nil
}

func TestRunnerFrontendQuit(t *testing.T) {
	fe := &testFrontend{started: make(chan bool), quit: make(chan bool)}
	r := NewRunner(fe, false, Options{Logger: log.NewTestLogger(t)})
	go func() {
		<-fe.started
		close(fe.quit)
	}()
	code := r.Run(context.Background(), []byte{0x12, 0x00})
	assert.Equal(t, 0, code)
}

func TestRunnerDevSwap(t *testing.T) {
	keys := &Keypad{}
	fe := &testFrontend{
		testOutput: testOutput{drawn: make(chan bool, 1)},
		started:    make(chan bool),
		quit:       make(chan bool),
	}
	r := NewRunner(fe, true, Options{Logger: log.NewNop(), Keys: keys})
	codec := make(chan int)
	go func() {
		// A faulting program does not stop the runner in dev mode.
		codec <- r.Run(context.Background(), []byte{0xff, 0xff})
	}()
	<-fe.started

	assert.Error(t, r.Swap(make([]byte, chip8.MaxProgSize+1)))
	r.Debug("b", 0x204)
	assert.NoError(t, r.Swap([]byte{0x00, 0xe0, 0x12, 0x02}))
	select {
	case <-fe.drawn:
	case <-time.After(5 * time.Second):
		t.Fatal("swapped program did not draw")
	}
	assert.Equal(t, uint16(0x204), r.brk)

	r.Debug("exit", 0)
	select {
	case code := <-codec:
		assert.Equal(t, 0, code)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not exit")
	}
}

func TestRunnerSwapOutsideDevMode(t *testing.T) {
	r := NewRunner(nil, false, Options{})
	defer func() {
		assert.NotNil(t, recover())
	}()
	_ = r.Swap(nil)
}
