package main

import (
	"image/color"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/retroenv/retrogolib/log"

	"github.com/nf/c8/chip8"
	"github.com/nf/c8/vip"
)

// Terminals report key presses but not releases, so a key counts as held
// for this long after its last press or repeat.
const keyHold = 200 * time.Millisecond

// terminal is a frontend that draws the screen with half-block characters,
// two pixel rows per line.
type terminal struct {
	log     *log.Logger
	palette vip.Palette

	mu     sync.Mutex
	screen chip8.Screen
	beep   bool
	ring   bool // beep started since last paint
	dirty  bool
}

func newTerminal(logger *log.Logger) *terminal {
	return &terminal{log: logger, palette: vip.DefaultPalette, dirty: true}
}

func (t *terminal) Draw(s chip8.Screen) {
	t.mu.Lock()
	t.screen, t.dirty = s, true
	t.mu.Unlock()
}

func (t *terminal) Beep(on bool) {
	t.mu.Lock()
	t.ring = t.ring || (on && !t.beep)
	t.beep, t.dirty = on, true
	t.mu.Unlock()
}

func (t *terminal) Run(keys *vip.Keypad, exit <-chan bool) error {
	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	defer s.Fini()
	return t.run(s, keys, exit)
}

func (t *terminal) run(s tcell.Screen, keys *vip.Keypad, exit <-chan bool) error {
	s.HideCursor()
	s.Clear()

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := s.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			select {
			case events <- ev:
			case <-exit:
				return
			}
		}
	}()

	tick := time.NewTicker(chip8.TimerPeriod)
	defer tick.Stop()
	pressed := map[byte]time.Time{}
	for {
		select {
		case <-exit:
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return nil
				case tcell.KeyRune:
					if k, ok := vip.KeyFor(ev.Rune()); ok {
						keys.Set(k, true)
						pressed[k] = ev.When()
					}
				}
			case *tcell.EventResize:
				s.Sync()
				t.setDirty()
			}

		case now := <-tick.C:
			for k, at := range pressed {
				if now.Sub(at) >= keyHold {
					keys.Set(k, false)
					delete(pressed, k)
				}
			}
			t.paint(s)
		}
	}
}

func (t *terminal) setDirty() {
	t.mu.Lock()
	t.dirty = true
	t.mu.Unlock()
}

func (t *terminal) paint(s tcell.Screen) {
	t.mu.Lock()
	if !t.dirty {
		t.mu.Unlock()
		return
	}
	scr, beep, ring := t.screen, t.beep, t.ring
	t.dirty, t.ring = false, false
	t.mu.Unlock()

	if ring {
		if err := s.Beep(); err != nil {
			t.log.Debug("Terminal bell failed", log.Err(err))
		}
	}
	off, on := rgb(t.palette.Off), rgb(t.palette.On)
	if beep {
		off = rgb(t.palette.Beep)
	}
	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			top, bottom := off, off
			if scr.Pixel(x, y) {
				top = on
			}
			if scr.Pixel(x, y+1) {
				bottom = on
			}
			s.SetContent(x, y/2, '▀', nil, tcell.StyleDefault.Foreground(top).Background(bottom))
		}
	}
	s.Show()
}

func rgb(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
