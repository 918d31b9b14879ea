package vip

import (
	"image"
	"sync"
	"time"

	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/draw"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/c8/chip8"
)

// GUI is a window frontend. The screen is scaled to fit the window by
// whole multiples and the background changes colour while the buzzer
// sounds.
type GUI struct {
	Title   string
	Scale   int // initial window size in multiples of 64x32
	Palette Palette
	Logger  *log.Logger

	mu     sync.Mutex
	screen chip8.Screen
	beep   bool
	dirty  bool
}

// NewGUI returns a GUI with the default palette.
func NewGUI(title string, scale int, logger *log.Logger) *GUI {
	if scale < 1 {
		scale = 1
	}
	return &GUI{
		Title:   title,
		Scale:   scale,
		Palette: DefaultPalette,
		Logger:  logger,
		dirty:   true,
	}
}

func (g *GUI) Draw(s chip8.Screen) {
	g.mu.Lock()
	g.screen, g.dirty = s, true
	g.mu.Unlock()
}

func (g *GUI) Beep(on bool) {
	g.mu.Lock()
	g.beep, g.dirty = on, true
	g.mu.Unlock()
}

func (g *GUI) setDirty() {
	g.mu.Lock()
	g.dirty = true
	g.mu.Unlock()
}

// render draws the pending frame into img, reporting whether there was one.
func (g *GUI) render(img *image.RGBA) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.dirty {
		return false
	}
	g.Palette.Render(img, &g.screen, g.beep)
	g.dirty = false
	return true
}

func (g *GUI) background() image.Image {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.beep {
		return image.NewUniform(g.Palette.Beep)
	}
	return image.NewUniform(g.Palette.Off)
}

// Run opens the window and handles its events until exit is closed or
// the window is closed. It must be called from the main goroutine.
func (g *GUI) Run(keys *Keypad, exit <-chan bool) error {
	var runErr error
	driver.Main(func(s screen.Screen) {
		w, err := s.NewWindow(&screen.NewWindowOptions{
			Title:  g.Title,
			Width:  chip8.Width * g.Scale,
			Height: chip8.Height * g.Scale,
		})
		if err != nil {
			runErr = err
			return
		}
		defer w.Release()

		type update struct{}
		go func() {
			t := time.NewTicker(chip8.TimerPeriod)
			defer t.Stop()
			for {
				select {
				case <-t.C:
					w.Send(update{})
				case <-exit:
					w.Send(update{})
					return
				}
			}
		}()

		var (
			sz    size.Event
			buf   screen.Buffer
			frame = image.NewRGBA(Bounds)
		)
		defer func() {
			if buf != nil {
				buf.Release()
			}
		}()
		for {
			e := w.NextEvent()

			select {
			case <-exit:
				return
			default:
			}

			switch e := e.(type) {
			case lifecycle.Event:
				if e.To == lifecycle.StageDead {
					return
				}
				if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
					keys.Release()
				}

			case size.Event:
				sz = e
				if sz.WidthPx+sz.HeightPx == 0 {
					return
				}
				g.setDirty()

			case paint.Event:
				g.setDirty()

			case key.Event:
				if e.Code == key.CodeEscape {
					return
				}
				if k, ok := KeyFor(e.Rune); ok {
					switch e.Direction {
					case key.DirPress:
						keys.Set(k, true)
					case key.DirRelease:
						keys.Set(k, false)
					}
				}

			case update:
				if sz.WidthPx == 0 || !g.render(frame) {
					break
				}
				if buf == nil || buf.Size() != sz.Size() {
					if buf != nil {
						buf.Release()
					}
					if buf, err = s.NewBuffer(sz.Size()); err != nil {
						runErr = err
						return
					}
				}
				dst := buf.RGBA()
				draw.Draw(dst, dst.Bounds(), g.background(), image.Point{}, draw.Src)
				draw.NearestNeighbor.Scale(dst, fit(dst.Bounds()), frame, Bounds, draw.Src, nil)
				w.Upload(image.Point{}, buf, buf.Bounds())
				w.Publish()

			case error:
				if g.Logger != nil {
					g.Logger.Error("Window event", log.Err(e))
				}
			}
		}
	})
	return runErr
}

// fit returns the largest whole multiple of the screen size that fits
// in b, centred. If not even one fits, it returns b.
func fit(b image.Rectangle) image.Rectangle {
	n := min(b.Dx()/chip8.Width, b.Dy()/chip8.Height)
	if n < 1 {
		return b
	}
	sz := image.Pt(chip8.Width*n, chip8.Height*n)
	p := b.Min.Add(b.Size().Sub(sz).Div(2))
	return image.Rectangle{Min: p, Max: p.Add(sz)}
}
