package vip

import (
	"image"
	"image/color"

	"github.com/nf/c8/chip8"
)

// Palette holds the colours used to render the screen.
type Palette struct {
	Off, On color.RGBA
	Beep    color.RGBA // replaces Off while the buzzer sounds
}

// DefaultPalette is amber on black, like a phosphor monitor.
var DefaultPalette = Palette{
	Off:  color.RGBA{0x10, 0x0c, 0x08, 0xff},
	On:   color.RGBA{0xff, 0xb0, 0x00, 0xff},
	Beep: color.RGBA{0x40, 0x18, 0x08, 0xff},
}

// Bounds is the size of the screen in pixels.
var Bounds = image.Rect(0, 0, chip8.Width, chip8.Height)

// Render draws s into dst at one image pixel per screen pixel.
// dst must cover at least Bounds.
func (p Palette) Render(dst *image.RGBA, s *chip8.Screen, beep bool) {
	off := p.Off
	if beep {
		off = p.Beep
	}
	for y := 0; y < chip8.Height; y++ {
		for x := 0; x < chip8.Width; x++ {
			c := off
			if s.Pixel(x, y) {
				c = p.On
			}
			dst.SetRGBA(x, y, c)
		}
	}
}

// Image returns a new image of s.
func (p Palette) Image(s *chip8.Screen, beep bool) *image.RGBA {
	img := image.NewRGBA(Bounds)
	p.Render(img, s, beep)
	return img
}
