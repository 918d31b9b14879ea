package chip8

import "strings"

const (
	Width  = 64
	Height = 32
)

// Screen is the monochrome framebuffer. Each row is a bitmap with
// the leftmost pixel in the most significant bit.
type Screen [Height]uint64

func mask(x int) uint64 { return 1 << (Width - 1 - x) }

// Pixel reports whether the pixel at (x, y) is set.
// Coordinates outside the screen report false.
func (s *Screen) Pixel(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return s[y]&mask(x) != 0
}

// Clear unsets every pixel.
func (s *Screen) Clear() { *s = Screen{} }

// Draw XORs sprite onto the screen with its top-left corner at (x, y),
// one byte per row. The origin wraps around the screen edges; the parts
// of the sprite that then run past the right or bottom edge are clipped.
// It reports whether any set pixel was unset.
func (s *Screen) Draw(x, y byte, sprite []byte) (collision bool) {
	ox, oy := int(x)%Width, int(y)%Height
	for i, row := range sprite {
		py := oy + i
		if py >= Height {
			break
		}
		// Shift the row into place; bits past column 63 fall off.
		bits := uint64(row) << (Width - 8) >> ox
		if s[py]&bits != 0 {
			collision = true
		}
		s[py] ^= bits
	}
	return collision
}

// String renders the screen as text, '#' for set pixels and '.' otherwise.
func (s *Screen) String() string {
	var b strings.Builder
	b.Grow((Width + 1) * Height)
	for y := range s {
		for x := 0; x < Width; x++ {
			if s.Pixel(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
