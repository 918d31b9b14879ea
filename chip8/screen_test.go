package chip8

import (
	"strings"
	"testing"
)

func TestScreenDraw(t *testing.T) {
	var s Screen
	if s.Draw(62, 0, []byte{0xff}) {
		t.Errorf("collision on empty screen")
	}
	for x := 0; x < Width; x++ {
		w := x >= 62
		if g := s.Pixel(x, 0); g != w {
			t.Errorf("Pixel(%d, 0) = %v, want %v", x, g, w)
		}
	}
	if !s.Draw(63, 0, []byte{0x80}) {
		t.Errorf("no collision when unsetting pixel 63,0")
	}
	if s.Pixel(63, 0) || !s.Pixel(62, 0) {
		t.Errorf("wrong pixels after second draw:\n%v", s.String())
	}
}

func TestScreenDrawWrapsOrigin(t *testing.T) {
	var s Screen
	s.Draw(Width+1, Height+2, []byte{0xc0})
	if !s.Pixel(1, 2) || !s.Pixel(2, 2) {
		t.Errorf("origin did not wrap:\n%v", s.String())
	}
}

func TestScreenDrawClipsBottom(t *testing.T) {
	var s Screen
	s.Draw(0, Height-1, []byte{0x80, 0x80, 0x80})
	if !s.Pixel(0, Height-1) {
		t.Errorf("bottom row not drawn")
	}
	if s.Pixel(0, 0) || s.Pixel(0, 1) {
		t.Errorf("sprite wrapped to the top:\n%v", s.String())
	}
}

func TestScreenPixelOutside(t *testing.T) {
	var s Screen
	for y := range s {
		s[y] = ^uint64(0)
	}
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {Width, 0}, {0, Height}} {
		if s.Pixel(p[0], p[1]) {
			t.Errorf("Pixel(%d, %d) = true", p[0], p[1])
		}
	}
}

func TestScreenString(t *testing.T) {
	var s Screen
	s.Draw(0, 0, []byte{0xa0})
	lines := strings.Split(s.String(), "\n")
	if len(lines) != Height+1 {
		t.Fatalf("got %d lines, want %d", len(lines), Height+1)
	}
	if g, w := lines[0], "#.#"+strings.Repeat(".", Width-3); g != w {
		t.Errorf("first line is\n%s\nwant\n%s", g, w)
	}
}
