package vip

import (
	"sync"
	"unicode"

	"github.com/nf/c8/chip8"
)

// Keypad holds the state of the sixteen hex keys. Frontends write it
// from their event loops and the VIP reads it once per frame.
type Keypad struct {
	mu   sync.Mutex
	down [chip8.NumKeys]bool
}

// Set records key k as pressed or released. Keys above 0xF are ignored.
func (k *Keypad) Set(key byte, down bool) {
	if int(key) >= chip8.NumKeys {
		return
	}
	k.mu.Lock()
	k.down[key] = down
	k.mu.Unlock()
}

// State returns a snapshot of the keys that are down.
func (k *Keypad) State() [chip8.NumKeys]bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.down
}

// Release marks every key as up.
func (k *Keypad) Release() {
	k.mu.Lock()
	k.down = [chip8.NumKeys]bool{}
	k.mu.Unlock()
}

// The COSMAC VIP hex pad laid over the left of a QWERTY keyboard:
//
//	1 2 3 C      1 2 3 4
//	4 5 6 D  ->  Q W E R
//	7 8 9 E      A S D F
//	A 0 B F      Z X C V
var keyMap = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// KeyFor returns the hex key mapped to the keyboard rune r.
func KeyFor(r rune) (byte, bool) {
	k, ok := keyMap[unicode.ToLower(r)]
	return k, ok
}
