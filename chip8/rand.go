package chip8

import "math/rand/v2"

// Rand is the source of random bytes for the RND instruction.
type Rand interface {
	Byte() byte
}

type pcg struct{ r *rand.Rand }

func (p pcg) Byte() byte { return byte(p.r.Uint32()) }

// NewRand returns a Rand producing a deterministic sequence for seed.
// A zero seed selects a random one.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return pcg{rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}
