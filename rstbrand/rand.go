// Package rstbrand is a small, single-threaded pseudo-random helper for
// testbench stimulus (bit toggling, field randomization). It has no
// dependency on the rest of go-rstb, deliberately: a test generator that
// just wants a reproducible stream of random bits shouldn't have to pull
// in the whole runtime.
package rstbrand

import "math/rand/v2"

// Source is a single-threaded pseudo-random generator. Not safe for
// concurrent use, matching the runtime it serves (single-threaded
// cooperative scheduling, never two tasks' code running at once).
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded from seed, for a reproducible stream.
func New(seed uint64) *Source {
	return &Source{r: rand.New(rand.NewPCG(seed, seed))}
}

// NewRandom returns a Source seeded from the runtime's own entropy, for a
// non-reproducible stream.
func NewRandom() *Source {
	return &Source{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// RandBit returns a random bit, 0 or 1.
func (s *Source) RandBit() uint32 {
	return uint32(s.r.IntN(2))
}

// RandInt returns a random integer in [0, n).
func (s *Source) RandInt(n int) int {
	return s.r.IntN(n)
}

// RandUint32 returns a random value in [0, 2^width), for driving a signal
// of that bit width.
func (s *Source) RandUint32(width int) uint32 {
	if width <= 0 {
		return 0
	}
	if width >= 32 {
		return s.r.Uint32()
	}
	return uint32(s.r.Int64N(int64(1) << uint(width)))
}
