package grayscott

import "math/rand/v2"

// RandSource supplies the only nondeterminism in the engine: where random
// seed discs land and how large they are. *rand.Rand satisfies it.
type RandSource interface {
	// IntN returns a uniform int in [0, n). n is always positive.
	IntN(n int) int
}

// NewRand returns a deterministic PCG-backed source for the given seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), 0))
}

// intIn returns a uniform int in [lo, hi). hi must exceed lo.
func intIn(r RandSource, lo, hi int) int {
	return lo + r.IntN(hi-lo)
}
