package wheel

import "math/rand/v2"

// RandSource is the randomness the wheel draws from. *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
	Float64() float64
}

// NewRand returns a PCG-backed source. A zero seed picks a random one.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
