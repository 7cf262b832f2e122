// Package randutil derives reproducible random sources for simulations.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from seed. The same seed
// always yields the same sequence.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(splitmix(u), splitmix(u+goldenRatio64)))
}

// Resolve returns the seed to use for a run: the provided one when set,
// otherwise one derived from the current time. The chosen seed is returned so
// callers can log it and reproduce the run later.
func Resolve(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}

// Stream returns the i-th independent generator derived from seed, used to
// give each simulation worker its own source.
func Stream(seed int64, i int) *rand.Rand {
	return New(int64(splitmix(uint64(seed) + uint64(i)*goldenRatio64)))
}

func splitmix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
