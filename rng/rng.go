// Package rng provides the single-threaded random source shared by the
// driver and every strategy. Consuming it only from the driver goroutine
// is what makes a configured seed reproduce a run.
package rng

import "math/rand/v2"

// Source is the minimal RNG surface the core depends on. It is satisfied
// by *rand.Rand from math/rand/v2 but kept as an interface so tests can
// substitute a deterministic stub.
type Source interface {
	Float64() float64
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// New returns a Source seeded deterministically from seed. Two Sources
// built from the same seed produce the same sequence, which is what
// config.Parameters.Seed exists for.
func New(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
}

// Permutation returns a random permutation of [0, n).
func Permutation(src Source, n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	src.Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] })
	return p
}

// Choice returns a uniformly random index in [0, n), panicking if n <= 0.
func Choice(src Source, n int) int {
	if n <= 0 {
		panic("rng: Choice requires n > 0")
	}
	return src.IntN(n)
}

// TwoDistinct draws two distinct indices in [0, n), looping until they
// differ. Used by binary-tournament mating selection. Panics if n < 2.
func TwoDistinct(src Source, n int) (int, int) {
	if n < 2 {
		panic("rng: TwoDistinct requires n >= 2")
	}
	a := src.IntN(n)
	b := src.IntN(n)
	for b == a {
		b = src.IntN(n)
	}
	return a, b
}
