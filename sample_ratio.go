package rill

import (
	"context"
	"math/rand/v2"
)

// RandomSource is the seeded PRNG collaborator used by SampleRatio,
// named in the external-interfaces contract: production wires a fresh
// seed drawn once, tests wire a fixed seed for reproducibility.
type RandomSource interface {
	// Float64 returns a pseudo-random number in [0, 1).
	Float64() float64
}

// NewRandomSource returns a RandomSource seeded from two uint64 seeds
// (see math/rand/v2's ChaCha8/PCG constructors); the same seed pair
// always reproduces the same sequence.
func NewRandomSource(seed1, seed2 uint64) RandomSource {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// SampleRatio drops each Value independently with probability 1-ratio
// (ratio in [0, 1]); Error items always pass through and are never
// sampled out. Supplements the operator set named in the distilled
// specification with a probabilistic thinning primitive present in the
// original source.
func SampleRatio[T any](src Sequence[T], ratio float64, rnd RandomSource) Sequence[T] {
	return SequenceFunc[T](func(ctx context.Context) (Item[T], bool) {
		for {
			it, ok := src.Next(ctx)
			if !ok {
				var zero Item[T]
				return zero, false
			}
			if it.IsError() {
				return it, true
			}
			if rnd.Float64() < ratio {
				return it, true
			}
		}
	})
}
