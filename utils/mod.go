package utils

import (
	"golang.org/x/exp/rand"
	"lukechampine.com/frand"
)

// NewRand returns a random source seeded with seed, or with fresh entropy
// when seed is 0.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = NewSeed()
	}
	return rand.New(rand.NewSource(seed))
}

// NewSeed draws a non-zero seed from the system entropy source.
func NewSeed() uint64 {
	for {
		if s := frand.Uint64n(^uint64(0)); s != 0 {
			return s
		}
	}
}

func FindIndex[T comparable](slice []T, item T) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}
