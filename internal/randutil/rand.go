// Package randutil centralises how the trainer builds its random sources so
// shuffles can be replayed from a single int64 seed.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// Source is the subset of *rand.Rand the shoe needs. Tests can supply a
// scripted implementation to force exact shuffles.
type Source interface {
	IntN(n int) int
}

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG words are derived from the one seed so every call site agrees on
// the sequence a given seed produces.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns seed unchanged unless it is zero, in which case a seed is
// derived from now. Zero is the "not configured" value in config and flags.
func Seed(seed int64, now time.Time) int64 {
	if seed != 0 {
		return seed
	}
	s := int64(mix(uint64(now.UnixNano())) >> 1)
	if s == 0 {
		s = 1
	}
	return s
}

// Derive returns the n-th child seed of base. Simulator workers use it to get
// independent, reproducible per-round seeds.
func Derive(base int64, n int) int64 {
	return int64(mix(uint64(base) + uint64(n)*goldenRatio64))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
