// Package rng defines the random-number interface the engine depends on and
// a small reproducible default implementation.
//
// MacTierra's original engine draws on RandomLib::Random for uniform
// integers/booleans and RandomLib::ExponentialDistribution for the
// mutation schedulers; only that interface is a core concern (spec.md §1
// treats the generator implementation as an external collaborator). This
// package supplies a concrete, serializable generator so the engine is
// runnable and replayable without pulling in a C++ dependency.
package rng

import "math"

// Source is the uniform-random contract the engine core depends on.
type Source interface {
	// Intn returns a uniform integer in [0,n). Panics if n <= 0.
	Intn(n int) int
	// IntRange returns a uniform integer in [lo,hi).
	IntRange(lo, hi int) int
	// Bool returns a uniform coin flip.
	Bool() bool
	// Float64 returns a uniform float in [0,1).
	Float64() float64
	// State returns an opaque, serializable snapshot of the generator.
	State() uint64
	// SetState restores a snapshot previously returned by State.
	SetState(s uint64)
}

// Rand is a splitmix64-based generator: small, dependency-free, and its
// entire state is one uint64, which makes save/restore (spec.md §6) exact.
type Rand struct {
	state uint64
}

// New creates a Rand seeded deterministically from seed.
func New(seed int64) *Rand {
	r := &Rand{}
	r.SetState(uint64(seed))
	return r
}

func (r *Rand) next() uint64 {
	r.state += 0x9E3779B97F4A7C15
	z := r.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (r *Rand) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	return int(r.next() % uint64(n))
}

func (r *Rand) IntRange(lo, hi int) int {
	if hi <= lo {
		panic("rng: IntRange called with hi <= lo")
	}
	return lo + r.Intn(hi-lo)
}

func (r *Rand) Bool() bool {
	return r.next()&1 == 1
}

func (r *Rand) Float64() float64 {
	// 53 bits of mantissa, matching math/rand's convention.
	return float64(r.next()>>11) / (1 << 53)
}

func (r *Rand) State() uint64 {
	return r.state
}

func (r *Rand) SetState(s uint64) {
	r.state = s
}

// PositiveExponential draws from Exponential(mean), rejecting non-positive
// samples, mirroring MacTierra's mutation-scheduler loops:
//
//	do { delay = expDist(rng, mean); } while (delay <= 0);
func PositiveExponential(s Source, mean float64) float64 {
	for {
		// Inverse-CDF sampling: -mean * ln(1-U), U uniform in [0,1).
		u := s.Float64()
		if u >= 1.0 {
			continue
		}
		v := -mean * math.Log(1-u)
		if v > 0 {
			return v
		}
	}
}
