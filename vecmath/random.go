package vecmath

import (
	"math"
	"math/rand"
)

// RandomSource is the stochastic-policy capability threaded through brain
// sampling, mutation, spawning and reward-noise paths (spec design notes:
// "abstract a RandomSource capability... thread one instance per tick").
type RandomSource struct {
	rng *rand.Rand
}

// NewRandomSource builds a RandomSource from a seed.
func NewRandomSource(seed int64) *RandomSource {
	return &RandomSource{rng: rand.New(rand.NewSource(seed))}
}

// Reseed replaces the underlying PRNG state.
func (r *RandomSource) Reseed(seed int64) {
	r.rng = rand.New(rand.NewSource(seed))
}

// Uniform returns a uniform float32 in [0,1).
func (r *RandomSource) Uniform() float32 { return r.rng.Float32() }

// UniformRange returns a uniform float32 in [lo,hi).
func (r *RandomSource) UniformRange(lo, hi float32) float32 {
	return lo + r.rng.Float32()*(hi-lo)
}

// IntN returns a uniform int in [0,n).
func (r *RandomSource) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.Intn(n)
}

// Bool returns true with probability p.
func (r *RandomSource) Bool(p float32) bool { return r.rng.Float32() < p }

// Gaussian samples from N(mean, sigma).
func (r *RandomSource) Gaussian(mean, sigma float32) float32 {
	return mean + float32(r.rng.NormFloat64())*sigma
}

// LogPDFGaussian returns log N(x; mean, sigma).
func LogPDFGaussian(x, mean, sigma float32) float32 {
	if sigma < 1e-6 {
		sigma = 1e-6
	}
	z := (x - mean) / sigma
	return float32(-0.5*float64(z*z) - math.Log(float64(sigma)) - 0.5*math.Log(2*math.Pi))
}

// Rand exposes the underlying *rand.Rand for callers needing stdlib-shaped
// access (e.g. gonum helpers expecting an io.Reader-like source).
func (r *RandomSource) Rand() *rand.Rand { return r.rng }
