package core

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand"
)

// Sampler produces a lazy, infinite stream of uniform [0,1) draws. Each
// BSDF or light decision consumes exactly as many dimensions as it
// documents; consumers must treat every Get call as an independent
// fresh draw. A Sampler must never be shared across goroutines — each
// worker owns one (see pkg/renderer's worker pool).
type Sampler interface {
	// Get1D returns one uniform draw in [0,1).
	Get1D() float64
	// Get2D returns two independent uniform draws in [0,1).
	Get2D() Vec2
	// Get3D returns three independent uniform draws in [0,1).
	Get3D() (float64, float64, float64)
	// InRange returns a uniform draw in [-r, r): 2*u*r - r.
	InRange(r float64) float64
}

// rngSampler implements Sampler over a per-goroutine math/rand source.
// math/rand's default generator is not literally a Mersenne Twister,
// but it is a long-period PRNG in the same class, and avoids pulling in
// a third-party generator for a concern the standard library already
// covers well.
type rngSampler struct {
	r *mathrand.Rand
}

// NewSampler creates a deterministic Sampler from a fixed seed, for
// reproducible tests.
func NewSampler(seed int64) Sampler {
	return &rngSampler{r: mathrand.New(mathrand.NewSource(seed))}
}

// NewEntropySampler creates a Sampler seeded from a non-deterministic
// source. Each rendering worker owns one; sharing a single sampler
// across goroutines would serialize all random draws.
func NewEntropySampler() Sampler {
	var seedBytes [8]byte
	if _, err := rand.Read(seedBytes[:]); err != nil {
		// crypto/rand failing is a programmer/OS-level error, not a
		// recoverable path-tracing condition; fall back to a
		// time-independent but still per-call-site seed rather than
		// panic the renderer.
		return NewSampler(0x5eed)
	}
	seed := int64(binary.LittleEndian.Uint64(seedBytes[:]))
	return NewSampler(seed)
}

func (s *rngSampler) Get1D() float64 {
	return s.r.Float64()
}

func (s *rngSampler) Get2D() Vec2 {
	return Vec2{X: s.r.Float64(), Y: s.r.Float64()}
}

func (s *rngSampler) Get3D() (float64, float64, float64) {
	return s.r.Float64(), s.r.Float64(), s.r.Float64()
}

func (s *rngSampler) InRange(r float64) float64 {
	return 2*s.r.Float64()*r - r
}
