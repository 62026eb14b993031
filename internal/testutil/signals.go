package testutil

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// GaussianNoise generates zero-mean Gaussian noise with standard deviation
// sigma. Samples come from a SplitMix64 stream through the Box-Muller
// transform, so a seed yields the same sequence on every Go release.
func GaussianNoise(seed uint64, sigma float64, length int) []float64 {
	out := make([]float64, length)
	rng := splitMix64{state: seed}
	for i := 0; i < length; i += 2 {
		u1 := 1 - rng.float64()
		u2 := rng.float64()
		r := math.Sqrt(-2 * math.Log(u1))
		out[i] = sigma * r * math.Cos(2*math.Pi*u2)
		if i+1 < length {
			out[i+1] = sigma * r * math.Sin(2*math.Pi*u2)
		}
	}
	return out
}

type splitMix64 struct {
	state uint64
}

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// float64 returns a uniform value in [0, 1).
func (s *splitMix64) float64() float64 {
	return float64(s.next()>>11) / (1 << 53)
}

// Inject adds amplitude*pulse into dst starting at index at. Samples that
// would fall outside dst are dropped.
func Inject(dst, pulse []float64, at int, amplitude float64) {
	for i, v := range pulse {
		j := at + i
		if j < 0 || j >= len(dst) {
			continue
		}
		dst[j] += amplitude * v
	}
}

// UnitHalfSine returns a half-sine bump of length n, sin(pi*(i+0.5)/n),
// scaled to unit L2 norm.
func UnitHalfSine(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(math.Pi * (float64(i) + 0.5) / float64(n))
	}
	if norm := floats.Norm(out, 2); norm > 0 {
		floats.Scale(1/norm, out)
	}
	return out
}

// Linspace returns n evenly spaced samples over [lo, hi], endpoints included.
func Linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	switch n {
	case 0:
		return out
	case 1:
		out[0] = lo
		return out
	}
	return floats.Span(out, lo, hi)
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Float32s converts a float64 slice to float32.
func Float32s(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}
