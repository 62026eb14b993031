package filter

import "slices"

// ZeroPhase filters x forward and then backward through the cascade
// described by coeffs. The result has zero phase shift and the squared
// magnitude response of the cascade, so pulse onsets are not delayed.
//
// Both ends are extended by odd reflection and the filter state is started
// in steady state, which keeps edge transients out of the returned samples.
// x is not modified.
func ZeroPhase(coeffs []Coefficients, x []float64) []float64 {
	n := len(x)
	if n < 2 || len(coeffs) == 0 {
		return slices.Clone(x)
	}

	pad := min(3*(2*len(coeffs)+1), n-1)
	ext := make([]float64, n+2*pad)
	copy(ext[pad:], x)
	for i := 1; i <= pad; i++ {
		ext[pad-i] = 2*x[0] - x[i]
		ext[pad+n-1+i] = 2*x[n-1] - x[n-1-i]
	}

	c := NewChain(coeffs)
	c.settle(ext[0])
	c.ProcessBlock(ext)

	slices.Reverse(ext)
	c.Reset()
	c.settle(ext[0])
	c.ProcessBlock(ext)
	slices.Reverse(ext)

	return ext[pad : pad+n]
}
