// Package filter conditions raw gauge signals before pulse detection.
//
// It provides biquad sections and cascades ([Coefficients], [Section],
// [Chain]), RBJ and Butterworth designs, forward-backward [ZeroPhase]
// filtering and pre-trigger offset removal.
//
// Frequencies and sample rates only need to share a unit. With a time axis
// in ms, a sampling interval dt gives a sample rate of 1/dt kHz:
//
//	coeffs, err := filter.ButterworthLowpass(200, 4, 1/dt) // 200 kHz
//	smooth := filter.ZeroPhase(coeffs, strain)
package filter
