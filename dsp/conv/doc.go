// Package conv provides convolution and correlation routines used by the
// pulse detector.
//
// Two convolution strategies are available:
//
//   - Direct convolution: O(N*M) time-domain convolution, used for kernels up to 64 samples
//   - Overlap-add (OLA): FFT-based block convolution, used for longer kernels
//
// [Convolve] selects between them automatically, so an acquisition trace of
// 10^5 to 10^6 samples filtered with a pulse template of a few hundred
// samples costs O(N log M).
//
// # Usage
//
//	full, err := conv.Convolve(signal, kernel)
//	corr, err := conv.Correlate(a, b)
//	same, err := conv.CorrelateMode(a, b, conv.ModeSame)
//
// # Matched filtering
//
// [MatchedFilter] correlates a trace against a template and keeps the
// centred part of the result so that response sample i lines up with trace
// sample i:
//
//	resp, err := conv.MatchedFilter(trace, template)
//
// For repeated filtering with the same kernel, create an [OverlapAdd] once
// and call [OverlapAdd.Process] per trace.
package conv
