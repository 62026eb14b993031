package conv

// Correlate computes the full cross-correlation of a and b.
// The result has length len(a) + len(b) - 1.
// Output index k corresponds to lag k - (len(b) - 1).
//
// Cross-correlation is convolution with the time-reversed second signal:
// corr(a, b) = conv(a, reverse(b)).
func Correlate(a, b []float64) ([]float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, ErrEmptyInput
	}

	return Convolve(a, Reverse(b))
}

// CorrelateMode computes cross-correlation with specified output mode.
func CorrelateMode(a, b []float64, mode Mode) ([]float64, error) {
	full, err := Correlate(a, b)
	if err != nil {
		return nil, err
	}

	return trimToMode(full, len(a), len(b), mode), nil
}

// MatchedFilter correlates signal against template and returns a response of
// the same length as signal. Sample i of the response scores the template
// centred on signal[i]; with a unit-energy template and white noise of
// standard deviation s, the noise in the response also has deviation s.
func MatchedFilter(signal, template []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}
	if len(template) == 0 {
		return nil, ErrEmptyKernel
	}

	return CorrelateMode(signal, template, ModeSame)
}

// Reverse returns a time-reversed copy of x.
func Reverse(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[len(x)-1-i] = v
	}
	return out
}
