package shpb

// cumTrapz integrates y over the sample points x with the trapezoidal rule.
// The result has len(y) samples and starts at 0.
func cumTrapz(y, x []float64) []float64 {
	out := make([]float64, len(y))
	for i := 1; i < len(y); i++ {
		out[i] = out[i-1] + 0.5*(y[i]+y[i-1])*(x[i]-x[i-1])
	}
	return out
}
