// Package time provides time-domain statistics for pulse traces: noise
// floor, amplitude scores and energy.
package time

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StdDev returns the population standard deviation (divide by N) of the
// signal. Returns 0 for an empty signal.
func StdDev(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	_, variance := stat.PopMeanVariance(signal, nil)
	return math.Sqrt(variance)
}

// Energy returns the sum of squares of the signal.
func Energy(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	sq := make([]float64, len(signal))
	vecmath.MulBlock(sq, signal, signal)
	return floats.Sum(sq)
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	return math.Abs(signal[PeakIndex(signal)])
}

// PeakIndex returns the index of the first sample with the largest absolute
// value, or -1 for an empty signal.
func PeakIndex(signal []float64) int {
	if len(signal) == 0 {
		return -1
	}

	idx := 0
	peak := math.Abs(signal[0])
	for i, x := range signal[1:] {
		if a := math.Abs(x); a > peak {
			peak = a
			idx = i + 1
		}
	}

	return idx
}

// MedianAbs returns the median of the absolute sample values. For an even
// number of samples the two middle values are averaged.
func MedianAbs(signal []float64) float64 {
	n := len(signal)
	if n == 0 {
		return 0
	}

	abs := make([]float64, n)
	for i, x := range signal {
		abs[i] = math.Abs(x)
	}
	sort.Float64s(abs)

	if n%2 == 1 {
		return abs[n/2]
	}

	return 0.5 * (abs[n/2-1] + abs[n/2])
}
