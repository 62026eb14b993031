package filter

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// RemoveOffset subtracts the mean of the first n samples from every
// sample of x in place and returns the removed offset. The leading samples
// are assumed to precede any pulse.
func RemoveOffset(x []float64, n int) (float64, error) {
	if n <= 0 || n > len(x) {
		return 0, fmt.Errorf("filter: offset window %d out of range for %d samples", n, len(x))
	}

	offset := stat.Mean(x[:n], nil)
	for i := range x {
		x[i] -= offset
	}
	return offset, nil
}
