package time

import (
	"math"
	"testing"
)

const tolerance = 1e-10

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// generateSine creates a sine wave with the given amplitude, frequency, and sample rate.
// It generates exactly numCycles full cycles.
func generateSine(amplitude, freq, sampleRate float64, numCycles int) []float64 {
	samplesPerCycle := int(sampleRate / freq)
	n := samplesPerCycle * numCycles
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)
	}
	return out
}

func TestStdDevOfSine(t *testing.T) {
	signal := generateSine(1.0, 1000, 48000, 10)

	want := 1.0 / math.Sqrt(2)
	if got := StdDev(signal); !almostEqual(got, want, 1e-6) {
		t.Errorf("StdDev: got %g, want %g", got, want)
	}
	if got := Peak(signal); !almostEqual(got, 1.0, 1e-3) {
		t.Errorf("Peak: got %g, want ~1.0", got)
	}
}

func TestStdDevIsPopulation(t *testing.T) {
	// Population variance of {1,2,3,4} is 1.25.
	got := StdDev([]float64{1, 2, 3, 4})
	if want := math.Sqrt(1.25); !almostEqual(got, want, tolerance) {
		t.Errorf("StdDev: got %g, want %g", got, want)
	}
	if StdDev(nil) != 0 {
		t.Error("StdDev(nil) should be 0")
	}
}

func TestPeakIndex(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
		want   int
	}{
		{"empty", nil, -1},
		{"negative peak", []float64{0.1, -3, 2}, 1},
		{"first of tie", []float64{2, -2, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PeakIndex(tt.signal); got != tt.want {
				t.Errorf("PeakIndex = %d, want %d", got, tt.want)
			}
		})
	}

	if got := Peak([]float64{0.5, -4, 3}); got != 4 {
		t.Errorf("Peak = %g, want 4", got)
	}
}

func TestMedianAbs(t *testing.T) {
	tests := []struct {
		name   string
		signal []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"odd", []float64{-5, 1, 2}, 2},
		{"even averages middle pair", []float64{-4, 1, -2, 3}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MedianAbs(tt.signal); !almostEqual(got, tt.want, tolerance) {
				t.Errorf("MedianAbs = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestEnergy(t *testing.T) {
	if got := Energy([]float64{3, -4}); !almostEqual(got, 25, tolerance) {
		t.Errorf("Energy = %g, want 25", got)
	}
	if got := Energy(nil); got != 0 {
		t.Errorf("Energy(nil) = %g, want 0", got)
	}
}
