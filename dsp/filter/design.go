package filter

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidCutoff is returned when a cutoff frequency is not strictly
// between 0 and the Nyquist frequency.
var ErrInvalidCutoff = errors.New("filter: cutoff must be between 0 and Nyquist")

const defaultQ = 1 / math.Sqrt2

// Lowpass designs an RBJ lowpass biquad at freq with quality factor q.
// freq and sampleRate share a unit (Hz, or kHz for a ms time axis).
func Lowpass(freq, q, sampleRate float64) (Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return Coefficients{}, err
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	b0 := (1 - cw) / 2
	return normalizeBiquad(b0, 1-cw, b0, 1+alpha, -2*cw, 1-alpha), nil
}

// Highpass designs an RBJ highpass biquad at freq with quality factor q.
func Highpass(freq, q, sampleRate float64) (Coefficients, error) {
	w0, err := normalizedW0(freq, sampleRate)
	if err != nil {
		return Coefficients{}, err
	}

	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * normalizedQ(q))

	b0 := (1 + cw) / 2
	return normalizeBiquad(b0, -(1 + cw), b0, 1+alpha, -2*cw, 1-alpha), nil
}

// ButterworthLowpass designs a lowpass Butterworth cascade of the given
// order. For odd orders, the final section is first-order (B2=A2=0).
func ButterworthLowpass(freq float64, order int, sampleRate float64) ([]Coefficients, error) {
	return butterworth(freq, order, sampleRate, Lowpass, firstOrderLowpass)
}

// ButterworthHighpass designs a highpass Butterworth cascade.
func ButterworthHighpass(freq float64, order int, sampleRate float64) ([]Coefficients, error) {
	return butterworth(freq, order, sampleRate, Highpass, firstOrderHighpass)
}

func butterworth(
	freq float64, order int, sampleRate float64,
	second func(freq, q, sampleRate float64) (Coefficients, error),
	first func(k float64) Coefficients,
) ([]Coefficients, error) {
	if order <= 0 {
		return nil, fmt.Errorf("filter: order must be positive: %d", order)
	}
	if _, err := normalizedW0(freq, sampleRate); err != nil {
		return nil, err
	}

	sections := make([]Coefficients, 0, (order+1)/2)
	for i := order/2 - 1; i >= 0; i-- {
		c, err := second(freq, butterworthQ(order, i), sampleRate)
		if err != nil {
			return nil, err
		}
		sections = append(sections, c)
	}
	if order%2 != 0 {
		sections = append(sections, first(math.Tan(math.Pi*freq/sampleRate)))
	}
	return sections, nil
}

func butterworthQ(order, index int) float64 {
	theta := math.Pi * float64(2*index+1) / (2 * float64(order))
	s := math.Sin(theta)
	if s == 0 {
		return defaultQ
	}
	return 1 / (2 * s)
}

func firstOrderLowpass(k float64) Coefficients {
	norm := 1 / (1 + k)
	return Coefficients{B0: k * norm, B1: k * norm, A1: (k - 1) * norm}
}

func firstOrderHighpass(k float64) Coefficients {
	norm := 1 / (1 + k)
	return Coefficients{B0: norm, B1: -norm, A1: (k - 1) * norm}
}

func normalizedW0(freq, sampleRate float64) (float64, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return 0, fmt.Errorf("filter: sample rate must be positive: %g", sampleRate)
	}

	nyquist := sampleRate / 2
	if freq <= 0 || freq >= nyquist || math.IsNaN(freq) {
		return 0, fmt.Errorf("%w: %g (nyquist %g)", ErrInvalidCutoff, freq, nyquist)
	}

	return 2 * math.Pi * freq / sampleRate, nil
}

func normalizedQ(q float64) float64 {
	if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
		return defaultQ
	}
	return q
}

func normalizeBiquad(b0, b1, b2, a0, a1, a2 float64) Coefficients {
	return Coefficients{
		B0: b0 / a0,
		B1: b1 / a0,
		B2: b2 / a0,
		A1: a1 / a0,
		A2: a2 / a0,
	}
}
