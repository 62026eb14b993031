package pulse

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPeakDetected is returned when no detection threshold produced a candidate window.
	ErrNoPeakDetected = errors.New("pulse: no peak detected")

	// ErrNoWindowSatisfiesBounds is returned when every candidate window lies
	// outside the requested index bounds.
	ErrNoWindowSatisfiesBounds = errors.New("pulse: no window satisfies constraints")

	// ErrUnsupportedMultiSignal is returned when a sensor class carries more
	// than one signal instance.
	ErrUnsupportedMultiSignal = errors.New("pulse: multi-signal not supported")

	errEmptyTrials = errors.New("pulse: threshold trial list must not be empty")
)

func validatePulsePoints(n int) error {
	if n < 2 {
		return fmt.Errorf("pulse: pulse points must be >= 2: %d", n)
	}
	return nil
}

func validateWindow(w Window, n int) error {
	if w.Start < 0 || w.Start >= w.End || w.End > n {
		return fmt.Errorf("pulse: invalid window %v for trace of %d samples", w, n)
	}
	return nil
}

func validateThreshRatio(r float64) error {
	if r < 0 || r > 1 {
		return fmt.Errorf("pulse: thresh ratio must be in [0,1]: %f", r)
	}
	return nil
}
