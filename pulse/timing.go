package pulse

import (
	"errors"
	"fmt"
)

// TestKind distinguishes specimen tests from bar-only calibration tests.
type TestKind int

const (
	// SpecimenTest has a specimen between the bars; its length adds to the
	// distance travelled by the pulse.
	SpecimenTest TestKind = iota
	// CalibrationTest has the bars in direct contact and checks the measured
	// wave speed against the nominal one.
	CalibrationTest
)

// String returns the test kind name.
func (k TestKind) String() string {
	if k == CalibrationTest {
		return "pulse"
	}
	return "specimen"
}

// TimingInput holds the independently detected windows and geometry.
// Distances are in mm and the sampling interval in ms.
type TimingInput struct {
	Kind TestKind

	// Windows found per sensor class. Exactly one is supported per class.
	Incident    []Window
	Transmitted []Window

	SampleInterval float64

	IncidentGaugeDistance    float64 // incident gauge to bar/specimen interface
	TransmittedGaugeDistance float64 // specimen/bar interface to transmitted gauge
	SpecimenLength           float64 // ignored for calibration tests

	// NominalWaveSpeed is the bar wave speed c0 in mm/ms; zero if unknown.
	NominalWaveSpeed float64
}

// Timing is the result of EstimateTiming.
type Timing struct {
	SampleInterval float64 // ms
	TransitSamples int     // transmitted start - incident start
	Distance       float64 // mm
	Speed          float64 // measured pulse speed, mm/ms
	PulseDuration  float64 // incident window length in ms
	PulseLength    float64 // wave speed * duration, mm

	// DeviationPercent is 100·(Speed-c0)/c0, set for calibration tests
	// with a nominal wave speed.
	DeviationPercent float64
	HasDeviation     bool
}

var errNonPositiveTransit = errors.New("pulse: transmitted pulse does not arrive after incident pulse")

// SamplingInterval returns the mean spacing of consecutive time samples.
func SamplingInterval(time []float32) (float64, error) {
	if len(time) < 2 {
		return 0, fmt.Errorf("pulse: time axis needs at least 2 samples, got %d", len(time))
	}

	var sum float64
	for i := 1; i < len(time); i++ {
		sum += float64(time[i]) - float64(time[i-1])
	}
	dt := sum / float64(len(time)-1)
	if dt <= 0 {
		return 0, fmt.Errorf("pulse: time axis is not increasing: mean step %g", dt)
	}

	return dt, nil
}

// EstimateTiming derives the pulse propagation speed from the delay between
// the incident and transmitted windows:
//
//	speed = distance / ((transmittedStart - incidentStart) · Δt)
//
// where distance is the sum of both gauge distances plus the specimen length
// for specimen tests. More than one window for either class is rejected
// with ErrUnsupportedMultiSignal.
func EstimateTiming(in TimingInput) (Timing, error) {
	inc, err := singleWindow("incident", in.Incident)
	if err != nil {
		return Timing{}, err
	}
	trans, err := singleWindow("transmitted", in.Transmitted)
	if err != nil {
		return Timing{}, err
	}

	if in.SampleInterval <= 0 {
		return Timing{}, fmt.Errorf("pulse: sample interval must be > 0: %g", in.SampleInterval)
	}

	transit := trans.Start - inc.Start
	if transit <= 0 {
		return Timing{}, fmt.Errorf("%w: incident start %d, transmitted start %d", errNonPositiveTransit, inc.Start, trans.Start)
	}

	distance := in.IncidentGaugeDistance + in.TransmittedGaugeDistance
	if in.Kind == SpecimenTest {
		distance += in.SpecimenLength
	}
	if distance <= 0 {
		return Timing{}, fmt.Errorf("pulse: gauge distance must be > 0: %g", distance)
	}

	t := Timing{
		SampleInterval: in.SampleInterval,
		TransitSamples: transit,
		Distance:       distance,
		Speed:          distance / (float64(transit) * in.SampleInterval),
		PulseDuration:  float64(inc.Len()) * in.SampleInterval,
	}

	c0 := in.NominalWaveSpeed
	if c0 <= 0 {
		c0 = t.Speed
	}
	t.PulseLength = c0 * t.PulseDuration

	if in.Kind == CalibrationTest && in.NominalWaveSpeed > 0 {
		t.DeviationPercent = 100 * (t.Speed - in.NominalWaveSpeed) / in.NominalWaveSpeed
		t.HasDeviation = true
	}

	return t, nil
}

func singleWindow(class string, windows []Window) (Window, error) {
	switch len(windows) {
	case 0:
		return Window{}, fmt.Errorf("%w: no %s window", ErrNoPeakDetected, class)
	case 1:
		return windows[0], nil
	default:
		return Window{}, fmt.Errorf("%w: %d %s signals", ErrUnsupportedMultiSignal, len(windows), class)
	}
}
