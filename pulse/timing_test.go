package pulse

import (
	"errors"
	"math"
	"testing"
)

func TestSamplingInterval(t *testing.T) {
	dt, err := SamplingInterval([]float32{0, 0.001, 0.002, 0.003})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(dt-0.001) > 1e-9 {
		t.Errorf("dt = %v, want 0.001", dt)
	}

	if _, err := SamplingInterval([]float32{1}); err == nil {
		t.Error("expected error for a single sample")
	}
	if _, err := SamplingInterval([]float32{3, 2, 1}); err == nil {
		t.Error("expected error for a decreasing axis")
	}
}

func TestEstimateTimingSpecimen(t *testing.T) {
	in := TimingInput{
		Kind:                     SpecimenTest,
		Incident:                 []Window{{Start: 1000, End: 1200}},
		Transmitted:              []Window{{Start: 1500, End: 1700}},
		SampleInterval:           0.001, // 1 µs
		IncidentGaugeDistance:    1000,
		TransmittedGaugeDistance: 1000,
		SpecimenLength:           500,
		NominalWaveSpeed:         5000,
	}

	got, err := EstimateTiming(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.TransitSamples != 500 {
		t.Errorf("TransitSamples = %d, want 500", got.TransitSamples)
	}
	if got.Distance != 2500 {
		t.Errorf("Distance = %v, want 2500", got.Distance)
	}
	if math.Abs(got.Speed-5000) > 1e-9 {
		t.Errorf("Speed = %v, want 5000", got.Speed)
	}
	if math.Abs(got.PulseDuration-0.2) > 1e-12 {
		t.Errorf("PulseDuration = %v, want 0.2", got.PulseDuration)
	}
	if math.Abs(got.PulseLength-1000) > 1e-9 {
		t.Errorf("PulseLength = %v, want 1000", got.PulseLength)
	}
	if got.HasDeviation {
		t.Error("specimen test reported a speed deviation")
	}
}

func TestEstimateTimingCalibration(t *testing.T) {
	in := TimingInput{
		Kind:                     CalibrationTest,
		Incident:                 []Window{{Start: 100, End: 300}},
		Transmitted:              []Window{{Start: 500, End: 700}},
		SampleInterval:           0.001,
		IncidentGaugeDistance:    1000,
		TransmittedGaugeDistance: 1100,
		SpecimenLength:           999, // ignored
		NominalWaveSpeed:         5000,
	}

	got, err := EstimateTiming(in)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got.Speed-5250) > 1e-9 {
		t.Errorf("Speed = %v, want 5250", got.Speed)
	}
	if !got.HasDeviation || math.Abs(got.DeviationPercent-5) > 1e-9 {
		t.Errorf("deviation = %v (%v), want 5%%", got.DeviationPercent, got.HasDeviation)
	}
}

func TestEstimateTimingWithoutNominalSpeed(t *testing.T) {
	got, err := EstimateTiming(TimingInput{
		Kind:                     CalibrationTest,
		Incident:                 []Window{{Start: 0, End: 100}},
		Transmitted:              []Window{{Start: 400, End: 500}},
		SampleInterval:           0.001,
		IncidentGaugeDistance:    1000,
		TransmittedGaugeDistance: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}
	if got.HasDeviation {
		t.Error("deviation reported without a nominal speed")
	}
	if math.Abs(got.PulseLength-got.Speed*0.1) > 1e-9 {
		t.Errorf("PulseLength = %v, want measured speed times duration", got.PulseLength)
	}
}

func TestEstimateTimingErrors(t *testing.T) {
	one := []Window{{Start: 10, End: 20}}
	later := []Window{{Start: 50, End: 60}}
	two := []Window{{Start: 10, End: 20}, {Start: 40, End: 50}}

	tests := []struct {
		name    string
		in      TimingInput
		wantErr error
	}{
		{
			name:    "multiple incident",
			in:      TimingInput{Incident: two, Transmitted: later, SampleInterval: 1, IncidentGaugeDistance: 1},
			wantErr: ErrUnsupportedMultiSignal,
		},
		{
			name:    "multiple transmitted",
			in:      TimingInput{Incident: one, Transmitted: two, SampleInterval: 1, IncidentGaugeDistance: 1},
			wantErr: ErrUnsupportedMultiSignal,
		},
		{
			name:    "missing transmitted",
			in:      TimingInput{Incident: one, SampleInterval: 1, IncidentGaugeDistance: 1},
			wantErr: ErrNoPeakDetected,
		},
		{
			name:    "transmitted first",
			in:      TimingInput{Incident: later, Transmitted: one, SampleInterval: 1, IncidentGaugeDistance: 1},
			wantErr: errNonPositiveTransit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EstimateTiming(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := EstimateTiming(TimingInput{Incident: one, Transmitted: later, IncidentGaugeDistance: 1}); err == nil {
		t.Error("expected error for zero sample interval")
	}
	if _, err := EstimateTiming(TimingInput{Incident: one, Transmitted: later, SampleInterval: 1}); err == nil {
		t.Error("expected error for zero distance")
	}
}

func TestTestKindString(t *testing.T) {
	if SpecimenTest.String() != "specimen" || CalibrationTest.String() != "pulse" {
		t.Errorf("got %q, %q", SpecimenTest, CalibrationTest)
	}
}
