package shpb

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShapeMismatch is returned when the pulse and time arrays differ in
	// length or a required property is missing.
	ErrShapeMismatch = errors.New("shpb: shape mismatch")

	// ErrMissingProperty is returned when a required bar or specimen constant
	// is zero, negative or not finite. It wraps ErrShapeMismatch.
	ErrMissingProperty = fmt.Errorf("%w: missing property", ErrShapeMismatch)
)

// BarProperties are the constants of the incident and transmission bars.
type BarProperties struct {
	WaveSpeed        float64 // c0, mm/ms
	ElasticModulus   float64 // E, MPa
	Density          float64 // ρ, kg/mm³
	PoissonRatio     float64
	CrossSectionArea float64 // mm²
}

// SpecimenGeometry describes the specimen between the bars.
type SpecimenGeometry struct {
	CrossSectionArea float64 // mm²
	Length           float64 // mm
}

// Params bundles everything a reduction run needs besides the pulses.
type Params struct {
	Bar      BarProperties
	Specimen SpecimenGeometry

	// PulseDuration is the incident pulse duration in ms.
	PulseDuration float64
}

// Validate checks every constant Reduce uses. The error names the first
// missing property.
func (p Params) Validate() error {
	if err := p.validateBar(); err != nil {
		return err
	}
	if err := requirePositive("density", p.Bar.Density); err != nil {
		return err
	}
	if err := requirePositive("specimen_cross_section_area", p.Specimen.CrossSectionArea); err != nil {
		return err
	}
	return requirePositive("specimen_length", p.Specimen.Length)
}

// validateBar checks the constants shared by both reductions.
func (p Params) validateBar() error {
	if err := requirePositive("wave_speed", p.Bar.WaveSpeed); err != nil {
		return err
	}
	if err := requirePositive("elastic_modulus", p.Bar.ElasticModulus); err != nil {
		return err
	}
	if err := requirePositive("bar_cross_section_area", p.Bar.CrossSectionArea); err != nil {
		return err
	}
	if math.IsNaN(p.Bar.PoissonRatio) || p.Bar.PoissonRatio < 0 || p.Bar.PoissonRatio >= 0.5 {
		return fmt.Errorf("shpb: poisson ratio must be in [0,0.5): %g", p.Bar.PoissonRatio)
	}
	return requirePositive("pulse_duration", p.PulseDuration)
}

func requirePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%w: %s = %g", ErrMissingProperty, name, v)
	}
	return nil
}

type namedArray struct {
	name   string
	values []float32
}

// checkShapes reports the first array whose length differs from time.
func checkShapes(time []float32, arrays ...namedArray) error {
	for _, a := range arrays {
		if len(a.values) != len(time) {
			return fmt.Errorf("%w: %s has %d samples, time has %d", ErrShapeMismatch, a.name, len(a.values), len(time))
		}
	}
	return nil
}
