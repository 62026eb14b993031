package shpb

// Series is one derived, unit-tagged time series.
type Series struct {
	Name        string
	Values      []float32
	Unit        string // QUDT unit URI
	Legend      string
	Description string
}

// QUDT unit URIs attached to the derived series.
const (
	UnitVelocity   = "http://qudt.org/vocab/unit/M-PER-SEC"
	UnitStrainRate = "http://qudt.org/vocab/unit/PER-SEC"
	UnitStrain     = "http://qudt.org/vocab/unit/UNITLESS"
	UnitForce      = "http://qudt.org/vocab/unit/KiloN"
	UnitStress     = "http://qudt.org/vocab/unit/MegaPA"
	UnitEnergy     = "http://qudt.org/vocab/unit/MilliJ"
)

// Derived series names.
const (
	ParticleVelocity1 = "ParticleVelocity_Interface1"
	ParticleVelocity2 = "ParticleVelocity_Interface2"

	EngineeringStrainRate1Wave = "EngineeringStrainRate_1Wave"
	EngineeringStrainRate3Wave = "EngineeringStrainRate_3Wave"
	EngineeringStrain1Wave     = "EngineeringStrain_1Wave"
	EngineeringStrain3Wave     = "EngineeringStrain_3Wave"
	TrueStrain1Wave            = "TrueStrain_1Wave"
	TrueStrain3Wave            = "TrueStrain_3Wave"

	Force1Wave             = "Force_1Wave"
	Force2Wave             = "Force_2Wave"
	EngineeringStress1Wave = "EngineeringStress_1Wave"
	EngineeringStress2Wave = "EngineeringStress_2Wave"
	TrueStress1Wave        = "TrueStress_1Wave"
	TrueStress2Wave        = "TrueStress_2Wave"

	IncidentStrainEnergy    = "IncidentStrainEnergy"
	ReflectedStrainEnergy   = "ReflectedStrainEnergy"
	TransmittedStrainEnergy = "TransmittedStrainEnergy"
	AbsorbedElasticEnergy   = "AbsorbedElasticEnergy"
	AbsorbedKineticEnergy   = "AbsorbedKineticEnergy"
	TotalAbsorbedEnergy     = "TotalAbsorbedEnergy"
)

type seriesInfo struct {
	unit        string
	legend      string
	description string
}

var catalog = map[string]seriesInfo{
	ParticleVelocity1: {UnitVelocity, "v1", "Particle velocity at the incident bar/specimen interface, c0·(εi+εr)"},
	ParticleVelocity2: {UnitVelocity, "v2", "Particle velocity at the specimen/transmission bar interface, c0·εt"},

	EngineeringStrainRate1Wave: {UnitStrainRate, "Strain rate (1-wave)", "Engineering strain rate from the reflected pulse, 2c0/L·εr"},
	EngineeringStrainRate3Wave: {UnitStrainRate, "Strain rate (3-wave)", "Engineering strain rate from all three pulses, c0/L·(εi-εr-εt)"},
	EngineeringStrain1Wave:     {UnitStrain, "Strain (1-wave)", "Engineering strain, time integral of the 1-wave strain rate"},
	EngineeringStrain3Wave:     {UnitStrain, "Strain (3-wave)", "Engineering strain, time integral of the 3-wave strain rate"},
	TrueStrain1Wave:            {UnitStrain, "True strain (1-wave)", "ln(1+ε) of the 1-wave engineering strain"},
	TrueStrain3Wave:            {UnitStrain, "True strain (3-wave)", "ln(1+ε) of the 3-wave engineering strain"},

	Force1Wave:             {UnitForce, "F (1-wave)", "Interface force from the transmitted pulse"},
	Force2Wave:             {UnitForce, "F (2-wave)", "Interface force from the incident and reflected pulses"},
	EngineeringStress1Wave: {UnitStress, "Stress (1-wave)", "Engineering stress from the transmitted pulse"},
	EngineeringStress2Wave: {UnitStress, "Stress (2-wave)", "Engineering stress from the incident and reflected pulses"},
	TrueStress1Wave:        {UnitStress, "True stress (1-wave)", "1-wave engineering stress times (1 + 1-wave strain)"},
	TrueStress2Wave:        {UnitStress, "True stress (2-wave)", "2-wave engineering stress times (1 + 3-wave strain)"},

	IncidentStrainEnergy:    {UnitEnergy, "W_i", "Strain energy carried by the incident pulse"},
	ReflectedStrainEnergy:   {UnitEnergy, "W_r", "Strain energy carried by the reflected pulse"},
	TransmittedStrainEnergy: {UnitEnergy, "W_t", "Strain energy carried by the transmitted pulse"},
	AbsorbedElasticEnergy:   {UnitEnergy, "ΔE", "Elastic energy absorbed by the specimen"},
	AbsorbedKineticEnergy:   {UnitEnergy, "ΔK", "Kinetic energy absorbed by the specimen"},
	TotalAbsorbedEnergy:     {UnitEnergy, "ΔE+ΔK", "Total energy absorbed by the specimen"},
}

var specimenNames = []string{
	ParticleVelocity1, ParticleVelocity2,
	EngineeringStrainRate1Wave, EngineeringStrainRate3Wave,
	EngineeringStrain1Wave, EngineeringStrain3Wave,
	TrueStrain1Wave, TrueStrain3Wave,
	Force1Wave, Force2Wave,
	EngineeringStress1Wave, EngineeringStress2Wave,
	TrueStress1Wave, TrueStress2Wave,
	IncidentStrainEnergy, ReflectedStrainEnergy, TransmittedStrainEnergy,
	AbsorbedElasticEnergy, AbsorbedKineticEnergy, TotalAbsorbedEnergy,
}

var twoWaveNames = []string{
	ParticleVelocity1, ParticleVelocity2,
	IncidentStrainEnergy, TransmittedStrainEnergy,
}

// Names returns the series produced by Reduce in a stable order.
func Names() []string {
	return append([]string(nil), specimenNames...)
}

// TwoWaveNames returns the series produced by ReduceTwoWave in a stable order.
func TwoWaveNames() []string {
	return append([]string(nil), twoWaveNames...)
}

func pack(name string, values []float64) Series {
	out := make([]float32, len(values))
	for i, v := range values {
		out[i] = float32(v)
	}
	return packFloat32(name, out)
}

func packFloat32(name string, values []float32) Series {
	info := catalog[name]
	return Series{
		Name:        name,
		Values:      values,
		Unit:        info.unit,
		Legend:      info.legend,
		Description: info.description,
	}
}
