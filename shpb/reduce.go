package shpb

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// Pulses holds the extracted strain pulses of one specimen test and their
// common time axis in ms. All four slices must have the same length.
type Pulses struct {
	Incident    []float32
	Reflected   []float32
	Transmitted []float32
	Time        []float32
}

// Reduce derives the specimen series from the three pulses:
//
//	v1  = c0·(εi+εr)                      v2  = c0·εt
//	SR1 = 2c0/L·εr·1000                   SR3 = c0/L·(εi-εr-εt)·1000
//	ε   = ∫ SR/1000 dt                    εtrue = ln(1+ε)
//	F1  = A·E/1000·εt                     F2  = A·E/1000·(εi+εr)
//	σ1  = E·A/As·εt                       σ2  = E·A/As·(εi+εr)
//	σt1 = σ1·(1+ε1)                       σt2 = σ2·(1+ε3)
//	Wk  = ½·A·c0·E·T·ln(1+εk)²
//	ΔE  = ½·A·c0·E·T·(εi²-εr²-εt²)        ΔK  = ½·1000·A·c0³·ρ·T·(εi²-εr²-εt²)
//
// The 2-wave true stress pairs with the 3-wave strain. The total absorbed
// energy is the float32 sum of the returned ΔE and ΔK series.
//
// Nothing is returned unless every constant is present and all arrays agree
// in length.
func Reduce(p Pulses, params Params) (map[string]Series, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := checkShapes(p.Time,
		namedArray{"incident", p.Incident},
		namedArray{"reflected", p.Reflected},
		namedArray{"transmitted", p.Transmitted},
	); err != nil {
		return nil, err
	}

	var (
		inc   = toFloat64(p.Incident)
		ref   = toFloat64(p.Reflected)
		trans = toFloat64(p.Transmitted)
		t     = toFloat64(p.Time)
		n     = len(t)
	)

	bar := params.Bar
	c0 := bar.WaveSpeed
	length := params.Specimen.Length

	incRef := make([]float64, n)
	floats.AddTo(incRef, inc, ref)

	threeWave := make([]float64, n)
	floats.SubTo(threeWave, inc, ref)
	floats.Sub(threeWave, trans)

	// Rates per ms; the strains integrate these over the ms time axis.
	rate1 := scaled(ref, 2*c0/length)
	rate3 := scaled(threeWave, c0/length)
	strain1 := cumTrapz(rate1, t)
	strain3 := cumTrapz(rate3, t)

	forceFactor := bar.CrossSectionArea * (bar.ElasticModulus / 1000)
	stressFactor := (bar.ElasticModulus / 1000) * (bar.CrossSectionArea / params.Specimen.CrossSectionArea) * 1000
	stress1 := scaled(trans, stressFactor)
	stress2 := scaled(incRef, stressFactor)

	elastic := elasticEnergyFactor(params)
	kinetic := 0.5 * 1000 * bar.CrossSectionArea * c0 * c0 * c0 * bar.Density * params.PulseDuration
	balance := energyBalance(inc, ref, trans)

	out := make(map[string]Series, len(specimenNames))
	put := func(name string, values []float64) {
		out[name] = pack(name, values)
	}

	put(ParticleVelocity1, scaled(incRef, c0))
	put(ParticleVelocity2, scaled(trans, c0))

	put(EngineeringStrainRate1Wave, scaled(rate1, 1000))
	put(EngineeringStrainRate3Wave, scaled(rate3, 1000))
	put(EngineeringStrain1Wave, strain1)
	put(EngineeringStrain3Wave, strain3)
	put(TrueStrain1Wave, logOnePlus(strain1))
	put(TrueStrain3Wave, logOnePlus(strain3))

	put(Force1Wave, scaled(trans, forceFactor))
	put(Force2Wave, scaled(incRef, forceFactor))
	put(EngineeringStress1Wave, stress1)
	put(EngineeringStress2Wave, stress2)
	put(TrueStress1Wave, trueStress(stress1, strain1))
	put(TrueStress2Wave, trueStress(stress2, strain3))

	put(IncidentStrainEnergy, strainEnergy(inc, elastic))
	put(ReflectedStrainEnergy, strainEnergy(ref, elastic))
	put(TransmittedStrainEnergy, strainEnergy(trans, elastic))

	de := pack(AbsorbedElasticEnergy, scaled(balance, elastic))
	dk := pack(AbsorbedKineticEnergy, scaled(balance, kinetic))
	total := make([]float32, n)
	for i := range total {
		total[i] = de.Values[i] + dk.Values[i]
	}
	out[AbsorbedElasticEnergy] = de
	out[AbsorbedKineticEnergy] = dk
	out[TotalAbsorbedEnergy] = packFloat32(TotalAbsorbedEnergy, total)

	return out, nil
}

// ReduceTwoWave derives the bar-side series of a calibration test, where the
// bars touch and only incident and transmitted pulses exist. Specimen
// geometry and density are not required.
func ReduceTwoWave(incident, transmitted, time []float32, params Params) (map[string]Series, error) {
	if err := params.validateBar(); err != nil {
		return nil, err
	}
	if err := checkShapes(time,
		namedArray{"incident", incident},
		namedArray{"transmitted", transmitted},
	); err != nil {
		return nil, err
	}

	inc := toFloat64(incident)
	trans := toFloat64(transmitted)
	c0 := params.Bar.WaveSpeed
	elastic := elasticEnergyFactor(params)

	return map[string]Series{
		ParticleVelocity1:       pack(ParticleVelocity1, scaled(inc, c0)),
		ParticleVelocity2:       pack(ParticleVelocity2, scaled(trans, c0)),
		IncidentStrainEnergy:    pack(IncidentStrainEnergy, strainEnergy(inc, elastic)),
		TransmittedStrainEnergy: pack(TransmittedStrainEnergy, strainEnergy(trans, elastic)),
	}, nil
}

func elasticEnergyFactor(p Params) float64 {
	return 0.5 * p.Bar.CrossSectionArea * p.Bar.WaveSpeed * p.Bar.ElasticModulus * p.PulseDuration
}

func scaled(x []float64, k float64) []float64 {
	out := make([]float64, len(x))
	vecmath.ScaleBlock(out, x, k)
	return out
}

func logOnePlus(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = math.Log1p(v)
	}
	return out
}

// trueStress returns σ·(1+ε).
func trueStress(stress, strain []float64) []float64 {
	onePlus := make([]float64, len(strain))
	for i, v := range strain {
		onePlus[i] = 1 + v
	}
	out := make([]float64, len(stress))
	vecmath.MulBlock(out, stress, onePlus)
	return out
}

// strainEnergy returns factor·ln(1+ε)² per sample.
func strainEnergy(pulse []float64, factor float64) []float64 {
	ln := logOnePlus(pulse)
	vecmath.MulBlockInPlace(ln, ln)
	floats.Scale(factor, ln)
	return ln
}

// energyBalance returns εi²-εr²-εt² per sample.
func energyBalance(inc, ref, trans []float64) []float64 {
	out := make([]float64, len(inc))
	for i := range out {
		out[i] = inc[i]*inc[i] - ref[i]*ref[i] - trans[i]*trans[i]
	}
	return out
}

func toFloat64(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}
