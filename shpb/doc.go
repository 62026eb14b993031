// Package shpb reduces extracted split-Hopkinson pressure bar pulses to
// mechanical time series.
//
// [Reduce] takes the incident, reflected and transmitted strain pulses of a
// specimen test together with the time axis and the bar and specimen
// constants, and returns the fixed set of derived series: interface
// velocities, strain rates, strains, forces, stresses and pulse energies
// computed with the 1-, 2- and 3-wave formulas. [ReduceTwoWave] covers bar
// calibration tests, which have no specimen and no reflected pulse.
//
// Units follow the bar conventions used throughout the module: lengths in
// mm, times in ms, moduli in MPa and densities in kg/mm³. Intermediate
// algebra runs in float64; every returned series is float32.
//
// # Usage
//
//	series, err := shpb.Reduce(shpb.Pulses{
//		Incident:    inc,
//		Reflected:   ref,
//		Transmitted: trans,
//		Time:        t,
//	}, params)
//	stress := series[shpb.EngineeringStress1Wave].Values
package shpb
