// Package pulse locates and extracts stress pulses in raw strain-gauge
// traces from a split-Hopkinson pressure bar.
//
// The stages are plain functions over slices and run in this order:
//
//   - [HalfSineTemplate] builds the unit-energy matched-filter kernel
//   - [Detect] correlates a trace with the template and returns candidate windows
//   - [SelectWindow] runs [Detect] for several thresholds and keeps the strongest window
//   - [Segment] cuts a fixed-length, centred and sign-cleaned pulse out of the trace
//   - [EstimateTiming] turns the incident and transmitted windows into pulse speed and duration
//
// # Usage
//
//	w, err := pulse.SelectWindow(incident, 2000, []float64{8, 6, 4},
//		pulse.WithPolarity(pulse.Compressive),
//		pulse.WithMetric(pulse.MetricPeak),
//	)
//	inc, err := pulse.Segment(incident, w, 4096, pulse.WithPolarity(pulse.Compressive))
//
// A detector run that finds nothing is not an error: [Detect] returns an
// empty slice. Only [SelectWindow] reports [ErrNoPeakDetected] once every
// threshold came back empty, and [ErrNoWindowSatisfiesBounds] when all
// candidates fall outside the configured index bounds.
package pulse
