package pulse

import (
	"fmt"

	"github.com/cwbudde/algo-shpb/dsp/conv"
	timestats "github.com/cwbudde/algo-shpb/stats/time"
)

// Window is a half-open sample range [Start, End) within a trace.
type Window struct {
	Start int
	End   int
}

// Len returns the number of samples in the window.
func (w Window) Len() int {
	return w.End - w.Start
}

// String formats the window as [start,end).
func (w Window) String() string {
	return fmt.Sprintf("[%d,%d)", w.Start, w.End)
}

// noiseFraction is the leading share of the trace assumed to be pre-trigger.
const noiseFraction = 0.1

// defaultSeparationRatio scales the pulse length into the default minimum
// distance between two accepted peaks.
const defaultSeparationRatio = 0.8

// Detect locates pulses in trace with a matched filter.
//
// The trace is correlated with a half-sine template of pulsePoints samples.
// The noise floor σ is the population standard deviation of the response
// over the first 10% of samples, and every response sample above kSigma·σ
// is a candidate. Candidates are scanned in ascending order; one closer
// than the minimum separation to the last accepted peak is dropped, so the
// earliest sample of each cluster wins. Each peak p yields the window
// [p - pulsePoints/2, p + pulsePoints/2) clipped to the trace.
//
// An empty result means nothing crossed the threshold and is not an error.
func Detect(trace []float32, pulsePoints int, kSigma float64, opts ...Option) ([]Window, error) {
	if err := validatePulsePoints(pulsePoints); err != nil {
		return nil, err
	}
	if len(trace) == 0 {
		return nil, nil
	}

	cfg := applyOptions(opts)
	return detect(toFloat64(trace), pulsePoints, kSigma, cfg)
}

func detect(x []float64, pulsePoints int, kSigma float64, cfg config) ([]Window, error) {
	polarity := cfg.polarity
	if polarity == PolarityAuto {
		polarity = Compressive
	}

	template, err := HalfSineTemplate(pulsePoints, polarity)
	if err != nil {
		return nil, err
	}

	resp, err := conv.MatchedFilter(x, template)
	if err != nil {
		return nil, fmt.Errorf("pulse: matched filter: %w", err)
	}

	noiseLen := max(1, int(noiseFraction*float64(len(resp))))
	sigma := timestats.StdDev(resp[:noiseLen])
	threshold := kSigma * sigma

	minSep := cfg.minSeparation
	if minSep <= 0 {
		minSep = defaultSeparationRatio * float64(pulsePoints)
	}

	var (
		peaks      []int
		candidates int
		last       int
	)
	for i, v := range resp {
		if v <= threshold {
			continue
		}
		candidates++
		if len(peaks) > 0 && float64(i-last) < minSep {
			continue
		}
		peaks = append(peaks, i)
		last = i
	}

	if cfg.debug != nil {
		cfg.debug(DebugInfo{
			KSigma:     kSigma,
			Sigma:      sigma,
			Threshold:  threshold,
			Candidates: candidates,
			Peaks:      append([]int(nil), peaks...),
		})
	}

	half := pulsePoints / 2
	windows := make([]Window, 0, len(peaks))
	for _, p := range peaks {
		windows = append(windows, Window{
			Start: max(0, p-half),
			End:   min(len(x), p+half),
		})
	}

	return windows, nil
}

func toFloat64(x []float32) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = float64(v)
	}
	return out
}
