package pipeline

import (
	"github.com/cwbudde/algo-shpb/dsp/filter"
)

// highpassOrder is the Butterworth order of the drift-removal filter.
const highpassOrder = 2

// condition removes the pre-trigger offset, high-pass filters slow drift
// and low-pass filters a strain signal as configured. dt is the sampling
// interval in ms, so the sample rate is 1/dt kHz. Unconfigured steps are
// skipped.
func (p *Processor) condition(x []float32, dt float64) ([]float32, error) {
	baseline := p.cfg.GetBaselineSamples()
	highpass := p.cfg.GetHighpassCutoff()
	lowpass := p.cfg.GetLowpassCutoff()
	if baseline == 0 && highpass == 0 && lowpass == 0 {
		return x, nil
	}

	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = float64(v)
	}

	if baseline > 0 {
		if _, err := filter.RemoveOffset(y, min(baseline, len(y))); err != nil {
			return nil, err
		}
	}
	if highpass > 0 {
		coeffs, err := filter.ButterworthHighpass(highpass, highpassOrder, 1/dt)
		if err != nil {
			return nil, err
		}
		y = filter.ZeroPhase(coeffs, y)
	}
	if lowpass > 0 {
		coeffs, err := filter.ButterworthLowpass(lowpass, p.cfg.GetLowpassOrder(), 1/dt)
		if err != nil {
			return nil, err
		}
		y = filter.ZeroPhase(coeffs, y)
	}

	out := make([]float32, len(y))
	for i, v := range y {
		out[i] = float32(v)
	}
	return out, nil
}
