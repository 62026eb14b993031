package pulse

import (
	"fmt"

	timestats "github.com/cwbudde/algo-shpb/stats/time"
)

// Trial holds the windows one detection threshold produced.
type Trial struct {
	KSigma  float64
	Windows []Window
}

// DetectAll runs Detect once per threshold in kTrials and returns the raw
// trials in input order without any selection. Useful for diagnostics.
func DetectAll(signal []float32, pulsePoints int, kTrials []float64, opts ...Option) ([]Trial, error) {
	if err := validatePulsePoints(pulsePoints); err != nil {
		return nil, err
	}
	if len(kTrials) == 0 {
		return nil, errEmptyTrials
	}

	cfg := applyOptions(opts)
	trials := make([]Trial, 0, len(kTrials))

	if len(signal) == 0 {
		for _, k := range kTrials {
			trials = append(trials, Trial{KSigma: k})
		}
		return trials, nil
	}

	x := toFloat64(signal)
	for _, k := range kTrials {
		windows, err := detect(x, pulsePoints, k, cfg)
		if err != nil {
			return nil, err
		}
		trials = append(trials, Trial{KSigma: k, Windows: windows})
	}

	return trials, nil
}

// SelectWindow detects pulses at every threshold in kTrials and returns the
// single best window.
//
// Windows from all thresholds are pooled in trial order. Windows starting
// before the lower bound or ending after the upper bound are discarded; the
// rest are scored over signal[Start:End] with the configured metric. A later
// window replaces the current best only when its score is strictly greater.
func SelectWindow(signal []float32, pulsePoints int, kTrials []float64, opts ...Option) (Window, error) {
	trials, err := DetectAll(signal, pulsePoints, kTrials, opts...)
	if err != nil {
		return Window{}, err
	}

	cfg := applyOptions(opts)

	var (
		best      Window
		bestScore float64
		found     int
		accepted  int
	)
	for _, tr := range trials {
		for _, w := range tr.Windows {
			found++
			if cfg.hasLowerBound && w.Start < cfg.lowerBound {
				continue
			}
			if cfg.hasUpperBound && w.End > cfg.upperBound {
				continue
			}

			score := windowScore(signal[w.Start:w.End], cfg.metric)
			if accepted == 0 || score > bestScore {
				best, bestScore = w, score
			}
			accepted++
		}
	}

	if found == 0 {
		return Window{}, fmt.Errorf("%w: thresholds %v", ErrNoPeakDetected, kTrials)
	}
	if accepted == 0 {
		return Window{}, fmt.Errorf("%w: %d candidates outside %s", ErrNoWindowSatisfiesBounds, found, cfg.boundsString())
	}

	return best, nil
}

func windowScore(seg []float32, m Metric) float64 {
	x := toFloat64(seg)
	if m == MetricMedian {
		return timestats.MedianAbs(x)
	}
	return timestats.Peak(x)
}
