package pulse

import (
	"fmt"
	"strings"
)

// Polarity is the expected sign of a pulse.
type Polarity int

const (
	// PolarityAuto lets Segment infer the sign from the largest sample.
	// The detector treats it as Compressive.
	PolarityAuto Polarity = iota
	Compressive
	Tensile
)

// String returns the polarity name.
func (p Polarity) String() string {
	switch p {
	case Compressive:
		return "compressive"
	case Tensile:
		return "tensile"
	default:
		return "auto"
	}
}

// ParsePolarity parses "compressive", "tensile" or "auto" (or "").
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return PolarityAuto, nil
	case "compressive", "compression":
		return Compressive, nil
	case "tensile", "tension":
		return Tensile, nil
	default:
		return PolarityAuto, fmt.Errorf("pulse: unknown polarity %q", s)
	}
}

// Metric scores a candidate window by its amplitude.
type Metric int

const (
	// MetricPeak scores by the largest absolute sample.
	MetricPeak Metric = iota
	// MetricMedian scores by the median absolute sample.
	MetricMedian
)

// String returns the metric name.
func (m Metric) String() string {
	if m == MetricMedian {
		return "median"
	}
	return "peak"
}

// ParseMetric parses "peak" or "median".
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "peak":
		return MetricPeak, nil
	case "median":
		return MetricMedian, nil
	default:
		return MetricPeak, fmt.Errorf("pulse: unknown metric %q", s)
	}
}

// DebugInfo describes one detector run.
type DebugInfo struct {
	KSigma     float64
	Sigma      float64 // noise floor of the filter response
	Threshold  float64
	Candidates int   // response samples above Threshold
	Peaks      []int // accepted peak indices
}

// Option configures detection, selection and segmentation.
type Option func(*config)

type config struct {
	minSeparation float64
	polarity      Polarity
	debug         func(DebugInfo)

	lowerBound    int
	upperBound    int
	hasLowerBound bool
	hasUpperBound bool
	metric        Metric

	threshRatio float64
}

const defaultThreshRatio = 0.01

func defaultConfig() config {
	return config{
		polarity:    PolarityAuto,
		metric:      MetricPeak,
		threshRatio: defaultThreshRatio,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithMinSeparation sets the minimum distance in samples between two
// accepted peaks. The default is 0.8 times the pulse length.
func WithMinSeparation(samples float64) Option {
	return func(c *config) {
		if samples > 0 {
			c.minSeparation = samples
		}
	}
}

// WithPolarity sets the expected pulse sign.
func WithPolarity(p Polarity) Option {
	return func(c *config) {
		c.polarity = p
	}
}

// WithDebug registers a hook called once per detector run.
func WithDebug(fn func(DebugInfo)) Option {
	return func(c *config) {
		c.debug = fn
	}
}

// WithLowerBound rejects windows starting before index lo.
func WithLowerBound(lo int) Option {
	return func(c *config) {
		c.lowerBound = lo
		c.hasLowerBound = true
	}
}

// WithUpperBound rejects windows ending after index hi.
func WithUpperBound(hi int) Option {
	return func(c *config) {
		c.upperBound = hi
		c.hasUpperBound = true
	}
}

// WithMetric sets the window scoring metric.
func WithMetric(m Metric) Option {
	return func(c *config) {
		c.metric = m
	}
}

// WithThreshRatio sets the fraction of the peak magnitude below which
// Segment zeroes samples. The default is 0.01.
func WithThreshRatio(r float64) Option {
	return func(c *config) {
		c.threshRatio = r
	}
}

func (c config) boundsString() string {
	lo, hi := "none", "none"
	if c.hasLowerBound {
		lo = fmt.Sprint(c.lowerBound)
	}
	if c.hasUpperBound {
		hi = fmt.Sprint(c.upperBound)
	}
	return fmt.Sprintf("lower=%s upper=%s", lo, hi)
}
