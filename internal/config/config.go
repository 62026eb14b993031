// Package config loads and validates the JSON processing configuration of
// a bar setup: detection parameters, signal conditioning, gauge conversion,
// bar and specimen constants and output locations.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-shpb/pulse"
	"github.com/cwbudde/algo-shpb/shpb"
	"github.com/cwbudde/algo-shpb/trace"
)

// DefaultConfigPath is the path to the example configuration shipped with
// the repository.
const DefaultConfigPath = "config/shpb.defaults.json"

// Config is the processing configuration for one bar setup. Nil fields are
// unset; the Get* methods supply defaults where one exists.
type Config struct {
	// Test
	TestKind *string `json:"test_kind,omitempty"` // "specimen" or "pulse"
	BarName  *string `json:"bar_name,omitempty"`

	// Detection
	PulsePoints   *int      `json:"pulse_points,omitempty"`
	SegmentPoints *int      `json:"segment_points,omitempty"`
	KTrials       []float64 `json:"k_trials,omitempty"`
	MinSeparation *float64  `json:"min_separation,omitempty"`
	Polarity      *string   `json:"polarity,omitempty"`
	Metric        *string   `json:"metric,omitempty"`
	ThreshRatio   *float64  `json:"thresh_ratio,omitempty"`
	LowerBound    *int      `json:"lower_bound,omitempty"`
	UpperBound    *int      `json:"upper_bound,omitempty"`

	// Conditioning, applied to the strain signals before detection
	BaselineSamples *int     `json:"baseline_samples,omitempty"`
	LowpassCutoff   *float64 `json:"lowpass_cutoff,omitempty"` // kHz
	LowpassOrder    *int     `json:"lowpass_order,omitempty"`
	HighpassCutoff  *float64 `json:"highpass_cutoff,omitempty"` // kHz, drift removal

	// Gauges
	IncidentGauge            *GaugeConfig `json:"incident_gauge,omitempty"`
	TransmittedGauge         *GaugeConfig `json:"transmitted_gauge,omitempty"`
	IncidentGaugeDistance    *float64     `json:"incident_gauge_distance,omitempty"`
	TransmittedGaugeDistance *float64     `json:"transmitted_gauge_distance,omitempty"`

	// Bar and specimen, in mm, ms, MPa and kg/mm³
	WaveSpeed                *float64 `json:"wave_speed,omitempty"`
	ElasticModulus           *float64 `json:"elastic_modulus,omitempty"`
	Density                  *float64 `json:"density,omitempty"`
	PoissonRatio             *float64 `json:"poisson_ratio,omitempty"`
	BarCrossSectionArea      *float64 `json:"bar_cross_section_area,omitempty"`
	SpecimenCrossSectionArea *float64 `json:"specimen_cross_section_area,omitempty"`
	SpecimenLength           *float64 `json:"specimen_length,omitempty"`

	// Outputs
	CalibrationLog *string `json:"calibration_log,omitempty"`
	Database       *string `json:"database,omitempty"`
}

// GaugeConfig converts a channel from volts to strain.
type GaugeConfig struct {
	Coefficient *float64 `json:"coefficient,omitempty"`
	Bridge      *string  `json:"bridge,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Default returns a Config with every defaulted field set explicitly.
// Bar and specimen constants have no default.
func Default() *Config {
	return &Config{
		TestKind:      ptrString("specimen"),
		PulsePoints:   ptrInt(defaultPulsePoints),
		SegmentPoints: ptrInt(defaultPulsePoints),
		KTrials:       append([]float64(nil), defaultKTrials...),
		Polarity:      ptrString("compressive"),
		Metric:        ptrString("peak"),
		ThreshRatio:   ptrFloat64(0.01),
	}
}

const defaultPulsePoints = 2000

var defaultKTrials = []float64{8, 6, 4, 3}

const (
	defaultLowpassOrder = 4
	maxLowpassOrder     = 8
)

// Load reads a Config from a JSON file. The file must have a .json
// extension and be at most 1 MB. Omitted fields stay unset.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks every field that is set.
func (c *Config) Validate() error {
	if c.TestKind != nil {
		if _, err := parseTestKind(*c.TestKind); err != nil {
			return err
		}
	}
	if c.PulsePoints != nil && *c.PulsePoints < 2 {
		return fmt.Errorf("pulse_points must be >= 2, got %d", *c.PulsePoints)
	}
	if c.SegmentPoints != nil && *c.SegmentPoints < 2 {
		return fmt.Errorf("segment_points must be >= 2, got %d", *c.SegmentPoints)
	}
	for _, k := range c.KTrials {
		if k <= 0 {
			return fmt.Errorf("k_trials must be positive, got %v", c.KTrials)
		}
	}
	if c.MinSeparation != nil && *c.MinSeparation < 0 {
		return fmt.Errorf("min_separation must be non-negative, got %f", *c.MinSeparation)
	}
	if c.Polarity != nil {
		if _, err := pulse.ParsePolarity(*c.Polarity); err != nil {
			return err
		}
	}
	if c.Metric != nil {
		if _, err := pulse.ParseMetric(*c.Metric); err != nil {
			return err
		}
	}
	if c.ThreshRatio != nil && (*c.ThreshRatio < 0 || *c.ThreshRatio > 1) {
		return fmt.Errorf("thresh_ratio must be between 0 and 1, got %f", *c.ThreshRatio)
	}
	if c.LowerBound != nil && c.UpperBound != nil && *c.LowerBound >= *c.UpperBound {
		return fmt.Errorf("lower_bound %d must be below upper_bound %d", *c.LowerBound, *c.UpperBound)
	}

	if c.BaselineSamples != nil && *c.BaselineSamples < 1 {
		return fmt.Errorf("baseline_samples must be >= 1, got %d", *c.BaselineSamples)
	}
	if c.LowpassCutoff != nil && *c.LowpassCutoff <= 0 {
		return fmt.Errorf("lowpass_cutoff must be positive, got %f", *c.LowpassCutoff)
	}
	if c.LowpassOrder != nil && (*c.LowpassOrder < 1 || *c.LowpassOrder > maxLowpassOrder) {
		return fmt.Errorf("lowpass_order must be between 1 and %d, got %d", maxLowpassOrder, *c.LowpassOrder)
	}
	if c.HighpassCutoff != nil && *c.HighpassCutoff <= 0 {
		return fmt.Errorf("highpass_cutoff must be positive, got %f", *c.HighpassCutoff)
	}
	if c.HighpassCutoff != nil && c.LowpassCutoff != nil && *c.HighpassCutoff >= *c.LowpassCutoff {
		return fmt.Errorf("highpass_cutoff %f must be below lowpass_cutoff %f", *c.HighpassCutoff, *c.LowpassCutoff)
	}

	for name, g := range map[string]*GaugeConfig{"incident_gauge": c.IncidentGauge, "transmitted_gauge": c.TransmittedGauge} {
		if g == nil {
			continue
		}
		if g.Coefficient != nil && *g.Coefficient == 0 {
			return fmt.Errorf("%s.coefficient must be non-zero", name)
		}
		if g.Bridge != nil {
			if _, err := trace.ParseBridge(*g.Bridge); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}

	for name, v := range map[string]*float64{
		"incident_gauge_distance":     c.IncidentGaugeDistance,
		"transmitted_gauge_distance":  c.TransmittedGaugeDistance,
		"wave_speed":                  c.WaveSpeed,
		"elastic_modulus":             c.ElasticModulus,
		"density":                     c.Density,
		"bar_cross_section_area":      c.BarCrossSectionArea,
		"specimen_cross_section_area": c.SpecimenCrossSectionArea,
		"specimen_length":             c.SpecimenLength,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}
	if c.PoissonRatio != nil && (*c.PoissonRatio < 0 || *c.PoissonRatio >= 0.5) {
		return fmt.Errorf("poisson_ratio must be in [0, 0.5), got %f", *c.PoissonRatio)
	}

	return nil
}

func parseTestKind(s string) (pulse.TestKind, error) {
	switch s {
	case "", "specimen":
		return pulse.SpecimenTest, nil
	case "pulse", "calibration":
		return pulse.CalibrationTest, nil
	default:
		return pulse.SpecimenTest, fmt.Errorf("unknown test_kind %q", s)
	}
}

// GetTestKind returns the test kind or SpecimenTest.
func (c *Config) GetTestKind() pulse.TestKind {
	if c.TestKind == nil {
		return pulse.SpecimenTest
	}
	k, _ := parseTestKind(*c.TestKind)
	return k
}

// GetBarName returns the bar name or "".
func (c *Config) GetBarName() string {
	if c.BarName == nil {
		return ""
	}
	return *c.BarName
}

// GetPulsePoints returns the detector template length or the default.
func (c *Config) GetPulsePoints() int {
	if c.PulsePoints == nil {
		return defaultPulsePoints
	}
	return *c.PulsePoints
}

// GetSegmentPoints returns the extracted pulse length, defaulting to the
// template length.
func (c *Config) GetSegmentPoints() int {
	if c.SegmentPoints == nil {
		return c.GetPulsePoints()
	}
	return *c.SegmentPoints
}

// GetKTrials returns the detection thresholds or the default set.
func (c *Config) GetKTrials() []float64 {
	if len(c.KTrials) == 0 {
		return append([]float64(nil), defaultKTrials...)
	}
	return append([]float64(nil), c.KTrials...)
}

// GetPolarity returns the expected incident pulse sign, compressive by default.
func (c *Config) GetPolarity() pulse.Polarity {
	if c.Polarity == nil {
		return pulse.Compressive
	}
	p, err := pulse.ParsePolarity(*c.Polarity)
	if err != nil {
		return pulse.Compressive
	}
	return p
}

// GetMetric returns the window scoring metric or peak.
func (c *Config) GetMetric() pulse.Metric {
	if c.Metric == nil {
		return pulse.MetricPeak
	}
	m, err := pulse.ParseMetric(*c.Metric)
	if err != nil {
		return pulse.MetricPeak
	}
	return m
}

// GetThreshRatio returns the segment cleaning ratio or 0.01.
func (c *Config) GetThreshRatio() float64 {
	if c.ThreshRatio == nil {
		return 0.01
	}
	return *c.ThreshRatio
}

// GetMinSeparation returns the minimum peak separation in samples, or 0
// to let the detector use its default.
func (c *Config) GetMinSeparation() float64 {
	if c.MinSeparation == nil {
		return 0
	}
	return *c.MinSeparation
}

// GetBaselineSamples returns the number of leading samples used for offset
// removal, or 0 to keep the offset.
func (c *Config) GetBaselineSamples() int {
	if c.BaselineSamples == nil {
		return 0
	}
	return *c.BaselineSamples
}

// GetLowpassCutoff returns the low-pass cutoff in kHz, or 0 when the
// signals are not filtered.
func (c *Config) GetLowpassCutoff() float64 {
	if c.LowpassCutoff == nil {
		return 0
	}
	return *c.LowpassCutoff
}

// GetLowpassOrder returns the Butterworth order or 4.
func (c *Config) GetLowpassOrder() int {
	if c.LowpassOrder == nil {
		return defaultLowpassOrder
	}
	return *c.LowpassOrder
}

// GetHighpassCutoff returns the drift-removal high-pass cutoff in kHz, or 0
// when no high-pass is applied.
func (c *Config) GetHighpassCutoff() float64 {
	if c.HighpassCutoff == nil {
		return 0
	}
	return *c.HighpassCutoff
}

// GetIncidentGauge returns the incident gauge conversion. An unset gauge
// passes samples through unchanged.
func (c *Config) GetIncidentGauge() trace.Gauge {
	return c.IncidentGauge.gauge()
}

// GetTransmittedGauge returns the transmitted gauge conversion.
func (c *Config) GetTransmittedGauge() trace.Gauge {
	return c.TransmittedGauge.gauge()
}

func (g *GaugeConfig) gauge() trace.Gauge {
	out := trace.Gauge{Coefficient: 1, Bridge: trace.FullBridge}
	if g == nil {
		return out
	}
	if g.Coefficient != nil {
		out.Coefficient = *g.Coefficient
	}
	if g.Bridge != nil {
		if b, err := trace.ParseBridge(*g.Bridge); err == nil {
			out.Bridge = b
		}
	}
	return out
}

// GetCalibrationLog returns the calibration CSV path or "".
func (c *Config) GetCalibrationLog() string {
	if c.CalibrationLog == nil {
		return ""
	}
	return *c.CalibrationLog
}

// GetDatabase returns the SQLite database path or "".
func (c *Config) GetDatabase() string {
	if c.Database == nil {
		return ""
	}
	return *c.Database
}

// BarParams returns the reducer constants. Unset values are zero and are
// reported by shpb.Params.Validate.
func (c *Config) BarParams(pulseDuration float64) shpb.Params {
	val := func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	}
	return shpb.Params{
		Bar: shpb.BarProperties{
			WaveSpeed:        val(c.WaveSpeed),
			ElasticModulus:   val(c.ElasticModulus),
			Density:          val(c.Density),
			PoissonRatio:     val(c.PoissonRatio),
			CrossSectionArea: val(c.BarCrossSectionArea),
		},
		Specimen: shpb.SpecimenGeometry{
			CrossSectionArea: val(c.SpecimenCrossSectionArea),
			Length:           val(c.SpecimenLength),
		},
		PulseDuration: pulseDuration,
	}
}

// TimingInput returns the geometry part of a timing estimate. Windows and
// sampling interval are filled in by the caller.
func (c *Config) TimingInput() pulse.TimingInput {
	in := pulse.TimingInput{Kind: c.GetTestKind()}
	if c.IncidentGaugeDistance != nil {
		in.IncidentGaugeDistance = *c.IncidentGaugeDistance
	}
	if c.TransmittedGaugeDistance != nil {
		in.TransmittedGaugeDistance = *c.TransmittedGaugeDistance
	}
	if c.SpecimenLength != nil {
		in.SpecimenLength = *c.SpecimenLength
	}
	if c.WaveSpeed != nil {
		in.NominalWaveSpeed = *c.WaveSpeed
	}
	return in
}

// HasGaugeDistances reports whether both gauge distances are configured.
func (c *Config) HasGaugeDistances() bool {
	return c.IncidentGaugeDistance != nil && c.TransmittedGaugeDistance != nil
}
