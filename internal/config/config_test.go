package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-shpb/pulse"
	"github.com/cwbudde/algo-shpb/trace"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := Empty()

	assert.Equal(t, pulse.SpecimenTest, cfg.GetTestKind())
	assert.Equal(t, 2000, cfg.GetPulsePoints())
	assert.Equal(t, 2000, cfg.GetSegmentPoints())
	assert.Equal(t, []float64{8, 6, 4, 3}, cfg.GetKTrials())
	assert.Equal(t, pulse.Compressive, cfg.GetPolarity())
	assert.Equal(t, pulse.MetricPeak, cfg.GetMetric())
	assert.InDelta(t, 0.01, cfg.GetThreshRatio(), 1e-12)
	assert.Zero(t, cfg.GetMinSeparation())
	assert.Zero(t, cfg.GetBaselineSamples())
	assert.Zero(t, cfg.GetLowpassCutoff())
	assert.Equal(t, 4, cfg.GetLowpassOrder())
	assert.Zero(t, cfg.GetHighpassCutoff())
	assert.Equal(t, trace.Gauge{Coefficient: 1, Bridge: trace.FullBridge}, cfg.GetIncidentGauge())
	assert.Empty(t, cfg.GetCalibrationLog())
	assert.Empty(t, cfg.GetDatabase())
	assert.False(t, cfg.HasGaugeDistances())
}

func TestDefaultMatchesGetters(t *testing.T) {
	def := Default()
	empty := Empty()

	require.NoError(t, def.Validate())
	assert.Equal(t, empty.GetPulsePoints(), def.GetPulsePoints())
	assert.Equal(t, empty.GetSegmentPoints(), def.GetSegmentPoints())
	assert.Equal(t, empty.GetKTrials(), def.GetKTrials())
	assert.Equal(t, empty.GetPolarity(), def.GetPolarity())
	assert.Equal(t, empty.GetMetric(), def.GetMetric())
	assert.Equal(t, empty.GetThreshRatio(), def.GetThreshRatio())
	assert.Equal(t, empty.GetTestKind(), def.GetTestKind())
}

func TestGetKTrialsReturnsCopy(t *testing.T) {
	cfg := Empty()
	k := cfg.GetKTrials()
	k[0] = 99
	assert.Equal(t, 8.0, cfg.GetKTrials()[0])
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "bar.json", `{
  "test_kind": "pulse",
  "pulse_points": 500,
  "k_trials": [5, 3],
  "polarity": "tensile",
  "metric": "median",
  "lower_bound": 100,
  "baseline_samples": 250,
  "lowpass_cutoff": 150,
  "lowpass_order": 2,
  "highpass_cutoff": 0.5,
  "incident_gauge": {"coefficient": 0.004, "bridge": "quarter"},
  "incident_gauge_distance": 1000,
  "transmitted_gauge_distance": 900,
  "wave_speed": 5000,
  "database": "runs.db"
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, pulse.CalibrationTest, cfg.GetTestKind())
	assert.Equal(t, 500, cfg.GetPulsePoints())
	assert.Equal(t, 500, cfg.GetSegmentPoints())
	assert.Equal(t, []float64{5, 3}, cfg.GetKTrials())
	assert.Equal(t, pulse.Tensile, cfg.GetPolarity())
	assert.Equal(t, pulse.MetricMedian, cfg.GetMetric())
	require.NotNil(t, cfg.LowerBound)
	assert.Equal(t, 100, *cfg.LowerBound)
	assert.Nil(t, cfg.UpperBound)
	assert.Equal(t, 250, cfg.GetBaselineSamples())
	assert.Equal(t, 150.0, cfg.GetLowpassCutoff())
	assert.Equal(t, 2, cfg.GetLowpassOrder())
	assert.Equal(t, 0.5, cfg.GetHighpassCutoff())
	assert.Equal(t, trace.Gauge{Coefficient: 0.004, Bridge: trace.QuarterBridge}, cfg.GetIncidentGauge())
	assert.Equal(t, trace.Gauge{Coefficient: 1, Bridge: trace.FullBridge}, cfg.GetTransmittedGauge())
	assert.Equal(t, "runs.db", cfg.GetDatabase())
	assert.True(t, cfg.HasGaugeDistances())

	in := cfg.TimingInput()
	assert.Equal(t, pulse.CalibrationTest, in.Kind)
	assert.Equal(t, 1000.0, in.IncidentGaugeDistance)
	assert.Equal(t, 900.0, in.TransmittedGaugeDistance)
	assert.Equal(t, 5000.0, in.NominalWaveSpeed)
}

func TestLoadShippedDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)

	params := cfg.BarParams(0.2)
	require.NoError(t, params.Validate())
	assert.Equal(t, 4096, cfg.GetSegmentPoints())
	assert.Equal(t, float64(2*cfg.GetPulsePoints()), cfg.GetMinSeparation())
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
		want string
	}{
		{"extension", "bar.yaml", `{}`, ".json extension"},
		{"syntax", "bar.json", `{"pulse_points": }`, "parse"},
		{"pulse points", "bar.json", `{"pulse_points": 1}`, "pulse_points"},
		{"segment points", "bar.json", `{"segment_points": 0}`, "segment_points"},
		{"k trials", "bar.json", `{"k_trials": [3, -1]}`, "k_trials"},
		{"polarity", "bar.json", `{"polarity": "sideways"}`, "polarity"},
		{"metric", "bar.json", `{"metric": "mean"}`, "metric"},
		{"thresh ratio", "bar.json", `{"thresh_ratio": 2}`, "thresh_ratio"},
		{"bounds", "bar.json", `{"lower_bound": 10, "upper_bound": 5}`, "lower_bound"},
		{"baseline", "bar.json", `{"baseline_samples": 0}`, "baseline_samples"},
		{"cutoff", "bar.json", `{"lowpass_cutoff": -1}`, "lowpass_cutoff"},
		{"order", "bar.json", `{"lowpass_order": 12}`, "lowpass_order"},
		{"highpass", "bar.json", `{"highpass_cutoff": 0}`, "highpass_cutoff"},
		{"highpass above lowpass", "bar.json", `{"highpass_cutoff": 200, "lowpass_cutoff": 100}`, "below lowpass_cutoff"},
		{"bridge", "bar.json", `{"transmitted_gauge": {"bridge": "third"}}`, "transmitted_gauge"},
		{"coefficient", "bar.json", `{"incident_gauge": {"coefficient": 0}}`, "incident_gauge.coefficient"},
		{"wave speed", "bar.json", `{"wave_speed": -5000}`, "wave_speed"},
		{"poisson", "bar.json", `{"poisson_ratio": 0.6}`, "poisson_ratio"},
		{"test kind", "bar.json", `{"test_kind": "drop"}`, "test_kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadRejectsLargeFile(t *testing.T) {
	body := `{"bar_name": "` + strings.Repeat("x", 1024*1024) + `"}`
	_, err := Load(writeConfig(t, "big.json", body))
	assert.ErrorContains(t, err, "too large")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "stat")
}

func TestBarParamsMissingValues(t *testing.T) {
	params := Empty().BarParams(0.2)
	assert.Error(t, params.Validate())
}
