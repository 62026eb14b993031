package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-shpb/pulse"
)

const sampleCSV = `# recorded on bench 2
time, incident, transmitted
0, 0.0, 0.0
0.001, -0.5, 0.0
0.002, -1.0, 0.25
`

func TestRead(t *testing.T) {
	exp, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	if diff := cmp.Diff([]float32{0, 0.001, 0.002}, exp.Time); diff != "" {
		t.Errorf("time mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, exp.Incident, 1)
	require.Len(t, exp.Transmitted, 1)

	want := Channel{Name: "incident", Class: Incident, Samples: []float32{0, -0.5, -1}}
	if diff := cmp.Diff(want, exp.Incident[0]); diff != "" {
		t.Errorf("incident mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []float32{0, 0, 0.25}, exp.Transmitted[0].Samples)
}

func TestReadMultipleGauges(t *testing.T) {
	exp, err := Read(strings.NewReader("time,inc_a,inc_b,trans\n0,1,2,3\n1,4,5,6\n"))
	require.NoError(t, err)

	assert.Len(t, exp.Channels(Incident), 2)
	assert.Len(t, exp.Channels(Transmitted), 1)

	_, err = exp.Single(Incident)
	assert.ErrorIs(t, err, pulse.ErrUnsupportedMultiSignal)
	assert.ErrorContains(t, err, "incident")

	ch, err := exp.Single(Transmitted)
	require.NoError(t, err)
	assert.Equal(t, "trans", ch.Name)
}

func TestReadErrors(t *testing.T) {
	tests := map[string]string{
		"header only":    "time,incident\n",
		"no time column": "incident,transmitted\n1,2\n",
		"unknown column": "time,incident,pressure\n0,1,2\n",
		"duplicate time": "time,t,incident\n0,0,1\n",
		"bad number":     "time,incident\n0,abc\n",
		"ragged row":     "time,incident\n0,1\n1\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestSingleMissingClass(t *testing.T) {
	exp, err := Read(strings.NewReader("time,incident\n0,1\n"))
	require.NoError(t, err)

	_, err = exp.Single(Transmitted)
	assert.ErrorIs(t, err, errMissingChannel)
}

func TestLoadNamesExperiment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alu_6061_run3.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	exp, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "alu_6061_run3", exp.Name)
	assert.Len(t, exp.Time, 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestGaugeStrain(t *testing.T) {
	volts := []float32{1, -2, 0.5}

	tests := []struct {
		bridge Bridge
		want   []float32
	}{
		{FullBridge, []float32{0.004, -0.008, 0.002}},
		{HalfBridge, []float32{0.002, -0.004, 0.001}},
		{QuarterBridge, []float32{0.001, -0.002, 0.0005}},
	}
	for _, tt := range tests {
		t.Run(tt.bridge.String(), func(t *testing.T) {
			got, err := Gauge{Coefficient: 0.004, Bridge: tt.bridge}.Strain(volts)
			require.NoError(t, err)
			assert.InDeltaSlice(t, tt.want, got, 1e-9)
		})
	}

	_, err := Gauge{}.Strain(volts)
	assert.Error(t, err)
}

func TestParseBridge(t *testing.T) {
	for in, want := range map[string]Bridge{"": FullBridge, "Half": HalfBridge, "quarter": QuarterBridge} {
		got, err := ParseBridge(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseBridge("third")
	assert.Error(t, err)
}
