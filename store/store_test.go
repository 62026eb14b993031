package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/algo-shpb/calib"
	"github.com/cwbudde/algo-shpb/pulse"
	"github.com/cwbudde/algo-shpb/shpb"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "shpb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleSeries() map[string]shpb.Series {
	return map[string]shpb.Series{
		shpb.EngineeringStress1Wave: {
			Name:        shpb.EngineeringStress1Wave,
			Values:      []float32{0, 120.5, 241, 180.25},
			Unit:        shpb.UnitStress,
			Legend:      "Stress (1-wave)",
			Description: "Engineering stress from the transmitted pulse",
		},
		shpb.EngineeringStrain3Wave: {
			Name:        shpb.EngineeringStrain3Wave,
			Values:      []float32{0, 0.001, 0.0025, 0.004},
			Unit:        shpb.UnitStrain,
			Legend:      "Strain (3-wave)",
			Description: "Engineering strain",
		},
	}
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	version, dirty, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Reopening an up-to-date database is a no-op.
	require.NoError(t, db.MigrateUp())
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.MigrateDown())
	version, _, err := db.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	_, err = db.Calibrations(context.Background(), "")
	assert.Error(t, err, "calibrations table should be gone")

	require.NoError(t, db.MigrateUp())
	_, err = db.Calibrations(context.Background(), "")
	assert.NoError(t, err)
}

func TestSaveAndLoadRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	run := Run{
		Experiment:     "alu_6061_run3",
		Kind:           pulse.SpecimenTest,
		CreatedAt:      time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		SampleInterval: 0.0001,
		PulseDuration:  0.2,
		Incident:       pulse.Window{Start: 1000, End: 3000},
		Reflected:      pulse.Window{Start: 5000, End: 7000},
		Transmitted:    pulse.Window{Start: 4100, End: 6100},
		PulseSpeed:     4975.2,
	}
	series := sampleSeries()

	id, err := db.SaveRun(ctx, run, series)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	got, err := db.LoadSeries(ctx, id)
	require.NoError(t, err)
	if diff := cmp.Diff(series, got); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}

	stored, err := db.GetRun(ctx, id)
	require.NoError(t, err)
	run.ID = id
	if diff := cmp.Diff(run, stored); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestCalibrationRunHasNoReflectedWindow(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	id, err := db.SaveRun(ctx, Run{
		Experiment:  "bar_check",
		Kind:        pulse.CalibrationTest,
		Incident:    pulse.Window{Start: 10, End: 20},
		Transmitted: pulse.Window{Start: 40, End: 50},
	}, nil)
	require.NoError(t, err)

	run, err := db.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, pulse.CalibrationTest, run.Kind)
	assert.Zero(t, run.Reflected)
	assert.Zero(t, run.PulseSpeed)
	assert.False(t, run.CreatedAt.IsZero())

	series, err := db.LoadSeries(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, series)
}

func TestRunsOrdered(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []uuid.UUID
	for i, name := range []string{"first", "second", "third"} {
		id, err := db.SaveRun(ctx, Run{
			Experiment:  name,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
			Incident:    pulse.Window{Start: 0, End: 1},
			Transmitted: pulse.Window{Start: 1, End: 2},
		}, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	for i, r := range runs {
		assert.Equal(t, ids[i], r.ID)
	}
}

func TestMissingRun(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = db.LoadSeries(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestDuplicateRunRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	run := Run{ID: uuid.New(), Experiment: "dup"}
	_, err := db.SaveRun(ctx, run, sampleSeries())
	require.NoError(t, err)

	_, err = db.SaveRun(ctx, run, sampleSeries())
	assert.Error(t, err)

	runs, err := db.Runs(ctx)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestCalibrations(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	entries := []calib.Entry{
		{TestName: "c1", Timestamp: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC), Bar: "steel", IncidentGaugeDistance: 1000, TransmittedGaugeDistance: 1000, MeasuredSpeed: 5010, NominalSpeed: 5000, DeviationPercent: 0.2},
		{TestName: "c2", Timestamp: time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC), Bar: "alu", IncidentGaugeDistance: 800, TransmittedGaugeDistance: 900, MeasuredSpeed: 5080, NominalSpeed: 5100, DeviationPercent: -0.39},
		{TestName: "c3", Timestamp: time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC), Bar: "steel", IncidentGaugeDistance: 1000, TransmittedGaugeDistance: 1000, MeasuredSpeed: 4990, NominalSpeed: 5000, DeviationPercent: -0.2},
	}
	for _, e := range entries {
		require.NoError(t, db.AppendCalibration(ctx, e))
	}

	all, err := db.Calibrations(ctx, "")
	require.NoError(t, err)
	if diff := cmp.Diff(entries, all); diff != "" {
		t.Errorf("calibrations mismatch (-want +got):\n%s", diff)
	}

	steel, err := db.Calibrations(ctx, "steel")
	require.NoError(t, err)
	require.Len(t, steel, 2)
	assert.Equal(t, "c1", steel[0].TestName)
	assert.Equal(t, "c3", steel[1].TestName)
}
