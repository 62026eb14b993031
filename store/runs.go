package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-shpb/codec"
	"github.com/cwbudde/algo-shpb/pulse"
	"github.com/cwbudde/algo-shpb/shpb"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("store: run not found")

// Run is the metadata of one reduction.
type Run struct {
	ID             uuid.UUID
	Experiment     string
	Kind           pulse.TestKind
	CreatedAt      time.Time
	SampleInterval float64 // ms
	PulseDuration  float64 // ms

	Incident    pulse.Window
	Reflected   pulse.Window // zero for calibration tests
	Transmitted pulse.Window

	// PulseSpeed is the measured speed in mm/ms, zero if not estimated.
	PulseSpeed float64
}

// SaveRun stores run and its series in one transaction. A zero run ID is
// replaced by a new random UUID; the stored ID is returned.
func (db *DB) SaveRun(ctx context.Context, run Run, series map[string]shpb.Series) (uuid.UUID, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	var reflStart, reflEnd sql.NullInt64
	if run.Reflected.Len() > 0 {
		reflStart = sql.NullInt64{Int64: int64(run.Reflected.Start), Valid: true}
		reflEnd = sql.NullInt64{Int64: int64(run.Reflected.End), Valid: true}
	}
	var speed sql.NullFloat64
	if run.PulseSpeed > 0 {
		speed = sql.NullFloat64{Float64: run.PulseSpeed, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, experiment, test_kind, created_at, sample_interval, pulse_duration,
			incident_start, incident_end, reflected_start, reflected_end,
			transmitted_start, transmitted_end, pulse_speed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Experiment, run.Kind.String(), run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.SampleInterval, run.PulseDuration,
		run.Incident.Start, run.Incident.End, reflStart, reflEnd,
		run.Transmitted.Start, run.Transmitted.End, speed,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO series (run_id, name, unit, legend, description, encoding, samples, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return uuid.Nil, fmt.Errorf("store: prepare series insert: %w", err)
	}
	defer stmt.Close()

	for name, s := range series {
		payload, err := codec.Encode(s.Values, codec.EncodingBase64)
		if err != nil {
			return uuid.Nil, err
		}
		if _, err := stmt.ExecContext(ctx,
			run.ID.String(), name, s.Unit, s.Legend, s.Description,
			codec.EncodingBase64, len(s.Values), payload,
		); err != nil {
			return uuid.Nil, fmt.Errorf("store: insert series %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("store: commit run: %w", err)
	}
	return run.ID, nil
}

// GetRun returns the metadata of one run.
func (db *DB) GetRun(ctx context.Context, id uuid.UUID) (Run, error) {
	row := db.QueryRowContext(ctx, runSelect+` WHERE run_id = ?`, id.String())
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return run, err
}

// Runs returns all runs, oldest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.QueryContext(ctx, runSelect+` ORDER BY created_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("store: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LoadSeries returns every series stored for a run.
func (db *DB) LoadSeries(ctx context.Context, id uuid.UUID) (map[string]shpb.Series, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name, unit, legend, description, encoding, samples, payload
		FROM series WHERE run_id = ?`, id.String())
	if err != nil {
		return nil, fmt.Errorf("store: query series: %w", err)
	}
	defer rows.Close()

	out := make(map[string]shpb.Series)
	for rows.Next() {
		var (
			s        shpb.Series
			encoding string
			samples  int
			payload  string
		)
		if err := rows.Scan(&s.Name, &s.Unit, &s.Legend, &s.Description, &encoding, &samples, &payload); err != nil {
			return nil, fmt.Errorf("store: scan series: %w", err)
		}
		if s.Values, err = codec.Decode(payload, encoding); err != nil {
			return nil, fmt.Errorf("store: series %s: %w", s.Name, err)
		}
		if len(s.Values) != samples {
			return nil, fmt.Errorf("store: series %s: decoded %d samples, expected %d", s.Name, len(s.Values), samples)
		}
		out[s.Name] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(out) == 0 {
		if _, err := db.GetRun(ctx, id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

const runSelect = `
	SELECT run_id, experiment, test_kind, created_at, sample_interval, pulse_duration,
		incident_start, incident_end, reflected_start, reflected_end,
		transmitted_start, transmitted_end, pulse_speed
	FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run                Run
		id, kind, created  string
		reflStart, reflEnd sql.NullInt64
		speed              sql.NullFloat64
	)
	err := row.Scan(
		&id, &run.Experiment, &kind, &created, &run.SampleInterval, &run.PulseDuration,
		&run.Incident.Start, &run.Incident.End, &reflStart, &reflEnd,
		&run.Transmitted.Start, &run.Transmitted.End, &speed,
	)
	if err != nil {
		return Run{}, err
	}

	if run.ID, err = uuid.Parse(id); err != nil {
		return Run{}, fmt.Errorf("store: run id %q: %w", id, err)
	}
	if run.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
		return Run{}, fmt.Errorf("store: run %s created_at: %w", id, err)
	}
	if kind == pulse.CalibrationTest.String() {
		run.Kind = pulse.CalibrationTest
	}
	if reflStart.Valid && reflEnd.Valid {
		run.Reflected = pulse.Window{Start: int(reflStart.Int64), End: int(reflEnd.Int64)}
	}
	run.PulseSpeed = speed.Float64

	return run, nil
}
