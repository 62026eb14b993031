package store

import (
	"context"
	"fmt"
	"time"

	"github.com/cwbudde/algo-shpb/calib"
)

// AppendCalibration inserts one calibration entry.
func (db *DB) AppendCalibration(ctx context.Context, e calib.Entry) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO calibrations (
			test_name, timestamp, bar, incident_gauge_distance, transmitted_gauge_distance,
			specimen_length, measured_speed, nominal_speed, deviation_percent
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TestName, e.Timestamp.UTC().Format(time.RFC3339Nano), e.Bar,
		e.IncidentGaugeDistance, e.TransmittedGaugeDistance, e.SpecimenLength,
		e.MeasuredSpeed, e.NominalSpeed, e.DeviationPercent,
	)
	if err != nil {
		return fmt.Errorf("store: insert calibration: %w", err)
	}
	return nil
}

// Calibrations returns the entries for bar in insertion order, or every
// entry when bar is empty.
func (db *DB) Calibrations(ctx context.Context, bar string) ([]calib.Entry, error) {
	query := `
		SELECT test_name, timestamp, bar, incident_gauge_distance, transmitted_gauge_distance,
			specimen_length, measured_speed, nominal_speed, deviation_percent
		FROM calibrations`
	var args []any
	if bar != "" {
		query += ` WHERE bar = ?`
		args = append(args, bar)
	}
	query += ` ORDER BY calibration_id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query calibrations: %w", err)
	}
	defer rows.Close()

	var entries []calib.Entry
	for rows.Next() {
		var (
			e  calib.Entry
			ts string
		)
		if err := rows.Scan(
			&e.TestName, &ts, &e.Bar, &e.IncidentGaugeDistance, &e.TransmittedGaugeDistance,
			&e.SpecimenLength, &e.MeasuredSpeed, &e.NominalSpeed, &e.DeviationPercent,
		); err != nil {
			return nil, fmt.Errorf("store: scan calibration: %w", err)
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("store: calibration %s timestamp: %w", e.TestName, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
