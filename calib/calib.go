// Package calib records bar calibration results.
//
// A calibration test strikes the bars in direct contact and measures the
// pulse speed between the two gauges. Each test appends one Entry to a
// log that tracks the bar wave speed over time.
package calib

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"
)

// Entry is one calibration measurement. Distances are in mm and speeds in
// mm/ms.
type Entry struct {
	TestName                 string
	Timestamp                time.Time
	Bar                      string
	IncidentGaugeDistance    float64
	TransmittedGaugeDistance float64
	SpecimenLength           float64
	MeasuredSpeed            float64
	NominalSpeed             float64
	DeviationPercent         float64
}

var header = []string{
	"test_name",
	"timestamp",
	"bar",
	"incident_gauge_distance_mm",
	"transmitted_gauge_distance_mm",
	"specimen_length_mm",
	"measured_speed_mm_per_ms",
	"nominal_speed_mm_per_ms",
	"deviation_percent",
}

func (e Entry) record() []string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return []string{
		e.TestName,
		e.Timestamp.UTC().Format(time.RFC3339),
		e.Bar,
		f(e.IncidentGaugeDistance),
		f(e.TransmittedGaugeDistance),
		f(e.SpecimenLength),
		f(e.MeasuredSpeed),
		f(e.NominalSpeed),
		f(e.DeviationPercent),
	}
}

// CSVLog appends entries to a CSV file. The header is written when the
// file is empty. Appends from concurrent goroutines are serialised.
type CSVLog struct {
	path string
	mu   sync.Mutex
}

// NewCSVLog returns a log writing to path. The file is created on the
// first append.
func NewCSVLog(path string) *CSVLog {
	return &CSVLog{path: path}
}

// Path returns the log file path.
func (l *CSVLog) Path() string {
	return l.path
}

// AppendCalibration writes e as one row.
func (l *CSVLog) AppendCalibration(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("calib: open log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("calib: stat log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("calib: write header: %w", err)
		}
	}
	if err := w.Write(e.record()); err != nil {
		return fmt.Errorf("calib: write entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("calib: flush log: %w", err)
	}

	return f.Close()
}

// ReadCSVLog reads every entry from a log written by CSVLog.
func ReadCSVLog(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("calib: open log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	first, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("calib: read header: %w", err)
	}
	if first[0] != header[0] {
		return nil, fmt.Errorf("calib: unexpected header %v", first)
	}

	var entries []Entry
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("calib: read line %d: %w", line, err)
		}

		e, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("calib: line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
}

func parseRecord(rec []string) (Entry, error) {
	ts, err := time.Parse(time.RFC3339, rec[1])
	if err != nil {
		return Entry{}, err
	}

	nums := make([]float64, 6)
	for i := range nums {
		if nums[i], err = strconv.ParseFloat(rec[3+i], 64); err != nil {
			return Entry{}, fmt.Errorf("%s: %w", header[3+i], err)
		}
	}

	return Entry{
		TestName:                 rec[0],
		Timestamp:                ts,
		Bar:                      rec[2],
		IncidentGaugeDistance:    nums[0],
		TransmittedGaugeDistance: nums[1],
		SpecimenLength:           nums[2],
		MeasuredSpeed:            nums[3],
		NominalSpeed:             nums[4],
		DeviationPercent:         nums[5],
	}, nil
}
