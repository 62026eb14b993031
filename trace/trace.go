// Package trace loads raw split-Hopkinson bar recordings and converts gauge
// voltages to strain.
package trace

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-shpb/pulse"
)

// Class is the role of a gauge channel.
type Class int

const (
	Incident Class = iota
	Transmitted
)

// String returns the class name.
func (c Class) String() string {
	if c == Transmitted {
		return "transmitted"
	}
	return "incident"
}

// Channel is one recorded gauge signal.
type Channel struct {
	Name    string
	Class   Class
	Samples []float32
}

// Experiment is one recording: the time axis in ms and every gauge channel
// sampled on it.
type Experiment struct {
	Name        string
	Time        []float32
	Incident    []Channel
	Transmitted []Channel
}

var errMissingChannel = errors.New("trace: missing channel")

// Load reads a CSV recording from path. The experiment is named after the
// file without its extension.
func Load(path string) (*Experiment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open recording: %w", err)
	}
	defer f.Close()

	exp, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	exp.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return exp, nil
}

// Read parses a CSV recording. The header names each column: "time" for
// the time axis, names starting with "inc" for incident gauges and names
// starting with "trans" for transmitted gauges. Every row must carry a
// value for every column.
func Read(r io.Reader) (*Experiment, error) {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("trace: read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("trace: recording needs a header and at least one row, got %d lines", len(records))
	}

	header := records[0]
	timeCol := -1
	classes := make([]Class, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		switch {
		case key == "time" || key == "t":
			if timeCol >= 0 {
				return nil, fmt.Errorf("trace: duplicate time column %q", name)
			}
			timeCol = i
		case strings.HasPrefix(key, "inc"):
			classes[i] = Incident
		case strings.HasPrefix(key, "trans"):
			classes[i] = Transmitted
		default:
			return nil, fmt.Errorf("trace: unknown column %q", name)
		}
	}
	if timeCol < 0 {
		return nil, fmt.Errorf("%w: time", errMissingChannel)
	}

	rows := records[1:]
	columns := make([][]float32, len(header))
	for i := range columns {
		columns[i] = make([]float32, len(rows))
	}
	for r, row := range rows {
		for c, field := range row {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
			if err != nil {
				return nil, fmt.Errorf("trace: row %d column %q: %w", r+2, header[c], err)
			}
			columns[c][r] = float32(v)
		}
	}

	exp := &Experiment{Time: columns[timeCol]}
	for i, name := range header {
		if i == timeCol {
			continue
		}
		ch := Channel{Name: strings.TrimSpace(name), Class: classes[i], Samples: columns[i]}
		if ch.Class == Transmitted {
			exp.Transmitted = append(exp.Transmitted, ch)
		} else {
			exp.Incident = append(exp.Incident, ch)
		}
	}

	return exp, nil
}

// Channels returns all channels of the given class.
func (e *Experiment) Channels(c Class) []Channel {
	if c == Transmitted {
		return e.Transmitted
	}
	return e.Incident
}

// Single returns the only channel of class c. Recordings with several
// gauges of one class are rejected with pulse.ErrUnsupportedMultiSignal.
func (e *Experiment) Single(c Class) (Channel, error) {
	chs := e.Channels(c)
	switch len(chs) {
	case 0:
		return Channel{}, fmt.Errorf("%w: %s", errMissingChannel, c)
	case 1:
		return chs[0], nil
	default:
		return Channel{}, fmt.Errorf("%w: %d %s channels", pulse.ErrUnsupportedMultiSignal, len(chs), c)
	}
}
