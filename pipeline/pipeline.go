// Package pipeline runs the detection, segmentation, timing and reduction
// stages for whole experiments.
//
// Gauge signals are converted to strain and optionally conditioned (offset
// removal and zero-phase low-pass filtering) before detection.
//
// A specimen test selects the incident, reflected and transmitted pulses,
// segments each to a common length and reduces them with shpb.Reduce. A
// calibration ("pulse") test has no specimen: only the incident and
// transmitted pulses are selected, the bar-side series come from
// shpb.ReduceTwoWave, and the measured wave speed is appended to the
// configured calibration log.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-shpb/calib"
	"github.com/cwbudde/algo-shpb/internal/config"
	"github.com/cwbudde/algo-shpb/pulse"
	"github.com/cwbudde/algo-shpb/shpb"
	"github.com/cwbudde/algo-shpb/store"
	"github.com/cwbudde/algo-shpb/trace"
)

// CalibrationLogger records calibration measurements. calib.CSVLog and
// store.DB both implement it.
type CalibrationLogger interface {
	AppendCalibration(ctx context.Context, e calib.Entry) error
}

// RunStore persists reduced runs. store.DB implements it.
type RunStore interface {
	SaveRun(ctx context.Context, run store.Run, series map[string]shpb.Series) (uuid.UUID, error)
}

var errNoTiming = errors.New("pipeline: calibration test needs both gauge distances")

// Result is the outcome of processing one experiment.
type Result struct {
	RunID      uuid.UUID
	Experiment string
	Kind       pulse.TestKind

	SampleInterval float64 // ms
	PulseDuration  float64 // ms

	Incident    pulse.Window
	Reflected   pulse.Window // zero for calibration tests
	Transmitted pulse.Window

	// Timing is nil when the gauge distances are not configured.
	Timing *pulse.Timing

	Series map[string]shpb.Series

	// Trials holds every detection trial per channel name when
	// diagnostics are enabled.
	Trials map[string][]pulse.Trial
}

// Processor runs the stages with one configuration.
type Processor struct {
	cfg       *config.Config
	calibLogs []CalibrationLogger
	runs      RunStore
	diagnose  bool
	logger    *log.Logger
	now       func() time.Time
}

// Option configures a Processor.
type Option func(*Processor)

// WithCalibrationLogger adds a destination for calibration entries.
func WithCalibrationLogger(l CalibrationLogger) Option {
	return func(p *Processor) {
		if l != nil {
			p.calibLogs = append(p.calibLogs, l)
		}
	}
}

// WithRunStore saves every processed run.
func WithRunStore(s RunStore) Option {
	return func(p *Processor) { p.runs = s }
}

// WithDiagnostics records all detection trials in Result.Trials.
func WithDiagnostics(enabled bool) Option {
	return func(p *Processor) { p.diagnose = enabled }
}

// WithLogger replaces the standard logger.
func WithLogger(l *log.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a Processor for cfg. A nil cfg uses config.Default.
func New(cfg *config.Config, opts ...Option) *Processor {
	if cfg == nil {
		cfg = config.Default()
	}
	p := &Processor{
		cfg:    cfg,
		logger: log.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// checkLengths reports the first channel whose sample count differs from
// the time axis.
func checkLengths(axis []float32, channels ...trace.Channel) error {
	for _, ch := range channels {
		if len(ch.Samples) != len(axis) {
			return fmt.Errorf("%w: %s channel %q has %d samples, time has %d",
				shpb.ErrShapeMismatch, ch.Class, ch.Name, len(ch.Samples), len(axis))
		}
	}
	return nil
}

// Process runs all stages for one experiment with cfg.
func Process(ctx context.Context, exp *trace.Experiment, cfg *config.Config) (*Result, error) {
	return New(cfg).Process(ctx, exp)
}

// Process runs all stages for one experiment. The context is checked
// between stages.
func (p *Processor) Process(ctx context.Context, exp *trace.Experiment) (*Result, error) {
	if exp == nil {
		return nil, errors.New("pipeline: nil experiment")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	incCh, err := exp.Single(trace.Incident)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", exp.Name, err)
	}
	transCh, err := exp.Single(trace.Transmitted)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", exp.Name, err)
	}
	if err := checkLengths(exp.Time, incCh, transCh); err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", exp.Name, err)
	}

	dt, err := pulse.SamplingInterval(exp.Time)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", exp.Name, err)
	}

	inc, err := p.cfg.GetIncidentGauge().Strain(incCh.Samples)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: incident gauge: %w", exp.Name, err)
	}
	trans, err := p.cfg.GetTransmittedGauge().Strain(transCh.Samples)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %s: transmitted gauge: %w", exp.Name, err)
	}
	if inc, err = p.condition(inc, dt); err != nil {
		return nil, fmt.Errorf("pipeline: %s: incident: %w", exp.Name, err)
	}
	if trans, err = p.condition(trans, dt); err != nil {
		return nil, fmt.Errorf("pipeline: %s: transmitted: %w", exp.Name, err)
	}

	res := &Result{
		Experiment:     exp.Name,
		Kind:           p.cfg.GetTestKind(),
		SampleInterval: dt,
	}
	if p.diagnose {
		if res.Trials, err = p.trials(incCh.Name, inc, transCh.Name, trans); err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", exp.Name, err)
		}
	}

	if err := p.selectWindows(ctx, res, inc, trans); err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", exp.Name, err)
	}
	res.PulseDuration = float64(res.Incident.Len()) * dt

	if p.cfg.HasGaugeDistances() {
		in := p.cfg.TimingInput()
		in.Incident = []pulse.Window{res.Incident}
		in.Transmitted = []pulse.Window{res.Transmitted}
		in.SampleInterval = dt
		timing, err := pulse.EstimateTiming(in)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", exp.Name, err)
		}
		res.Timing = &timing
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.reduce(res, inc, trans); err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", exp.Name, err)
	}

	if res.Kind == pulse.CalibrationTest {
		if err := p.logCalibration(ctx, res); err != nil {
			return nil, err
		}
	}

	res.RunID = uuid.New()
	if p.runs != nil {
		if _, err := p.runs.SaveRun(ctx, res.run(p.now()), res.Series); err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", exp.Name, err)
		}
	}

	p.logger.Printf("pipeline: %s (%s) incident %v transmitted %v reflected %v, %d series",
		res.Experiment, res.Kind, res.Incident, res.Transmitted, res.Reflected, len(res.Series))
	return res, nil
}

func (p *Processor) detectOptions(polarity pulse.Polarity) []pulse.Option {
	opts := []pulse.Option{
		pulse.WithPolarity(polarity),
		pulse.WithMetric(p.cfg.GetMetric()),
	}
	if sep := p.cfg.GetMinSeparation(); sep > 0 {
		opts = append(opts, pulse.WithMinSeparation(sep))
	}
	if p.cfg.LowerBound != nil {
		opts = append(opts, pulse.WithLowerBound(*p.cfg.LowerBound))
	}
	if p.cfg.UpperBound != nil {
		opts = append(opts, pulse.WithUpperBound(*p.cfg.UpperBound))
	}
	return opts
}

// selectWindows picks the incident and transmitted pulses with the
// configured polarity. For specimen tests the reflected pulse is the
// strongest opposite-polarity window on the incident gauge after the
// incident pulse.
func (p *Processor) selectWindows(ctx context.Context, res *Result, inc, trans []float32) error {
	pp := p.cfg.GetPulsePoints()
	ks := p.cfg.GetKTrials()
	polarity := p.cfg.GetPolarity()

	var err error
	if res.Incident, err = pulse.SelectWindow(inc, pp, ks, p.detectOptions(polarity)...); err != nil {
		return fmt.Errorf("incident: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if res.Transmitted, err = pulse.SelectWindow(trans, pp, ks, p.detectOptions(polarity)...); err != nil {
		return fmt.Errorf("transmitted: %w", err)
	}
	if res.Kind == pulse.CalibrationTest {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	opts := append(p.detectOptions(opposite(polarity)), pulse.WithLowerBound(res.Incident.End))
	if res.Reflected, err = pulse.SelectWindow(inc, pp, ks, opts...); err != nil {
		return fmt.Errorf("reflected: %w", err)
	}
	return nil
}

func (p *Processor) reduce(res *Result, inc, trans []float32) error {
	n := p.cfg.GetSegmentPoints()
	polarity := p.cfg.GetPolarity()

	segment := func(signal []float32, w pulse.Window, pol pulse.Polarity) ([]float32, error) {
		return pulse.Segment(signal, w, n,
			pulse.WithPolarity(pol), pulse.WithThreshRatio(p.cfg.GetThreshRatio()))
	}

	incPulse, err := segment(inc, res.Incident, polarity)
	if err != nil {
		return fmt.Errorf("incident: %w", err)
	}
	transPulse, err := segment(trans, res.Transmitted, polarity)
	if err != nil {
		return fmt.Errorf("transmitted: %w", err)
	}

	axis := make([]float32, n)
	for i := range axis {
		axis[i] = float32(float64(i) * res.SampleInterval)
	}
	params := p.cfg.BarParams(res.PulseDuration)

	if res.Kind == pulse.CalibrationTest {
		res.Series, err = shpb.ReduceTwoWave(incPulse, transPulse, axis, params)
		return err
	}

	reflPulse, err := segment(inc, res.Reflected, opposite(polarity))
	if err != nil {
		return fmt.Errorf("reflected: %w", err)
	}
	res.Series, err = shpb.Reduce(shpb.Pulses{
		Incident:    incPulse,
		Reflected:   reflPulse,
		Transmitted: transPulse,
		Time:        axis,
	}, params)
	return err
}

func (p *Processor) logCalibration(ctx context.Context, res *Result) error {
	if res.Timing == nil {
		return fmt.Errorf("%w: %s", errNoTiming, res.Experiment)
	}
	in := p.cfg.TimingInput()
	e := calib.Entry{
		TestName:                 res.Experiment,
		Timestamp:                p.now(),
		Bar:                      p.cfg.GetBarName(),
		IncidentGaugeDistance:    in.IncidentGaugeDistance,
		TransmittedGaugeDistance: in.TransmittedGaugeDistance,
		MeasuredSpeed:            res.Timing.Speed,
		NominalSpeed:             in.NominalWaveSpeed,
		DeviationPercent:         res.Timing.DeviationPercent,
	}
	for _, l := range p.calibLogs {
		if err := l.AppendCalibration(ctx, e); err != nil {
			return fmt.Errorf("pipeline: %s: calibration log: %w", res.Experiment, err)
		}
	}
	if res.Timing.HasDeviation {
		p.logger.Printf("pipeline: %s measured %.1f mm/ms, deviation %.2f%%",
			res.Experiment, res.Timing.Speed, res.Timing.DeviationPercent)
	}
	return nil
}

func (p *Processor) trials(incName string, inc []float32, transName string, trans []float32) (map[string][]pulse.Trial, error) {
	pp := p.cfg.GetPulsePoints()
	ks := p.cfg.GetKTrials()
	polarity := p.cfg.GetPolarity()

	out := make(map[string][]pulse.Trial, 3)
	var err error
	if out[incName], err = pulse.DetectAll(inc, pp, ks, p.detectOptions(polarity)...); err != nil {
		return nil, err
	}
	if out[transName], err = pulse.DetectAll(trans, pp, ks, p.detectOptions(polarity)...); err != nil {
		return nil, err
	}
	if p.cfg.GetTestKind() == pulse.SpecimenTest {
		reflName := incName + " (reflected)"
		if out[reflName], err = pulse.DetectAll(inc, pp, ks, p.detectOptions(opposite(polarity))...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *Result) run(now time.Time) store.Run {
	run := store.Run{
		ID:             r.RunID,
		Experiment:     r.Experiment,
		Kind:           r.Kind,
		CreatedAt:      now,
		SampleInterval: r.SampleInterval,
		PulseDuration:  r.PulseDuration,
		Incident:       r.Incident,
		Reflected:      r.Reflected,
		Transmitted:    r.Transmitted,
	}
	if r.Timing != nil {
		run.PulseSpeed = r.Timing.Speed
	}
	return run
}

// opposite returns the reflected pulse polarity. Auto detects as
// compressive, so its reflection is tensile.
func opposite(p pulse.Polarity) pulse.Polarity {
	if p == pulse.Tensile {
		return pulse.Compressive
	}
	return pulse.Tensile
}
