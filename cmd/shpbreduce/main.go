// Command shpbreduce detects the pulses in Hopkinson bar recordings and
// reduces them to stress, strain and energy series.
//
// Usage:
//
//	shpbreduce [flags] recording.csv [...]
//
// Each recording is a CSV file with a time column and one incident and one
// transmitted gauge column. Bar constants, gauge settings and detection
// parameters come from the JSON configuration file.
//
// Examples:
//
//	shpbreduce shot01.csv
//	shpbreduce -config bars/steel.json -db runs.db shots/*.csv
//	shpbreduce -config bars/calib.json -calib-log calibration.csv bar_check.csv
//	shpbreduce -diagnose shot01.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"

	"github.com/cwbudde/algo-shpb/calib"
	"github.com/cwbudde/algo-shpb/internal/config"
	"github.com/cwbudde/algo-shpb/pipeline"
	"github.com/cwbudde/algo-shpb/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", config.DefaultConfigPath, "JSON configuration file")
	dbPath := flag.String("db", "", "SQLite database for runs and calibrations (overrides config)")
	calibLog := flag.String("calib-log", "", "CSV calibration log (overrides config)")
	diagnose := flag.Bool("diagnose", false, "print every detection trial")
	parallel := flag.Int("parallel", 4, "recordings processed at once")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shpbreduce [flags] recording.csv [...]\n\n")
		fmt.Fprintf(os.Stderr, "Detects incident, reflected and transmitted pulses and reduces them.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  shpbreduce shot01.csv\n")
		fmt.Fprintf(os.Stderr, "  shpbreduce -config bars/steel.json -db runs.db shots/*.csv\n")
		fmt.Fprintf(os.Stderr, "  shpbreduce -diagnose shot01.csv\n")
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("load config: %v", err)
		return 1
	}
	if *dbPath != "" {
		cfg.Database = dbPath
	}
	if *calibLog != "" {
		cfg.CalibrationLog = calibLog
	}

	opts := []pipeline.Option{pipeline.WithDiagnostics(*diagnose)}
	if path := cfg.GetDatabase(); path != "" {
		db, err := store.Open(path)
		if err != nil {
			log.Printf("open database: %v", err)
			return 1
		}
		defer db.Close()
		opts = append(opts, pipeline.WithRunStore(db), pipeline.WithCalibrationLogger(db))
	}
	if path := cfg.GetCalibrationLog(); path != "" {
		opts = append(opts, pipeline.WithCalibrationLogger(calib.NewCSVLog(path)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	items, err := pipeline.New(cfg, opts...).ProcessBatch(ctx, flag.Args(), *parallel)
	if err != nil {
		log.Printf("batch aborted: %v", err)
		return 1
	}

	printSummary(os.Stdout, items)
	if *diagnose {
		printTrials(os.Stdout, items)
	}

	for _, it := range items {
		if it.Err != nil {
			return 1
		}
	}
	return 0
}

func printSummary(out io.Writer, items []pipeline.BatchItem) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Experiment\tKind\tIncident\tReflected\tTransmitted\tDuration [ms]\tSpeed [mm/ms]\tSeries\tError\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "----------\t----\t--------\t---------\t-----------\t-------------\t-------------\t------\t-----\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, it := range items {
		if it.Err != nil {
			if _, err := fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t-\t-\t%v\n", it.Path, it.Err); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
				return
			}
			continue
		}

		r := it.Result
		reflected := "-"
		if r.Reflected.Len() > 0 {
			reflected = r.Reflected.String()
		}
		speed := "-"
		if r.Timing != nil {
			speed = fmt.Sprintf("%.1f", r.Timing.Speed)
			if r.Timing.HasDeviation {
				speed += fmt.Sprintf(" (%+.2f%%)", r.Timing.DeviationPercent)
			}
		}

		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.4f\t%s\t%d\t\n",
			r.Experiment,
			r.Kind,
			r.Incident,
			reflected,
			r.Transmitted,
			r.PulseDuration,
			speed,
			len(r.Series),
		); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printTrials(out io.Writer, items []pipeline.BatchItem) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "\nExperiment\tChannel\tk\tWindows\n")
	for _, it := range items {
		if it.Result == nil {
			continue
		}
		channels := make([]string, 0, len(it.Result.Trials))
		for name := range it.Result.Trials {
			channels = append(channels, name)
		}
		sort.Strings(channels)
		for _, ch := range channels {
			for _, trial := range it.Result.Trials[ch] {
				_, _ = fmt.Fprintf(tw, "%s\t%s\t%g\t%v\n", it.Result.Experiment, ch, trial.KSigma, trial.Windows)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}
