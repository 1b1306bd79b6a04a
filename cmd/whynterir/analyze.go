package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tonylturner/whynterir/internal/artifact"
	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/errors"
	"github.com/tonylturner/whynterir/internal/metrics"
	"github.com/tonylturner/whynterir/internal/report"
	"github.com/tonylturner/whynterir/internal/whynter"
)

type analyzeFlags struct {
	tolerance float64
	csvPath   string
	outDir    string
	json      bool
}

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze <capture>...",
		Short: "Report timing deviation of captured trains",
		Long: `Classify every pulse of one or more captures by protocol role and
report its deviation from nominal timing, with a suggested decoder
tolerance. A .csv input is a sample file written earlier with --csv.
With --out-dir the run is also written as a bundle: run.json, a summary, the
samples CSV and a Prometheus textfile.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			if len(args) == 0 {
				return missingFlagError(cmd, "<capture>")
			}
			return runAnalyze(cmd, opts, flags, args)
		},
	}

	cmd.Flags().Float64Var(&flags.tolerance, "tolerance", 0, "Timing tolerance in percent, 1 to 49 (default from config)")
	cmd.Flags().StringVar(&flags.csvPath, "csv", "", "Write per-pulse samples to a CSV file")
	cmd.Flags().StringVar(&flags.outDir, "out-dir", "", "Write a run bundle (run.json, summary, samples, metrics) to this directory")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print a JSON report")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *rootOptions, flags *analyzeFlags, paths []string) error {
	sess, err := loadSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	tolerance, err := resolveTolerance(cmd, flags.tolerance, sess.cfg.Tolerance())
	if err != nil {
		return err
	}

	var bundle *artifact.OutputManager
	if flags.outDir != "" {
		if bundle, err = artifact.NewOutputManager(flags.outDir, version); err != nil {
			return err
		}
		bundle.SetTolerance(tolerance)
		if flags.csvPath == "" {
			flags.csvPath = bundle.SamplesPath()
		}
	}

	for _, path := range paths {
		if flags.csvPath != "" && filepath.Clean(path) == filepath.Clean(flags.csvPath) {
			return fmt.Errorf("--csv %s would overwrite an input", flags.csvPath)
		}
	}

	var csvWriter *metrics.Writer
	if flags.csvPath != "" {
		if csvWriter, err = metrics.NewWriter(flags.csvPath); err != nil {
			return err
		}
		defer csvWriter.Close()
	}

	out := cmd.OutOrStdout()
	sink := metrics.NewSink(tolerance)
	decoder := whynter.Decoder{Tolerance: tolerance}
	var sources []string

	for _, path := range paths {
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			groups, err := metrics.ReadSamplesCSV(path)
			if err != nil {
				return err
			}
			for _, g := range groups {
				sink.RecordSamples(g.Samples)
				sources = append(sources, g.Capture)
				if csvWriter != nil {
					if err := csvWriter.WriteSamples(g.Capture, g.Samples); err != nil {
						return err
					}
				}
			}
			sess.logger.Verbose("Loaded %d captures from %s", len(groups), path)
			continue
		}

		train, err := capture.LoadFile(path)
		if err != nil {
			err = errors.WrapCaptureError(err, path)
			if bundle != nil {
				if ferr := bundle.Finalize(sink.GetSummary(), sink.GetSamples(), err); ferr != nil {
					sess.logger.Error("%v", ferr)
				}
			}
			return err
		}
		samples := sink.Record(train)
		sources = append(sources, path)
		if csvWriter != nil {
			if err := csvWriter.WriteSamples(path, samples); err != nil {
				return err
			}
		}

		pkt, derr := decoder.Decode(train)
		sess.logger.LogDecode(path, pkt, derr)
		if derr != nil {
			sess.metrics.ObserveDecodeError(derr)
		} else {
			sess.metrics.ObserveFrame("decode")
		}
		if bundle != nil {
			bundle.AddCapture(path, derr == nil)
		}
		if !flags.json {
			if derr != nil {
				fmt.Fprintf(out, "%s: %d pulses, does not decode\n", path, len(train.Pulses))
			} else {
				fmt.Fprintf(out, "%s: %d pulses, packet %s\n", path, len(train.Pulses), pkt)
			}
		}
	}

	summary := sink.GetSummary()
	samples := sink.GetSamples()
	timing := report.NewTimingReport(version, sources, summary, samples)
	sess.metrics.ObserveSamples(samples)
	if bundle != nil {
		if csvWriter != nil {
			if err := csvWriter.Close(); err != nil {
				return err
			}
			if flags.csvPath == bundle.SamplesPath() {
				bundle.SetSamplesFile()
			}
		}
		if err := sess.metrics.WriteTextfile(bundle.MetricsPath()); err != nil {
			return err
		}
		bundle.SetMetricsFile()
		if err := report.WriteJSONFile(bundle.TimingPath(), timing); err != nil {
			return err
		}
		bundle.SetTimingFile()
		if err := bundle.Finalize(summary, samples, nil); err != nil {
			return err
		}
		sess.logger.Verbose("Wrote run bundle %s to %s", bundle.RunID(), bundle.OutputDir())
	}
	if flags.json {
		return report.WriteJSON(out, timing)
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, metrics.FormatSummary(summary))
	if suggested := metrics.SuggestTolerance(samples); suggested > 0 {
		fmt.Fprintf(out, "Suggested tolerance: %.0f%%\n", suggested*100)
	} else {
		fmt.Fprintln(out, "Suggested tolerance: any (timing is exact)")
	}
	if flags.csvPath != "" {
		fmt.Fprintf(out, "Samples written to %s\n", flags.csvPath)
	}
	if bundle != nil {
		fmt.Fprintf(out, "Run bundle written to %s\n", bundle.OutputDir())
	}
	return nil
}
