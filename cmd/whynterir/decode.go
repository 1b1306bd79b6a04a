package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/errors"
	"github.com/tonylturner/whynterir/internal/report"
	"github.com/tonylturner/whynterir/internal/whynter"
)

type decodeFlags struct {
	raw       string
	format    string
	tolerance float64
	json      bool
}

func newDecodeCmd(opts *rootOptions) *cobra.Command {
	flags := &decodeFlags{}

	cmd := &cobra.Command{
		Use:   "decode [capture]",
		Short: "Decode a captured pulse train into a packet",
		Long: `Decode one captured Whynter frame. The capture is a file (format by
extension: .yaml/.yml, .mode2, anything else raw), "-" for stdin, or an
inline raw train given with --raw.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			if len(args) == 0 && flags.raw == "" {
				return missingFlagError(cmd, "--raw or a capture path")
			}
			return runDecode(cmd, opts, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.raw, "raw", "", "Inline raw train in signed microseconds")
	cmd.Flags().StringVar(&flags.format, "format", "", "Capture format: raw, mode2, yaml (default by extension)")
	cmd.Flags().Float64Var(&flags.tolerance, "tolerance", 0, "Timing tolerance in percent, 1 to 49 (default from config)")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print a JSON report")

	return cmd
}

func runDecode(cmd *cobra.Command, opts *rootOptions, flags *decodeFlags, args []string) error {
	sess, err := loadSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	tolerance, err := resolveTolerance(cmd, flags.tolerance, sess.cfg.Tolerance())
	if err != nil {
		return err
	}

	source, train, err := readCapture(cmd, flags.raw, flags.format, args)
	if err != nil {
		return errors.WrapCaptureError(err, source)
	}
	sess.logger.Verbose("Read %d pulses from %s", len(train.Pulses), source)

	pkt, err := whynter.Decoder{Tolerance: tolerance}.Decode(train)
	if err != nil {
		sess.metrics.ObserveDecodeError(err)
		if flags.json {
			if werr := report.WriteJSON(cmd.OutOrStdout(), report.NewDecodeFailure(version, source, train, err)); werr != nil {
				return werr
			}
		}
		return errors.WrapDecodeError(err, source)
	}
	sess.logger.LogDecode(source, pkt, nil)
	sess.metrics.ObserveFrame("decode")

	r := report.NewFrameReport(version, source, nil, pkt, &train)
	if flags.json {
		return report.WriteJSON(cmd.OutOrStdout(), r)
	}
	report.WriteFrame(cmd.OutOrStdout(), r)
	return nil
}

// resolveTolerance converts a --tolerance percent, falling back to the config.
func resolveTolerance(cmd *cobra.Command, percent, fallback float64) (float64, error) {
	if !cmd.Flags().Changed("tolerance") {
		return fallback, nil
	}
	if percent < 1 || percent > 49 {
		return 0, fmt.Errorf("--tolerance must be between 1 and 49, got %v", percent)
	}
	return percent / 100, nil
}

// readCapture loads a train from --raw, stdin or a file. The returned source
// names it for messages.
func readCapture(cmd *cobra.Command, raw, formatName string, args []string) (string, whynter.Train, error) {
	if raw != "" {
		pulses, err := capture.ParseRaw(raw)
		if err != nil {
			return "--raw", whynter.Train{}, err
		}
		return "--raw", whynter.Train{CarrierHz: whynter.CarrierFrequency, Pulses: pulses}, nil
	}

	path := args[0]
	if path == "-" {
		format := capture.FormatRaw
		if formatName != "" {
			f, err := capture.ParseFormat(formatName)
			if err != nil {
				return "stdin", whynter.Train{}, err
			}
			format = f
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "stdin", whynter.Train{}, fmt.Errorf("read stdin: %w", err)
		}
		train, err := capture.Parse(data, format)
		return "stdin", train, err
	}

	if formatName != "" {
		format, err := capture.ParseFormat(formatName)
		if err != nil {
			return path, whynter.Train{}, err
		}
		train, err := capture.LoadFileAs(path, format)
		return path, train, err
	}
	train, err := capture.LoadFile(path)
	return path, train, err
}
