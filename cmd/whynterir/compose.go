package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/report"
	"github.com/tonylturner/whynterir/internal/tui"
	"github.com/tonylturner/whynterir/internal/whynter"
)

type composeFlags struct {
	format     string
	outputPath string
}

func newComposeCmd(opts *rootOptions) *cobra.Command {
	flags := &composeFlags{}

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Build settings in an interactive form",
		Long: `Prompt for power, mode, fan speed and target temperature, then print
the packet and its pulse train. Form defaults come from the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			return runCompose(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", "", "Train format: raw, mode2, yaml (default from config)")
	cmd.Flags().StringVar(&flags.outputPath, "output", "", "Also write the train to a file")

	return cmd
}

func runCompose(cmd *cobra.Command, opts *rootOptions, flags *composeFlags) error {
	sess, err := loadSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	format := sess.cfg.OutputFormat()
	if flags.format != "" {
		if format, err = capture.ParseFormat(flags.format); err != nil {
			return err
		}
	}

	s, err := tui.RunCompose(sess.cfg.DefaultSettings())
	if err != nil {
		return err
	}
	return printComposed(cmd, sess, s, format, flags.outputPath)
}

// printComposed shows the frame for s and optionally saves the train.
func printComposed(cmd *cobra.Command, sess *session, s whynter.Settings, format capture.Format, outputPath string) error {
	out := cmd.OutOrStdout()
	pkt := whynter.Compile(s)
	train := whynter.Encode(pkt)
	sess.logger.LogTransmit(pkt, train)

	report.WriteFrame(out, report.NewFrameReport(version, "", &s, pkt, &train))
	data, err := capture.Render(train, format, &pkt)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	if _, err := out.Write(data); err != nil {
		return err
	}

	if outputPath != "" {
		if err := capture.SaveFile(outputPath, train, &pkt); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s\n", outputPath)
	}
	return nil
}
