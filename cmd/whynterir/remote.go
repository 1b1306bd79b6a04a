package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/tui"
	"github.com/tonylturner/whynterir/internal/whynter"
)

type remoteFlags struct {
	outputPath string
	format     string
	target     string
	device     string
}

func newRemoteCmd(opts *rootOptions) *cobra.Command {
	flags := &remoteFlags{}

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Interactive virtual remote",
		Long: `Open a terminal remote control. Arrow keys change the setpoint, m
cycles mode, f cycles fan speed, p toggles power, c copies the raw train to
the clipboard and q quits. With --target every button press is sent through
that transmit target (see "send"); with --output it is recorded to a file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			return runRemote(cmd, opts, flags)
		},
	}

	cmd.Flags().StringVar(&flags.outputPath, "output", "", "Record every transmitted train to this file")
	cmd.Flags().StringVar(&flags.format, "format", "", "Recording format: raw, mode2, yaml (default by extension)")
	cmd.Flags().StringVar(&flags.target, "target", "", "Send every press through this transmit target")
	cmd.Flags().StringVar(&flags.device, "device", "", "LIRC device for local and ssh targets (default from config)")
	cmd.MarkFlagsMutuallyExclusive("output", "target")

	return cmd
}

func runRemote(cmd *cobra.Command, opts *rootOptions, flags *remoteFlags) error {
	sess, err := loadSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	var tx whynter.Transmitter
	var recorder *capture.Writer
	if flags.outputPath != "" {
		format := capture.FormatForPath(flags.outputPath)
		if flags.format != "" {
			if format, err = capture.ParseFormat(flags.format); err != nil {
				return err
			}
		}
		f, err := os.Create(flags.outputPath)
		if err != nil {
			return fmt.Errorf("create %s: %w", flags.outputPath, err)
		}
		defer f.Close()
		recorder = capture.NewWriter(f, format)
		tx = recorder
	}
	if flags.target != "" {
		target, err := openTarget(sess, flags.target, flags.device)
		if err != nil {
			return err
		}
		defer target.Close()
		tx = target
	}

	final, err := tui.RunRemote(sess.cfg.DefaultSettings(), tx)
	if err != nil {
		return err
	}

	pkt := whynter.Compile(final)
	fmt.Fprintf(cmd.OutOrStdout(), "Final state: power=%s mode=%s fan=%s target=%.1f°C packet %s\n",
		onOff(final.Power), final.Mode, final.FanSpeed, final.TargetCelsius, pkt)
	if recorder != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d trains to %s\n", recorder.Count(), flags.outputPath)
	}
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
