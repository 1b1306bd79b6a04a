package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/tui"
	"github.com/tonylturner/whynterir/internal/whynter"
)

type encodeFlags struct {
	settings   settingsFlags
	packet     string
	format     string
	outputPath string
	copy       bool
}

func newEncodeCmd(opts *rootOptions) *cobra.Command {
	flags := &encodeFlags{}

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode settings or a packet as a pulse train",
		Long: `Encode settings (or a literal packet given with --packet) as the
68-pulse Whynter train. Output is raw signed microseconds, LIRC mode2 or a
YAML capture document.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			return runEncode(cmd, opts, flags)
		},
	}

	addSettingsFlags(cmd.Flags(), &flags.settings)
	cmd.Flags().StringVar(&flags.packet, "packet", "", "Encode this packet instead of settings (e.g. \"48 12 A8 4B\")")
	cmd.Flags().StringVar(&flags.format, "format", "", "Output format: raw, mode2, yaml (default from config)")
	cmd.Flags().StringVar(&flags.outputPath, "output", "", "Write the train to a file (default stdout)")
	cmd.Flags().BoolVar(&flags.copy, "copy", false, "Copy the raw train to the clipboard")

	return cmd
}

func runEncode(cmd *cobra.Command, opts *rootOptions, flags *encodeFlags) error {
	sess, err := loadSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	format := sess.cfg.OutputFormat()
	switch {
	case flags.format != "":
		if format, err = capture.ParseFormat(flags.format); err != nil {
			return err
		}
	case flags.outputPath != "":
		format = capture.FormatForPath(flags.outputPath)
	}

	var buf bytes.Buffer
	sink := capture.NewWriter(&buf, format)

	var pkt whynter.Packet
	if flags.packet != "" {
		if pkt, err = whynter.ParsePacketHex(flags.packet); err != nil {
			return err
		}
		if verr := pkt.Validate(); verr != nil {
			sess.logger.Info("Packet is not a known state: %v", verr)
		}
		train := whynter.Encode(pkt)
		if err := sink.Transmit(train.CarrierHz, train.Pulses); err != nil {
			return err
		}
	} else {
		s, err := resolveSettings(cmd.Flags(), &flags.settings, sess.cfg.DefaultSettings())
		if err != nil {
			return err
		}
		if pkt, err = whynter.Send(sink, s); err != nil {
			return err
		}
	}
	train := whynter.Encode(pkt)
	sess.logger.LogTransmit(pkt, train)
	sess.metrics.ObserveFrame("encode")

	if flags.outputPath != "" {
		if err := os.WriteFile(flags.outputPath, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("write %s: %w", flags.outputPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d pulses) for packet %s\n",
			flags.outputPath, format, len(train.Pulses), pkt)
	} else if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return err
	}

	if flags.copy {
		if err := tui.CopyText(capture.RawString(train.Pulses)); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Copied raw train to clipboard")
	}
	return nil
}
