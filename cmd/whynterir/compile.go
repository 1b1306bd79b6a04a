package main

import (
	"github.com/spf13/cobra"

	"github.com/tonylturner/whynterir/internal/report"
	"github.com/tonylturner/whynterir/internal/whynter"
)

type compileFlags struct {
	settings settingsFlags
	json     bool
}

func newCompileCmd(opts *rootOptions) *cobra.Command {
	flags := &compileFlags{}

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile settings into the 4-byte packet",
		Long: `Compile power, mode, fan speed and target temperature into the
Whynter packet. Unset flags come from the config defaults.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if handleHelpArg(cmd, args) {
				return nil
			}
			return runCompile(cmd, opts, flags)
		},
	}

	addSettingsFlags(cmd.Flags(), &flags.settings)
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print a JSON report")

	return cmd
}

func runCompile(cmd *cobra.Command, opts *rootOptions, flags *compileFlags) error {
	sess, err := loadSession(cmd, opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	s, err := resolveSettings(cmd.Flags(), &flags.settings, sess.cfg.DefaultSettings())
	if err != nil {
		return err
	}
	pkt := whynter.Compile(s)
	sess.logger.Verbose("Compiled %+v -> 0x%s", s, pkt.Hex())
	sess.metrics.ObserveFrame("compile")

	r := report.NewFrameReport(version, "", &s, pkt, nil)
	if flags.json {
		return report.WriteJSON(cmd.OutOrStdout(), r)
	}
	report.WriteFrame(cmd.OutOrStdout(), r)
	return nil
}
