package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "whynterir",
		Short: "Whynter portable air conditioner IR codec",
		Long: `whynterir compiles Whynter portable air conditioner settings into the
4-byte remote packet, encodes it as a 38 kHz mark/space pulse train, and
decodes captured pulse trains back into packets.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default ./"+defaultConfigName+" when present)")
	rootCmd.PersistentFlags().BoolVar(&opts.initConfig, "init-config", false, "Write a default config file if --config does not exist")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: silent, error, info, verbose, debug")
	rootCmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "Also write log messages to this file")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log file format: text, json (default from config)")
	rootCmd.PersistentFlags().StringVar(&opts.textfile, "metrics-textfile", "", "Write Prometheus metrics to this .prom file on exit")

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newCompileCmd(opts))
	rootCmd.AddCommand(newEncodeCmd(opts))
	rootCmd.AddCommand(newSendCmd(opts))
	rootCmd.AddCommand(newDecodeCmd(opts))
	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newComposeCmd(opts))
	rootCmd.AddCommand(newRemoteCmd(opts))

	// Custom help command
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		if cmd != cmd.Root() {
			if cmd.Long != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", cmd.Long)
			}
			fmt.Fprint(cmd.OutOrStdout(), cmd.UsageString())
			return
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Usage:\n  %s <command> [arguments] [options]\n\n", cmd.Name())
		fmt.Fprintf(out, "Available Commands:\n")
		for _, subCmd := range cmd.Commands() {
			if !subCmd.Hidden && subCmd.Name() != "completion" && subCmd.Name() != "help" {
				fmt.Fprintf(out, "  %-15s %s\n", subCmd.Name(), subCmd.Short)
			}
		}
		fmt.Fprintf(out, "\nUse \"%s help <command>\" for more information about a command.\n", cmd.Name())
	})

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
