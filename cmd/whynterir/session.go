package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tonylturner/whynterir/internal/config"
	"github.com/tonylturner/whynterir/internal/logging"
	"github.com/tonylturner/whynterir/internal/metrics"
	"github.com/tonylturner/whynterir/internal/whynter"
)

const defaultConfigName = config.DefaultPath

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	initConfig bool
	logLevel   string
	logFile    string
	logFormat  string
	textfile   string
}

// session is the per-invocation config, logger and metrics.
type session struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *metrics.Collector
	textfile string
}

// Close writes the metrics textfile, when one is configured, and closes the log.
func (r *session) Close() {
	if r.textfile != "" {
		if err := r.metrics.WriteTextfile(r.textfile); err != nil {
			r.logger.Error("%v", err)
		} else {
			r.logger.Verbose("Wrote metrics to %s", r.textfile)
		}
	}
	if r.logger != nil {
		_ = r.logger.Close()
	}
}

// loadSession resolves the config file and builds the logger. Flags win over
// the config's logging section.
func loadSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	path := opts.configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigName); err == nil {
			path = defaultConfigName
		}
	}
	cfg, err := config.LoadConfig(path, opts.initConfig)
	if err != nil {
		return nil, err
	}

	levelName := cfg.Logging.Level
	if opts.logLevel != "" {
		levelName = opts.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	logFile := cfg.Logging.File
	if opts.logFile != "" {
		logFile = opts.logFile
	}
	logger, err := logging.NewLoggerTo(level, logFile, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	logFormat := cfg.Logging.Format
	if opts.logFormat != "" {
		logFormat = opts.logFormat
	}
	if err := logger.SetFileFormat(logFormat); err != nil {
		_ = logger.Close()
		return nil, err
	}
	if path != "" {
		logger.Verbose("Loaded config %s", path)
	}

	textfile := cfg.Metrics.Textfile
	if opts.textfile != "" {
		textfile = opts.textfile
	}
	return &session{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics.NewCollector(),
		textfile: textfile,
	}, nil
}

// settingsFlags are the remote-state flags shared by compile and encode.
type settingsFlags struct {
	power      string
	mode       string
	fan        string
	temp       float64
	fahrenheit bool
}

func addSettingsFlags(fs *pflag.FlagSet, flags *settingsFlags) {
	fs.StringVar(&flags.power, "power", "", "Power: on or off (default from config)")
	fs.StringVar(&flags.mode, "mode", "", "Mode: cool, dry, fan_only (default from config)")
	fs.StringVar(&flags.fan, "fan", "", "Fan speed: low, medium, high (default from config)")
	fs.Float64Var(&flags.temp, "temp", 0, "Target temperature in °C (default from config)")
	fs.BoolVar(&flags.fahrenheit, "fahrenheit", false, "Interpret --temp as °F")
}

// resolveSettings overlays the flags that were set on the config defaults.
func resolveSettings(fs *pflag.FlagSet, flags *settingsFlags, defaults whynter.Settings) (whynter.Settings, error) {
	s := defaults
	if fs.Changed("power") {
		switch strings.ToLower(strings.TrimSpace(flags.power)) {
		case "on", "true", "1":
			s.Power = true
		case "off", "false", "0":
			s.Power = false
		default:
			return s, fmt.Errorf("invalid --power %q (expected on or off)", flags.power)
		}
	}
	if fs.Changed("mode") {
		mode, err := whynter.ParseMode(flags.mode)
		if err != nil {
			return s, err
		}
		s.Mode = mode
	}
	if fs.Changed("fan") {
		fan, err := whynter.ParseFanSpeed(flags.fan)
		if err != nil {
			return s, err
		}
		s.FanSpeed = fan
	}
	if fs.Changed("temp") {
		s.TargetCelsius = flags.temp
		if flags.fahrenheit {
			s.TargetCelsius = (flags.temp - 32) / 1.8
		}
	}
	return s, nil
}
