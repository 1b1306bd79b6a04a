package config

// Configuration loading and validation for whynterir

import (
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tonylturner/whynterir/internal/capture"
	"github.com/tonylturner/whynterir/internal/errors"
	"github.com/tonylturner/whynterir/internal/logging"
	"github.com/tonylturner/whynterir/internal/whynter"
)

// DefaultPath is used when --config is not given and the file exists.
const DefaultPath = "whynterir.yaml"

// DecoderConfig controls capture decoding
type DecoderConfig struct {
	TolerancePercent float64 `yaml:"tolerance_percent"` // accepted deviation from nominal, 1..49
}

// DefaultsConfig is the settings used when a command gets no flags
type DefaultsConfig struct {
	Power         bool    `yaml:"power"`
	Mode          string  `yaml:"mode"`      // cool, dry, fan_only
	FanSpeed      string  `yaml:"fan_speed"` // low, medium, high
	TargetCelsius float64 `yaml:"target_celsius"`
}

// OutputConfig controls how pulse trains are written
type OutputConfig struct {
	Format string `yaml:"format"` // raw, mode2, yaml
}

// LoggingConfig controls the logger
type LoggingConfig struct {
	Level  string `yaml:"level"` // silent, error, info, verbose, debug
	File   string `yaml:"file,omitempty"`
	Format string `yaml:"format"` // log file format: text, json
}

// TransmitConfig selects where send and remote deliver frames
type TransmitConfig struct {
	// Target is a transport spec: local, local:/dev/lirc1, file:out.txt,
	// ssh://user@host?device=/dev/lirc0, redis://host:6379/0
	Target string `yaml:"target"`
	// Device overrides the LIRC device for local and ssh targets
	Device string `yaml:"device,omitempty"`
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"` // node_exporter textfile collector path
}

// Config represents the whynterir configuration
type Config struct {
	Decoder  DecoderConfig  `yaml:"decoder"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
	Transmit TransmitConfig `yaml:"transmit"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// CreateDefaultConfig creates the built-in configuration
func CreateDefaultConfig() *Config {
	return &Config{
		Decoder: DecoderConfig{
			TolerancePercent: whynter.DefaultTolerance * 100,
		},
		Defaults: DefaultsConfig{
			Power:         true,
			Mode:          whynter.ModeCool.String(),
			FanSpeed:      whynter.FanLow.String(),
			TargetCelsius: whynter.DefaultTargetCelsius,
		},
		Output: OutputConfig{
			Format: string(capture.FormatRaw),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Transmit: TransmitConfig{
			Target: "local",
		},
	}
}

// WriteDefaultConfig writes the default configuration to a file
func WriteDefaultConfig(path string) error {
	cfg := CreateDefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file.
// An empty path returns the defaults. If the file doesn't exist and
// autoCreate is true, a default config file is written first.
func LoadConfig(path string, autoCreate bool) (*Config, error) {
	if path == "" {
		return CreateDefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if !autoCreate {
				return nil, errors.WrapConfigError(
					fmt.Errorf("config file not found: %s", path),
					path,
				)
			}
			if err := WriteDefaultConfig(path); err != nil {
				return nil, fmt.Errorf("create default config: %w", err)
			}
			data, err = os.ReadFile(path)
			if err != nil {
				return nil, errors.WrapConfigError(
					fmt.Errorf("read created config file: %w", err),
					path,
				)
			}
		} else {
			return nil, errors.WrapConfigError(
				fmt.Errorf("read config file: %w", err),
				path,
			)
		}
	}

	// Start from defaults so omitted sections keep their values
	cfg := CreateDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapConfigError(fmt.Errorf("parse YAML: %w", err), path)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, errors.WrapConfigError(fmt.Errorf("validate config: %w", err), path)
	}

	return cfg, nil
}

// ValidateConfig validates a configuration
func ValidateConfig(cfg *Config) error {
	tol := cfg.Decoder.TolerancePercent
	if math.IsNaN(tol) || tol < 1 || tol > 49 {
		return fmt.Errorf("decoder.tolerance_percent must be between 1 and 49, got %v", tol)
	}
	if _, err := whynter.ParseMode(cfg.Defaults.Mode); err != nil {
		return fmt.Errorf("defaults.mode: %w", err)
	}
	if _, err := whynter.ParseFanSpeed(cfg.Defaults.FanSpeed); err != nil {
		return fmt.Errorf("defaults.fan_speed: %w", err)
	}
	t := cfg.Defaults.TargetCelsius
	if math.IsNaN(t) || t < whynter.MinTargetCelsius || t > whynter.MaxTargetCelsius {
		return fmt.Errorf("defaults.target_celsius must be between %.2f and %.1f, got %v",
			whynter.MinTargetCelsius, whynter.MaxTargetCelsius, t)
	}
	if _, err := capture.ParseFormat(cfg.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if strings.TrimSpace(cfg.Logging.File) != cfg.Logging.File {
		return fmt.Errorf("logging.file has leading or trailing whitespace")
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", cfg.Logging.Format)
	}
	if strings.TrimSpace(cfg.Transmit.Target) == "" {
		return fmt.Errorf("transmit.target is required")
	}
	if cfg.Metrics.Textfile != "" && !strings.HasSuffix(cfg.Metrics.Textfile, ".prom") {
		return fmt.Errorf("metrics.textfile must end in .prom, got %q", cfg.Metrics.Textfile)
	}
	return nil
}

// Tolerance returns the decoder tolerance as a fraction.
func (c *Config) Tolerance() float64 {
	return c.Decoder.TolerancePercent / 100
}

// DefaultSettings converts the defaults section. Call after ValidateConfig.
func (c *Config) DefaultSettings() whynter.Settings {
	mode, _ := whynter.ParseMode(c.Defaults.Mode)
	fan, _ := whynter.ParseFanSpeed(c.Defaults.FanSpeed)
	return whynter.Settings{
		Power:         c.Defaults.Power,
		Mode:          mode,
		FanSpeed:      fan,
		TargetCelsius: c.Defaults.TargetCelsius,
	}
}

// OutputFormat returns the configured capture format.
func (c *Config) OutputFormat() capture.Format {
	f, err := capture.ParseFormat(c.Output.Format)
	if err != nil {
		return capture.FormatRaw
	}
	return f
}
