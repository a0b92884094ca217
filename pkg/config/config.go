// Package config provides configuration loading and validation for the ivtree CLI.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel    = errors.New("invalid log level")
	ErrInvalidLogFormat   = errors.New("invalid log format")
	ErrInvalidDomain      = errors.New("invalid tree domain")
	ErrInvalidSampleRatio = errors.New("trace sample ratio must be within [0, 1]")
)

// Config holds all configuration for the ivtree CLI.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Tree    TreeConfig    `mapstructure:"tree"`
	Output  OutputConfig  `mapstructure:"output"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TreeConfig selects the interval domain and whether the tree checks its
// own invariants after every mutation.
type TreeConfig struct {
	Domain   string `mapstructure:"domain"`
	Validate bool   `mapstructure:"validate"`
}

// OutputConfig controls the run report.
type OutputConfig struct {
	Color  bool `mapstructure:"color"`
	Events bool `mapstructure:"events"`
}

// MetricsConfig holds the Prometheus endpoint address. Empty disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// TracingConfig holds OTLP export settings.
type TracingConfig struct {
	Endpoint        string  `mapstructure:"endpoint"`
	Headers         string  `mapstructure:"headers"`
	SampleRatio     float64 `mapstructure:"sample_ratio"`
	ShutdownTimeout int     `mapstructure:"shutdown_timeout"`
	Insecure        bool    `mapstructure:"insecure"`
}

// LoadConfig loads configuration from file, environment variables, and defaults.
// An empty configPath searches for ivtree.yaml in the working directory,
// ./config and $HOME/.config/ivtree; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(defaultConfigName)
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath(localConfigDir)

		if home, err := os.UserHomeDir(); err == nil {
			viperCfg.AddConfigPath(filepath.Join(home, userConfigDir))
		}
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("logging.level", DefaultLogLevel)
	viperCfg.SetDefault("logging.format", DefaultLogFormat)

	viperCfg.SetDefault("tree.domain", DefaultDomain)
	viperCfg.SetDefault("tree.validate", DefaultValidate)

	viperCfg.SetDefault("output.color", DefaultColor)
	viperCfg.SetDefault("output.events", DefaultEvents)

	viperCfg.SetDefault("metrics.addr", DefaultMetricsAddr)

	viperCfg.SetDefault("tracing.endpoint", DefaultOTLPEndpoint)
	viperCfg.SetDefault("tracing.headers", "")
	viperCfg.SetDefault("tracing.insecure", DefaultOTLPInsecure)
	viperCfg.SetDefault("tracing.sample_ratio", DefaultSampleRatio)
	viperCfg.SetDefault("tracing.shutdown_timeout", DefaultShutdownTimeout)
}

// Validate checks every section and joins all failures.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if c.Logging.Format != FormatText && c.Logging.Format != FormatJSON {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format))
	}

	if err := ValidateDomain(c.Tree.Domain); err != nil {
		errs = append(errs, err)
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.Tracing.SampleRatio))
	}

	return errors.Join(errs...)
}

// SlogLevel parses Level as an slog level name.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level

	err := level.UnmarshalText([]byte(l.Level))
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}

	return level, nil
}

// ValidateDomain reports whether domain names a supported interval domain.
func ValidateDomain(domain string) error {
	if !slices.Contains(Domains(), domain) {
		return fmt.Errorf("%w: %q (want one of %s)", ErrInvalidDomain, domain, strings.Join(Domains(), ", "))
	}

	return nil
}
