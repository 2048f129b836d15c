// Package config loads nichefmt configuration.
//
// Configuration comes from a single YAML file named by the --config flag
// or the NICHEFMT_CONFIG environment variable. There is no discovery:
// without either, the CLI runs on Default().
package config

import (
	stderrors "errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/nichefmt/errors"
	"github.com/wippyai/nichefmt/layout"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "NICHEFMT_CONFIG"

// Output formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatCBOR = "cbor"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the complete configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Layout LayoutConfig `yaml:"layout"`
	Output OutputConfig `yaml:"output"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	// Default: warn
	Level string `yaml:"level"`

	// Development switches to zap's development encoder.
	Development bool `yaml:"development"`
}

// LayoutConfig overrides the binary layouts. Zero fields keep the defaults,
// so a file only needs to name what differs for its library version.
type LayoutConfig struct {
	String layout.StringLayout `yaml:"string"`
	Vector layout.VectorLayout `yaml:"vector"`
}

// OutputConfig configures how the CLI prints values.
type OutputConfig struct {
	// Format is text, yaml or cbor.
	// Default: text
	Format string `yaml:"format"`

	// Color is auto, always or never. Auto colors only a terminal.
	// Default: auto
	Color string `yaml:"color"`

	// MaxChildren caps how many children the CLI prints per value. Zero
	// and values above 4096 mean 4096.
	// Default: 64
	MaxChildren int `yaml:"max_children"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "warn"},
		Layout: LayoutConfig{
			String: layout.DefaultStringLayout(),
			Vector: layout.DefaultVectorLayout(),
		},
		Output: OutputConfig{
			Format:      FormatText,
			Color:       ColorAuto,
			MaxChildren: 64,
		},
	}
}

// Load loads the file named by NICHEFMT_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, errors.New(errors.PhaseConfig, errors.KindNotFound).
			Detail("%s environment variable not set; set it to a config file path or use --config", EnvVar).
			Build()
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of Default().
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindNotFound, err, "read config "+path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse config "+path)
	}
	return cfg, nil
}

// Parse decodes YAML configuration on top of Default().
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Layout.String = cfg.Layout.String.WithDefaults()
	cfg.Layout.Vector = cfg.Layout.Vector.WithDefaults()
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if err := c.Layout.String.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Layout.Vector.Validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Output.Format {
	case FormatText, FormatYAML, FormatCBOR:
	default:
		errs = append(errs, fmt.Errorf("output.format: unknown format %q", c.Output.Format))
	}
	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("output.color: unknown mode %q", c.Output.Color))
	}
	if c.Output.MaxChildren < 0 {
		errs = append(errs, fmt.Errorf("output.max_children must not be negative"))
	}

	return stderrors.Join(errs...)
}

// NewLogger builds the root logger described by c.Log.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
