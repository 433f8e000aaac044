// Package config loads dpvalidate settings from defaults, an optional YAML
// file, DPVALIDATE_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/dpvalidate/internal/component"
)

// EnvPrefix prefixes every environment override, e.g. DPVALIDATE_LOG_LEVEL.
const EnvPrefix = "DPVALIDATE"

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Output configuration
	Output OutputConfig `mapstructure:"output"`

	// Store configuration
	Store StoreConfig `mapstructure:"store"`

	// Privacy definition passed to every component
	Privacy PrivacyConfig `mapstructure:"privacy"`

	// SGD configuration
	SGD SGDConfig `mapstructure:"sgd"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// OutputConfig holds command output configuration
type OutputConfig struct {
	Format  string `mapstructure:"format"` // text, json
	Verbose bool   `mapstructure:"verbose"`
}

// StoreConfig holds ledger configuration
type StoreConfig struct {
	// Path of the SQLite ledger. Empty disables recording.
	Path string `mapstructure:"path"`
}

// PrivacyConfig holds the privacy definition
type PrivacyConfig struct {
	Neighboring           string `mapstructure:"neighboring"` // add_remove, substitute
	GroupSize             int64  `mapstructure:"group_size"`
	StrictParameterChecks bool   `mapstructure:"strict_parameter_checks"`
	ProtectFloatingPoint  bool   `mapstructure:"protect_floating_point"`
}

// SGDConfig holds DP-SGD hyperparameters
type SGDConfig struct {
	LearningRate    float64 `mapstructure:"learning_rate"`
	NoiseMultiplier float64 `mapstructure:"noise_multiplier"`
	ClipNorm        float64 `mapstructure:"clip_norm"`
	BatchSize       int     `mapstructure:"batch_size"`
	Iterations      int     `mapstructure:"iterations"`
	Seed            uint64  `mapstructure:"seed"`
	LabelColumn     int     `mapstructure:"label_column"`
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	// Output defaults
	v.SetDefault("output.format", "text")
	v.SetDefault("output.verbose", false)

	// Store defaults
	v.SetDefault("store.path", "")

	// Privacy defaults
	v.SetDefault("privacy.neighboring", "substitute")
	v.SetDefault("privacy.group_size", 1)
	v.SetDefault("privacy.strict_parameter_checks", false)
	v.SetDefault("privacy.protect_floating_point", true)

	// SGD defaults
	v.SetDefault("sgd.learning_rate", 0.1)
	v.SetDefault("sgd.noise_multiplier", 1.0)
	v.SetDefault("sgd.clip_norm", 1.0)
	v.SetDefault("sgd.batch_size", 32)
	v.SetDefault("sgd.iterations", 100)
	v.SetDefault("sgd.seed", 0)
	v.SetDefault("sgd.label_column", 0)
}

// BindFlags binds the global command-line flags that override configuration.
// Flags missing from the set are skipped.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	bindings := map[string]string{
		"log.level":      "log-level",
		"log.format":     "log-format",
		"output.format":  "format",
		"output.verbose": "verbose",
		"store.path":     "db",
	}
	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Load reads the optional config file and decodes the configuration.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if _, err := c.Log.level(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Output.Format != "text" && c.Output.Format != "json" {
		return fmt.Errorf("output.format must be text or json, got %q", c.Output.Format)
	}
	if c.Privacy.GroupSize < 1 {
		return fmt.Errorf("privacy.group_size must be positive, got %d", c.Privacy.GroupSize)
	}
	return nil
}

// Definition converts the privacy settings to the value passed to components.
func (p PrivacyConfig) Definition() *component.PrivacyDefinition {
	return &component.PrivacyDefinition{
		Neighboring:           p.Neighboring,
		GroupSize:             p.GroupSize,
		StrictParameterChecks: p.StrictParameterChecks,
		ProtectFloatingPoint:  p.ProtectFloatingPoint,
	}
}

// NewLogger builds a slog logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}
