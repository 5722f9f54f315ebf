// Package config loads and validates the lattice configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds store selection and process settings.
type Config struct {
	Backend   string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir   string `json:"data_dir,omitempty" yaml:"data_dir,omitempty" mapstructure:"data_dir"`
	LogLevel  string `json:"log_level,omitempty" yaml:"log_level,omitempty" mapstructure:"log_level"`
	LogFormat string `json:"log_format,omitempty" yaml:"log_format,omitempty" mapstructure:"log_format"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Supported log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// FileName is the configuration file inside the config directory.
const FileName = "config.yaml"

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrLogLevelUnknown  = errors.New("unknown log level")
	ErrLogFormatUnknown = errors.New("unknown log format")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
}

var knownLevels = map[string]bool{
	"": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Default returns the configuration written on first run.
func Default() Config {
	return Config{Backend: BackendSQLite, LogLevel: "info", LogFormat: LogFormatText}
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return fmt.Errorf("%w: %q", ErrBackendUnknown, c.Backend)
	}
	if !knownLevels[c.LogLevel] {
		return fmt.Errorf("%w: %q", ErrLogLevelUnknown, c.LogLevel)
	}
	switch c.LogFormat {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrLogFormatUnknown, c.LogFormat)
	}
	return nil
}

// Load reads config.yaml from configDir using Viper. The directory and a
// default config.yaml are created on first run. The returned Config has
// defaults filled in and is validated.
func Load(configDir string) (Config, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return Config{}, fmt.Errorf("config: create dir: %w", err)
	}
	if err := WriteIfMissing(configDir, Default()); err != nil {
		return Config{}, err
	}

	def := Default()
	v := viper.New()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// WriteIfMissing writes cfg as config.yaml into configDir unless the file
// already exists.
func WriteIfMissing(configDir string, cfg Config) error {
	path := filepath.Join(configDir, FileName)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("config: stat: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
