// Package config loads typekit tool configuration.
//
// Lookup order, lowest precedence first: built-in defaults, the config file
// (explicit path, else .typekit.yaml in the working directory, else
// ~/.config/typekit/config.yaml), then TYPEKIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ProjectConfigFile is looked up in the working directory.
	ProjectConfigFile = ".typekit.yaml"
	// UserConfigDir is relative to the user's home directory.
	UserConfigDir = ".config/typekit"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TYPEKIT"
)

// Config is the tool configuration.
type Config struct {
	// Catalog overrides the embedded registry with a YAML file.
	Catalog string    `mapstructure:"catalog"`
	Log     LogConfig `mapstructure:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text or json
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// Validate rejects unknown log levels and formats.
func (c Config) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	if !slices.Contains([]string{"text", "json"}, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	return nil
}

// Load reads configuration into v and decodes it. An empty path searches
// the default locations; a missing file there is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	defaults := Defaults()
	v.SetDefault("catalog", defaults.Catalog)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else if _, err := os.Stat(ProjectConfigFile); err == nil {
		v.SetConfigFile(ProjectConfigFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, UserConfigDir))
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
