// Package config loads runtime defaults for the minkowski CLI.
//
// Values come from, in increasing precedence: built-in defaults, a
// .minkowski.yaml (or --config) file, MINKOWSKI_* environment variables and
// command-line flags bound to the same keys.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/roach88/minkowski/internal/engine"
	"github.com/roach88/minkowski/internal/spacetime"
)

// Keys shared by the config file, environment and flags.
const (
	KeyLightSpeed  = "light_speed"
	KeySeed        = "seed"
	KeyBoundary    = "boundary"
	KeyFormat      = "format"
	KeyVerbose     = "verbose"
	KeyScenarioDir = "scenario_dir"
)

// EnvPrefix prefixes every environment variable, e.g. MINKOWSKI_LIGHT_SPEED.
const EnvPrefix = "MINKOWSKI"

// Config holds runtime configuration for a minkowski invocation.
type Config struct {
	// LightSpeed is c for commands that do not take it explicitly.
	LightSpeed float64 `mapstructure:"light_speed"`

	// Seed seeds random sources. Zero means non-deterministic.
	Seed int64 `mapstructure:"seed"`

	// Boundary is the default grid boundary policy.
	Boundary string `mapstructure:"boundary"`

	// Format is the output format ("text" or "json").
	Format string `mapstructure:"format"`

	Verbose bool `mapstructure:"verbose"`

	// ScenarioDir is where `minkowski test` looks when no directory is given.
	ScenarioDir string `mapstructure:"scenario_dir"`
}

// New returns a viper instance with built-in defaults and environment
// binding applied. Callers bind flags to it and then call ReadFile and Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyLightSpeed, spacetime.DefaultLightSpeed)
	v.SetDefault(KeySeed, 0)
	v.SetDefault(KeyBoundary, string(engine.Inclusive))
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyScenarioDir, "testdata/scenarios")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return v
}

// ReadFile reads path into v, or searches for .minkowski.yaml in the working
// directory and the home directory when path is empty. A missing searched
// file is not an error; a missing explicit file is.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".minkowski")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no command can use.
func (c Config) Validate() error {
	if err := spacetime.ValidateLightSpeed(c.LightSpeed); err != nil {
		return fmt.Errorf("config %s: %w", KeyLightSpeed, err)
	}
	if _, err := engine.ParseBoundary(c.Boundary); err != nil {
		return fmt.Errorf("config %s: %w", KeyBoundary, err)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("config %s: must be text or json, got %q", KeyFormat, c.Format)
	}
	return nil
}

// GridBoundary returns the parsed boundary. Validate has already accepted it.
func (c Config) GridBoundary() engine.Boundary {
	b, err := engine.ParseBoundary(c.Boundary)
	if err != nil {
		return engine.Inclusive
	}
	return b
}
