// Package config loads ls-ephem settings from .ls-ephem.yaml, LS_EPHEM_*
// environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. LS_EPHEM_LOG_LEVEL.
const EnvPrefix = "LS_EPHEM"

// BrowseConfig holds settings for the interactive browser.
type BrowseConfig struct {
	Refresh time.Duration `mapstructure:"refresh"` // position update interval
	Step    time.Duration `mapstructure:"step"`    // time shift per keypress
}

// Config holds all runtime configuration.
type Config struct {
	Kernels  []string     `mapstructure:"kernels"`
	LogLevel string       `mapstructure:"log_level"`
	Center   string       `mapstructure:"center"`
	Observer string       `mapstructure:"observer"`
	Browse   BrowseConfig `mapstructure:"browse"`
}

// Init points v at the config file and environment. An explicit cfgFile
// must exist; otherwise .ls-ephem.yaml is looked up in the working
// directory and the home directory, and a missing file is fine.
func Init(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".ls-ephem")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load reads configuration from v, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load(v *viper.Viper) (Config, error) {
	v.SetDefault("kernels", []string{})
	v.SetDefault("log_level", "info")
	v.SetDefault("center", "0")
	v.SetDefault("observer", "earth")
	v.SetDefault("browse.refresh", time.Second)
	v.SetDefault("browse.step", time.Hour)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Browse.Refresh <= 0 {
		return Config{}, fmt.Errorf("browse.refresh must be positive, got %v", cfg.Browse.Refresh)
	}
	return cfg, nil
}
