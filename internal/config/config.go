package config

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrMissingDataFile is returned when no data file path is configured.
var ErrMissingDataFile = errors.New("DATA_FILE is required (set the env var, .env entry or --file flag)")

type Config struct {
	DataFile     string `mapstructure:"DATA_FILE"`
	Env          string `mapstructure:"ENV"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	SeedPatients int    `mapstructure:"SEED_PATIENTS"`
	ExportDir    string `mapstructure:"EXPORT_DIR"`
}

// flagKeys maps command-line flags onto config keys. Flags override env
// vars and the .env file when they are set.
var flagKeys = map[string]string{
	"file":      "DATA_FILE",
	"log-level": "LOG_LEVEL",
}

// Load reads configuration from the environment, an optional .env file in
// the working directory, and flags. flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SEED_PATIENTS", 10)
	v.SetDefault("EXPORT_DIR", ".")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("DATA_FILE")
	v.BindEnv("ENV")
	v.BindEnv("LOG_LEVEL")
	v.BindEnv("SEED_PATIENTS")
	v.BindEnv("EXPORT_DIR")

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Level returns the parsed log level. Validate guarantees it parses.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// Validate checks that the configuration is usable. There is no default data
// file path; one must be supplied.
func (c *Config) Validate() error {
	if c.DataFile == "" {
		return ErrMissingDataFile
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL %q is not a valid level: %w", c.LogLevel, err)
	}
	if c.SeedPatients < 0 {
		return fmt.Errorf("SEED_PATIENTS must not be negative, got %d", c.SeedPatients)
	}
	return nil
}
