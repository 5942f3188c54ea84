// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Database struct {
		Path string `mapstructure:"path" yaml:"path"`
	} `mapstructure:"database" yaml:"database"`

	CSV struct {
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"csv" yaml:"csv"`

	Import struct {
		BankSource      string `mapstructure:"bank_source" yaml:"bank_source"`
		DefaultCurrency string `mapstructure:"default_currency" yaml:"default_currency"`
	} `mapstructure:"import" yaml:"import"`

	Export struct {
		DateFormat string `mapstructure:"date_format" yaml:"date_format"`
	} `mapstructure:"export" yaml:"export"`

	Review struct {
		PageSize int `mapstructure:"page_size" yaml:"page_size"`
	} `mapstructure:"review" yaml:"review"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading:
// defaults, then an optional config.yaml, then FINANSEER_-prefixed
// environment variables.
func InitializeConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.finanseer")
	v.AddConfigPath(".finanseer")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FINANSEER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Continue with defaults and env vars, but tell the user.
			Logger.Warnf("error reading config file %s: %v", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("database.path", "finanseer.db")

	v.SetDefault("csv.delimiter", ",")

	v.SetDefault("import.bank_source", "Rabobank")
	v.SetDefault("import.default_currency", "EUR")

	v.SetDefault("export.date_format", "01/02/2006")

	v.SetDefault("review.page_size", 20)
}

func validateConfig(c *Config) error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if len(c.CSV.Delimiter) != 1 {
		return fmt.Errorf("csv.delimiter must be a single character, got %q", c.CSV.Delimiter)
	}
	if c.Review.PageSize <= 0 {
		return fmt.Errorf("review.page_size must be positive, got %d", c.Review.PageSize)
	}
	return nil
}
