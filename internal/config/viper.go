// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Store struct {
		Driver          string `mapstructure:"driver" yaml:"driver"`
		ConnectAttempts int    `mapstructure:"connect_attempts" yaml:"connect_attempts"`
		SQLite          struct {
			Path string `mapstructure:"path" yaml:"path"`
		} `mapstructure:"sqlite" yaml:"sqlite"`
		Postgres struct {
			URL         string `mapstructure:"url" yaml:"-"` // may carry a password
			Host        string `mapstructure:"host" yaml:"host"`
			Port        int    `mapstructure:"port" yaml:"port"`
			Database    string `mapstructure:"database" yaml:"database"`
			User        string `mapstructure:"user" yaml:"user"`
			Password    string `mapstructure:"password" yaml:"-"`
			SSLMode     string `mapstructure:"sslmode" yaml:"sslmode"`
			MaxPoolSize int    `mapstructure:"max_pool_size" yaml:"max_pool_size"`
		} `mapstructure:"postgres" yaml:"postgres"`
	} `mapstructure:"store" yaml:"store"`

	Categorization struct {
		Threshold    float64 `mapstructure:"threshold" yaml:"threshold"`
		KeyTermBonus float64 `mapstructure:"key_term_bonus" yaml:"key_term_bonus"`
		CatalogFile  string  `mapstructure:"catalog_file" yaml:"catalog_file"`
	} `mapstructure:"categorization" yaml:"categorization"`

	Import struct {
		UserID int64  `mapstructure:"user_id" yaml:"user_id"`
		Source string `mapstructure:"source" yaml:"source"`
	} `mapstructure:"import" yaml:"import"`

	Export struct {
		Width          int    `mapstructure:"width" yaml:"width"`
		CurrencySymbol string `mapstructure:"currency_symbol" yaml:"currency_symbol"`
	} `mapstructure:"export" yaml:"export"`
}

// InitializeConfig loads configuration from the default locations.
func InitializeConfig() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig loads configuration hierarchically: defaults, then the config
// file (configFile when set, otherwise config.yaml in the search path), then
// LEDGER_* environment variables.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.ledger-import")
		v.AddConfigPath(".ledger-import")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("LEDGER")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			if configFile != "" {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
			Logger.Warnf("Error reading config file %s: %v", v.ConfigFileUsed(), err)
		}
	}

	// 5. The conventional DSN variable, unprefixed
	if err := v.BindEnv("store.postgres.url", "LEDGER_STORE_POSTGRES_URL", "DATABASE_URL"); err != nil {
		Logger.Warnf("Failed to bind DATABASE_URL environment variable: %v", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Store defaults
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.connect_attempts", 3)
	v.SetDefault("store.sqlite.path", "data/ledger.db")
	v.SetDefault("store.postgres.url", "")
	v.SetDefault("store.postgres.host", "localhost")
	v.SetDefault("store.postgres.port", 5432)
	v.SetDefault("store.postgres.database", "ledger")
	v.SetDefault("store.postgres.user", "ledger")
	v.SetDefault("store.postgres.password", "")
	v.SetDefault("store.postgres.sslmode", "disable")
	v.SetDefault("store.postgres.max_pool_size", 10)

	// Categorization defaults
	v.SetDefault("categorization.threshold", 0.2)
	v.SetDefault("categorization.key_term_bonus", 0.1)
	v.SetDefault("categorization.catalog_file", "")

	// Import defaults
	v.SetDefault("import.user_id", 0)
	v.SetDefault("import.source", "import")

	// Export defaults
	v.SetDefault("export.width", 80)
	v.SetDefault("export.currency_symbol", "₹")
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	// Validate log level
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	// Validate log format
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	switch config.Store.Driver {
	case DriverMemory, DriverPostgres:
	case DriverSQLite:
		if strings.TrimSpace(config.Store.SQLite.Path) == "" {
			return fmt.Errorf("store.sqlite.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be 'memory', 'sqlite' or 'postgres')", config.Store.Driver)
	}

	if config.Store.ConnectAttempts < 1 {
		return fmt.Errorf("store.connect_attempts must be at least 1, got: %d", config.Store.ConnectAttempts)
	}

	if config.Categorization.Threshold < 0.0 || config.Categorization.Threshold > 1.0 {
		return fmt.Errorf("categorization.threshold must be between 0.0 and 1.0, got: %f", config.Categorization.Threshold)
	}
	if config.Categorization.KeyTermBonus < 0.0 || config.Categorization.KeyTermBonus > 1.0 {
		return fmt.Errorf("categorization.key_term_bonus must be between 0.0 and 1.0, got: %f", config.Categorization.KeyTermBonus)
	}

	if config.Import.UserID < 0 {
		return fmt.Errorf("import.user_id must not be negative, got: %d", config.Import.UserID)
	}

	if config.Export.Width < 20 || config.Export.Width > 400 {
		return fmt.Errorf("export.width must be between 20 and 400, got: %d", config.Export.Width)
	}

	return nil
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	// Parse and set log level
	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Configure log format
	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
