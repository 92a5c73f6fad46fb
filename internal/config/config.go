// Package config loads, schema-checks and validates the JSON configuration
// file. The file format is flat: keys like "user.name" and
// "loans.max_monthly" are literal key names, not nested objects, so the
// loader runs viper with a key delimiter that never occurs in a key.
package config

import (
	"fmt"
	"time"
)

// Config is the configuration record, immutable once loaded
type Config struct {
	URL      string `mapstructure:"url" json:"url"`
	Username string `mapstructure:"user.name" json:"user.name"`
	Password string `mapstructure:"user.password" json:"user.password"`

	MaxConcurrentReservations int `mapstructure:"reservations.max_concurrent" json:"reservations.max_concurrent"`
	LoanDurationDays          int `mapstructure:"loans.duration_in_days" json:"loans.duration_in_days"`
	MaxMonthlyLoans           int `mapstructure:"loans.max_monthly" json:"loans.max_monthly"`

	// Catalogue IDs the session runner should try to borrow or reserve
	Wishlist []int `mapstructure:"books.wishlist" json:"books.wishlist,omitempty"`

	Browser BrowserConfig `mapstructure:"browser" json:"browser"`
	Logging LoggingConfig `mapstructure:"logging" json:"logging"`
}

// BrowserConfig holds browser session settings
type BrowserConfig struct {
	Headless       bool   `mapstructure:"headless" json:"headless"`
	NoSandbox      bool   `mapstructure:"no_sandbox" json:"no_sandbox"`
	ChromePath     string `mapstructure:"chrome_path" json:"chrome_path,omitempty"`
	UserDataDir    string `mapstructure:"user_data_dir" json:"user_data_dir,omitempty"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
}

// Timeout returns the per-operation browser timeout
func (b BrowserConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `mapstructure:"level" json:"level"`
	File      string `mapstructure:"file" json:"file,omitempty"`
	Pretty    bool   `mapstructure:"pretty" json:"pretty"`
	Redaction bool   `mapstructure:"redaction" json:"redaction"`
}

// ConfigError reports a missing, malformed or invalid configuration
type ConfigError struct {
	Path   string // config file path, empty when no file is involved
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid configuration %s: %s", e.Path, e.Reason)
}

func configErr(path, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:       true,
			TimeoutSeconds: 30,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Pretty:    true,
			Redaction: true,
		},
	}
}
