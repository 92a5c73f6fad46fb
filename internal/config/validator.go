package config

import (
	"fmt"
	"strings"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the semantic constraints after defaults and environment
// overrides have been applied. It works on any Config, file-loaded or not.
func (c *Config) Validate() error {
	if c.URL == "" {
		return &ConfigError{Reason: "url is required"}
	}
	if c.Username == "" {
		return &ConfigError{Reason: fmt.Sprintf("user.name is required (set it in the file or via %s)", EnvUsername)}
	}
	if c.Password == "" {
		return &ConfigError{Reason: fmt.Sprintf("user.password is required (set it in the file or via %s)", EnvPassword)}
	}
	if c.MaxConcurrentReservations < 0 {
		return &ConfigError{Reason: fmt.Sprintf("reservations.max_concurrent must be >= 0, got %d", c.MaxConcurrentReservations)}
	}
	if c.LoanDurationDays < 1 {
		return &ConfigError{Reason: fmt.Sprintf("loans.duration_in_days must be >= 1, got %d", c.LoanDurationDays)}
	}
	if c.MaxMonthlyLoans < 0 {
		return &ConfigError{Reason: fmt.Sprintf("loans.max_monthly must be >= 0, got %d", c.MaxMonthlyLoans)}
	}
	for i, id := range c.Wishlist {
		if id <= 0 {
			return &ConfigError{Reason: fmt.Sprintf("books.wishlist[%d]: book id must be positive, got %d", i, id)}
		}
	}
	if c.Browser.TimeoutSeconds < 1 {
		return &ConfigError{Reason: fmt.Sprintf("browser.timeout_seconds must be >= 1, got %d", c.Browser.TimeoutSeconds)}
	}
	if err := validateLogLevel(c.Logging.Level); err != nil {
		return err
	}
	return nil
}

func validateLogLevel(level string) error {
	for _, valid := range validLogLevels {
		if level == valid {
			return nil
		}
	}
	return &ConfigError{Reason: fmt.Sprintf("invalid logging.level: %s (must be one of: %s)", level, strings.Join(validLogLevels, ", "))}
}
