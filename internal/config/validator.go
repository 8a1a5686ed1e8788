package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

var validBackends = []string{"file", "sqlite"}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks if the settings are valid
func (s *Settings) Validate() error {
	// Validate storage backend
	if !contains(validBackends, s.Storage.Backend) {
		return fmt.Errorf("invalid storage backend %q (must be: file, sqlite)", s.Storage.Backend)
	}

	// Validate log level
	if s.Logging.Level != "" && !contains(validLogLevels, s.Logging.Level) {
		return fmt.Errorf("invalid log level %q (must be: debug, info, warn, error)", s.Logging.Level)
	}

	// Validate auto-flush schedule when enabled
	if s.AutoFlush.Enabled {
		if s.AutoFlush.Schedule == "" {
			return fmt.Errorf("auto-flush schedule is required when auto-flush is enabled")
		}
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(s.AutoFlush.Schedule); err != nil {
			return fmt.Errorf("invalid auto-flush schedule %q: %w", s.AutoFlush.Schedule, err)
		}
	}

	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
