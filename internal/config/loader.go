package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Loader handles settings loading
type Loader struct {
	settingsPath string
}

// NewLoader creates a new settings loader
func NewLoader(settingsPath string) *Loader {
	return &Loader{
		settingsPath: settingsPath,
	}
}

// defaultSettingsPath returns $HOME/.labrec/labrec.json
func defaultSettingsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".labrec", "labrec.json"), nil
}

// Load loads the settings from file
func (l *Loader) Load() (*Settings, error) {
	// Determine settings path
	settingsPath := l.settingsPath
	if settingsPath == "" {
		path, err := defaultSettingsPath()
		if err != nil {
			return nil, err
		}
		settingsPath = path
	}

	settings := DefaultSettings()

	// Read the file when it exists; defaults plus environment otherwise
	if _, err := os.Stat(settingsPath); err == nil {
		v := viper.New()
		v.SetConfigFile(settingsPath)
		v.SetConfigType("json")

		// Read environment variables
		v.SetEnvPrefix("LABREC")
		v.AutomaticEnv()

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
		if err := v.Unmarshal(settings); err != nil {
			return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
		}
	}

	// Set data directory if not specified
	if settings.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		settings.DataDir = filepath.Join(home, ".labrec", "data")
	}

	// Set logging file path if not specified
	if settings.Logging.File == "" {
		settings.Logging.File = filepath.Join(settings.DataDir, "labrec.log")
	}

	return settings, nil
}

// Save saves the settings to file
func (l *Loader) Save(settings *Settings) error {
	settingsPath := l.settingsPath
	if settingsPath == "" {
		path, err := defaultSettingsPath()
		if err != nil {
			return err
		}
		settingsPath = path
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(settingsPath), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(settingsPath)
	v.SetConfigType("json")

	v.Set("data_dir", settings.DataDir)
	v.Set("storage", settings.Storage)
	v.Set("logging", settings.Logging)
	v.Set("auto_flush", settings.AutoFlush)
	v.Set("config_files", settings.ConfigFiles)

	if err := v.WriteConfig(); err != nil {
		if os.IsNotExist(err) {
			if err := v.SafeWriteConfig(); err != nil {
				return fmt.Errorf("failed to write settings file: %w", err)
			}
		} else {
			return fmt.Errorf("failed to write settings file: %w", err)
		}
	}
	return nil
}

// GetSettingsPath returns the settings file path
func (l *Loader) GetSettingsPath() string {
	if l.settingsPath != "" {
		return l.settingsPath
	}
	path, err := defaultSettingsPath()
	if err != nil {
		return ""
	}
	return path
}

// Load is a convenience function that creates a loader and loads the settings
func Load(settingsPath string) (*Settings, error) {
	loader := NewLoader(settingsPath)
	return loader.Load()
}
