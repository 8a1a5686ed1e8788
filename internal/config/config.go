package config

import (
	"encoding/json"
)

// Settings represents the main labrec configuration
type Settings struct {
	// Data directory holding experiment subdirectories and the index
	DataDir string `json:"data_dir" mapstructure:"data_dir"`

	// Storage backend behavior
	Storage StorageSettings `json:"storage" mapstructure:"storage"`

	// Logging
	Logging LoggingSettings `json:"logging" mapstructure:"logging"`

	// Periodic flushing of the current acquisition
	AutoFlush AutoFlushSettings `json:"auto_flush" mapstructure:"auto_flush"`

	// Config files snapshotted into every acquisition
	ConfigFiles []string `json:"config_files" mapstructure:"config_files"`
}

// StorageSettings selects and tunes the acquisition container backend
type StorageSettings struct {
	Backend    string `json:"backend" mapstructure:"backend"` // file, sqlite
	SaveOnEdit bool   `json:"save_on_edit" mapstructure:"save_on_edit"`
	SaveFiles  bool   `json:"save_files" mapstructure:"save_files"`
}

// LoggingSettings holds logging configuration
type LoggingSettings struct {
	Level   string `json:"level" mapstructure:"level"`
	File    string `json:"file" mapstructure:"file"`
	Console bool   `json:"console" mapstructure:"console"`
	Pretty  bool   `json:"pretty" mapstructure:"pretty"`
}

// AutoFlushSettings holds the periodic flush schedule
type AutoFlushSettings struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Schedule string `json:"schedule" mapstructure:"schedule"` // five-field cron expression
}

// DefaultSettings returns settings with default values
func DefaultSettings() *Settings {
	return &Settings{
		Storage: StorageSettings{
			Backend:    "file",
			SaveOnEdit: true,
			SaveFiles:  false,
		},
		Logging: LoggingSettings{
			Level:   "info",
			Console: true,
			Pretty:  true,
		},
		AutoFlush: AutoFlushSettings{
			Enabled:  false,
			Schedule: "*/5 * * * *",
		},
		ConfigFiles: []string{},
	}
}

// String returns a JSON representation of the settings
func (s *Settings) String() string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
