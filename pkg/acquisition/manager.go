package acquisition

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/labrec/labrec/pkg/storage"
)

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// DataDir is the root directory for experiment subdirectories and the
	// acquisition index.
	DataDir string

	// SaveOnEdit and SaveFiles are passed through to every new Record.
	SaveOnEdit bool
	SaveFiles  bool

	// Open selects the storage backend. Defaults to storage.OpenFile.
	Open storage.OpenFunc

	// FileExt is the container file extension. Defaults to ".json"; use
	// ".db" with storage.OpenSQLite.
	FileExt string

	Logger zerolog.Logger
}

// Manager creates acquisition records inside a data directory: one
// subdirectory per experiment, timestamped container names, an append-only
// catalog, and a notion of the current acquisition.
type Manager struct {
	dataDir    string
	saveOnEdit bool
	saveFiles  bool
	open       storage.OpenFunc
	fileExt    string
	logger     zerolog.Logger
	manifests  *ManifestLoader

	mu          sync.Mutex
	configPaths []string
	configs     ConfigSet
	cell        string
	current     *Record
	watcher     *ConfigWatcher
	flusher     *cron.Cron
}

// NewManager creates a manager rooted at cfg.DataDir, creating the directory
// if needed.
func NewManager(cfg ManagerConfig) (*Manager, error) {
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	open := cfg.Open
	if open == nil {
		open = storage.OpenFile
	}
	ext := cfg.FileExt
	if ext == "" {
		ext = ".json"
	}

	logger := cfg.Logger.With().Str("component", "acquisition-manager").Logger()

	return &Manager{
		dataDir:    cfg.DataDir,
		saveOnEdit: cfg.SaveOnEdit,
		saveFiles:  cfg.SaveFiles,
		open:       open,
		fileExt:    ext,
		logger:     logger,
		manifests:  NewManifestLoader(logger),
		cell:       CellNone,
	}, nil
}

// validateExperimentName rejects names unsafe to use as directory names.
func validateExperimentName(name string) error {
	if name == "" {
		return fmt.Errorf("experiment name cannot be empty")
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("experiment name cannot contain '..'")
	}
	if strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("experiment name cannot contain path separators")
	}
	if strings.Contains(name, "\x00") {
		return fmt.Errorf("experiment name cannot contain null bytes")
	}
	return nil
}

// SetConfigFiles registers config sources and eagerly reads them; collector
// rules apply (missing file or duplicate basename fails). Registered files
// are picked up by WatchConfigFiles.
func (m *Manager) SetConfigFiles(paths ...string) error {
	configs, err := ReadConfigFiles(paths)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.configPaths = append([]string(nil), paths...)
	m.configs = configs

	if m.watcher != nil {
		for _, path := range paths {
			if err := m.watcher.Watch(path); err != nil {
				return fmt.Errorf("failed to watch config file %s: %w", path, err)
			}
		}
	}
	return nil
}

// SetCell registers the code snapshot for the next acquisition.
func (m *Manager) SetCell(cell string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cell = cell
}

// NewAcquisition creates a record for the named experiment, snapshots the
// registered configs and cell into it, appends a catalog entry, and makes it
// the current acquisition. A previous current record is closed. An invalid
// experiment manifest in the experiment directory fails the call; an absent
// one is fine.
func (m *Manager) NewAcquisition(experiment string) (*Record, error) {
	if err := validateExperimentName(experiment); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Join(m.dataDir, experiment)

	manifestPath := filepath.Join(dir, ManifestFileName)
	if _, err := os.Stat(manifestPath); err == nil {
		if _, err := m.manifests.Load(manifestPath); err != nil {
			return nil, fmt.Errorf("experiment %s: %w", experiment, err)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create experiment directory: %w", err)
	}

	// Random suffix defeats same-second name collisions.
	suffix, err := gonanoid.New(8)
	if err != nil {
		return nil, fmt.Errorf("failed to generate acquisition suffix: %w", err)
	}
	name := time.Now().Format("2006-01-02_15-04-05") + "_" + suffix + "__" + experiment
	path := filepath.Join(dir, name+m.fileExt)

	record, err := New(RecordConfig{
		Filepath:       path,
		Configs:        m.configs,
		Cell:           m.cell,
		Overwrite:      true,
		SaveOnEdit:     m.saveOnEdit,
		SaveFiles:      m.saveFiles,
		ExperimentName: experiment,
		Open:           m.open,
		Logger:         m.logger,
	})
	if err != nil {
		return nil, err
	}

	entry := IndexEntry{
		ID:         uuid.New().String(),
		Experiment: experiment,
		Name:       name,
		Filepath:   path,
		CreatedAt:  time.Now().UTC(),
	}
	if err := appendIndexEntry(m.dataDir, entry); err != nil {
		record.Close()
		return nil, err
	}

	if m.current != nil {
		if err := m.current.Close(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to close previous acquisition")
		}
	}
	m.current = record

	m.logger.Info().
		Str("experiment", experiment).
		Str("filepath", path).
		Msg("Acquisition created")

	return record, nil
}

// Current returns the current acquisition record, or nil before the first
// NewAcquisition.
func (m *Manager) Current() *Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// List returns catalog entries, optionally filtered by experiment.
func (m *Manager) List(experiment string) ([]IndexEntry, error) {
	return ReadIndex(m.dataDir, experiment)
}

// WatchConfigFiles starts refreshing cached config snapshots when registered
// files change on disk, so the next acquisition snapshots fresh content.
func (m *Manager) WatchConfigFiles() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watcher != nil {
		return nil
	}

	watcher, err := NewConfigWatcher(m.logger, m.refreshConfig)
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	for _, path := range m.configPaths {
		if err := watcher.Watch(path); err != nil {
			watcher.Stop()
			return fmt.Errorf("failed to watch config file %s: %w", path, err)
		}
	}
	m.watcher = watcher
	return nil
}

// refreshConfig re-reads one changed config file into the cached set.
func (m *Manager) refreshConfig(path string) {
	name := filepath.Base(path)

	content, err := ReadFile(path)
	if err != nil {
		m.logger.Warn().Err(err).Str("config", name).Msg("Failed to refresh config file")
		return
	}

	m.mu.Lock()
	if m.configs == nil {
		m.configs = make(ConfigSet)
	}
	m.configs[name] = content
	m.mu.Unlock()

	m.logger.Info().Str("config", name).Msg("Config snapshot refreshed")
}

// EnableAutoFlush schedules a periodic Save of the current record. Only
// useful with deferred saves; the expression uses the standard five-field
// cron format and is validated up front.
func (m *Manager) EnableAutoFlush(expr string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.flusher != nil {
		return fmt.Errorf("auto-flush already enabled")
	}

	c := cron.New()
	if _, err := c.AddFunc(expr, m.flushCurrent); err != nil {
		return fmt.Errorf("failed to schedule auto-flush: %w", err)
	}
	c.Start()
	m.flusher = c

	m.logger.Info().Str("schedule", expr).Msg("Auto-flush enabled")
	return nil
}

// flushCurrent saves the current record if one exists and defers saves.
func (m *Manager) flushCurrent() {
	m.mu.Lock()
	record := m.current
	m.mu.Unlock()

	if record == nil || record.Store().SaveOnEdit() {
		return
	}
	if err := record.Store().Save(); err != nil {
		m.logger.Error().Err(err).Msg("Auto-flush failed")
	}
}

// Close stops the watcher and the auto-flush schedule and closes the current
// record.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.flusher != nil {
		m.flusher.Stop()
		m.flusher = nil
	}
	if m.watcher != nil {
		if err := m.watcher.Stop(); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to stop config watcher")
		}
		m.watcher = nil
	}
	if m.current != nil {
		err := m.current.Close()
		m.current = nil
		return err
	}
	return nil
}
