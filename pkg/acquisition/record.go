package acquisition

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/labrec/labrec/pkg/storage"
)

// CellNone marks a cell snapshot as intentionally absent. It is never
// persisted and never logged as a problem.
const CellNone = "none"

// Storage keys used by Record.
const (
	keyConfigs = "configs"
	keyCell    = "acquisition_cell"
	keyUseful  = "useful"
)

// Record is the persistent container for one acquisition session: config
// snapshots, the producing code cell, and free-form named results.
type Record struct {
	store          storage.Store
	configs        ConfigSet
	cell           string
	useful         bool
	saveFiles      bool
	experimentName string
	logger         zerolog.Logger
}

// RecordConfig configures a new Record.
type RecordConfig struct {
	// Filepath locates the backing container. Ignored when Store is set.
	Filepath string

	// Configs holds pre-read config snapshots. Mutually exclusive with
	// ConfigPaths.
	Configs ConfigSet

	// ConfigPaths is resolved through ReadConfigFiles; a missing file or a
	// duplicate basename fails construction.
	ConfigPaths []string

	// Cell is the code snapshot. Defaults to CellNone when empty.
	Cell string

	Overwrite  bool
	SaveOnEdit bool

	// SaveFiles mirrors configs and the cell to plain files next to the
	// container.
	SaveFiles bool

	// ExperimentName is an opaque passthrough label.
	ExperimentName string

	// Store overrides opening a backend at Filepath.
	Store storage.Store

	// Open selects the backend opened at Filepath. Defaults to
	// storage.OpenFile.
	Open storage.OpenFunc

	Logger zerolog.Logger
}

// New opens the backing store and immediately persists the configs and cell
// snapshot it was given, initializing the useful flag to false.
func New(cfg RecordConfig) (*Record, error) {
	if cfg.Configs != nil && len(cfg.ConfigPaths) > 0 {
		return nil, fmt.Errorf("configs and config paths are mutually exclusive")
	}

	configs := cfg.Configs
	if len(cfg.ConfigPaths) > 0 {
		read, err := ReadConfigFiles(cfg.ConfigPaths)
		if err != nil {
			return nil, fmt.Errorf("failed to collect config files: %w", err)
		}
		configs = read
	}

	cell := cfg.Cell
	if cell == "" {
		cell = CellNone
	}

	store := cfg.Store
	if store == nil {
		open := cfg.Open
		if open == nil {
			open = storage.OpenFile
		}
		var err error
		store, err = open(storage.Options{
			Filepath:   cfg.Filepath,
			Overwrite:  cfg.Overwrite,
			SaveOnEdit: cfg.SaveOnEdit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open acquisition store: %w", err)
		}
	}

	r := &Record{
		store:          store,
		configs:        configs,
		cell:           cell,
		saveFiles:      cfg.SaveFiles,
		experimentName: cfg.ExperimentName,
		logger:         cfg.Logger.With().Str("component", "acquisition").Logger(),
	}

	if err := r.store.Set(keyUseful, false); err != nil {
		return nil, fmt.Errorf("failed to initialize useful flag: %w", err)
	}
	if err := r.SaveConfigs(nil, ""); err != nil {
		return nil, err
	}
	if err := r.SaveCell(cell, ""); err != nil {
		return nil, err
	}
	return r, nil
}

// Filepath returns the location of the backing container.
func (r *Record) Filepath() string {
	return r.store.Filepath()
}

// ExperimentName returns the opaque experiment label.
func (r *Record) ExperimentName() string {
	return r.experimentName
}

// Useful reports whether additional info has been saved for this record.
func (r *Record) Useful() bool {
	return r.useful
}

// Store exposes the backing store for read access.
func (r *Record) Store() storage.Store {
	return r.store
}

// sidePrefix derives the side-file prefix from an override or the container
// path with its extension trimmed.
func (r *Record) sidePrefix(override string) string {
	if override != "" {
		return override
	}
	path := r.store.Filepath()
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// SaveConfigs persists the given config set under the "configs" key, falling
// back to the stored set when configs is nil. An ultimately absent set is a
// no-op. With side files enabled, every entry is mirrored to
// `<prefix>_<name>`, overwriting without backup.
func (r *Record) SaveConfigs(configs ConfigSet, pathPrefix string) error {
	if configs == nil {
		configs = r.configs
	}
	if len(configs) == 0 {
		return nil
	}
	r.configs = configs

	if err := r.store.Set(keyConfigs, configs); err != nil {
		return fmt.Errorf("failed to persist configs: %w", err)
	}

	if r.saveFiles {
		prefix := r.sidePrefix(pathPrefix)
		for name, content := range configs {
			sidePath := prefix + "_" + name
			if err := os.WriteFile(sidePath, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write config side file %s: %w", sidePath, err)
			}
		}
	}
	return nil
}

// SaveCell persists the given cell snapshot under the "acquisition_cell" key
// and updates the stored copy. CellNone is a silent no-op; an empty cell logs
// a warning and is skipped. With side files enabled, the cell is mirrored to
// `<prefix>_CELL.py`.
func (r *Record) SaveCell(cell string, pathPrefix string) error {
	if cell == CellNone {
		return nil
	}
	if cell == "" {
		r.logger.Warn().Msg("Cell content is empty, nothing to save")
		return nil
	}
	r.cell = cell

	if err := r.store.Set(keyCell, cell); err != nil {
		return fmt.Errorf("failed to persist cell: %w", err)
	}

	if r.saveFiles {
		sidePath := r.sidePrefix(pathPrefix) + "_CELL.py"
		if err := os.WriteFile(sidePath, []byte(cell), 0o644); err != nil {
			return fmt.Errorf("failed to write cell side file %s: %w", sidePath, err)
		}
	}
	return nil
}

// SaveAdditionalInfo marks the record useful and, with side files enabled,
// rewrites the stored cell and configs. Rewrites are idempotent.
func (r *Record) SaveAdditionalInfo() error {
	r.useful = true
	if err := r.store.Set(keyUseful, true); err != nil {
		return fmt.Errorf("failed to persist useful flag: %w", err)
	}

	if r.saveFiles {
		if err := r.SaveCell(r.cell, ""); err != nil {
			return err
		}
		if err := r.SaveConfigs(nil, ""); err != nil {
			return err
		}
	}
	return nil
}

// SaveAcquisition merges the given named values into the store, marks the
// record useful, and flushes once when the store defers saves. It returns the
// record for chaining.
func (r *Record) SaveAcquisition(values map[string]any) (*Record, error) {
	if len(values) > 0 {
		if err := r.store.Update(values); err != nil {
			return r, fmt.Errorf("failed to persist acquisition values: %w", err)
		}
	}
	if err := r.SaveAdditionalInfo(); err != nil {
		return r, err
	}
	if !r.store.SaveOnEdit() {
		if err := r.store.Save(); err != nil {
			return r, fmt.Errorf("failed to flush acquisition store: %w", err)
		}
	}
	return r, nil
}

// Close releases the backing store.
func (r *Record) Close() error {
	return r.store.Close()
}
