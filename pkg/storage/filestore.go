package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/renameio/v2"
)

const fileFormatVersion = "1"

// fileContainer is the on-disk layout of a FileStore.
type fileContainer struct {
	Version string         `json:"version"`
	Entries map[string]any `json:"entries"`
}

// FileStore keeps all entries in a single JSON container file. Writes are
// atomic and durable: the container is replaced via a fsynced temp file, so
// a crash never leaves a half-written file behind.
type FileStore struct {
	path       string
	saveOnEdit bool
	readOnly   bool

	mu      sync.RWMutex
	entries map[string]any
	dirty   bool
	closed  bool
}

// OpenFile opens a JSON file store with the given options. It satisfies OpenFunc.
func OpenFile(opts Options) (Store, error) {
	return NewFileStore(opts)
}

// NewFileStore opens or creates a JSON file store at opts.Filepath.
func NewFileStore(opts Options) (*FileStore, error) {
	if opts.Filepath == "" {
		return nil, fmt.Errorf("filepath is required")
	}
	if opts.ReadOnly && opts.Overwrite {
		return nil, fmt.Errorf("cannot overwrite a read-only store")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Filepath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	s := &FileStore{
		path:       opts.Filepath,
		saveOnEdit: opts.SaveOnEdit,
		readOnly:   opts.ReadOnly,
		entries:    make(map[string]any),
	}

	if opts.Overwrite {
		// Drop the previous container now so stale entries never outlive
		// a deferred-save session.
		if err := os.Remove(opts.Filepath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove existing store: %w", err)
		}
		return s, nil
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// load reads the container file if it exists.
func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			if s.readOnly {
				return fmt.Errorf("cannot open read-only store, file does not exist: %s", s.path)
			}
			return nil
		}
		return fmt.Errorf("failed to read store file: %w", err)
	}

	var container fileContainer
	if err := json.Unmarshal(data, &container); err != nil {
		return fmt.Errorf("failed to decode store file %s: %w", s.path, err)
	}
	if container.Entries != nil {
		s.entries = container.Entries
	}
	return nil
}

// Set assigns a value to a key.
func (s *FileStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.readOnly {
		return ErrReadOnly
	}

	s.entries[key] = value
	if s.saveOnEdit {
		return s.save()
	}
	s.dirty = true
	return nil
}

// Update merges values into the store, overwriting per key.
func (s *FileStore) Update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.readOnly {
		return ErrReadOnly
	}

	for key, value := range values {
		s.entries[key] = value
	}
	if s.saveOnEdit {
		return s.save()
	}
	s.dirty = true
	return nil
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	return value, ok
}

// Keys returns all stored keys in lexical order.
func (s *FileStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Save flushes the container to disk.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.readOnly {
		return ErrReadOnly
	}
	return s.save()
}

// save writes the container file. Callers must hold the write lock.
func (s *FileStore) save() error {
	pending, err := renameio.NewPendingFile(s.path)
	if err != nil {
		return fmt.Errorf("failed to create pending store file: %w", err)
	}
	defer func() {
		_ = pending.Cleanup()
	}()

	container := fileContainer{
		Version: fileFormatVersion,
		Entries: s.entries,
	}

	encoder := json.NewEncoder(pending)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(container); err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}

	s.dirty = false
	return nil
}

// SaveOnEdit reports whether the store persists after every mutation.
func (s *FileStore) SaveOnEdit() bool {
	return s.saveOnEdit
}

// Filepath returns the container file location.
func (s *FileStore) Filepath() string {
	return s.path
}

// Dirty reports whether the store holds unsaved edits.
func (s *FileStore) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Close marks the store closed. Unsaved edits are discarded.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Ensure interface compliance at compile time.
var _ Store = (*FileStore)(nil)
