package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps entries in a single-table SQLite database. Values are
// JSON-encoded, so anything the FileStore accepts round-trips here too.
type SQLiteStore struct {
	db         *sql.DB
	path       string
	saveOnEdit bool
	readOnly   bool

	mu      sync.RWMutex
	entries map[string]any
	pending map[string]any
	closed  bool
}

// OpenSQLite opens a SQLite store with the given options. It satisfies OpenFunc.
func OpenSQLite(opts Options) (Store, error) {
	return NewSQLiteStore(opts)
}

// NewSQLiteStore opens or creates a SQLite store at opts.Filepath.
func NewSQLiteStore(opts Options) (*SQLiteStore, error) {
	if opts.Filepath == "" {
		return nil, fmt.Errorf("filepath is required")
	}
	if opts.ReadOnly && opts.Overwrite {
		return nil, fmt.Errorf("cannot overwrite a read-only store")
	}

	if err := os.MkdirAll(filepath.Dir(opts.Filepath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	if opts.Overwrite {
		// Remove the database and its WAL siblings so no stale pages survive.
		for _, suffix := range []string{"", "-wal", "-shm"} {
			if err := os.Remove(opts.Filepath + suffix); err != nil && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to remove existing store: %w", err)
			}
		}
	}

	if opts.ReadOnly {
		if _, err := os.Stat(opts.Filepath); err != nil {
			return nil, fmt.Errorf("cannot open read-only store, file does not exist: %s", opts.Filepath)
		}
	}

	db, err := sql.Open("sqlite3", opts.Filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode keeps readers unblocked during flushes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:         db,
		path:       opts.Filepath,
		saveOnEdit: opts.SaveOnEdit,
		readOnly:   opts.ReadOnly,
		entries:    make(map[string]any),
		pending:    make(map[string]any),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	return err
}

// load reads all rows into the in-memory view.
func (s *SQLiteStore) load() error {
	rows, err := s.db.Query("SELECT key, value FROM entries")
	if err != nil {
		return fmt.Errorf("failed to read entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return fmt.Errorf("failed to scan entry: %w", err)
		}
		var value any
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("failed to decode entry %q: %w", key, err)
		}
		s.entries[key] = value
	}
	return rows.Err()
}

// Set assigns a value to a key.
func (s *SQLiteStore) Set(key string, value any) error {
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
		return s.upsert(map[string]any{key: value})
	}
	s.pending[key] = value
	return nil
}

// Update merges values into the store, overwriting per key.
func (s *SQLiteStore) Update(values map[string]any) error {
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
		return s.upsert(values)
	}
	for key, value := range values {
		s.pending[key] = value
	}
	return nil
}

// Get returns the value stored under key.
func (s *SQLiteStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	return value, ok
}

// Keys returns all stored keys in lexical order.
func (s *SQLiteStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Save flushes all buffered edits in a single transaction.
func (s *SQLiteStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.readOnly {
		return ErrReadOnly
	}
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.upsert(s.pending); err != nil {
		return err
	}
	s.pending = make(map[string]any)
	return nil
}

// upsert writes the given entries inside one transaction. Callers must hold
// the write lock.
func (s *SQLiteStore) upsert(values map[string]any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO entries (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode entry %q: %w", key, err)
		}
		if _, err := stmt.Exec(key, string(raw)); err != nil {
			return fmt.Errorf("failed to write entry %q: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit entries: %w", err)
	}
	return nil
}

// SaveOnEdit reports whether the store persists after every mutation.
func (s *SQLiteStore) SaveOnEdit() bool {
	return s.saveOnEdit
}

// Filepath returns the database file location.
func (s *SQLiteStore) Filepath() string {
	return s.path
}

// Close closes the database. Buffered edits are discarded.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Ensure interface compliance at compile time.
var _ Store = (*SQLiteStore)(nil)
