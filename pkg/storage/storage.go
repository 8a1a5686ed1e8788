package storage

import "errors"

var (
	// ErrReadOnly is returned when a mutation reaches a read-only store.
	ErrReadOnly = errors.New("store is read-only")

	// ErrClosed is returned when a store is used after Close.
	ErrClosed = errors.New("store is closed")
)

// Options holds the construction parameters shared by every store backend.
type Options struct {
	Filepath   string // location of the backing container
	Overwrite  bool   // discard any existing container at Filepath
	SaveOnEdit bool   // persist after every mutation instead of on explicit Save
	ReadOnly   bool   // reject all mutations
}

// Store is keyed read/write access to a persistent container. Acquisition
// records depend on this interface only, never on a concrete backend.
type Store interface {
	// Set assigns a value to a key, overwriting any previous value.
	Set(key string, value any) error

	// Get returns the value stored under key, and whether it exists.
	Get(key string) (any, bool)

	// Keys returns all stored keys in lexical order.
	Keys() []string

	// Update merges the given values into the store, overwriting per key.
	Update(values map[string]any) error

	// Save flushes unsaved edits to the backing container. It is a no-op
	// for stores that persist on every edit.
	Save() error

	// SaveOnEdit reports whether the store persists after every mutation.
	SaveOnEdit() bool

	// Filepath returns the location of the backing container.
	Filepath() string

	// Close releases the store. It does not flush unsaved edits.
	Close() error
}

// OpenFunc opens a store backend for the given options. Both OpenFile and
// OpenSQLite satisfy it, as can test doubles.
type OpenFunc func(Options) (Store, error)
