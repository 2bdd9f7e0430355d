// Package session persists the console's bearer token and exposes it to the
// rest of the program through an explicit Session object.
package session

import (
	"errors"
	"fmt"
	"strings"
)

// Storage is a durable string key-value store. Implementations must be safe
// for concurrent use; each operation is atomic on its own.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// Close releases backend resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ErrUnknownBackend is returned by Open for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown session backend")

// Open creates the storage backend named by backend, rooted at path.
func Open(backend, path string) (Storage, error) {
	switch strings.ToLower(backend) {
	case BackendFile, "":
		return NewFileStorage(path)
	case BackendSQLite:
		return NewSQLiteStorage(path)
	case BackendMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// PathOf returns the on-disk location of s, or "" for in-memory storage.
func PathOf(s Storage) string {
	switch st := s.(type) {
	case *FileStorage:
		return st.Path()
	case *SQLiteStorage:
		return st.Path()
	default:
		return ""
	}
}
