// Package storage provides the persisted key-value store backing chat
// cadence state and planning acknowledgments.
package storage

import (
	"fmt"
	"path/filepath"
)

// Store is a string-keyed value store. Get reports ok=false for a
// missing key and reserves the error for real faults, so callers can
// tell "never written" apart from "store is broken".
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Open builds the store backend selected by configuration. An empty
// name selects sqlite.
func Open(backend, dataDir string) (Store, error) {
	switch backend {
	case "", BackendSQLite:
		return NewSQLiteStore(filepath.Join(dataDir, "hearth.db"))
	case BackendFile:
		return NewFileStore(filepath.Join(dataDir, "store.json"))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
