// Package sqlite implements the SQLite storage backend for studiobook.
// SQLite serves as the query engine; kv.jsonl in the data directory is the
// source of truth. The database file is rebuilt from kv.jsonl on every
// Attach and kv.jsonl is rewritten atomically after every mutation.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/studiobook/pkg/types"
)

// File names inside DataDir.
const (
	dbFileName = "studio.db"
	kvJSONL    = "kv.jsonl"
)

// Compile-time interface check: Backend must implement types.Backend.
var _ types.Backend = (*Backend)(nil)

// Backend implements types.Backend using SQLite as the query engine and a
// JSONL file as the source of truth.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      *logrus.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used to report skipped records and persistence
// failures.
func WithLogger(l *logrus.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, creates a fresh SQLite schema, and
// loads kv.jsonl into it.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}
	config.DataDir = dataDir

	// The database is a cache of kv.jsonl; start from an empty file.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("opening sqlite: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return err
	}

	if err := initJSONLFile(filepath.Join(dataDir, kvJSONL)); err != nil {
		db.Close()
		return err
	}

	skipped, err := loadKVJSONL(db, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("load JSONL: %w", err)
	}
	if skipped > 0 {
		b.log.WithFields(logrus.Fields{
			"file":    kvJSONL,
			"skipped": skipped,
		}).Warn("skipped malformed records while loading")
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	return nil
}

// DataDir returns the directory the backend is attached to, or "" when
// detached.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return ""
	}
	return b.config.DataDir
}

// jsonlPath returns the path of kv.jsonl. The caller must hold b.mu.
func (b *Backend) jsonlPath() string {
	return filepath.Join(b.config.DataDir, kvJSONL)
}

// initJSONLFile creates an empty JSONL file if it does not exist.
func initJSONLFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return fmt.Errorf("initializing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
