// Package sqlite persists type definitions. JSONL files in the data
// directory are the source of truth; SQLite is the query engine rebuilt from
// them on every Attach.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/lattice/internal/config"
)

// Backend lifecycle errors.
var (
	ErrAlreadyAttached = errors.New("sqlite: backend already attached")
	ErrDetached        = errors.New("sqlite: backend detached")
	ErrNotFound        = errors.New("sqlite: type not stored")
	ErrKindNotStored   = errors.New("sqlite: kind is not stored")
)

// dbFileName is the SQLite database file inside the data directory.
const dbFileName = "lattice.db"

// Backend stores type definitions in SQLite with JSONL persistence.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   config.Config
	db       *sql.DB
	logger   *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach initializes the backend with the given configuration. It creates
// DataDir if needed, builds a fresh SQLite database from the schema, creates
// missing JSONL files and loads them.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(cfg config.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return ErrAlreadyAttached
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("sqlite: create data dir: %w", err)
	}

	// The database is derived state; start from an empty file.
	dbPath := filepath.Join(dataDir, dbFileName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("sqlite: open: %w", err)
	}
	if _, err := db.Exec(strings.Join(append(append([]string{}, schemaDDL...), indexDDL...), "\n")); err != nil {
		db.Close()
		return fmt.Errorf("sqlite: schema: %w", err)
	}

	if err := initJSONLFiles(dataDir); err != nil {
		db.Close()
		return fmt.Errorf("sqlite: %w", err)
	}
	skipped, err := loadAllJSONL(context.Background(), db, dataDir)
	if err != nil {
		db.Close()
		return fmt.Errorf("sqlite: load JSONL: %w", err)
	}
	if skipped > 0 {
		b.logger.Warn("skipped unreadable type records", "data_dir", dataDir, "count", skipped)
	}

	cfg.DataDir = dataDir
	b.db = db
	b.config = cfg
	b.attached = true
	b.logger.Debug("type store attached", "data_dir", dataDir)
	return nil
}

// Detach releases the SQLite connection. After Detach, all operations return
// ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("sqlite: close: %w", err)
		}
		b.db = nil
	}
	b.attached = false
	return nil
}

// DataDir returns the directory of the attached store.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}
