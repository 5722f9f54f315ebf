package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/lattice/internal/config"
	"github.com/mesh-intelligence/lattice/internal/logging"
	"github.com/mesh-intelligence/lattice/internal/observe"
	"github.com/mesh-intelligence/lattice/internal/paths"
	"github.com/mesh-intelligence/lattice/internal/sqlite"
	"github.com/mesh-intelligence/lattice/pkg/typesystem"
)

// session is the resolved configuration, logger and attached store shared by
// commands that touch persisted types.
type session struct {
	configDir string
	cfg       config.Config
	logger    *slog.Logger
	store     *sqlite.Backend
}

// loadSession resolves directories and loads config.yaml. The data directory
// follows flag > config file > LATTICE_DATA_DIR > $(CWD)/.lattice-db.
func loadSession(flags *rootFlags) (*session, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, sysError(err)
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, cfg.DataDir)
	if err != nil {
		return nil, sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg.DataDir = dataDir
	return &session{configDir: configDir, cfg: cfg, logger: logging.Setup(cfg)}, nil
}

// openSession loads the session and attaches the type store. The caller must
// call close.
func openSession(flags *rootFlags) (*session, error) {
	s, err := loadSession(flags)
	if err != nil {
		return nil, err
	}
	s.store = sqlite.NewBackend(sqlite.WithLogger(s.logger))
	if err := s.store.Attach(s.cfg); err != nil {
		return nil, sysError(fmt.Errorf("attach store: %w", err))
	}
	return s, nil
}

func (s *session) close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Detach()
}

// typeSystem returns an empty type system wired to the session logger and
// the process metrics.
func (s *session) typeSystem() *typesystem.TypeSystem {
	metrics := observe.DefaultMetrics().WithLogger(s.logger)
	return typesystem.New(
		typesystem.WithLogger(s.logger),
		typesystem.WithObserver(metrics.Observer()),
	)
}

// loadTypeSystem returns a type system holding every stored definition.
func (s *session) loadTypeSystem() (*typesystem.TypeSystem, error) {
	ts := s.typeSystem()
	if _, err := s.store.Restore(ts); err != nil {
		return nil, sysError(err)
	}
	return ts, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
