package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/lattice/internal/config"
	"github.com/mesh-intelligence/lattice/internal/paths"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize lattice storage",
		Long:  "Create configuration and data directories, then initialize the type store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}
}

func runInit(cmd *cobra.Command, flags *rootFlags) error {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}

	// A --data-dir given at init time is recorded in the new config.yaml.
	seed := config.Default()
	if flags.dataDir != "" {
		abs, err := filepath.Abs(flags.dataDir)
		if err != nil {
			return sysError(fmt.Errorf("resolve data dir: %w", err))
		}
		seed.DataDir = abs
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return sysError(fmt.Errorf("create config directory: %w", err))
	}
	if err := config.WriteIfMissing(configDir, seed); err != nil {
		return sysError(fmt.Errorf("write config: %w", err))
	}

	s, err := openSession(flags)
	if err != nil {
		return err
	}
	if err := s.close(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	if flags.jsonMode {
		return writeJSON(cmd.OutOrStdout(), map[string]string{
			"config_dir": s.configDir,
			"data_dir":   s.cfg.DataDir,
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Lattice initialized\nconfig: %s\ndata:   %s\n", s.configDir, s.cfg.DataDir)
	return nil
}
