package core

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/embedsql/embedsql/internal/fileutil"
)

// prepareDirectories readies the base and data directories for a fresh
// database. A data directory under the system temp root is disposable state
// from a previous run and is wiped first; a data directory anywhere else is
// user-owned and left in place.
func prepareDirectories(cfg Config, log *slog.Logger) error {
	if fileutil.IsUnderTempRoot(cfg.DataDir) {
		log.Debug("wiping temp data dir", "path", cfg.DataDir)
		if err := os.RemoveAll(cfg.DataDir); err != nil {
			return fmt.Errorf("%w: wipe temp data dir: %w", ErrProvision, err)
		}
	}
	if err := fileutil.EnsureDir(cfg.BaseDir); err != nil {
		return fmt.Errorf("%w: create base dir: %w", ErrProvision, err)
	}
	if err := fileutil.EnsureDir(cfg.DataDir); err != nil {
		return fmt.Errorf("%w: create data dir: %w", ErrProvision, err)
	}
	return nil
}
