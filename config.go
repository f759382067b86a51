package embedsql

import (
	"os"
	"path/filepath"

	"github.com/embedsql/embedsql/internal/core"
)

// config wraps core.Config so option functions stay decoupled from the
// internal package's field layout.
type config struct {
	core.Config
}

// toCoreConfig returns the underlying core configuration.
func (c config) toCoreConfig() core.Config {
	return c.Config
}

// defaultConfig returns a config populated with all default values.
func defaultConfig() config {
	return config{core.Config{
		BaseDir:        filepath.Join(os.TempDir(), DefaultBaseDirName),
		DataDir:        filepath.Join(os.TempDir(), DefaultDataDirName),
		Port:           DefaultPort,
		ReadyLine:      DefaultReadyLine,
		StartTimeout:   DefaultStartTimeout,
		InstallTimeout: DefaultInstallTimeout,
		StopTimeout:    DefaultStopTimeout,
	}}
}
