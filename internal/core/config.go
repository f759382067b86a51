package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"
)

// Config holds the full configuration for one embedded database. Fields are
// populated by the public package's functional options; Validate assumes all
// defaults have already been applied.
type Config struct {
	// BaseDir is where the unpacked distribution lives (bin/, share/, ...).
	BaseDir string
	// DataDir holds the database files. Directories under the system temp
	// root are treated as disposable: wiped on provisioning and purged when
	// the host process terminates.
	DataDir string

	// Port is the TCP port the server listens on. Zero means allocate a
	// free port at Start.
	Port int

	// DistributionDir optionally points at a directory tree of bundled
	// distributions, laid out as <DistributionDir>/<Version>/<platform>.
	// When set, the matching distribution is unpacked into BaseDir before
	// provisioning. When empty, BaseDir must already contain a usable
	// distribution.
	DistributionDir string
	// Version selects the distribution under DistributionDir.
	Version string

	// ServerBinary and InstallBinary override the conventional binary
	// locations under BaseDir/bin. Empty means use the convention.
	ServerBinary  string
	InstallBinary string

	// ReadyLine overrides the console line that signals server readiness.
	// Empty means the mysqld default.
	ReadyLine string

	StartTimeout   time.Duration
	InstallTimeout time.Duration
	StopTimeout    time.Duration
}

// Validate checks the configuration and returns an error describing every
// violation found.
func (c Config) Validate() error {
	var errs []error
	if c.BaseDir == "" {
		errs = append(errs, errors.New("base dir must not be empty"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data dir must not be empty"))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be in 0-65535, got %d", c.Port))
	}
	if c.DistributionDir != "" && c.Version == "" {
		errs = append(errs, errors.New("version must be set when distribution dir is set"))
	}
	if c.StartTimeout <= 0 {
		errs = append(errs, errors.New("start timeout must be positive"))
	}
	if c.InstallTimeout <= 0 {
		errs = append(errs, errors.New("install timeout must be positive"))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, errors.New("stop timeout must be positive"))
	}
	return errors.Join(errs...)
}

// serverBinary returns the configured server binary, falling back to the
// conventional location under BaseDir/bin.
func (c Config) serverBinary() string {
	if c.ServerBinary != "" {
		return c.ServerBinary
	}
	return filepath.Join(c.BaseDir, "bin", exeName("mysqld"))
}

// installBinary returns the configured install binary, falling back to the
// conventional location under BaseDir/bin.
func (c Config) installBinary() string {
	if c.InstallBinary != "" {
		return c.InstallBinary
	}
	return filepath.Join(c.BaseDir, "bin", exeName("mysql_install_db"))
}

func exeName(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
