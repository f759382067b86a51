package embedsql

import (
	"fmt"
	"time"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("embedsql: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("embedsql: %s must not be empty", name))
	}
}

// Option configures a database during construction via New. Each With*
// function returns an Option that sets a specific field.
//
// Several With* functions panic on invalid input (empty paths, out-of-range
// ports, non-positive durations). These panics are intentional: option values
// are typically compile-time constants or package-level variables, so an
// invalid value indicates a programmer error rather than a runtime condition.
// The pattern mirrors [regexp.MustCompile]: fail fast during initialization
// instead of returning errors that would be universally fatal anyway.
type Option func(*config)

// WithBaseDir sets the directory the distribution is unpacked into (or, when
// no distribution is configured, the directory that already contains one).
// Panics if dir is empty.
func WithBaseDir(dir string) Option {
	requireNonEmpty("base directory", dir)
	return func(c *config) {
		c.BaseDir = dir
	}
}

// WithDataDir sets the database's data directory. A directory under the
// system temp root is treated as disposable: wiped on creation and purged
// when the host process terminates. A directory anywhere else is preserved.
// Panics if dir is empty.
func WithDataDir(dir string) Option {
	requireNonEmpty("data directory", dir)
	return func(c *config) {
		c.DataDir = dir
	}
}

// WithPort sets the TCP port the server listens on. A value of 0 means
// allocate a free port at Start; read the result from DB.Port.
//
// Default: 3306.
//
// Panics if port is negative or above 65535.
func WithPort(port int) Option {
	if port < 0 || port > 65535 {
		panic(fmt.Sprintf("embedsql: port must be in 0-65535, got %d", port))
	}
	return func(c *config) {
		c.Port = port
	}
}

// WithDistribution points at a directory tree of bundled distributions, laid
// out as <dir>/<version>/<platform>, and selects the version to unpack into
// the base directory. Unpacking is skipped when the base directory already
// holds the same version.
// Panics if dir or version is empty.
func WithDistribution(dir, version string) Option {
	requireNonEmpty("distribution directory", dir)
	requireNonEmpty("distribution version", version)
	return func(c *config) {
		c.DistributionDir = dir
		c.Version = version
	}
}

// WithServerBinary overrides the server binary location. The default is the
// conventional bin/mysqld under the base directory.
// Panics if binPath is empty.
func WithServerBinary(binPath string) Option {
	requireNonEmpty("server binary path", binPath)
	return func(c *config) {
		c.ServerBinary = binPath
	}
}

// WithInstallBinary overrides the install binary location. The default is
// the conventional bin/mysql_install_db under the base directory.
// Panics if binPath is empty.
func WithInstallBinary(binPath string) Option {
	requireNonEmpty("install binary path", binPath)
	return func(c *config) {
		c.InstallBinary = binPath
	}
}

// WithReadyLine overrides the console line that signals server readiness.
// The match is a verbatim, case-sensitive substring match per console line.
//
// Default: DefaultReadyLine.
//
// Panics if line is empty.
func WithReadyLine(line string) Option {
	requireNonEmpty("ready line", line)
	return func(c *config) {
		c.ReadyLine = line
	}
}

// WithStartTimeout sets the maximum time Start waits for the server to
// announce readiness.
//
// Default: 30 seconds.
//
// Panics if d <= 0.
func WithStartTimeout(d time.Duration) Option {
	requirePositive("start timeout", d)
	return func(c *config) {
		c.StartTimeout = d
	}
}

// WithInstallTimeout bounds the install command that seeds a fresh data
// directory during New.
//
// Default: 2 minutes.
//
// Panics if d <= 0.
func WithInstallTimeout(d time.Duration) Option {
	requirePositive("install timeout", d)
	return func(c *config) {
		c.InstallTimeout = d
	}
}

// WithStopTimeout sets the maximum time Stop waits for a graceful shutdown
// before the server is killed.
//
// Default: 10 seconds.
//
// Panics if d <= 0.
func WithStopTimeout(d time.Duration) Option {
	requirePositive("stop timeout", d)
	return func(c *config) {
		c.StopTimeout = d
	}
}
