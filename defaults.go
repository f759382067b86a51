package embedsql

import "time"

// Default configuration values for New. These constants are exported so
// callers can reference the defaults when building custom configurations
// relative to them (e.g., 2 * DefaultStartTimeout).
const (
	// DefaultPort is the TCP port the server listens on. Use WithPort(0)
	// to auto-allocate a free port instead.
	DefaultPort = 3306

	// DefaultBaseDirName is the directory name under the system temp
	// directory where the distribution is unpacked. The full path is
	// computed as filepath.Join(os.TempDir(), DefaultBaseDirName).
	DefaultBaseDirName = "embedsql/base"

	// DefaultDataDirName is the directory name under the system temp
	// directory where the database files live. A data directory under the
	// temp root is disposable: wiped on creation and purged at host exit.
	DefaultDataDirName = "embedsql/data"

	// DefaultReadyLine is the console line mysqld prints once it accepts
	// connections. Readiness is detected by a verbatim, case-sensitive
	// substring match against each console line.
	DefaultReadyLine = "mysqld: ready for connections."

	// DefaultStartTimeout is the maximum time allowed for the server to
	// start and announce readiness on its console.
	DefaultStartTimeout = 30 * time.Second

	// DefaultInstallTimeout bounds the one-shot install command that seeds
	// a fresh data directory.
	DefaultInstallTimeout = 2 * time.Minute

	// DefaultStopTimeout is the maximum time allowed for the server to stop
	// gracefully before it is killed.
	DefaultStopTimeout = 10 * time.Second
)
