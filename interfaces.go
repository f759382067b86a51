package embedsql

import "context"

// DB is one embedded database server. A DB is created installed but not
// running; Start launches the server and Stop terminates it. The pair may be
// called repeatedly to restart the same database.
type DB interface {
	// Start launches the server process and blocks until it is ready for
	// connections or the start timeout passes.
	//
	// Returns ErrAlreadyRunning if the database is already running.
	// Returns an error wrapping ErrReadyTimeout when the server never
	// announces readiness, and one wrapping ErrProcessDied when the server
	// exits during startup.
	Start(ctx context.Context) error

	// Stop terminates the server process. Stop is idempotent: stopping a
	// database that is not running returns nil, and concurrent callers are
	// safe. Stopping does not remove the data directory; disposable data
	// dirs are purged when the host process terminates.
	Stop() error

	// Port returns the effective listen port. While running this is the
	// real port, which differs from the configured one when WithPort(0)
	// requested auto-allocation.
	Port() int

	// DataDir returns the database's data directory.
	DataDir() string

	// BaseDir returns the unpacked distribution's base directory.
	BaseDir() string

	// IsRunning reports whether the server process is currently running.
	IsRunning() bool

	// ID returns a unique identifier for this database.
	ID() string
}
