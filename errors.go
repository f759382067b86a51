package embedsql

import (
	"github.com/embedsql/embedsql/internal/core"
	"github.com/embedsql/embedsql/internal/mariadbd"
	"github.com/embedsql/embedsql/internal/process"
)

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrAlreadyRunning is returned by Start when the database is already
	// running. Start is not idempotent; Stop is.
	ErrAlreadyRunning = core.ErrAlreadyRunning

	// ErrProvision is returned by New when the base or data directory
	// cannot be prepared for use.
	ErrProvision = core.ErrProvision

	// ErrInstall is returned by New when the install command that seeds the
	// data directory exits with a nonzero status. The command's output is
	// captured in log files inside the data directory.
	ErrInstall = mariadbd.ErrInstallFailed

	// ErrLaunch is returned by Start when the server process cannot be
	// spawned at all, before any readiness waiting happens.
	ErrLaunch = core.ErrLaunch

	// ErrReadyTimeout is returned by Start when the server never announces
	// readiness on its console within the start timeout.
	ErrReadyTimeout = process.ErrWaitTimeout

	// ErrProcessDied is returned by Start when the server process exits
	// before announcing readiness.
	ErrProcessDied = process.ErrProcessExited
)
