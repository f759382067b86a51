package core

import "github.com/embedsql/embedsql/internal/sentinel"

// ErrProvision is returned when the base or data directory cannot be
// prepared for use.
const ErrProvision = sentinel.Error("directory provisioning failed")

// ErrLaunch is returned when the server process cannot be spawned at all,
// before any readiness waiting happens.
const ErrLaunch = sentinel.Error("server launch failed")

// ErrAlreadyRunning is returned by Start when the database is already
// running. Start is not idempotent; Stop is.
const ErrAlreadyRunning = sentinel.Error("database already running")
