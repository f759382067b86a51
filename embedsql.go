package embedsql

import (
	"context"

	"github.com/embedsql/embedsql/internal/core"
)

// Compile-time interface satisfaction check.
var _ DB = (*dbWrapper)(nil)

// dbWrapper wraps core.DB to implement the DB interface.
//
// The core.DB is stored as a named (unexported) field rather than embedded
// to prevent callers from using type assertions to reach internal methods
// that are not part of the public DB interface.
type dbWrapper struct {
	db *core.DB
}

// New creates an embedded database and prepares it for Start: the bundled
// distribution is unpacked if one is configured via WithDistribution, the
// base and data directories are provisioned, and the install command seeds
// the data directory. New does not launch the server.
//
// Each call produces an independent database; run several side by side with
// distinct data directories and WithPort(0).
//
// Panics if any option receives an invalid value. See individual With*
// functions for constraints.
//
//nolint:ireturn // Returns DB interface by design for testability (mockable).
func New(ctx context.Context, opts ...Option) (DB, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := core.NewDB(ctx, cfg.toCoreConfig())
	if err != nil {
		return nil, err
	}
	return &dbWrapper{db: db}, nil
}

// Start wraps core.DB.Start.
func (w *dbWrapper) Start(ctx context.Context) error {
	return w.db.Start(ctx)
}

// Stop wraps core.DB.Stop.
func (w *dbWrapper) Stop() error {
	return w.db.Stop()
}

// Port wraps core.DB.Port.
func (w *dbWrapper) Port() int {
	return w.db.Port()
}

// DataDir wraps core.DB.DataDir.
func (w *dbWrapper) DataDir() string {
	return w.db.DataDir()
}

// BaseDir wraps core.DB.BaseDir.
func (w *dbWrapper) BaseDir() string {
	return w.db.BaseDir()
}

// IsRunning wraps core.DB.IsRunning.
func (w *dbWrapper) IsRunning() bool {
	return w.db.IsRunning()
}

// ID wraps core.DB.ID.
func (w *dbWrapper) ID() string {
	return w.db.ID()
}
