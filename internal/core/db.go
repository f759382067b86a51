package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/embedsql/embedsql/internal/dist"
	"github.com/embedsql/embedsql/internal/exitguard"
	"github.com/embedsql/embedsql/internal/fileutil"
	"github.com/embedsql/embedsql/internal/mariadbd"
	"github.com/embedsql/embedsql/internal/netutil"
)

// dbState tracks where a DB is in its lifecycle. Transitions only move
// forward except for running -> stopped -> running across restarts, and any
// state may transition to failed.
type dbState int

const (
	stateProvisioned dbState = iota
	stateInstalled
	stateRunning
	stateStopped
	stateFailed
)

func (s dbState) String() string {
	switch s {
	case stateProvisioned:
		return "provisioned"
	case stateInstalled:
		return "installed"
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	case stateFailed:
		return "failed"
	default:
		return fmt.Sprintf("dbState(%d)", int(s))
	}
}

// ports is the process-wide port registry shared by all DB values, so two
// databases started concurrently in one process never race for the same
// auto-allocated port.
var ports = netutil.NewPortRegistry(Logger())

// DB is one embedded database: a provisioned directory pair plus an optional
// running server process.
//
// Synchronization strategy: mu guards state, server, and port across
// Start/Stop. Holding mu for the full duration of Start (including the
// readiness wait) means a concurrent Stop blocks until startup settles, and
// two concurrent Stops serialize so exactly one of them signals the process.
type DB struct {
	cfg Config
	id  string
	log *slog.Logger

	mu     sync.Mutex
	state  dbState
	server *mariadbd.Process
	// port is the effective listen port while running. Differs from cfg.Port
	// when cfg.Port is zero (auto-allocation).
	port int
	// portAllocated records whether port came from the registry and must be
	// released on stop.
	portAllocated bool
}

// NewDB prepares a database up to the installed state: unpack the bundled
// distribution if one is configured, provision the directories, and run the
// install command to seed the data directory. The returned DB is ready for
// Start. NewDB does not launch the server.
func NewDB(ctx context.Context, cfg Config) (*DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db := &DB{
		cfg:   cfg,
		id:    uuid.NewString(),
		state: stateProvisioned,
	}
	db.log = Logger().With("id", db.id, "datadir", cfg.DataDir)

	if cfg.DistributionDir != "" {
		if err := dist.Unpack(ctx, dist.Config{
			SourceDir: cfg.DistributionDir,
			Version:   cfg.Version,
			BaseDir:   cfg.BaseDir,
			Logger:    db.log,
		}); err != nil {
			return nil, fmt.Errorf("unpack distribution: %w", err)
		}
	}

	if err := prepareDirectories(cfg, db.log); err != nil {
		return nil, err
	}

	db.log.Debug("seeding data dir", "binary", cfg.installBinary())
	if err := mariadbd.RunInstall(ctx, mariadbd.InstallConfig{
		Binary:  cfg.installBinary(),
		BaseDir: cfg.BaseDir,
		DataDir: cfg.DataDir,
		Timeout: cfg.InstallTimeout,
		Logger:  db.log,
	}); err != nil {
		db.state = stateFailed
		return nil, err
	}
	db.state = stateInstalled

	return db, nil
}

// Start launches the server process and blocks until it is ready for
// connections or the start timeout passes. Returns ErrAlreadyRunning when
// the database is already running. On readiness failure the process is
// stopped and the error describes why readiness was never observed.
func (db *DB) Start(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.state == stateRunning {
		return ErrAlreadyRunning
	}

	port := db.cfg.Port
	allocated := false
	if port == 0 {
		p, err := ports.Allocate()
		if err != nil {
			return fmt.Errorf("allocate server port: %w", err)
		}
		port = p
		allocated = true
	}
	releasePort := func() {
		if allocated {
			ports.Release(port)
		}
	}

	srv, err := mariadbd.New(mariadbd.Config{
		Binary:      db.cfg.serverBinary(),
		BaseDir:     db.cfg.BaseDir,
		DataDir:     db.cfg.DataDir,
		Port:        port,
		ReadyLine:   db.cfg.ReadyLine,
		StopTimeout: db.cfg.StopTimeout,
		Logger:      db.log,
	})
	if err != nil {
		releasePort()
		return fmt.Errorf("configure server: %w", err)
	}

	db.log.Debug("starting server", "port", port)
	startTime := time.Now()
	if err := srv.Start(ctx); err != nil {
		releasePort()
		db.state = stateFailed
		return fmt.Errorf("%w: %w", ErrLaunch, err)
	}

	if err := srv.WaitReady(ctx, db.cfg.StartTimeout); err != nil {
		if stopErr := srv.Stop(db.cfg.StopTimeout); stopErr != nil {
			db.log.Warn("stop server after failed readiness wait", "error", stopErr)
		}
		srv.Close()
		releasePort()
		db.state = stateFailed
		return err
	}

	// The guard stays registered across Stop so disposable data dirs are
	// still purged at host termination; re-registering under the same id on
	// restart replaces the previous action rather than duplicating it.
	exitguard.Register(db.id, db.guardCleanup)

	db.server = srv
	db.port = port
	db.portAllocated = allocated
	db.state = stateRunning
	db.log.Info("database ready", "port", port, "elapsed", time.Since(startTime))
	return nil
}

// Stop terminates the server process. Stop is idempotent: calling it on a
// database that is not running is a no-op, and concurrent callers serialize
// so the process receives exactly one termination sequence.
func (db *DB) Stop() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.stopLocked()
}

func (db *DB) stopLocked() error {
	if db.state != stateRunning {
		return nil
	}

	db.log.Debug("stopping server", "port", db.port)
	err := db.server.Stop(db.cfg.StopTimeout)
	db.server.Close()
	if db.portAllocated {
		ports.Release(db.port)
		db.portAllocated = false
	}
	db.server = nil
	db.state = stateStopped
	if err != nil {
		return fmt.Errorf("stop server: %w", err)
	}
	return nil
}

// guardCleanup runs at host termination: stop the server if it is still
// running, then purge a disposable data directory. Errors are logged and
// swallowed; there is nobody left to handle them.
func (db *DB) guardCleanup() {
	if err := db.Stop(); err != nil {
		db.log.Warn("stop server during exit cleanup", "error", err)
	}
	if fileutil.IsUnderTempRoot(db.cfg.DataDir) {
		db.log.Debug("purging temp data dir", "path", db.cfg.DataDir)
		if err := os.RemoveAll(db.cfg.DataDir); err != nil {
			db.log.Warn("purge temp data dir", "path", db.cfg.DataDir, "error", err)
		}
	}
}

// IsRunning reports whether the server process is currently running.
func (db *DB) IsRunning() bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.state == stateRunning
}

// Port returns the effective listen port. While running this is the real
// port (auto-allocated when the configured port was zero); otherwise it
// falls back to the configured value.
func (db *DB) Port() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.state == stateRunning {
		return db.port
	}
	return db.cfg.Port
}

// DataDir returns the database's data directory.
func (db *DB) DataDir() string {
	return db.cfg.DataDir
}

// BaseDir returns the distribution base directory.
func (db *DB) BaseDir() string {
	return db.cfg.BaseDir
}

// ID returns the database's unique identifier.
func (db *DB) ID() string {
	return db.id
}
