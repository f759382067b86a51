package mariadbd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/embedsql/embedsql/internal/process"
)

// DefaultReadyLine is the console line mysqld prints once it accepts
// connections. Its exact text is a contract with the wrapped binary; the
// match is a verbatim, case-sensitive substring match.
const DefaultReadyLine = "mysqld: ready for connections."

// tcpVerifyInterval is the poll interval for the post-readiness TCP check.
const tcpVerifyInterval = 10 * time.Millisecond

// tcpVerifyTimeout bounds the post-readiness TCP check. The server has
// already announced readiness on its console by the time this runs, so the
// dial should succeed on the first attempts.
const tcpVerifyTimeout = 5 * time.Second

// Compile-time interface satisfaction check.
var _ interface {
	Stop(timeout time.Duration) error
	Close()
} = (*Process)(nil)

// Config holds the configuration for a mysqld server process.
type Config struct {
	Binary    string // path to the mysqld binary
	BaseDir   string // distribution base directory (working directory)
	DataDir   string // server data directory (also holds capture logs)
	Port      int    // TCP port for --port
	ReadyLine string // console line announcing readiness (default DefaultReadyLine)

	// StopTimeout is the safety-net timeout used when Close has to
	// auto-stop a still-running process. Zero uses the package default.
	StopTimeout time.Duration

	// Logger (optional, defaults to slog.Default())
	Logger *slog.Logger
}

// validate checks that all required Config fields are set and returns an
// error describing every violation found.
func (c Config) validate() error {
	var errs []error
	if c.Binary == "" {
		errs = append(errs, errors.New("binary path must not be empty"))
	}
	if c.BaseDir == "" {
		errs = append(errs, errors.New("base dir must not be empty"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data dir must not be empty"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be in 1-65535, got %d", c.Port))
	}
	return errors.Join(errs...)
}

// Process manages a mysqld server process lifecycle.
type Process struct {
	config Config
	base   process.BaseProcess
	ready  *process.LineWait
}

// New creates a mysqld Process with the given configuration. New performs no
// I/O; the process is launched by Start.
func New(cfg Config) (*Process, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid mysqld config: %w", err)
	}
	if cfg.ReadyLine == "" {
		cfg.ReadyLine = DefaultReadyLine
	}
	return &Process{
		config: cfg,
		base:   process.NewBaseProcess("mysqld", cfg.Logger, cfg.StopTimeout),
	}, nil
}

// buildCommand assembles the server invocation. The flag order is a contract
// with the binary: --no-defaults must be the first argument or mysqld reads
// option files that an embedded instance must never consult.
func (p *Process) buildCommand() *process.Builder {
	b := process.NewBuilder(p.config.Binary, p.config.BaseDir)
	b.AddArgument("--no-defaults") // must come first
	b.AddArgument("--console")
	b.AddFileArgument("--basedir", p.config.BaseDir)
	b.AddFileArgument("--datadir", p.config.DataDir)
	b.AddArgument(fmt.Sprintf("--port=%d", p.config.Port))
	return b
}

// Start launches the mysqld process. The readiness waiter is registered
// before the process starts so the ready line can not slip past the scanner.
func (p *Process) Start(ctx context.Context) error {
	if p.base.IsStarted() {
		return process.ErrAlreadyStarted
	}

	cmd, err := p.buildCommand().Command(ctx)
	if err != nil {
		return fmt.Errorf("build mysqld command: %w", err)
	}

	p.ready = p.base.Expect(process.Substring(p.config.ReadyLine))
	if err := p.base.SetupAndStart(cmd, p.config.DataDir); err != nil {
		return fmt.Errorf("setup and start mysqld process: %w", err)
	}
	return nil
}

// WaitReady blocks until the server announces readiness on its console, then
// verifies the announced port actually accepts a TCP connection. Returns
// process.ErrWaitTimeout (wrapped) when the deadline passes and
// process.ErrProcessExited (wrapped) when the server dies first.
func (p *Process) WaitReady(ctx context.Context, timeout time.Duration) error {
	if err := p.base.WaitForLine(ctx, p.ready, timeout); err != nil {
		return fmt.Errorf("mysqld not ready: %w", err)
	}

	if err := process.WaitReadyTCP(ctx, process.WaitReadyTCPConfig{
		Interval:      tcpVerifyInterval,
		Timeout:       tcpVerifyTimeout,
		Name:          "mysqld",
		Port:          p.config.Port,
		Logger:        p.base.Logger(),
		ProcessExited: p.base.Exited(),
	}); err != nil {
		return fmt.Errorf("mysqld announced readiness but port check failed: %w", err)
	}
	return nil
}

// Port returns the configured server port.
func (p *Process) Port() int {
	return p.config.Port
}

// IsStarted reports whether the process has been started and not yet stopped.
func (p *Process) IsStarted() bool {
	return p.base.IsStarted()
}

// Stop terminates the mysqld process with the given timeout.
func (p *Process) Stop(timeout time.Duration) error {
	return p.base.Stop(timeout)
}

// Close releases log file handles held by the process.
func (p *Process) Close() {
	p.base.Close()
}
