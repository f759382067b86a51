package process

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/embedsql/embedsql/internal/sentinel"
)

// ErrAlreadyStarted is returned when Start is called on a process that is
// already running. Callers must Stop the process before starting it again.
const ErrAlreadyStarted = sentinel.Error("process already started")

// ErrNotStarted is returned by WaitForExit when the process has not been
// started or was already reaped.
const ErrNotStarted = sentinel.Error("process not started")

// ErrNilCmd is returned when SetupAndStart is called with a nil *exec.Cmd.
const ErrNilCmd = sentinel.Error("cmd must not be nil")

// ErrEmptyCmdPath is returned when SetupAndStart is called with an empty cmd.Path.
const ErrEmptyCmdPath = sentinel.Error("cmd.Path must not be empty")

// ErrEmptyDataDir is returned when SetupAndStart is called with an empty data directory.
const ErrEmptyDataDir = sentinel.Error("data directory must not be empty")

// ErrWaitTimeout is returned by WaitForLine when the deadline passes before
// the expected console line appears.
const ErrWaitTimeout = sentinel.Error("timed out waiting for console output")

// ErrProcessExited is returned by WaitForLine when the process exits before
// the expected console line appears.
const ErrProcessExited = sentinel.Error("process exited before expected output")

// BaseProcess provides common supervision for one external process: start
// with captured output, text-based readiness waits, wait-for-exit for
// short-lived invocations, and the SIGTERM/SIGKILL stop sequence.
// Embed it in binary-specific Process types.
//
// BaseProcess is not safe for concurrent use. Callers must serialize access
// to all methods; in practice the orchestrator's mutex does this.
type BaseProcess struct {
	cmd         *exec.Cmd
	waitDone    <-chan error    // receives the cmd.Wait result; consumed by Stop or WaitForExit
	exited      <-chan struct{} // closed when the process exits; readable by multiple goroutines
	scanner     *lineScanner
	logFiles    LogFiles
	name        string        // process name for logging and log file names
	log         *slog.Logger
	stopTimeout time.Duration // auto-stop timeout used by Close; zero means DefaultStopTimeout
}

// NewBaseProcess creates a BaseProcess with the given name, logger, and stop
// timeout. stopTimeout is the safety-net timeout Close uses when auto-stopping
// a process that was not explicitly stopped; zero falls back to
// DefaultStopTimeout. A nil logger falls back to slog.Default(). Panics if
// name is empty, since the name feeds error messages and log file names
// throughout the lifecycle.
func NewBaseProcess(name string, logger *slog.Logger, stopTimeout time.Duration) BaseProcess {
	if name == "" {
		panic("embedsql: process name must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return BaseProcess{
		name:        name,
		log:         logger,
		stopTimeout: stopTimeout,
		scanner:     newLineScanner(),
	}
}

// Expect registers a console-line waiter. It must be called before
// SetupAndStart; lines emitted before registration are not replayed.
func (b *BaseProcess) Expect(m Matcher) *LineWait {
	return b.scanner.Expect(m)
}

// SetupAndStart starts the command with stdout/stderr teed to log files and
// the line scanner. The cmd must already have its Path and Args set; this
// sets Stdout and Stderr and calls Start(). A working directory already set
// on the cmd is respected; an unset one defaults to dataDir. The log files
// always land in dataDir regardless of the working directory.
//
// A single goroutine calling cmd.Wait is started here so that exactly one
// Wait call is made per process. Its result is consumed by Stop or
// WaitForExit.
//
// Returns ErrAlreadyStarted if the process is already running.
func (b *BaseProcess) SetupAndStart(cmd *exec.Cmd, dataDir string) error {
	if cmd == nil {
		return ErrNilCmd
	}
	if cmd.Path == "" {
		return ErrEmptyCmdPath
	}
	if dataDir == "" {
		return ErrEmptyDataDir
	}
	if b.cmd != nil {
		return ErrAlreadyStarted
	}

	if cmd.Dir == "" {
		cmd.Dir = dataDir
	}
	configureSysProcAttr(cmd)

	logFiles, err := NewLogFiles(dataDir, b.name)
	if err != nil {
		return fmt.Errorf("create %s logs: %w", b.name, err)
	}
	cmd.Stdout = io.MultiWriter(logFiles.stdoutFile, b.scanner)
	cmd.Stderr = io.MultiWriter(logFiles.stderrFile, b.scanner)

	if err := cmd.Start(); err != nil {
		logFiles.Close()
		return fmt.Errorf("start %s process: %w", b.name, err)
	}
	b.cmd = cmd
	b.logFiles = logFiles

	// Two channels: done (buffered 1) carries the Wait error and is consumed
	// once by Stop or WaitForExit; exited is a broadcast close readable by
	// any number of goroutines. The scanner is flushed before exited closes
	// so a final unterminated line is delivered before waiters observe the
	// exit.
	done := make(chan error, 1)
	exited := make(chan struct{})
	go func() {
		err := cmd.Wait()
		b.scanner.Flush()
		done <- err
		close(exited)
	}()
	b.waitDone = done
	b.exited = exited

	return nil
}

// WaitForLine blocks until the waiter's line has been observed, the process
// exits, the timeout elapses, or ctx is canceled. Returns ErrProcessExited
// (wrapped) if the process died first and ErrWaitTimeout (wrapped) if the
// deadline passed.
func (b *BaseProcess) WaitForLine(ctx context.Context, w *LineWait, timeout time.Duration) error {
	if w == nil {
		return fmt.Errorf("%s: line waiter must not be nil", b.name)
	}
	if timeout <= 0 {
		return fmt.Errorf("%s: wait timeout must be positive", b.name)
	}

	// Fast path: line already observed.
	select {
	case <-w.Done():
		return nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.Done():
		return nil
	case <-b.exited:
		// The scanner flushes before exited closes, so a match delivered in
		// the final output wins over the exit.
		select {
		case <-w.Done():
			return nil
		default:
		}
		return fmt.Errorf("%s: %w", b.name, ErrProcessExited)
	case <-timer.C:
		return fmt.Errorf("%s: %w", b.name, ErrWaitTimeout)
	case <-ctx.Done():
		return fmt.Errorf("%s: wait for console output: %w", b.name, ctx.Err())
	}
}

// WaitForExit blocks until the process terminates on its own and returns its
// exit code. Intended for short-lived install-style invocations. After it
// returns, the process is treated as stopped; Stop becomes a no-op.
//
// If ctx is canceled the process keeps running and internal state is left
// intact so the caller can Stop it.
func (b *BaseProcess) WaitForExit(ctx context.Context) (int, error) {
	if b.cmd == nil || b.waitDone == nil {
		return 0, fmt.Errorf("%s: %w", b.name, ErrNotStarted)
	}

	select {
	case err := <-b.waitDone:
		b.cmd = nil
		b.waitDone = nil
		b.exited = nil
		if err == nil {
			return 0, nil
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return -1, fmt.Errorf("%s: wait for exit: %w", b.name, err)
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: wait for exit: %w", b.name, ctx.Err())
	}
}

// Stop terminates the process with the given timeout. After Stop returns,
// IsStarted reports false regardless of whether the stop succeeded, because
// the process is no longer in a known-running state. Safe to call when cmd
// is nil (never started, already stopped, or already reaped by WaitForExit);
// returns nil immediately in those cases.
func (b *BaseProcess) Stop(timeout time.Duration) error {
	if b.cmd == nil || b.cmd.Process == nil {
		b.cmd = nil
		b.waitDone = nil
		b.exited = nil
		return nil
	}
	pid := b.cmd.Process.Pid
	err := stopWithDone(b.cmd, b.waitDone, timeout, b.name)
	if err != nil {
		b.log.Warn("process stop failed; process may be orphaned",
			"process", b.name, "pid", pid, "error", err)
	}
	b.cmd = nil
	b.waitDone = nil
	b.exited = nil
	return err
}

// Close closes log file handles. If the process is still running, Close logs
// a warning and stops it first so file handles are never closed under a live
// writer. Callers should Stop before Close; the auto-stop is a safety net.
func (b *BaseProcess) Close() {
	if b.cmd != nil {
		b.log.Warn("process.Close called without Stop; stopping automatically",
			"process", b.name)
		timeout := b.stopTimeout
		if timeout <= 0 {
			timeout = DefaultStopTimeout
		}
		if err := b.Stop(timeout); err != nil {
			b.log.Warn("auto-stop during Close failed",
				"process", b.name, "error", err)
		}
	}
	b.logFiles.Close()
}

// Logger returns the logger used by this process.
func (b *BaseProcess) Logger() *slog.Logger {
	return b.log
}

// Exited returns a channel that is closed when the process exits. Returns nil
// if the process has not been started or has already been stopped.
func (b *BaseProcess) Exited() <-chan struct{} {
	return b.exited
}

// IsStarted reports whether the process has been started and not yet stopped.
func (b *BaseProcess) IsStarted() bool {
	return b.cmd != nil
}
