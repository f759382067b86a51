package mariadbd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/embedsql/embedsql/internal/process"
	"github.com/embedsql/embedsql/internal/sentinel"
)

// ErrInstallFailed is returned by RunInstall when the install command exits
// with a nonzero status.
const ErrInstallFailed = sentinel.Error("install command failed")

// InstallConfig holds the configuration for one mysql_install_db run.
type InstallConfig struct {
	Binary  string        // path to the mysql_install_db binary
	BaseDir string        // distribution base directory (working directory)
	DataDir string        // data directory to seed (also holds capture logs)
	Timeout time.Duration // overall bound for the run

	// Logger (optional, defaults to slog.Default())
	Logger *slog.Logger
}

func (c InstallConfig) validate() error {
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
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	return errors.Join(errs...)
}

// buildInstallArgs assembles the install invocation: the data-directory flag
// always, plus the platform-conditional flags from the rule table.
func buildInstallArgs(cfg InstallConfig, goos string) *process.Builder {
	b := process.NewBuilder(cfg.Binary, cfg.BaseDir)
	b.AddFileArgument("--datadir", cfg.DataDir)
	applyInstallRules(b, goos, cfg.BaseDir)
	return b
}

// RunInstall executes the install command synchronously and waits for it to
// exit. A nonzero exit wraps ErrInstallFailed with the exit code; install
// failures are fatal to database construction and never retried.
func RunInstall(ctx context.Context, cfg InstallConfig) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid install config: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	cmd, err := buildInstallArgs(cfg, runtime.GOOS).Command(runCtx)
	if err != nil {
		return fmt.Errorf("build install command: %w", err)
	}

	base := process.NewBaseProcess("mysql-install-db", cfg.Logger, 0)
	if err := base.SetupAndStart(cmd, cfg.DataDir); err != nil {
		return fmt.Errorf("start install command: %w", err)
	}
	defer base.Close()

	code, err := base.WaitForExit(runCtx)
	if err != nil {
		// Deadline or cancellation: the command is still running under a
		// context that is now canceled, which kills it; Close reaps it.
		return fmt.Errorf("wait for install command: %w", err)
	}
	if code != 0 {
		return fmt.Errorf("%w: exit status %d (see logs in %s)", ErrInstallFailed, code, cfg.DataDir)
	}
	return nil
}
