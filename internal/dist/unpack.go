package dist

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/embedsql/embedsql/internal/fileutil"
)

// lockFileName is the flock file guarding concurrent unpacks into the same
// base directory, including unpacks racing from separate OS processes.
const lockFileName = ".embedsql.lock"

// markerFileName records the version last unpacked into a base directory.
// A matching marker short-circuits the copy.
const markerFileName = ".embedsql-version"

// lockRetryInterval is the interval between attempts to acquire the unpack
// file lock.
const lockRetryInterval = 50 * time.Millisecond

// copyConcurrency bounds the number of files copied in parallel. Distribution
// trees contain a few hundred small files; a modest bound keeps file
// descriptor usage predictable.
const copyConcurrency = 8

// Config describes one unpack operation.
type Config struct {
	SourceDir string // root of the distribution tree, laid out <version>/<platform>
	Version   string // version subdirectory to install
	BaseDir   string // destination base directory
	Logger    *slog.Logger
}

func (c Config) validate() error {
	var errs []error
	if c.SourceDir == "" {
		errs = append(errs, errors.New("source dir must not be empty"))
	}
	if c.Version == "" {
		errs = append(errs, errors.New("version must not be empty"))
	}
	if c.BaseDir == "" {
		errs = append(errs, errors.New("base dir must not be empty"))
	}
	return errors.Join(errs...)
}

// platformDir maps GOOS to the distribution's platform subdirectory.
// The layout mirrors how the upstream distributions are published: a
// win32 tree for Windows and a linux tree for everything else.
func platformDir(goos string) string {
	if goos == "windows" {
		return "win32"
	}
	return "linux"
}

// Unpack installs the distribution for cfg.Version and the current platform
// into cfg.BaseDir. Concurrent unpackers targeting the same base directory
// serialize on a file lock; once one of them finishes, the others see the
// version marker and return without copying.
func Unpack(ctx context.Context, cfg Config) error {
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("invalid unpack config: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	root := filepath.Join(cfg.SourceDir, cfg.Version, platformDir(runtime.GOOS))
	if info, err := os.Stat(root); err != nil {
		return fmt.Errorf("locate distribution %s: %w", root, err)
	} else if !info.IsDir() {
		return fmt.Errorf("distribution path %s is not a directory", root)
	}

	if err := fileutil.EnsureDir(cfg.BaseDir); err != nil {
		return fmt.Errorf("prepare base dir: %w", err)
	}

	fl := flock.New(filepath.Join(cfg.BaseDir, lockFileName))
	locked, err := fl.TryLockContext(ctx, lockRetryInterval)
	if err != nil {
		return fmt.Errorf("acquire unpack lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire unpack lock: %w", ctx.Err())
	}
	// The lock file is intentionally left on disk; removing it could
	// invalidate a lock concurrently acquired by another process.
	defer func() {
		if closeErr := fl.Close(); closeErr != nil {
			log.Debug("release unpack lock", "error", closeErr)
		}
	}()

	markerPath := filepath.Join(cfg.BaseDir, markerFileName)
	if data, err := os.ReadFile(markerPath); err == nil {
		if strings.TrimSpace(string(data)) == cfg.Version {
			log.Debug("distribution already unpacked", "version", cfg.Version, "base_dir", cfg.BaseDir)
			return nil
		}
	}

	log.Info("unpacking distribution", "version", cfg.Version, "base_dir", cfg.BaseDir)
	if err := copyTree(ctx, root, cfg.BaseDir); err != nil {
		return fmt.Errorf("copy distribution: %w", err)
	}
	if err := markExecutables(filepath.Join(cfg.BaseDir, "bin")); err != nil {
		return fmt.Errorf("restore execute bits: %w", err)
	}

	if err := os.WriteFile(markerPath, []byte(cfg.Version+"\n"), 0o644); err != nil {
		return fmt.Errorf("write version marker: %w", err)
	}
	return nil
}

// copyTree mirrors the directory tree at src into dst, copying regular files
// concurrently. Directories are created up front during the walk so copy
// goroutines never race on parent creation.
func copyTree(ctx context.Context, src, dst string) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(copyConcurrency)

	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return fileutil.EnsureDir(target)
		}
		if !d.Type().IsRegular() {
			return nil // symlinks and specials are not part of the contract
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		mode := info.Mode().Perm()
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			return fileutil.CopyFile(path, target, mode)
		})
		return nil
	})

	copyErrs := g.Wait()
	return errors.Join(walkErr, copyErrs)
}

// markExecutables forces execute bits on every regular file in binDir.
// Missing binDir is not an error; a distribution without a bin directory
// simply has nothing to mark.
func markExecutables(binDir string) error {
	entries, err := os.ReadDir(binDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read bin dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := fileutil.ForceExecutable(filepath.Join(binDir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
