package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/embedsql/embedsql"
)

var exampleUsage = strings.TrimSpace(`
  embedsql --dist-dir ./dist --dist-version mariadb-10.6.5 --port 3306
  embedsql --config $HOME/.embedsql/config.toml --data-dir /var/lib/embedsql
  embedsql --port 0
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := defaultSettings()
	var cfgPath string

	log := slog.Default()

	root := &cobra.Command{
		Use:     "embedsql",
		Short:   "Run an embedded MariaDB/MySQL server for the lifetime of this process",
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = defaultConfigPath()
			}

			// Flags set on the command line win over file values.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && fileExists(cfgFile) {
				fc, err := loadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := applyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			if cfg.DistDir != "" && cfg.DistVersion == "" {
				return fmt.Errorf("--dist-version is required when --dist-dir is set")
			}

			return run(cmd.Context(), log, cfg)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.embedsql/config.toml)")
	root.Flags().StringVar(&cfg.BaseDir, "base-dir", cfg.BaseDir, "directory holding (or receiving) the unpacked distribution")
	root.Flags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "database data directory (temp-root dirs are wiped on start and purged on exit)")
	root.Flags().IntVar(&cfg.Port, "port", cfg.Port, "TCP port for the server (0 picks a free port)")
	root.Flags().StringVar(&cfg.DistDir, "dist-dir", cfg.DistDir, "directory of bundled distributions (<dir>/<version>/<platform>)")
	root.Flags().StringVar(&cfg.DistVersion, "dist-version", cfg.DistVersion, "distribution version to unpack from --dist-dir")
	root.Flags().StringVar(&cfg.ServerBinary, "server-binary", cfg.ServerBinary, "override the mysqld binary location")
	root.Flags().StringVar(&cfg.InstallBinary, "install-binary", cfg.InstallBinary, "override the mysql_install_db binary location")
	root.Flags().StringVar(&cfg.ReadyLine, "ready-line", cfg.ReadyLine, "console line announcing server readiness")
	root.Flags().DurationVar(&cfg.StartTimeout, "start-timeout", cfg.StartTimeout, "maximum time to wait for server readiness")
	root.Flags().DurationVar(&cfg.InstallTimeout, "install-timeout", cfg.InstallTimeout, "maximum time for the data dir install command")
	root.Flags().DurationVar(&cfg.StopTimeout, "stop-timeout", cfg.StopTimeout, "maximum time for graceful shutdown")

	if err := root.Execute(); err != nil {
		log.Error("embedsql", "error", err)
		os.Exit(1)
	}
}

// run creates the database, starts it, and blocks until a termination signal
// arrives, then stops it.
func run(ctx context.Context, log *slog.Logger, cfg settings) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := embedsql.New(ctx, cfg.options()...)
	if err != nil {
		return fmt.Errorf("create database: %w", err)
	}

	if err := db.Start(ctx); err != nil {
		return fmt.Errorf("start database: %w", err)
	}
	log.Info("database ready",
		"port", db.Port(),
		"datadir", db.DataDir(),
		"basedir", db.BaseDir(),
	)

	<-ctx.Done()
	log.Info("received signal, stopping")

	if err := db.Stop(); err != nil {
		return fmt.Errorf("stop database: %w", err)
	}
	return nil
}
