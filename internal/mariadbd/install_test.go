package mariadbd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFakeInstaller(t *testing.T, dir, script string) string {
	t.Helper()

	path := filepath.Join(dir, "mysql_install_db")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write fake installer: %v", err)
	}
	return path
}

func TestInstallConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := InstallConfig{
		Binary:  "/opt/db/bin/mysql_install_db",
		BaseDir: "/opt/db",
		DataDir: "/opt/db/data",
		Timeout: time.Minute,
	}

	type testCase struct {
		mutate  func(*InstallConfig)
		wantErr bool
	}

	tests := map[string]testCase{
		"valid":            {mutate: func(*InstallConfig) {}},
		"missing binary":   {mutate: func(c *InstallConfig) { c.Binary = "" }, wantErr: true},
		"missing base":     {mutate: func(c *InstallConfig) { c.BaseDir = "" }, wantErr: true},
		"missing data":     {mutate: func(c *InstallConfig) { c.DataDir = "" }, wantErr: true},
		"zero timeout":     {mutate: func(c *InstallConfig) { c.Timeout = 0 }, wantErr: true},
		"negative timeout": {mutate: func(c *InstallConfig) { c.Timeout = -time.Second }, wantErr: true},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tc.mutate(&cfg)
			err := cfg.validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected nil, got %v", err)
			}
		})
	}
}

func TestBuildInstallArgs(t *testing.T) {
	t.Parallel()

	cfg := InstallConfig{
		Binary:  "/opt/db/bin/mysql_install_db",
		BaseDir: "/opt/db",
		DataDir: "/opt/db/data",
		Timeout: time.Minute,
	}

	type testCase struct {
		goos         string
		wantPrefixes []string
	}

	tests := map[string]testCase{
		"linux gets the full flag set": {
			goos: "linux",
			wantPrefixes: []string{
				"--datadir=",
				"--basedir=",
				"--no-defaults",
				"--force",
				"--skip-name-resolve",
				"--verbose",
			},
		},
		"windows gets only the data dir": {
			goos:         "windows",
			wantPrefixes: []string{"--datadir="},
		},
		"darwin gets only the data dir": {
			goos:         "darwin",
			wantPrefixes: []string{"--datadir="},
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			args := buildInstallArgs(cfg, tc.goos).Args()
			if len(args) != len(tc.wantPrefixes) {
				t.Fatalf("args = %v, want %d entries", args, len(tc.wantPrefixes))
			}
			for i, prefix := range tc.wantPrefixes {
				if !strings.HasPrefix(args[i], prefix) {
					t.Errorf("args[%d] = %q, want prefix %q", i, args[i], prefix)
				}
			}
		})
	}
}

func TestBuildInstallArgs_PathsAreAbsolute(t *testing.T) {
	t.Parallel()

	cfg := InstallConfig{
		Binary:  "bin/mysql_install_db",
		BaseDir: "base",
		DataDir: "data",
		Timeout: time.Minute,
	}

	for _, arg := range buildInstallArgs(cfg, "linux").Args() {
		flag, path, ok := strings.Cut(arg, "=")
		if !ok {
			continue
		}
		if !filepath.IsAbs(path) {
			t.Errorf("%s carries relative path %q, want absolute", flag, path)
		}
	}
}

func TestRunInstall(t *testing.T) {
	t.Parallel()

	t.Run("zero exit succeeds", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		dataDir := t.TempDir()
		binary := writeFakeInstaller(t, baseDir, `echo "Installing MariaDB/MySQL system tables"
exit 0`)

		err := RunInstall(context.Background(), InstallConfig{
			Binary:  binary,
			BaseDir: baseDir,
			DataDir: dataDir,
			Timeout: 30 * time.Second,
		})
		if err != nil {
			t.Fatalf("RunInstall: %v", err)
		}
	})

	t.Run("nonzero exit fails", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		dataDir := t.TempDir()
		binary := writeFakeInstaller(t, baseDir, `echo "FATAL ERROR: could not create system tables" 1>&2
exit 1`)

		err := RunInstall(context.Background(), InstallConfig{
			Binary:  binary,
			BaseDir: baseDir,
			DataDir: dataDir,
			Timeout: 30 * time.Second,
		})
		if !errors.Is(err, ErrInstallFailed) {
			t.Fatalf("got %v, want ErrInstallFailed", err)
		}
		if !strings.Contains(err.Error(), "exit status 1") {
			t.Errorf("error %q should name the exit status", err)
		}
	})

	t.Run("captures output in data dir", func(t *testing.T) {
		t.Parallel()

		baseDir := t.TempDir()
		dataDir := t.TempDir()
		binary := writeFakeInstaller(t, baseDir, `echo "system tables created"
exit 0`)

		err := RunInstall(context.Background(), InstallConfig{
			Binary:  binary,
			BaseDir: baseDir,
			DataDir: dataDir,
			Timeout: 30 * time.Second,
		})
		if err != nil {
			t.Fatalf("RunInstall: %v", err)
		}

		out, err := os.ReadFile(filepath.Join(dataDir, "mysql-install-db-stdout.log"))
		if err != nil {
			t.Fatalf("read install log: %v", err)
		}
		if !strings.Contains(string(out), "system tables created") {
			t.Errorf("install log %q missing command output", out)
		}
	})

	t.Run("missing binary fails", func(t *testing.T) {
		t.Parallel()

		err := RunInstall(context.Background(), InstallConfig{
			Binary:  filepath.Join(t.TempDir(), "absent"),
			BaseDir: t.TempDir(),
			DataDir: t.TempDir(),
			Timeout: 30 * time.Second,
		})
		if err == nil {
			t.Fatal("expected error for missing binary")
		}
	})

	t.Run("invalid config fails fast", func(t *testing.T) {
		t.Parallel()

		err := RunInstall(context.Background(), InstallConfig{})
		if err == nil {
			t.Fatal("expected validation error")
		}
	})
}
