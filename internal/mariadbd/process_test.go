package mariadbd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/embedsql/embedsql/internal/process"
)

// writeFakeServer writes an executable shell script standing in for mysqld
// and returns its path.
func writeFakeServer(t *testing.T, dir, script string) string {
	t.Helper()

	path := filepath.Join(dir, "mysqld")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write fake server: %v", err)
	}
	return path
}

// holdPort opens a TCP listener on an ephemeral port and keeps it open for
// the duration of the test, so the post-readiness port check has something
// to dial. Fake shell servers cannot bind TCP ports themselves.
func holdPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	return l.Addr().(*net.TCPAddr).Port
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := Config{Binary: "/opt/db/bin/mysqld", BaseDir: "/opt/db", DataDir: "/opt/db/data", Port: 3306}

	type testCase struct {
		mutate  func(*Config)
		wantErr bool
	}

	tests := map[string]testCase{
		"valid":          {mutate: func(*Config) {}},
		"missing binary": {mutate: func(c *Config) { c.Binary = "" }, wantErr: true},
		"missing base":   {mutate: func(c *Config) { c.BaseDir = "" }, wantErr: true},
		"missing data":   {mutate: func(c *Config) { c.DataDir = "" }, wantErr: true},
		"zero port":      {mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		"port too large": {mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := valid
			tc.mutate(&cfg)
			_, err := New(cfg)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected nil, got %v", err)
			}
		})
	}
}

func TestBuildCommand_NoDefaultsIsAlwaysFirst(t *testing.T) {
	t.Parallel()

	for _, port := range []int{3306, 13306, 65535} {
		p, err := New(Config{
			Binary:  "/opt/db/bin/mysqld",
			BaseDir: "/opt/db",
			DataDir: "/opt/db/data",
			Port:    port,
		})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		args := p.buildCommand().Args()
		if len(args) == 0 || args[0] != "--no-defaults" {
			t.Errorf("port %d: args[0] = %v, want --no-defaults first", port, args)
		}
	}
}

func TestBuildCommand_ArgumentOrder(t *testing.T) {
	t.Parallel()

	p, err := New(Config{
		Binary:  "/opt/db/bin/mysqld",
		BaseDir: "/opt/db",
		DataDir: "/opt/db/data",
		Port:    3306,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	args := p.buildCommand().Args()
	wantPrefixes := []string{"--no-defaults", "--console", "--basedir=", "--datadir=", "--port=3306"}
	if len(args) != len(wantPrefixes) {
		t.Fatalf("args = %v, want %d entries", args, len(wantPrefixes))
	}
	for i, prefix := range wantPrefixes {
		if !strings.HasPrefix(args[i], prefix) {
			t.Errorf("args[%d] = %q, want prefix %q", i, args[i], prefix)
		}
	}
}

func TestStartAndWaitReady(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	dataDir := t.TempDir()
	port := holdPort(t)
	binary := writeFakeServer(t, baseDir,
		`echo "Version: '10.6.5-MariaDB'"
echo "mysqld: ready for connections."
exec sleep 30`)

	p, err := New(Config{Binary: binary, BaseDir: baseDir, DataDir: dataDir, Port: port})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		_ = p.Stop(2 * time.Second)
		p.Close()
	}()

	if err := p.WaitReady(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
	if !p.IsStarted() {
		t.Error("IsStarted should report true after successful start")
	}
}

func TestWaitReady_TimesOutWhenLineNeverAppears(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	binary := writeFakeServer(t, baseDir, "exec sleep 30")

	p, err := New(Config{Binary: binary, BaseDir: baseDir, DataDir: t.TempDir(), Port: holdPort(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		_ = p.Stop(2 * time.Second)
		p.Close()
	}()

	err = p.WaitReady(context.Background(), 50*time.Millisecond)
	if !errors.Is(err, process.ErrWaitTimeout) {
		t.Fatalf("got %v, want ErrWaitTimeout", err)
	}
}

func TestWaitReady_ProcessDiesBeforeReady(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	binary := writeFakeServer(t, baseDir, `echo "fatal: cannot allocate buffer pool" 1>&2
exit 1`)

	p, err := New(Config{Binary: binary, BaseDir: baseDir, DataDir: t.TempDir(), Port: holdPort(t)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Close()

	err = p.WaitReady(context.Background(), 10*time.Second)
	if !errors.Is(err, process.ErrProcessExited) {
		t.Fatalf("got %v, want ErrProcessExited", err)
	}
}

func TestStart_MissingBinary(t *testing.T) {
	t.Parallel()

	p, err := New(Config{
		Binary:  filepath.Join(t.TempDir(), "absent-mysqld"),
		BaseDir: t.TempDir(),
		DataDir: t.TempDir(),
		Port:    3306,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("expected launch error for missing binary")
	}
}

func TestStart_AlreadyStarted(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	binary := writeFakeServer(t, baseDir, "exec sleep 30")

	p, err := New(Config{Binary: binary, BaseDir: baseDir, DataDir: t.TempDir(), Port: 3306})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		_ = p.Stop(2 * time.Second)
		p.Close()
	}()

	if err := p.Start(context.Background()); !errors.Is(err, process.ErrAlreadyStarted) {
		t.Fatalf("got %v, want ErrAlreadyStarted", err)
	}
}

func TestStop_IdempotentAcrossCalls(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	binary := writeFakeServer(t, baseDir, "exec sleep 30")

	p, err := New(Config{Binary: binary, BaseDir: baseDir, DataDir: t.TempDir(), Port: 3306})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer p.Close()

	if err := p.Stop(5 * time.Second); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if err := p.Stop(5 * time.Second); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if p.IsStarted() {
		t.Error("IsStarted should report false after Stop")
	}
}

func TestCustomReadyLine(t *testing.T) {
	t.Parallel()

	baseDir := t.TempDir()
	binary := writeFakeServer(t, baseDir, fmt.Sprintf("echo %q\nexec sleep 30", "Server socket created; ready."))

	p, err := New(Config{
		Binary:    binary,
		BaseDir:   baseDir,
		DataDir:   t.TempDir(),
		Port:      holdPort(t),
		ReadyLine: "Server socket created; ready.",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer func() {
		_ = p.Stop(2 * time.Second)
		p.Close()
	}()

	if err := p.WaitReady(context.Background(), 10*time.Second); err != nil {
		t.Fatalf("WaitReady with custom line: %v", err)
	}
}
