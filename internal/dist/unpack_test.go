package dist

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeSourceTree lays out a minimal distribution under dir for the current
// platform and returns the source root.
func writeSourceTree(t *testing.T, version string) string {
	t.Helper()

	src := t.TempDir()
	root := filepath.Join(src, version, platformDir(runtime.GOOS))
	files := map[string]string{
		filepath.Join("bin", "mysqld"):           "#!/bin/sh\necho mysqld\n",
		filepath.Join("bin", "mysql_install_db"): "#!/bin/sh\necho install\n",
		filepath.Join("share", "errmsg.sys"):     "errmsg payload",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		// 0644 on purpose: exec bits must be restored by Unpack.
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return src
}

func TestUnpack(t *testing.T) {
	t.Parallel()

	src := writeSourceTree(t, "10.6.5")
	baseDir := filepath.Join(t.TempDir(), "base")

	err := Unpack(context.Background(), Config{
		SourceDir: src,
		Version:   "10.6.5",
		BaseDir:   baseDir,
	})
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(baseDir, "share", "errmsg.sys"))
	if err != nil {
		t.Fatalf("read copied file: %v", err)
	}
	if string(content) != "errmsg payload" {
		t.Errorf("copied content = %q", content)
	}

	for _, bin := range []string{"mysqld", "mysql_install_db"} {
		info, err := os.Stat(filepath.Join(baseDir, "bin", bin))
		if err != nil {
			t.Fatalf("stat %s: %v", bin, err)
		}
		if info.Mode()&0o111 == 0 {
			t.Errorf("%s missing execute bits", bin)
		}
	}

	marker, err := os.ReadFile(filepath.Join(baseDir, markerFileName))
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if strings.TrimSpace(string(marker)) != "10.6.5" {
		t.Errorf("marker = %q, want version", marker)
	}
}

func TestUnpack_SkipsWhenMarkerMatches(t *testing.T) {
	t.Parallel()

	src := writeSourceTree(t, "10.6.5")
	baseDir := filepath.Join(t.TempDir(), "base")
	cfg := Config{SourceDir: src, Version: "10.6.5", BaseDir: baseDir}

	if err := Unpack(context.Background(), cfg); err != nil {
		t.Fatalf("first Unpack: %v", err)
	}

	// Overwrite a copied file, then unpack again; the marker must
	// short-circuit the copy and leave the modification intact.
	modified := filepath.Join(baseDir, "share", "errmsg.sys")
	if err := os.WriteFile(modified, []byte("locally modified"), 0o644); err != nil {
		t.Fatalf("modify file: %v", err)
	}
	if err := Unpack(context.Background(), cfg); err != nil {
		t.Fatalf("second Unpack: %v", err)
	}

	content, err := os.ReadFile(modified)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(content) != "locally modified" {
		t.Error("second Unpack re-copied despite matching marker")
	}
}

func TestUnpack_RecopiesOnVersionChange(t *testing.T) {
	t.Parallel()

	src := writeSourceTree(t, "10.6.5")
	src2 := writeSourceTree(t, "11.4.2")
	baseDir := filepath.Join(t.TempDir(), "base")

	if err := Unpack(context.Background(), Config{SourceDir: src, Version: "10.6.5", BaseDir: baseDir}); err != nil {
		t.Fatalf("first Unpack: %v", err)
	}
	if err := Unpack(context.Background(), Config{SourceDir: src2, Version: "11.4.2", BaseDir: baseDir}); err != nil {
		t.Fatalf("second Unpack: %v", err)
	}

	marker, err := os.ReadFile(filepath.Join(baseDir, markerFileName))
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if strings.TrimSpace(string(marker)) != "11.4.2" {
		t.Errorf("marker = %q, want new version", marker)
	}
}

func TestUnpack_MissingDistribution(t *testing.T) {
	t.Parallel()

	err := Unpack(context.Background(), Config{
		SourceDir: t.TempDir(),
		Version:   "10.6.5",
		BaseDir:   filepath.Join(t.TempDir(), "base"),
	})
	if err == nil {
		t.Fatal("expected error for missing distribution subtree")
	}
}

func TestUnpack_Validation(t *testing.T) {
	t.Parallel()

	type testCase struct {
		cfg Config
	}

	tests := map[string]testCase{
		"empty source": {cfg: Config{Version: "10.6.5", BaseDir: "/tmp/x"}},
		"empty version": {cfg: Config{SourceDir: "/tmp/src", BaseDir: "/tmp/x"}},
		"empty base dir": {cfg: Config{SourceDir: "/tmp/src", Version: "10.6.5"}},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if err := Unpack(context.Background(), tc.cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestPlatformDir(t *testing.T) {
	t.Parallel()

	if got := platformDir("windows"); got != "win32" {
		t.Errorf("windows -> %q, want win32", got)
	}
	if got := platformDir("linux"); got != "linux" {
		t.Errorf("linux -> %q, want linux", got)
	}
	if got := platformDir("darwin"); got != "linux" {
		t.Errorf("darwin -> %q, want linux", got)
	}
}
