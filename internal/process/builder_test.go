package process

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuilder_PreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	b := NewBuilder("/opt/db/bin/mysqld", "/opt/db")
	b.AddArgument("--no-defaults")
	b.AddArgument("--console")
	b.AddArgument("--port=3306")

	got := b.Args()
	want := []string{"--no-defaults", "--console", "--port=3306"}
	if len(got) != len(want) {
		t.Fatalf("Args() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Args()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuilder_AddFileArgumentNormalizesPath(t *testing.T) {
	t.Parallel()

	b := NewBuilder("mysqld", ".")
	b.AddFileArgument("--datadir", "relative/data/../data")

	args := b.Args()
	if len(args) != 1 {
		t.Fatalf("expected 1 arg, got %v", args)
	}
	value := strings.TrimPrefix(args[0], "--datadir=")
	if value == args[0] {
		t.Fatalf("arg %q missing --datadir= prefix", args[0])
	}
	if !filepath.IsAbs(value) {
		t.Errorf("path %q not absolute", value)
	}
	if strings.Contains(value, "..") {
		t.Errorf("path %q not cleaned", value)
	}
}

func TestBuilder_ArgsReturnsCopy(t *testing.T) {
	t.Parallel()

	b := NewBuilder("mysqld", ".")
	b.AddArgument("--no-defaults")

	args := b.Args()
	args[0] = "mutated"

	if got := b.Args()[0]; got != "--no-defaults" {
		t.Errorf("builder args mutated through returned slice: %q", got)
	}
}

func TestBuilder_Command(t *testing.T) {
	t.Parallel()

	b := NewBuilder("/bin/sh", "/tmp")
	b.AddArgument("-c").AddArgument("true")

	cmd, err := b.Command(context.Background())
	if err != nil {
		t.Fatalf("Command: %v", err)
	}
	if cmd.Dir != "/tmp" {
		t.Errorf("Dir = %q, want /tmp", cmd.Dir)
	}
	if len(cmd.Args) != 3 || cmd.Args[1] != "-c" {
		t.Errorf("unexpected argv: %v", cmd.Args)
	}
}

func TestBuilder_EmptyCommand(t *testing.T) {
	t.Parallel()

	b := NewBuilder("", ".")
	if _, err := b.Command(context.Background()); err == nil {
		t.Fatal("expected error for empty command")
	}
}
