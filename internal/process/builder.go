package process

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
)

// Builder assembles the argument vector for a supervised process invocation.
// Arguments are kept in insertion order; some wrapped binaries mandate a
// strict flag order, so callers control it entirely through call order.
type Builder struct {
	command    string
	workingDir string
	args       []string
	err        error
}

// NewBuilder creates a Builder for the given executable and working directory.
func NewBuilder(command, workingDir string) *Builder {
	b := &Builder{command: command, workingDir: workingDir}
	if command == "" {
		b.err = errors.New("command must not be empty")
	}
	return b
}

// AddArgument appends a literal argument.
func (b *Builder) AddArgument(arg string) *Builder {
	b.args = append(b.args, arg)
	return b
}

// AddFileArgument appends flag=path with the path normalized to an absolute,
// cleaned form. The wrapped binary rejects relative or unnormalized paths on
// some platforms, so normalization happens here rather than at call sites.
func (b *Builder) AddFileArgument(flag, path string) *Builder {
	abs, err := filepath.Abs(path)
	if err != nil {
		if b.err == nil {
			b.err = fmt.Errorf("normalize path for %s: %w", flag, err)
		}
		return b
	}
	b.args = append(b.args, flag+"="+abs)
	return b
}

// Args returns a copy of the assembled argument vector, excluding the
// command itself.
func (b *Builder) Args() []string {
	out := make([]string, len(b.args))
	copy(out, b.args)
	return out
}

// Command materializes the builder into an *exec.Cmd bound to ctx, or
// returns the first error recorded during assembly.
func (b *Builder) Command(ctx context.Context) (*exec.Cmd, error) {
	if b.err != nil {
		return nil, fmt.Errorf("build command %s: %w", b.command, b.err)
	}
	cmd := exec.CommandContext(ctx, b.command, b.args...)
	cmd.Dir = b.workingDir
	return cmd, nil
}
