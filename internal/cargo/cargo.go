// Package cargo runs the Rust compiler with type-size printing enabled.
package cargo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	DefaultCargo     = "cargo"
	DefaultToolchain = "nightly"
	DefaultTouch     = "src/main.rs"

	// TypeSizesFlag makes rustc print the layout report on stdout.
	TypeSizesFlag = "-Zprint-type-sizes"
)

// ErrTouchMissing is returned when the file to touch does not exist.
var ErrTouchMissing = errors.New("touch file does not exist")

// Options configures one compiler run.
type Options struct {
	// Cargo is the cargo binary; DefaultCargo when empty.
	Cargo string
	// Toolchain is passed as +<toolchain>; DefaultToolchain when empty.
	Toolchain string
	// Args are passed to `cargo rustc` before the `--`.
	Args []string
	// Touch is bumped before compiling so the crate is rebuilt. Empty skips.
	Touch string
	Dir   string
	// Stderr also receives cargo's progress output when set.
	Stderr io.Writer
}

// Command returns the argv that Compile runs.
func (o Options) Command() []string {
	bin := o.Cargo
	if bin == "" {
		bin = DefaultCargo
	}
	tc := o.Toolchain
	if tc == "" {
		tc = DefaultToolchain
	}
	argv := make([]string, 0, len(o.Args)+5)
	argv = append(argv, bin, "+"+tc, "rustc")
	argv = append(argv, o.Args...)
	argv = append(argv, "--", TypeSizesFlag)
	return argv
}

// CommandLine is Command joined by spaces.
func (o Options) CommandLine() string {
	return strings.Join(o.Command(), " ")
}

// Touch updates the modification time of path. Unlike touch(1) it refuses to
// create the file.
func Touch(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrTouchMissing, path)
		}
		return err
	}
	now := time.Now()
	return os.Chtimes(path, now, now)
}

// Compile touches the configured file, runs the compiler, and returns its
// stdout.
func Compile(ctx context.Context, o Options) ([]byte, error) {
	if o.Touch != "" {
		if err := Touch(o.Touch); err != nil {
			return nil, err
		}
	}
	argv := o.Command()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = o.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if o.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, o.Stderr)
	}
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", argv[0], err)
		}
		return nil, fmt.Errorf("%s: %w\n%s", argv[0], err, msg)
	}
	return stdout.Bytes(), nil
}
