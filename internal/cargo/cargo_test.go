package cargo

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "defaults",
			want: []string{"cargo", "+nightly", "rustc", "--", "-Zprint-type-sizes"},
		},
		{
			name: "custom",
			opts: Options{Cargo: "/opt/cargo", Toolchain: "nightly-2024-01-01", Args: []string{"--release", "--bin", "app"}},
			want: []string{"/opt/cargo", "+nightly-2024-01-01", "rustc", "--release", "--bin", "app", "--", "-Zprint-type-sizes"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.Command(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
		})
	}
	if got := (Options{}).CommandLine(); got != "cargo +nightly rustc -- -Zprint-type-sizes" {
		t.Errorf("CommandLine() = %q", got)
	}
}

func TestTouch(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "main.rs")
	if err := Touch(missing); !errors.Is(err, ErrTouchMissing) {
		t.Fatalf("Touch(missing) = %v", err)
	}
	if _, err := os.Stat(missing); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("Touch created the file")
	}

	if err := os.WriteFile(missing, []byte("fn main() {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(missing, old, old); err != nil {
		t.Fatal(err)
	}
	if err := Touch(missing); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(missing)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().After(old) {
		t.Errorf("mtime not updated: %v", info.ModTime())
	}
}

func TestCompileRefusesMissingTouch(t *testing.T) {
	_, err := Compile(context.Background(), Options{Touch: filepath.Join(t.TempDir(), "nope.rs")})
	if !errors.Is(err, ErrTouchMissing) {
		t.Fatalf("Compile = %v", err)
	}
}

// fakeCargo writes a shell script that echoes its arguments on stdout.
func fakeCargo(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fixture")
	}
	path := filepath.Join(t.TempDir(), "cargo")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileCapturesStdout(t *testing.T) {
	bin := fakeCargo(t, `echo "print-type-size args: $*"`)
	out, err := Compile(context.Background(), Options{Cargo: bin, Args: []string{"--lib"}})
	if err != nil {
		t.Fatal(err)
	}
	want := "print-type-size args: +nightly rustc --lib -- -Zprint-type-sizes\n"
	if string(out) != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestCompileReportsStderr(t *testing.T) {
	bin := fakeCargo(t, `echo "error: could not find Cargo.toml" >&2; exit 101`)
	_, err := Compile(context.Background(), Options{Cargo: bin})
	if err == nil || !strings.Contains(err.Error(), "could not find Cargo.toml") {
		t.Fatalf("Compile = %v", err)
	}
}
