package main

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"typesizes/internal/pipeline"
	"typesizes/internal/report"
)

func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addReportFlags(cmd)
	addCargoFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	return cmd
}

func TestResolveDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(envCargo, "")
	t.Setenv(envToolchain, "")
	opts, err := resolveReportOptions(newTestCommand(t))
	if err != nil {
		t.Fatal(err)
	}
	if opts.MaxLength != 120 || opts.Output != outputHTML || opts.OutputDir != "./type-sizes" || opts.Touch != "src/main.rs" {
		t.Errorf("defaults = %+v", opts)
	}
	if opts.Cargo != "cargo" || opts.Toolchain != "nightly" {
		t.Errorf("cargo defaults = %q %q", opts.Cargo, opts.Toolchain)
	}
	if opts.packageName() != "_unknown_" {
		t.Errorf("package = %q", opts.packageName())
	}
}

func TestResolvePrecedence(t *testing.T) {
	dir := t.TempDir()
	manifest := `[package]
name = "demo"

[package.metadata.type-sizes]
max-length = 40
output = "pretty"
exclude-std = true
include = ["^demo::"]
`
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv(envToolchain, "nightly-2024-06-01")

	opts, err := resolveReportOptions(newTestCommand(t, "--max-length", "10", "--exclude", "Foo"))
	if err != nil {
		t.Fatal(err)
	}
	if opts.packageName() != "demo" {
		t.Errorf("package = %q", opts.packageName())
	}
	if opts.MaxLength != 10 {
		t.Errorf("flag should beat manifest: max-length = %d", opts.MaxLength)
	}
	if opts.Output != outputPretty {
		t.Errorf("manifest should beat default: output = %q", opts.Output)
	}
	if opts.Toolchain != "nightly-2024-06-01" {
		t.Errorf("env toolchain = %q", opts.Toolchain)
	}
	if !reflect.DeepEqual(opts.Include, []string{"^demo::"}) {
		t.Errorf("include = %v", opts.Include)
	}
	if want := []string{"Foo", report.ExcludeStd}; !reflect.DeepEqual(opts.Exclude, want) {
		t.Errorf("exclude = %v, want %v", opts.Exclude, want)
	}

	cargoOpts := opts.cargoOptions([]string{"--release"})
	if got := cargoOpts.CommandLine(); got != "cargo +nightly-2024-06-01 rustc --release -- -Zprint-type-sizes" {
		t.Errorf("command = %q", got)
	}
}

func TestResolveRejectsBadOutput(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := resolveReportOptions(newTestCommand(t, "--output", "xml")); err == nil {
		t.Fatal("expected error for --output xml")
	}
}

func TestParseInputs(t *testing.T) {
	inputs, err := parseInputs(strings.NewReader("data"), []string{"a.txt", "-"})
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 2 || inputs[0].Path != "a.txt" || string(inputs[1].Text) != "data" || inputs[1].Name != "<stdin>" {
		t.Errorf("inputs = %+v", inputs)
	}
	if _, err := parseInputs(strings.NewReader(""), []string{"-", "-"}); err == nil {
		t.Error("expected error for repeated stdin")
	}
	inputs, err = parseInputs(strings.NewReader(""), nil)
	if err != nil || len(inputs) != 1 || inputs[0].Text == nil {
		t.Errorf("default stdin input = %+v, %v", inputs, err)
	}
}

func TestPrintStageTimings(t *testing.T) {
	var timings pipeline.Timings
	timings.Set(pipeline.StageParse, 1500*time.Microsecond)
	timings.Set(pipeline.StageTrim, 500*time.Microsecond)
	var buf bytes.Buffer
	if err := printStageTimings(&buf, timings); err != nil {
		t.Fatal(err)
	}
	want := "parsed 1.5 ms\ntrimmed 0.5 ms\ntotal 2.0 ms\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
