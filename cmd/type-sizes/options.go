package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"typesizes/internal/cargo"
	"typesizes/internal/project"
	"typesizes/internal/report"
)

const (
	envCargo     = "TYPE_SIZES_CARGO"
	envToolchain = "TYPE_SIZES_TOOLCHAIN"
)

type outputKind string

const (
	outputHTML   outputKind = "html"
	outputPretty outputKind = "pretty"
	outputJSON   outputKind = "json"
	outputTUI    outputKind = "tui"
)

func readOutputKind(value string) (outputKind, error) {
	switch k := outputKind(strings.ToLower(strings.TrimSpace(value))); k {
	case outputHTML, outputPretty, outputJSON, outputTUI:
		return k, nil
	}
	return "", fmt.Errorf("invalid --output value %q (expected html|pretty|json|tui)", value)
}

// reportOptions is the resolved configuration of one run.
type reportOptions struct {
	MaxLength  int
	SortSize   bool
	Include    []string
	Exclude    []string
	ExcludeStd bool
	Output     outputKind
	OutputDir  string
	Touch      string
	Cargo      string
	Toolchain  string

	Manifest *project.Manifest
}

func defaultReportOptions() reportOptions {
	return reportOptions{
		MaxLength: 120,
		Output:    outputHTML,
		OutputDir: "./type-sizes",
		Touch:     cargo.DefaultTouch,
		Cargo:     cargo.DefaultCargo,
		Toolchain: cargo.DefaultToolchain,
	}
}

// addReportFlags registers the flags shared by run, parse and serve.
func addReportFlags(cmd *cobra.Command) {
	d := defaultReportOptions()
	f := cmd.Flags()
	f.Int("max-length", d.MaxLength, "limit length of type names (0 to disable)")
	f.Bool("sort-size", false, "sort types by size, largest first")
	f.StringArray("include", nil, "include only types matching regex (repeatable)")
	f.StringArray("exclude", nil, "exclude types matching regex (repeatable)")
	f.Bool("exclude-std", false, "exclude types from std:: and core::")
	f.String("output", string(d.Output), "output format (html|pretty|json|tui)")
	f.String("output-dir", d.OutputDir, "HTML output directory")
}

// addCargoFlags registers the flags of commands that run the compiler.
func addCargoFlags(cmd *cobra.Command) {
	d := defaultReportOptions()
	f := cmd.Flags()
	f.String("touch", d.Touch, "touch this file to force re-linking")
	f.String("cargo", "", "cargo binary (default $"+envCargo+" or cargo)")
	f.String("toolchain", "", "rustup toolchain (default $"+envToolchain+" or nightly)")
}

// resolveReportOptions merges, lowest first: defaults, environment,
// [package.metadata.type-sizes] of the nearest Cargo.toml, and flags.
func resolveReportOptions(cmd *cobra.Command) (reportOptions, error) {
	opts := defaultReportOptions()

	if v := os.Getenv(envCargo); v != "" {
		opts.Cargo = v
	}
	if v := os.Getenv(envToolchain); v != "" {
		opts.Toolchain = v
	}

	manifest, ok, err := project.FindManifest(".")
	if err != nil {
		return opts, err
	}
	if ok {
		opts.Manifest = manifest
		if err := opts.applySettings(manifest.Settings); err != nil {
			return opts, fmt.Errorf("%s: %w", manifest.Path, err)
		}
	}

	if err := opts.applyFlags(cmd); err != nil {
		return opts, err
	}
	if opts.ExcludeStd {
		opts.Exclude = append(opts.Exclude, report.ExcludeStd)
	}
	return opts, nil
}

func (o *reportOptions) applySettings(s project.Settings) error {
	if s.MaxLength != nil {
		o.MaxLength = *s.MaxLength
	}
	if s.SortSize != nil {
		o.SortSize = *s.SortSize
	}
	if s.Include != nil {
		o.Include = s.Include
	}
	if s.Exclude != nil {
		o.Exclude = s.Exclude
	}
	if s.ExcludeStd != nil {
		o.ExcludeStd = *s.ExcludeStd
	}
	if s.Output != nil {
		kind, err := readOutputKind(*s.Output)
		if err != nil {
			return err
		}
		o.Output = kind
	}
	if s.OutputDir != nil {
		o.OutputDir = *s.OutputDir
	}
	if s.Touch != nil {
		o.Touch = *s.Touch
	}
	return nil
}

// applyFlags overrides only what the user set on the command line.
func (o *reportOptions) applyFlags(cmd *cobra.Command) error {
	f := cmd.Flags()
	var err error
	if f.Changed("max-length") {
		if o.MaxLength, err = f.GetInt("max-length"); err != nil {
			return fmt.Errorf("failed to get max-length flag: %w", err)
		}
	}
	if f.Changed("sort-size") {
		if o.SortSize, err = f.GetBool("sort-size"); err != nil {
			return fmt.Errorf("failed to get sort-size flag: %w", err)
		}
	}
	if f.Changed("include") {
		if o.Include, err = f.GetStringArray("include"); err != nil {
			return fmt.Errorf("failed to get include flag: %w", err)
		}
	}
	if f.Changed("exclude") {
		if o.Exclude, err = f.GetStringArray("exclude"); err != nil {
			return fmt.Errorf("failed to get exclude flag: %w", err)
		}
	}
	if f.Changed("exclude-std") {
		if o.ExcludeStd, err = f.GetBool("exclude-std"); err != nil {
			return fmt.Errorf("failed to get exclude-std flag: %w", err)
		}
	}
	if f.Changed("output") {
		value, err := f.GetString("output")
		if err != nil {
			return fmt.Errorf("failed to get output flag: %w", err)
		}
		if o.Output, err = readOutputKind(value); err != nil {
			return err
		}
	}
	if f.Changed("output-dir") {
		if o.OutputDir, err = f.GetString("output-dir"); err != nil {
			return fmt.Errorf("failed to get output-dir flag: %w", err)
		}
	}
	// Cargo flags exist only on commands that compile.
	for name, dst := range map[string]*string{"touch": &o.Touch, "cargo": &o.Cargo, "toolchain": &o.Toolchain} {
		if f.Lookup(name) == nil || !f.Changed(name) {
			continue
		}
		if *dst, err = f.GetString(name); err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	return nil
}

func (o reportOptions) packageName() string {
	return o.Manifest.PackageName()
}

func (o reportOptions) cargoOptions(args []string) *cargo.Options {
	return &cargo.Options{
		Cargo:     o.Cargo,
		Toolchain: o.Toolchain,
		Args:      args,
		Touch:     o.Touch,
	}
}
