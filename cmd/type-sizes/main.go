package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"typesizes/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "type-sizes",
	Short: "Show the memory layout of Rust types",
	Long: `type-sizes compiles a crate with
  cargo +nightly rustc <args> -- -Zprint-type-sizes
and turns the compiler's layout report into a browsable tree of types,
fields, variants and padding.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupCommand,
	PersistentPostRun: teardownCommand,
}

// main registers subcommands and global flags, then executes the root
// command. A returned error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("min-severity", "info", "hide diagnostics below this severity (info|warning|error)")
	flags.String("ui", "auto", "progress UI (auto|on|off)")
	flags.Bool("cache", false, "cache parsed reports in $XDG_CACHE_HOME/type-sizes")
	flags.Int("jobs", 0, "parallel parse jobs (0 = GOMAXPROCS)")
	flags.CountP("verbose", "v", "increase log verbosity (repeatable)")
	flags.BoolP("quiet", "q", false, "disable logging")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.String("trace", "", "write a trace to this file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|stage|detail|debug)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Duration("trace-heartbeat", 0, "emit trace heartbeats at this interval (0 disables)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func useColor(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(f), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
}
