package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("type-sizes")

var cleanups []func()

// setupCommand runs before every subcommand. It loads .env, configures
// logging, starts profilers and installs the tracer on the command context.
func setupCommand(cmd *cobra.Command, args []string) error {
	// A missing .env is fine.
	_ = godotenv.Load()

	if err := setupLogging(cmd); err != nil {
		return err
	}
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, stopProfiling)
	cleanup, err := setupTracing(cmd)
	if err != nil {
		teardownCommand(cmd, args)
		return err
	}
	cleanups = append(cleanups, cleanup)
	return nil
}

// teardownCommand undoes setupCommand in reverse order.
func teardownCommand(cmd *cobra.Command, args []string) {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	cleanups = nil
}

func setupLogging(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	verbose, err := flags.GetCount("verbose")
	if err != nil {
		return fmt.Errorf("failed to get verbose flag: %w", err)
	}
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	logFile, err := flags.GetString("log-file")
	if err != nil {
		return fmt.Errorf("failed to get log-file flag: %w", err)
	}
	if quiet {
		verbose = -1
	}
	var path *string
	if logFile != "" {
		path = &logFile
	}
	commonlog.Configure(verbose, path)
	return nil
}
