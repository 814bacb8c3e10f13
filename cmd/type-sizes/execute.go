package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"typesizes/internal/cache"
	"typesizes/internal/diag"
	"typesizes/internal/diagfmt"
	"typesizes/internal/pipeline"
	"typesizes/internal/reportfmt"
	"typesizes/internal/trace"
	"typesizes/internal/ui"
)

// errReportErrors is returned after diagnostics were printed.
var errReportErrors = errors.New("the report could not be parsed cleanly")

// globalOptions are the persistent flags that shape a pipeline run.
type globalOptions struct {
	maxDiagnostics int
	minSeverity    diag.Severity
	jobs           int
	cache          bool
	timings        bool
	ui             uiMode
}

func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	var g globalOptions
	flags := cmd.Root().PersistentFlags()
	var err error
	if g.maxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
		return g, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	minSeverity, err := flags.GetString("min-severity")
	if err != nil {
		return g, fmt.Errorf("failed to get min-severity flag: %w", err)
	}
	if g.minSeverity, err = diag.ParseSeverity(minSeverity); err != nil {
		return g, err
	}
	if g.jobs, err = flags.GetInt("jobs"); err != nil {
		return g, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if g.cache, err = flags.GetBool("cache"); err != nil {
		return g, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if g.timings, err = flags.GetBool("timings"); err != nil {
		return g, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if g.ui, err = uiModeFromFlags(cmd); err != nil {
		return g, err
	}
	return g, nil
}

// buildRequest turns resolved options into a pipeline request.
func buildRequest(g globalOptions, opts reportOptions) *pipeline.Request {
	req := &pipeline.Request{
		Include:        opts.Include,
		Exclude:        opts.Exclude,
		SortSize:       opts.SortSize,
		MaxLength:      opts.MaxLength,
		MaxDiagnostics: g.maxDiagnostics,
		Jobs:           g.jobs,
	}
	if g.cache {
		c, err := cache.Open("type-sizes")
		if err != nil {
			log.Warningf("cache disabled: %s", err)
		} else {
			req.Cache = c
		}
	}
	return req
}

// runPipeline executes req, prints diagnostics and timings, and fails when
// the run or the report had errors.
func runPipeline(cmd *cobra.Command, g globalOptions, req *pipeline.Request, inputs []string) (pipeline.Result, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, cmd.Name())
	defer span.End("")

	var (
		res pipeline.Result
		err error
	)
	if shouldUseTUI(g.ui) {
		res, err = runPipelineWithUI(ctx, "type-sizes", inputs, req)
	} else {
		res, err = pipeline.Run(ctx, req)
	}

	if printErr := printDiagnostics(cmd.ErrOrStderr(), res, g.minSeverity); printErr != nil {
		return res, printErr
	}
	if g.timings {
		if printErr := printStageTimings(cmd.ErrOrStderr(), res.Timings); printErr != nil {
			return res, printErr
		}
	}
	if res.Timer != nil {
		log.Debug(res.Timer.Summary())
	}
	if err != nil {
		return res, err
	}
	if res.Bag != nil && res.Bag.HasErrors() {
		return res, errReportErrors
	}
	return res, nil
}

func printDiagnostics(w io.Writer, res pipeline.Result, minSeverity diag.Severity) error {
	if res.Bag == nil || res.Bag.Len() == 0 {
		return nil
	}
	colored := false
	if f, ok := w.(*os.File); ok {
		colored = isTerminal(f)
	}
	if err := diagfmt.Pretty(w, res.Bag, diagfmt.PrettyOpts{
		Color:       colored,
		ShowText:    true,
		ShowNotes:   true,
		MinSeverity: minSeverity,
	}); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, diagfmt.Summary(res.Bag))
	return err
}

// renderOutput writes the types in the chosen format.
func renderOutput(cmd *cobra.Command, opts reportOptions, res pipeline.Result) error {
	switch opts.Output {
	case outputPretty:
		colored, err := useColor(cmd, os.Stdout)
		if err != nil {
			return err
		}
		return reportfmt.Pretty(cmd.OutOrStdout(), res.Types, reportfmt.PrettyOpts{Color: colored})
	case outputJSON:
		return reportfmt.JSON(cmd.OutOrStdout(), newReport(opts, res))
	case outputTUI:
		model := ui.NewBrowserModel(opts.packageName(), res.Types)
		_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
		return err
	default:
		path, err := reportfmt.WriteHTML(opts.OutputDir, newReport(opts, res))
		if err != nil {
			return err
		}
		log.Infof("HTML output saved to %s", path)
		fmt.Fprintf(cmd.ErrOrStderr(), "HTML output saved to %s\n", path)
		return nil
	}
}

func newReport(opts reportOptions, res pipeline.Result) reportfmt.Report {
	return reportfmt.NewReport(opts.packageName(), res.Command, time.Now(), res.Types)
}
