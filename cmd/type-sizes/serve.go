package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"typesizes/internal/diagfmt"
	"typesizes/internal/pipeline"
	"typesizes/internal/serve"
)

var serveCmd = &cobra.Command{
	Use:   "serve [files...] [-- cargo rustc args...]",
	Short: "Serve the report and a JSON API over HTTP",
	Long: `Run the pipeline once and serve the HTML report at / together with
GET /api/types, /api/types/{index} and /api/diagnostics.
With files the saved output is parsed; otherwise the crate is compiled and
the arguments go to cargo rustc.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := readGlobalOptions(cmd)
		if err != nil {
			return err
		}
		opts, err := resolveReportOptions(cmd)
		if err != nil {
			return err
		}
		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return fmt.Errorf("failed to get addr flag: %w", err)
		}
		fromFiles, err := cmd.Flags().GetBool("files")
		if err != nil {
			return fmt.Errorf("failed to get files flag: %w", err)
		}

		req := buildRequest(g, opts)
		names := []string{pipeline.CompilerInput}
		if fromFiles {
			inputs, err := parseInputs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			req.Inputs = inputs
			names = names[:0]
			for _, in := range inputs {
				names = append(names, in.Name)
			}
		} else {
			req.Compile = opts.cargoOptions(args)
		}

		res, err := runPipeline(cmd, g, req, names)
		if err != nil && !errors.Is(err, errReportErrors) {
			return err
		}
		// A report with errors is still served so the diagnostics can be read.

		diags := diagfmt.BuildDiagnosticsOutput(res.Bag, diagfmt.JSONOpts{IncludeNotes: true, IncludeText: true})
		handler := serve.NewServer(newReport(opts, res), diags, commonlog.GetLogger("type-sizes.serve"))
		return listenAndServe(cmd.Context(), cmd, addr, handler)
	},
}

func init() {
	addReportFlags(serveCmd)
	addCargoFlags(serveCmd)
	serveCmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	serveCmd.Flags().Bool("files", false, "treat arguments as saved compiler output instead of cargo args")
}

func listenAndServe(ctx context.Context, cmd *cobra.Command, addr string, handler http.Handler) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	fmt.Fprintf(cmd.ErrOrStderr(), "serving on http://%s\n", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
