package main

import (
	"github.com/spf13/cobra"

	"typesizes/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [-- cargo rustc args...]",
	Short: "Compile the current crate and report its type sizes",
	Long: `Compile the crate in the current directory with
  cargo +<toolchain> rustc <args> -- -Zprint-type-sizes
and report the layout of every type. Arguments after -- go to cargo rustc.
Defaults can be set in [package.metadata.type-sizes] of Cargo.toml.`,
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
		req := buildRequest(g, opts)
		req.Compile = opts.cargoOptions(args)
		log.Infof("compiling %s", opts.packageName())

		res, err := runPipeline(cmd, g, req, []string{pipeline.CompilerInput})
		if err != nil {
			return err
		}
		return renderOutput(cmd, opts, res)
	},
}

func init() {
	addReportFlags(runCmd)
	addCargoFlags(runCmd)
}
