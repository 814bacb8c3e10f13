package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"typesizes/internal/pipeline"
)

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Report type sizes from saved compiler output",
	Long: `Parse the output of -Zprint-type-sizes captured earlier, e.g. with
  cargo +nightly rustc -- -Zprint-type-sizes > sizes.txt
Files are parsed in parallel; "-" or no argument reads stdin.`,
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
		inputs, err := parseInputs(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		req := buildRequest(g, opts)
		req.Inputs = inputs

		names := make([]string, len(inputs))
		for i, in := range inputs {
			names[i] = in.Name
		}
		res, err := runPipeline(cmd, g, req, names)
		if err != nil {
			return err
		}
		return renderOutput(cmd, opts, res)
	},
}

func init() {
	addReportFlags(parseCmd)
}

// parseInputs maps arguments to pipeline inputs, reading stdin at most once.
func parseInputs(stdin io.Reader, args []string) ([]pipeline.Input, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	inputs := make([]pipeline.Input, 0, len(args))
	readStdin := false
	for _, arg := range args {
		if arg != "-" {
			inputs = append(inputs, pipeline.Input{Name: arg, Path: arg})
			continue
		}
		if readStdin {
			return nil, fmt.Errorf("stdin (-) given more than once")
		}
		readStdin = true
		text, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		inputs = append(inputs, pipeline.Input{Name: "<stdin>", Text: text})
	}
	return inputs, nil
}
