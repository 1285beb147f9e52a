package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-formcalc/internal/formcalc"
	"github.com/a3tai/mcp-formcalc/internal/formcalc/analysis"
	"github.com/a3tai/mcp-formcalc/internal/formcalc/encode"
)

type parseOptions struct {
	*rootOptions
	format   string
	noReport bool
	maxSize  int
}

func newParseCmd(root *rootOptions) *cobra.Command {
	opts := &parseOptions{rootOptions: root}

	parseCmd := &cobra.Command{
		Use:   "parse [file|-]",
		Short: "Dump the syntax tree of a FormCalc script",
		Long: `Parses a FormCalc script and writes its syntax tree and static report.
Without a file, or with "-", the script is read from standard input.

Examples:
  formcalc parse total.fc
  echo 'Sum(a, b) * 2' | formcalc parse --format yaml
  formcalc parse script.fc --format cbor > tree.cbor`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	parseCmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json, yaml or cbor")
	parseCmd.Flags().BoolVar(&opts.noReport, "no-report", false, "Only write the syntax tree")
	parseCmd.Flags().IntVar(&opts.maxSize, "max-size", 0, "Reject scripts larger than this many bytes (0 for no limit)")

	return parseCmd
}

func runParse(cmd *cobra.Command, args []string, opts *parseOptions) error {
	format, err := encode.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	name := "-"
	if len(args) == 1 {
		name = args[0]
	}
	source, err := readSource(cmd.InOrStdin(), name)
	if err != nil {
		return err
	}

	list, err := formcalc.ParseWithOptions(source, formcalc.WithMaxSourceSize(opts.maxSize))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	var payload any = formcalc.Dump(list)
	if !opts.noReport {
		payload = map[string]any{
			"ast":    payload,
			"report": analysis.Analyze(list),
		}
	}

	data, err := encode.Marshal(payload, format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func readSource(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read standard input: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}
