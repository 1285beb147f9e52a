package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-formcalc/internal/config"
	"github.com/a3tai/mcp-formcalc/internal/formcalc/encode"
	"github.com/a3tai/mcp-formcalc/internal/xfa"
)

type scriptsOptions struct {
	*rootOptions
	format        string
	reader        string
	maxFileSize   int64
	maxScriptSize int
	noAST         bool
}

func newScriptsCmd(root *rootOptions) *cobra.Command {
	opts := &scriptsOptions{rootOptions: root}

	scriptsCmd := &cobra.Command{
		Use:   "scripts <pdf>",
		Short: "Parse the FormCalc scripts of an XFA PDF",
		Long: `Reads the XFA packet of a PDF form, extracts every FormCalc script with its
SOM context and event, and parses each one. Scripts that fail to parse are
reported with their error and do not stop the others.

Examples:
  formcalc scripts invoice.pdf
  formcalc scripts invoice.pdf --reader ledongthuc --no-ast --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScripts(cmd, args[0], opts)
		},
	}

	scriptsCmd.Flags().StringVarP(&opts.format, "format", "f", "json", "Output format: json, yaml or cbor")
	scriptsCmd.Flags().StringVar(&opts.reader, "reader", config.DefaultReader, "XFA packet reader: auto, pdfcpu or ledongthuc")
	scriptsCmd.Flags().Int64Var(&opts.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "Maximum PDF file size in bytes")
	scriptsCmd.Flags().IntVar(&opts.maxScriptSize, "max-script-size", config.DefaultMaxScriptSize, "Maximum FormCalc script size in bytes")
	scriptsCmd.Flags().BoolVar(&opts.noAST, "no-ast", false, "Omit the syntax trees")

	return scriptsCmd
}

func runScripts(cmd *cobra.Command, path string, opts *scriptsOptions) error {
	format, err := encode.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	readerType, err := xfa.ParseReaderType(opts.reader)
	if err != nil {
		return err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	svc, err := xfa.NewService(xfa.Config{
		Directory:     filepath.Dir(abs),
		MaxFileSize:   opts.maxFileSize,
		MaxScriptSize: opts.maxScriptSize,
		Reader:        readerType,
		Debug:         opts.verbose,
	})
	if err != nil {
		return err
	}

	result, err := svc.Scripts(cmd.Context(), abs)
	if err != nil {
		return err
	}

	data, err := encode.Marshal(scriptsPayload(result, !opts.noAST), format)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

// scriptsPayload converts a result to plain maps so every encoder sees the
// dumped trees as data
func scriptsPayload(result *xfa.ScriptsResult, includeAST bool) map[string]any {
	scripts := make([]any, 0, len(result.Scripts))
	for _, s := range result.Scripts {
		entry := map[string]any{
			"index":    s.Index,
			"som_path": s.SomPath,
			"event":    s.Event,
			"line":     s.Line,
			"source":   s.Source,
		}
		if s.Ref != "" {
			entry["ref"] = s.Ref
		}
		if s.Name != "" {
			entry["name"] = s.Name
		}
		if s.Error != nil {
			entry["error"] = map[string]any{
				"kind":    s.Error.Kind,
				"message": s.Error.Message,
				"offset":  s.Error.Offset,
			}
		} else {
			entry["report"] = s.Report
			if includeAST {
				entry["ast"] = s.AST
			}
		}
		scripts = append(scripts, entry)
	}

	return map[string]any{
		"path":                 result.Path,
		"reader":               string(result.Reader),
		"parsed":               result.Parsed,
		"failed":               result.Failed,
		"skipped_non_formcalc": result.Skipped,
		"scripts":              scripts,
	}
}
