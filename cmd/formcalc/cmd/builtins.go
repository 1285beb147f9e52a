package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/a3tai/mcp-formcalc/internal/formcalc"
	"github.com/a3tai/mcp-formcalc/internal/formcalc/encode"
)

func newBuiltinsCmd() *cobra.Command {
	var category, format string

	builtinsCmd := &cobra.Command{
		Use:   "builtins",
		Short: "List the FormCalc builtin functions",
		Long: `Lists the predefined FormCalc functions grouped by category.

Examples:
  formcalc builtins
  formcalc builtins --category financial
  formcalc builtins --format yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			byCategory := formcalc.BuiltinsByCategory()
			if category != "" {
				names, ok := byCategory[formcalc.BuiltinCategory(strings.ToLower(category))]
				if !ok {
					return fmt.Errorf("unknown builtin category: %s", category)
				}
				byCategory = map[formcalc.BuiltinCategory][]string{
					formcalc.BuiltinCategory(strings.ToLower(category)): names,
				}
			}

			if format == "text" {
				categories := make([]string, 0, len(byCategory))
				for c := range byCategory {
					categories = append(categories, string(c))
				}
				sort.Strings(categories)
				for _, c := range categories {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", c,
						strings.Join(byCategory[formcalc.BuiltinCategory(c)], ", "))
				}
				return nil
			}

			f, err := encode.ParseFormat(format)
			if err != nil {
				return err
			}
			plain := make(map[string]any, len(byCategory))
			for c, names := range byCategory {
				plain[string(c)] = names
			}
			data, err := encode.Marshal(plain, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	builtinsCmd.Flags().StringVarP(&category, "category", "c", "", "Only list this category")
	builtinsCmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, json, yaml or cbor")

	return builtinsCmd
}
