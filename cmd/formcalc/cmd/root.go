package cmd

import (
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	verbose bool
}

// NewRootCmd builds the formcalc command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "formcalc",
		Short: "Parse and inspect FormCalc scripts",
		Long: `formcalc parses FormCalc, the expression language of XFA forms, without
running it.

Commands:
  parse     - dump the syntax tree and report of a script
  scripts   - parse every FormCalc script embedded in an XFA PDF
  builtins  - list the predefined functions`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetFlags(log.LstdFlags)
			if opts.verbose {
				log.SetOutput(cmd.ErrOrStderr())
			} else {
				log.SetOutput(io.Discard)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newParseCmd(opts))
	rootCmd.AddCommand(newScriptsCmd(opts))
	rootCmd.AddCommand(newBuiltinsCmd())

	return rootCmd
}

// Execute runs the command tree with the process arguments
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
}
