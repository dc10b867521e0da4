// Package cli implements the property-mapper command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"property-mapper/internal/mapper"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configFile string
	verbose    bool
	noColor    bool
}

// NewRootCmd creates the top-level "property-mapper" command with global
// flags and all subcommands registered.
func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "property-mapper",
		Short: "Describe how Go types map to CQL columns",
		Long: `property-mapper loads Go packages and reports, for each struct, the
properties that map to table columns: their column names, key roles,
codecs, and the reasons other members were excluded.`,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if flags.noColor {
				color.NoColor = true
			}

			if !flags.verbose {
				return nil
			}

			logger, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}

			mapper.SetLogger(logger)

			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = mapper.Logger().Sync()
		},
	}

	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default: ."+configName+".yaml in the working directory)")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log mapping decisions to stderr")
	root.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newDescribeCmd(flags))
	root.AddCommand(newGenerateCmd())

	return root
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		return exitUserError
	}

	return exitSuccess
}
