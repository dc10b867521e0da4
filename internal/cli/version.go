package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release of the property-mapper tool.
const Version = "0.1.0"

const modulePath = "property-mapper"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the property-mapper version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "property-mapper v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
