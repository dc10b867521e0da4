package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"property-mapper/internal/analyze"
	"property-mapper/internal/mapper"
)

// describeFlags holds the output flags of the describe command.
type describeFlags struct {
	format  string
	explain bool
}

func newDescribeCmd(root *rootFlags) *cobra.Command {
	flags := &describeFlags{}

	cmd := &cobra.Command{
		Use:   "describe <package-pattern> [Type...]",
		Short: "Describe the column mapping of structs in a package",
		Long: `Load the packages matching the pattern and print the mapping of the named
structs, or of every exported struct when no type is given. Types are bare
names (Product) or qualified names (example.com/shop.Product).

Settings come from flags, PROPMAP_* environment variables and the config
file, in that order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDescribe(cmd, root, flags, args[0], args[1:])
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", formatTable, "output format: table or yaml")
	cmd.Flags().BoolVar(&flags.explain, "explain", false, "list excluded members and why")
	registerSettingFlags(cmd.Flags())

	return cmd
}

func runDescribe(cmd *cobra.Command, root *rootFlags, flags *describeFlags, pattern string, names []string) error {
	render, err := rendererFor(flags.format)
	if err != nil {
		return err
	}

	settings, err := loadSettings(cmd.Flags(), root.configFile)
	if err != nil {
		return err
	}

	cfg, err := settings.Configuration(nil)
	if err != nil {
		return err
	}

	graph, err := analyze.NewAnalyzer().LoadPackages(pattern)
	if err != nil {
		return err
	}

	targets := graph.Structs()

	if len(names) > 0 {
		resolved, diags := graph.Resolve(names...)
		if err := diags.Error(); err != nil {
			return err
		}

		targets = resolved
	}

	if len(targets) == 0 {
		return fmt.Errorf("no structs found in %s", pattern)
	}

	log := mapper.Logger()

	var mappings []*mapper.Mapping

	failed := 0

	for _, t := range targets {
		m, err := mapper.Map(t, cfg)
		if err != nil {
			failed++
			log.Debug("mapping failed", zap.String("type", t.ID().String()), zap.Error(err))
			fmt.Fprintln(cmd.ErrOrStderr(), err)

			continue
		}

		mappings = append(mappings, m)
	}

	if err := render(cmd.OutOrStdout(), mappings, flags.explain); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d types could not be mapped", failed, len(targets))
	}

	return nil
}
