package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"property-mapper/internal/analyze"
	"property-mapper/internal/gen"
	"property-mapper/internal/mapper"
)

// generateFlags holds the flags of the generate command.
type generateFlags struct {
	output     string
	filename   string
	suffix     string
	noComments bool
	dryRun     bool
}

func newGenerateCmd() *cobra.Command {
	flags := &generateFlags{}
	defaults := gen.DefaultGeneratorConfig()

	cmd := &cobra.Command{
		Use:   "generate <package-pattern> [Type...]",
		Short: "Generate reflection-free type descriptors",
		Long: `Generate, for each named struct or every exported struct of the matching
packages, a function returning an introspect.StaticType. Mapping the
descriptor gives the same properties as mapping the type through
reflection, with plain closures for field and method access.

Files are written next to the package sources unless --output is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flags, args[0], args[1:])
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write files to this directory")
	cmd.Flags().StringVar(&flags.filename, "file", defaults.Filename, "name of the generated file")
	cmd.Flags().StringVar(&flags.suffix, "suffix", defaults.FuncSuffix, "suffix of descriptor function names")
	cmd.Flags().BoolVar(&flags.noComments, "no-comments", false, "omit doc comments on generated functions")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print generated code instead of writing files")

	return cmd
}

func runGenerate(cmd *cobra.Command, flags *generateFlags, pattern string, names []string) error {
	graph, err := analyze.NewAnalyzer().LoadPackages(pattern)
	if err != nil {
		return err
	}

	var targets []*analyze.SourceType

	if len(names) > 0 {
		resolved, diags := graph.Resolve(names...)
		if err := diags.Error(); err != nil {
			return err
		}

		targets = resolved
	} else if len(graph.Structs()) == 0 {
		return fmt.Errorf("no structs found in %s", pattern)
	}

	g := gen.NewGenerator(gen.GeneratorConfig{
		Filename:         flags.filename,
		FuncSuffix:       flags.suffix,
		DebugDir:         flags.output,
		GenerateComments: !flags.noComments,
	})

	files, err := g.Generate(graph, targets...)
	if err != nil {
		return err
	}

	log := mapper.Logger()

	if flags.dryRun {
		for _, f := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "// %s/%s\n%s", f.Package, f.Filename, f.Content)
		}

		return nil
	}

	if err := gen.WriteFiles(files, flags.output); err != nil {
		return err
	}

	for _, f := range files {
		log.Debug("wrote descriptors", zap.String("package", f.Package), zap.String("file", f.Filename))
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s/%s\n", f.Package, f.Filename)
	}

	return nil
}
