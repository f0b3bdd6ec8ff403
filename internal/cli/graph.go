package cli

import (
	"fmt"

	"github.com/specialistvlad/featuregraph/internal/export"
	"github.com/spf13/cobra"
)

func newGraphCommand(opts *options) *cobra.Command {
	var (
		format      string
		noRecompute bool
	)
	cmd := &cobra.Command{
		Use:   "graph [DOCUMENT_PATH]",
		Short: "Export the dependency graph",
		Long: `Loads the document and prints its dependency graph as Graphviz dot or as a
Mermaid flowchart. Unless --no-recompute is given the document is recomputed
first, so failed objects and cycles are highlighted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts, documentArg(args), nil)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if !noRecompute {
				if _, err := a.Recompute(cmd.Context()); err != nil {
					return err
				}
			}
			out, err := a.Graph(cmd.Context(), format)
			if err != nil {
				return usageError(err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", export.FormatDot, "Graph format. Options: 'dot' or 'mermaid'.")
	cmd.Flags().BoolVar(&noRecompute, "no-recompute", false, "Print the graph as loaded, without recomputing.")
	return cmd
}
