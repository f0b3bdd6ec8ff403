package cli

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newRecomputeCommand(opts *options) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "recompute [DOCUMENT_PATH]",
		Short: "Recompute a document and print the report",
		Long: `Loads the document, recomputes every object and prints the recompute report.
The command exits with code 1 when the document could not be fully restored
or when any object failed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "yaml" && output != "json" {
				return usageError(fmt.Errorf("invalid output '%s': must be 'yaml' or 'json'", output))
			}
			cfg, err := loadConfig(cmd, opts, documentArg(args), nil)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Recompute(cmd.Context())
			if err != nil {
				return err
			}
			if err := printReport(cmd, report, output); err != nil {
				return err
			}

			if loadErr := a.LoadErr(); loadErr != nil {
				return &ExitError{Code: 1, Message: loadErr.Error()}
			}
			if !report.Success {
				return &ExitError{Code: 1, Message: fmt.Sprintf("recompute of '%s' finished with %d failed objects", report.Document, len(report.Failures))}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Report format. Options: 'yaml' or 'json'.")
	return cmd
}

func printReport(cmd *cobra.Command, r *recompute.Report, format string) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}
