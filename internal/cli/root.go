package cli

import (
	"context"
	"io"

	"github.com/specialistvlad/featuregraph/internal/app"
	"github.com/specialistvlad/featuregraph/internal/hcl_adapter"
	"github.com/spf13/cobra"
)

// options are the flags shared by every command.
type options struct {
	configFile string
	logLevel   string
	logFormat  string
	maxRuns    int
}

// NewRootCommand builds the featuregraph command tree. Command output goes
// to outW; logs and diagnostics go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "featuregraph",
		Short: "Featuregraph recomputes parametric feature documents",
		Long: `Featuregraph loads a document of features linked through their properties,
orders them by dependency and recomputes whatever is out of date.

A document is a .hcl file or a directory of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configFile, "config", "c", "", "YAML config file; flags override its values.")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&opts.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.IntVar(&opts.maxRuns, "max-executions", 0, "How often one object may execute in a single recompute. 0 uses the default.")

	root.AddCommand(
		newRecomputeCommand(opts),
		newGraphCommand(opts),
		newServeCommand(opts),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, outW, errW io.Writer, args []string) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// loadConfig merges the config file with the flags that were set on cmd
// and validates the result. documentArg, when not empty, wins over the
// file's document path.
func loadConfig(cmd *cobra.Command, opts *options, documentArg string, apply func(cfg *app.Config)) (*app.Config, error) {
	var cfg app.Config
	if opts.configFile != "" {
		fileCfg, err := app.ReadConfigFile(opts.configFile)
		if err != nil {
			return nil, usageError(err)
		}
		cfg = fileCfg
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") || cfg.LogFormat == "" {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("max-executions") {
		cfg.MaxExecutionsPerObject = opts.maxRuns
	}
	if documentArg != "" {
		cfg.DocumentPath = documentArg
	}
	if apply != nil {
		apply(&cfg)
	}

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return validated, nil
}

func newApp(cmd *cobra.Command, cfg *app.Config) (*app.App, error) {
	return app.NewApp(cmd.Context(), cmd.ErrOrStderr(), cfg, hcl_adapter.NewLoader())
}

func documentArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
