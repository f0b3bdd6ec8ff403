package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/specialistvlad/featuregraph/internal/app"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *options) *cobra.Command {
	var (
		port            int
		redisAddr       string
		reportHistory   int
		notifyURL       string
		notifyNamespace string
	)
	cmd := &cobra.Command{
		Use:   "serve [DOCUMENT_PATH]",
		Short: "Serve the HTTP control surface",
		Long: `Loads and recomputes the document, then serves health, metrics, graph,
object and report endpoints until interrupted. Reports are kept in memory
unless a redis address is configured; recompute events are published to a
socket.io server when a notify URL is configured.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg, err := loadConfig(cmd, opts, documentArg(args), func(cfg *app.Config) {
				if flags.Changed("port") || cfg.HTTPPort == 0 {
					cfg.HTTPPort = port
				}
				if flags.Changed("redis-addr") {
					cfg.RedisAddr = redisAddr
				}
				if flags.Changed("report-history") {
					cfg.ReportHistory = reportHistory
				}
				if flags.Changed("notify-url") {
					cfg.NotifyURL = notifyURL
				}
				if flags.Changed("notify-namespace") {
					cfg.NotifyNamespace = notifyNamespace
				}
			})
			if err != nil {
				return err
			}
			a, err := newApp(cmd, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&port, "port", "p", 8080, "Port for the HTTP control server.")
	f.StringVar(&redisAddr, "redis-addr", "", "Redis address for the report history. Empty keeps reports in memory.")
	f.IntVar(&reportHistory, "report-history", 0, "Reports kept per document. 0 uses the default.")
	f.StringVar(&notifyURL, "notify-url", "", "socket.io server receiving recompute events. Empty disables notifications.")
	f.StringVar(&notifyNamespace, "notify-namespace", "/", "socket.io namespace for recompute events.")
	return cmd
}
