package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rhobs/kubeqa/pkg/agent"
	"github.com/rhobs/kubeqa/pkg/web"
)

func newServeCommand(opts *globalOptions) *cobra.Command {
	var (
		listen      string
		maxSessions int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP query API",
		Long: `Serve the JSON API (/api/query, /api/history, /api/examples,
/api/operations, /api/health) and Prometheus metrics on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := opts.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if listen == "" {
				listen = a.cfg.Server.Listen
			}
			handler, err := web.NewRouter(web.Options{
				Manager:        agent.NewManager(a.engine, maxSessions),
				Prober:         a.reader,
				Gatherer:       a.registry,
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				Logger:         a.logger,
			})
			if err != nil {
				return err
			}
			return web.Serve(ctx, handler, listen, a.logger)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (defaults to server.listen, :8080)")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", agent.DefaultMaxSessions, "Maximum number of concurrent sessions kept in memory")
	return cmd
}
