package main

import (
	"github.com/spf13/cobra"

	"github.com/rhobs/kubeqa/pkg/agent"
	"github.com/rhobs/kubeqa/pkg/mcp"
)

func newMCPCommand(opts *globalOptions) *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the agent as an MCP server",
		Long: `Serve the ask_cluster, list_operations and query_history tools over
the Model Context Protocol. Stdio is used unless --listen is given, in which
case the streamable HTTP transport is served on /mcp.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := opts.newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			mcpServer, err := mcp.NewMCPServer(mcp.KubeQAOptions{
				Manager: agent.NewManager(a.engine, agent.DefaultMaxSessions),
			})
			if err != nil {
				return err
			}

			a.logger.Info("Starting server", "mode", a.engine.Mode(), "listen", listen)
			if listen != "" {
				return mcp.Serve(ctx, mcpServer, listen)
			}
			return mcp.ServeStdio(mcpServer)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address for HTTP mode (e.g., :9100, 127.0.0.1:8080)")
	return cmd
}
