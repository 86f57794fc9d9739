package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rhobs/kubeqa/pkg/agent"
	"github.com/rhobs/kubeqa/pkg/catalog"
	"github.com/rhobs/kubeqa/pkg/resultutil"
)

// sessionNamespace derives agent session ids from MCP session ids.
var sessionNamespace = uuid.MustParse("5b0c1f0e-7d0a-4c55-9a57-3f4f2f3e1c9a")

const defaultClientSession = "default"

// session returns the agent session bound to the MCP client session in ctx.
// Clients without a session id share one agent session.
func session(ctx context.Context, opts KubeQAOptions) *agent.Session {
	id := defaultClientSession
	if cs := server.ClientSessionFromContext(ctx); cs != nil && cs.SessionID() != "" {
		id = cs.SessionID()
	}
	s, _ := opts.Manager.Session(uuid.NewSHA1(sessionNamespace, []byte(id)).String())
	return s
}

func arguments(req mcp.CallToolRequest) map[string]any {
	if args, ok := req.Params.Arguments.(map[string]any); ok {
		return args
	}
	return nil
}

// AskClusterHandler answers a question through the caller's agent session.
func AskClusterHandler(opts KubeQAOptions) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tools := catalog.ShellTools()
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		_, args, err := tools.Validate(catalog.ToolAskCluster, arguments(req))
		if err != nil {
			return resultutil.NewErrorResult(err).ToMCPResult()
		}

		resp := session(ctx, opts).Answer(ctx, args.String("query"))
		return resultutil.NewAnswerResult(resp).ToMCPResult()
	}
}

// ListOperationsHandler lists the routing catalog.
func ListOperationsHandler(opts KubeQAOptions) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		engine := opts.Manager.Engine()
		return resultutil.NewSuccessResult(OperationsOutput{
			Operations: engine.Catalog().Describe(),
			Strategy:   engine.Strategy(),
			Mode:       engine.Mode(),
		}).ToMCPResult()
	}
}

// QueryHistoryHandler returns the caller's recent questions.
func QueryHistoryHandler(opts KubeQAOptions) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tools := catalog.ShellTools()
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		_, args, err := tools.Validate(catalog.ToolQueryHistory, arguments(req))
		if err != nil {
			return resultutil.NewErrorResult(err).ToMCPResult()
		}

		entries := session(ctx, opts).RecentHistory(args.Int("limit", catalog.DefaultHistoryLimit))
		return resultutil.NewSuccessResult(HistoryOutput{Entries: agent.Summarize(entries)}).ToMCPResult()
	}
}
