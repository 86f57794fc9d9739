package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/rhobs/kubeqa/pkg/agent"
)

// KubeQAOptions contains configuration options for the MCP server
type KubeQAOptions struct {
	Manager *agent.Manager
}

const (
	mcpEndpoint            = "/mcp"
	healthEndpoint         = "/health"
	serverName             = "kubeqa"
	serverVersion          = "1.0.0"
	defaultShutdownTimeout = 10 * time.Second

	serverInstructions = `You are a Kubernetes assistant with read-only access to a cluster through this MCP server.

## HOW TO ANSWER CLUSTER QUESTIONS

Pass the user's question to ask_cluster as-is. It decides which cluster queries to run
(pods, nodes, namespaces, services, cluster overview), runs them and returns a rendered
answer plus the structured results.

- Keep namespace names exactly as the user wrote them.
- One question per call. Split unrelated questions into separate calls.
- If the answer lists example questions instead of data, the question did not mention a
  cluster resource. Ask the user to rephrase.
- Warnings starting with ⚠ mean part of the data could not be read. Report them.

## OTHER TOOLS

- list_operations: the queries ask_cluster can run and their parameters
- query_history: the questions already answered in this session

This server never changes cluster state.`
)

func NewMCPServer(opts KubeQAOptions) (*server.MCPServer, error) {
	if opts.Manager == nil {
		return nil, errors.New("mcp: session manager must not be nil")
	}
	mcpServer := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithLogging(),
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	if err := SetupTools(mcpServer, opts); err != nil {
		return nil, err
	}

	return mcpServer, nil
}

func SetupTools(mcpServer *server.MCPServer, opts KubeQAOptions) error {
	mcpServer.AddTool(CreateAskClusterTool(), AskClusterHandler(opts))
	mcpServer.AddTool(CreateListOperationsTool(), ListOperationsHandler(opts))
	mcpServer.AddTool(CreateQueryHistoryTool(), QueryHistoryHandler(opts))
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Incoming request", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)
		slog.Debug("Request headers", "headers", r.Header)
		if r.ContentLength > 0 {
			slog.Info("Request content length", "content_length", r.ContentLength)
		}
		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler serving MCP over streamable HTTP and the
// health endpoint.
func Handler(mcpServer *server.MCPServer, httpServer *http.Server) http.Handler {
	mux := http.NewServeMux()

	streamableHTTPServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithStreamableHTTPServer(httpServer),
	)
	mux.Handle(mcpEndpoint, streamableHTTPServer)

	mux.Handle("/", streamableHTTPServer)

	mux.HandleFunc(healthEndpoint, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return loggingMiddleware(mux)
}

func Serve(ctx context.Context, mcpServer *server.MCPServer, listenAddr string) error {
	httpServer := &http.Server{
		Addr:              listenAddr,
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer.Handler = Handler(mcpServer, httpServer)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server starting", "listen_addr", listenAddr, "mcp_endpoint", mcpEndpoint)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		slog.Warn("Received signal, initiating graceful shutdown", "signal", sig)
		cancel()
	case <-ctx.Done():
		slog.Warn("Context cancelled, initiating graceful shutdown")
	case err := <-serverErr:
		slog.Error("HTTP server error", "error", err)
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer shutdownCancel()

	slog.Info("Shutting down HTTP server gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
		return err
	}

	slog.Info("HTTP server shutdown complete")
	return nil
}

// ServeStdio serves MCP over stdin/stdout until the input is closed.
func ServeStdio(mcpServer *server.MCPServer) error {
	slog.Info("Serving MCP over stdio")
	return server.ServeStdio(mcpServer)
}
