package main

import (
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"nerva/internal/logging"
	"nerva/internal/mcpserver"
	"nerva/internal/metrics"
)

var serveMCPCmd = &cobra.Command{
	Use:   "serve-mcp",
	Short: "Start the MCP server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing dispatch_task,
get_thread, and search_memory. An editor or agent connects via its
MCP configuration and drives the same pipeline the CLI uses.`,
	RunE: runServeMCP,
}

var serveMetricsFlags struct {
	addr string
}

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve Prometheus metrics over HTTP",
	RunE:  runServeMetrics,
}

func init() {
	serveMetricsCmd.Flags().StringVar(&serveMetricsFlags.addr, "addr", "", "listen address (overrides NERVA_METRICS_ADDR)")
}

func runServeMCP(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpserver.NewServer(a.Dispatcher)
	logging.New("mcp").Info("starting nerva MCP server over stdio")
	return srv.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func runServeMetrics(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveMetricsFlags.addr
	if addr == "" {
		addr = a.Config.MetricsAddr
	}
	if addr == "" {
		return fmt.Errorf("serve-metrics: no listen address; set --addr or NERVA_METRICS_ADDR")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	logging.New("metrics").Info("serving metrics", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve-metrics: %w", err)
	}
	return nil
}
