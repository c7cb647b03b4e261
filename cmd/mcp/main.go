package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maraichr/catalograph/internal/catalog"
	"github.com/maraichr/catalograph/internal/config"
	"github.com/maraichr/catalograph/internal/graph"
	"github.com/maraichr/catalograph/internal/lineage"
	"github.com/maraichr/catalograph/internal/mcp"
	"github.com/maraichr/catalograph/internal/mcp/tools"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	graphClient, err := graph.NewClient(cfg.Neo4j)
	if err != nil {
		logger.Error("failed to create neo4j client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer graphClient.Close(context.Background())
	if err := graphClient.Verify(ctx); err != nil {
		logger.Warn("neo4j not reachable at startup", slog.String("error", err.Error()))
	} else {
		logger.Info("connected to neo4j")
	}

	mcpServer := mcp.NewServer("catalograph", "1.0.0", logger)

	// Tools live in mcp/tools, which imports mcp for formatting; wire them here.
	tools.Register(mcpServer.SDK(),
		catalog.NewService(graphClient, logger),
		lineage.NewTraverser(graphClient, logger),
		logger)

	httpServer := &http.Server{Addr: cfg.MCP.Addr, Handler: mcpServer.Mux()}

	go func() {
		logger.Info("MCP server listening", slog.String("addr", cfg.MCP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP HTTP server error", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()
	logger.Info("MCP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("MCP HTTP shutdown", slog.String("error", err.Error()))
	}
	logger.Info("MCP server stopped")
}
