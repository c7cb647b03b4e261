package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maraichr/catalograph/internal/api"
	"github.com/maraichr/catalograph/internal/catalog"
	"github.com/maraichr/catalograph/internal/config"
	"github.com/maraichr/catalograph/internal/graph"
	"github.com/maraichr/catalograph/internal/history"
	"github.com/maraichr/catalograph/internal/lineage"
	"github.com/maraichr/catalograph/internal/llm"
	"github.com/maraichr/catalograph/internal/query"
	vk "github.com/maraichr/catalograph/internal/store/valkey"
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

	ctx := context.Background()

	// Neo4j. A failed connectivity check is not fatal: /readyz reports it and
	// every request surfaces STORE_UNAVAILABLE until the database comes up.
	graphClient, err := graph.NewClient(cfg.Neo4j)
	if err != nil {
		logger.Error("failed to create neo4j client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer graphClient.Close(ctx)
	if err := graphClient.Verify(ctx); err != nil {
		logger.Warn("neo4j not reachable at startup", slog.String("uri", cfg.Neo4j.URI), slog.String("error", err.Error()))
	} else {
		if err := graphClient.EnsureIndexes(ctx); err != nil {
			logger.Warn("neo4j ensure indexes failed", slog.String("error", err.Error()))
		}
		logger.Info("connected to neo4j", slog.String("uri", cfg.Neo4j.URI))
	}

	// Query history
	var hist history.Store
	switch cfg.History.Backend {
	case "valkey":
		vkClient, err := vk.NewClient(ctx, cfg.Valkey)
		if err != nil {
			logger.Error("failed to connect to valkey", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer vkClient.Close()
		hist = history.NewValkeyStore(vkClient, cfg.History.Key)
		logger.Info("query history in valkey", slog.String("addr", cfg.Valkey.Addr), slog.String("key", cfg.History.Key))
	default:
		hist = history.NewMemoryStore()
		logger.Info("query history in memory", slog.Int("cap", history.MaxEntries))
	}

	if cfg.OpenAI.APIKey == "" {
		logger.Warn("OPENAI_API_KEY not set, /api/ask will fail")
	}
	llmClient := llm.NewClient(cfg.OpenAI, logger)

	catalogSvc := catalog.NewService(graphClient, logger)
	router := api.NewRouter(logger, api.RouterDeps{
		Store:       graphClient,
		Catalog:     catalogSvc,
		Lineage:     lineage.NewTraverser(graphClient, logger),
		Query:       query.NewService(graphClient, catalogSvc, llmClient, hist, logger),
		History:     hist,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
