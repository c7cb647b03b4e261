// Command seed writes the bank metadata catalog into Neo4j.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/maraichr/catalograph/internal/config"
	"github.com/maraichr/catalograph/internal/graph"
)

func main() {
	reset := flag.Bool("reset", false, "delete every node and relationship before seeding")
	file := flag.String("file", "", "JSON catalog to load instead of the built-in sample")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.Level}))

	if err := run(context.Background(), cfg, logger, *file, *reset); err != nil {
		logger.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, file string, reset bool) error {
	catalog := graph.SampleCatalog()
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read catalog file: %w", err)
		}
		catalog = graph.SeedCatalog{}
		if err := json.Unmarshal(data, &catalog); err != nil {
			return fmt.Errorf("parse catalog file: %w", err)
		}
	}

	client, err := graph.NewClient(cfg.Neo4j)
	if err != nil {
		return err
	}
	defer client.Close(ctx)

	if err := client.Verify(ctx); err != nil {
		return fmt.Errorf("connect to neo4j at %s: %w", cfg.Neo4j.URI, err)
	}
	if err := client.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	stats, err := client.Seed(ctx, catalog, reset)
	if err != nil {
		return err
	}
	logger.Info("catalog seeded",
		slog.Bool("reset", reset),
		slog.Int("tables", len(catalog.Tables)),
		slog.Int64("nodes", stats.Nodes),
		slog.Int64("relationships", stats.Relationships))
	return nil
}
