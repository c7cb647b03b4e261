package tools

import (
	"context"
	"log/slog"

	"github.com/maraichr/catalograph/internal/mcp"
)

// GetStatsParams are the parameters for the get_stats tool.
type GetStatsParams struct{}

// GetStatsHandler implements the get_stats MCP tool.
type GetStatsHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

// NewGetStatsHandler creates a new handler.
func NewGetStatsHandler(c CatalogService, logger *slog.Logger) *GetStatsHandler {
	return &GetStatsHandler{catalog: c, logger: logger}
}

// Handle returns entity counts for the catalog.
func (h *GetStatsHandler) Handle(ctx context.Context, _ GetStatsParams) (string, error) {
	stats, err := h.catalog.Stats(ctx)
	if err != nil {
		return "", WrapTableError("", err)
	}
	return mcp.FormatStats(stats), nil
}
