package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maraichr/catalograph/internal/lineage"
	"github.com/maraichr/catalograph/internal/mcp"
)

// LineageService expands lineage around a table.
type LineageService interface {
	Lineage(ctx context.Context, table string, depth int) (*lineage.Graph, error)
}

// GetLineageParams are the parameters for the get_lineage tool.
type GetLineageParams struct {
	Table             string `json:"table"`
	Depth             int    `json:"depth,omitempty"`
	MaxResponseTokens int    `json:"max_response_tokens,omitempty"`
}

// GetLineageHandler implements the get_lineage MCP tool.
type GetLineageHandler struct {
	lineage LineageService
	logger  *slog.Logger
}

// NewGetLineageHandler creates a new handler.
func NewGetLineageHandler(l LineageService, logger *slog.Logger) *GetLineageHandler {
	return &GetLineageHandler{lineage: l, logger: logger}
}

// Handle expands LOADS_INTO and JOINS relationships around a table.
func (h *GetLineageHandler) Handle(ctx context.Context, params GetLineageParams) (string, error) {
	// Names match exactly, as on the HTTP route; no trimming.
	table := params.Table
	if table == "" {
		return "", fmt.Errorf("table is required")
	}
	if params.Depth == 0 {
		params.Depth = lineage.DefaultDepth
	}

	g, err := h.lineage.Lineage(ctx, table, params.Depth)
	if err != nil {
		return "", WrapTableError(table, err)
	}

	h.logger.Debug("mcp get_lineage",
		slog.String("table", table),
		slog.Int("depth", params.Depth),
		slog.Int("nodes", len(g.Nodes)))
	return mcp.FormatLineage(table, params.Depth, g, params.MaxResponseTokens), nil
}
