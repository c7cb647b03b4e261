package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/maraichr/catalograph/internal/mcp"
)

// SearchTablesParams are the parameters for the search_tables tool.
type SearchTablesParams struct {
	Query             string `json:"query,omitempty"`
	Limit             int    `json:"limit,omitempty"`
	MaxResponseTokens int    `json:"max_response_tokens,omitempty"`
}

// SearchTablesHandler implements the search_tables MCP tool.
type SearchTablesHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

// NewSearchTablesHandler creates a new handler.
func NewSearchTablesHandler(c CatalogService, logger *slog.Logger) *SearchTablesHandler {
	return &SearchTablesHandler{catalog: c, logger: logger}
}

// Handle matches tables by name or description. An empty query lists all tables.
func (h *SearchTablesHandler) Handle(ctx context.Context, params SearchTablesParams) (string, error) {
	if params.Limit < 0 {
		return "", fmt.Errorf("limit must not be negative")
	}
	tables, err := h.catalog.SearchTables(ctx, params.Query)
	if err != nil {
		return "", WrapTableError("", err)
	}
	if params.Limit > 0 && len(tables) > params.Limit {
		tables = tables[:params.Limit]
	}

	heading := "Tables"
	if q := strings.TrimSpace(params.Query); q != "" {
		heading = fmt.Sprintf("Tables matching %q", q)
	}
	return mcp.FormatTableList(heading, tables, params.MaxResponseTokens), nil
}
