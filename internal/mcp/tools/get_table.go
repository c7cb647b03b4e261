package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/maraichr/catalograph/internal/catalog"
	"github.com/maraichr/catalograph/internal/mcp"
)

// CatalogService reads the table catalog.
type CatalogService interface {
	SearchTables(ctx context.Context, query string) ([]catalog.TableSummary, error)
	GetTableDetails(ctx context.Context, name string) (*catalog.TableDetail, error)
	Stats(ctx context.Context) (map[string]int64, error)
}

// GetTableParams are the parameters for the get_table tool.
type GetTableParams struct {
	Name              string `json:"name"`
	MaxResponseTokens int    `json:"max_response_tokens,omitempty"`
}

// GetTableHandler implements the get_table MCP tool.
type GetTableHandler struct {
	catalog CatalogService
	logger  *slog.Logger
}

// NewGetTableHandler creates a new handler.
func NewGetTableHandler(c CatalogService, logger *slog.Logger) *GetTableHandler {
	return &GetTableHandler{catalog: c, logger: logger}
}

// Handle returns one table's columns, CDE tags and regions.
func (h *GetTableHandler) Handle(ctx context.Context, params GetTableParams) (string, error) {
	name := params.Name
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	detail, err := h.catalog.GetTableDetails(ctx, name)
	if err != nil {
		return "", WrapTableError(name, err)
	}
	return mcp.FormatTableDetail(detail, params.MaxResponseTokens), nil
}
