package tools

import (
	"context"
	"errors"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/maraichr/catalograph/internal/catalog"
	"github.com/maraichr/catalograph/internal/graph"
	"github.com/maraichr/catalograph/internal/lineage"
)

// ToolHandler is the interface that all tool handlers implement.
type ToolHandler[P any] interface {
	Handle(ctx context.Context, params P) (string, error)
}

// WrapHandler adapts a ToolHandler into the SDK's AddTool callback.
// It handles nil params by using a zero value and maps errors to CallToolResult.
func WrapHandler[P any](h ToolHandler[P]) func(context.Context, *sdkmcp.CallToolRequest, *P) (*sdkmcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *sdkmcp.CallToolRequest, params *P) (*sdkmcp.CallToolResult, any, error) {
		if params == nil {
			params = new(P)
		}
		result, err := h.Handle(ctx, *params)
		if err != nil {
			return &sdkmcp.CallToolResult{
				IsError: true,
				Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: err.Error()}},
			}, nil, nil
		}
		return &sdkmcp.CallToolResult{
			Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: result}},
		}, nil, nil
	}
}

// WrapTableError translates catalog and lineage errors into messages an agent can act on.
func WrapTableError(name string, err error) error {
	switch {
	case errors.Is(err, catalog.ErrTableNotFound), errors.Is(err, lineage.ErrTableNotFound):
		return fmt.Errorf("table %q not found; use search_tables to find table names", name)
	case errors.Is(err, lineage.ErrInvalidDepth):
		return fmt.Errorf("depth must be between %d and %d", lineage.MinDepth, lineage.MaxDepth)
	case errors.Is(err, graph.ErrStoreUnavailable):
		return fmt.Errorf("graph database unavailable, try again later")
	}
	return err
}
