package tools

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Register adds the catalog tools to an SDK server.
func Register(s *sdkmcp.Server, c CatalogService, l LineageService, logger *slog.Logger) {
	sdkmcp.AddTool(s, &sdkmcp.Tool{
		Name:        "get_lineage",
		Description: "Expand table-level data lineage (LOADS_INTO and JOINS, both directions) around a table up to depth 1-5 hops (default 2). Returns tables grouped by hop and the edges between them.",
	}, WrapHandler[GetLineageParams](NewGetLineageHandler(l, logger)))

	sdkmcp.AddTool(s, &sdkmcp.Tool{
		Name:        "get_table",
		Description: "Get a table's description, columns with data types and Critical Data Element tags, and the regions it belongs to. Table names are case-sensitive.",
	}, WrapHandler[GetTableParams](NewGetTableHandler(c, logger)))

	sdkmcp.AddTool(s, &sdkmcp.Tool{
		Name:        "search_tables",
		Description: "Search tables by case-insensitive substring of name or description. An empty query lists every table.",
	}, WrapHandler[SearchTablesParams](NewSearchTablesHandler(c, logger)))

	sdkmcp.AddTool(s, &sdkmcp.Tool{
		Name:        "get_stats",
		Description: "Count tables, columns, clients, accounts, transactions and loans in the catalog.",
	}, WrapHandler[GetStatsParams](NewGetStatsHandler(c, logger)))
}
