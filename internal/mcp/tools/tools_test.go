package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maraichr/catalograph/internal/catalog"
	"github.com/maraichr/catalograph/internal/graph"
	"github.com/maraichr/catalograph/internal/lineage"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type stubCatalog struct {
	tables []catalog.TableSummary
	detail *catalog.TableDetail
	stats  map[string]int64
	err    error
	query  string
}

func (s *stubCatalog) SearchTables(_ context.Context, q string) ([]catalog.TableSummary, error) {
	s.query = q
	if s.err != nil {
		return nil, s.err
	}
	return catalog.FilterTables(s.tables, q), nil
}

func (s *stubCatalog) GetTableDetails(_ context.Context, name string) (*catalog.TableDetail, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.detail == nil || s.detail.Name != name {
		return nil, fmt.Errorf("%w: %s", catalog.ErrTableNotFound, name)
	}
	return s.detail, nil
}

func (s *stubCatalog) Stats(context.Context) (map[string]int64, error) {
	return s.stats, s.err
}

type stubLineage struct {
	table string
	depth int
	err   error
}

func (s *stubLineage) Lineage(_ context.Context, table string, depth int) (*lineage.Graph, error) {
	s.table = table
	s.depth = depth
	if s.err != nil {
		return nil, s.err
	}
	if err := lineage.ValidateDepth(depth); err != nil {
		return nil, err
	}
	return &lineage.Graph{
		Nodes: []lineage.Node{
			{ID: table, Label: table, Type: lineage.RoleCenter, Hop: 0},
			{ID: "LOAN_ACCOUNTS", Label: "LOAN_ACCOUNTS", Type: lineage.RoleRelated, Hop: 1},
		},
		Edges: []lineage.Edge{
			{Source: table, Target: "LOAN_ACCOUNTS", Type: lineage.EdgeJoins, JoinKey: "customer_id"},
		},
	}, nil
}

func str(s string) *string { return &s }

func sampleCatalog() *stubCatalog {
	return &stubCatalog{
		tables: []catalog.TableSummary{
			{Name: "CLIENT_PROFILE", Description: "Client demographics"},
			{Name: "CUSTOMER_MASTER", Description: "Main customer information table",
				Columns: []catalog.ColumnSummary{{Name: str("customer_id"), DataType: "VARCHAR(20)"}}},
		},
		detail: &catalog.TableDetail{
			Name:        "CUSTOMER_MASTER",
			Description: "Main customer information table",
			Columns: []catalog.Column{
				{Name: str("customer_id"), DataType: "VARCHAR(20)", IsCDE: true, CDEName: str("CDE_00145"), CDENames: []string{"CDE_00145"}},
				{Name: nil, DataType: "VARCHAR(10)"},
			},
			Regions: []string{"EMEA", "NAM"},
		},
		stats: map[string]int64{"tables": 2, "columns": 1},
	}
}

// --- get_lineage ---

func TestGetLineage_DefaultDepth(t *testing.T) {
	l := &stubLineage{}
	h := NewGetLineageHandler(l, discard())

	out, err := h.Handle(context.Background(), GetLineageParams{Table: "CUSTOMER_MASTER"})
	require.NoError(t, err)
	assert.Equal(t, lineage.DefaultDepth, l.depth)
	assert.Contains(t, out, "Lineage of CUSTOMER_MASTER")
	assert.Contains(t, out, "**Hop 1**")
	assert.Contains(t, out, "LOAN_ACCOUNTS (related)")
	assert.Contains(t, out, "JOINS LOAN_ACCOUNTS on `customer_id`")
}

func TestGetLineage_Errors(t *testing.T) {
	tests := []struct {
		name    string
		params  GetLineageParams
		err     error
		wantMsg string
	}{
		{"missing table", GetLineageParams{}, nil, "table is required"},
		{"depth out of range", GetLineageParams{Table: "A", Depth: 9}, nil, "depth must be between 1 and 5"},
		{"not found", GetLineageParams{Table: "NOPE", Depth: 1}, fmt.Errorf("%w: NOPE", lineage.ErrTableNotFound), `table "NOPE" not found`},
		{"store down", GetLineageParams{Table: "A", Depth: 1}, &graph.StoreError{Kind: graph.ErrStoreUnavailable, Cause: errors.New("refused")}, "unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewGetLineageHandler(&stubLineage{err: tt.err}, discard())
			_, err := h.Handle(context.Background(), tt.params)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestGetLineage_NameNotTrimmed(t *testing.T) {
	l := &stubLineage{}
	h := NewGetLineageHandler(l, discard())

	out, err := h.Handle(context.Background(), GetLineageParams{Table: " CUSTOMER_MASTER ", Depth: 1})
	require.NoError(t, err)
	assert.Equal(t, " CUSTOMER_MASTER ", l.table, "names reach the traverser exactly as given")
	assert.Contains(t, out, "Lineage of  CUSTOMER_MASTER ")
}

// --- get_table ---

func TestGetTable(t *testing.T) {
	h := NewGetTableHandler(sampleCatalog(), discard())

	out, err := h.Handle(context.Background(), GetTableParams{Name: "CUSTOMER_MASTER"})
	require.NoError(t, err)
	assert.Contains(t, out, "`customer_id` VARCHAR(20) [CDE: CDE_00145]")
	assert.Contains(t, out, "Regions: EMEA, NAM")
	assert.NotContains(t, out, "VARCHAR(10)", "nameless column should not be rendered")
}

func TestGetTable_NotFound(t *testing.T) {
	h := NewGetTableHandler(sampleCatalog(), discard())

	_, err := h.Handle(context.Background(), GetTableParams{Name: "customer_master"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_tables")

	_, err = h.Handle(context.Background(), GetTableParams{})
	assert.EqualError(t, err, "name is required")
}

func TestGetTable_NameMatchesExactly(t *testing.T) {
	h := NewGetTableHandler(sampleCatalog(), discard())

	// Surrounding whitespace is part of the name, as on GET /api/schema/table/{name}.
	_, err := h.Handle(context.Background(), GetTableParams{Name: " CUSTOMER_MASTER"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `table " CUSTOMER_MASTER" not found`)
}

// --- search_tables ---

func TestSearchTables(t *testing.T) {
	h := NewSearchTablesHandler(sampleCatalog(), discard())

	out, err := h.Handle(context.Background(), SearchTablesParams{Query: "customer"})
	require.NoError(t, err)
	assert.Contains(t, out, "**CUSTOMER_MASTER** (1 columns)")
	assert.NotContains(t, out, "CLIENT_PROFILE")

	out, err = h.Handle(context.Background(), SearchTablesParams{})
	require.NoError(t, err)
	assert.Contains(t, out, "## Tables (2)", "empty query should list all tables")
}

func TestSearchTables_Limit(t *testing.T) {
	h := NewSearchTablesHandler(sampleCatalog(), discard())

	out, err := h.Handle(context.Background(), SearchTablesParams{Limit: 1})
	require.NoError(t, err)
	assert.NotContains(t, out, "CUSTOMER_MASTER")

	_, err = h.Handle(context.Background(), SearchTablesParams{Limit: -1})
	assert.Error(t, err)
}

// --- get_stats ---

func TestGetStats(t *testing.T) {
	h := NewGetStatsHandler(sampleCatalog(), discard())

	out, err := h.Handle(context.Background(), GetStatsParams{})
	require.NoError(t, err)
	assert.Contains(t, out, "- columns: 1\n- tables: 2\n")
}

// --- SDK wiring ---

func connect(t *testing.T) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "catalograph-test", Version: "test"}, nil)
	Register(server, sampleCatalog(), &stubLineage{}, discard())

	st, ct := sdkmcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "test"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func TestRegister_ListsTools(t *testing.T) {
	cs := connect(t)

	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"get_lineage", "get_table", "search_tables", "get_stats"}, names)
}

func TestRegister_CallTool(t *testing.T) {
	cs := connect(t)

	res, err := cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "get_table",
		Arguments: map[string]any{"name": "CUSTOMER_MASTER"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, "tool returned error: %+v", res.Content)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "## CUSTOMER_MASTER")

	res, err = cs.CallTool(context.Background(), &sdkmcp.CallToolParams{
		Name:      "get_table",
		Arguments: map[string]any{"name": "MISSING"},
	})
	require.NoError(t, err)
	assert.True(t, res.IsError, "missing table should produce an error result")
}
