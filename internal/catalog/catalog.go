// Package catalog aggregates the Table/Column/CDE/Region metadata graph into
// per-table views and answers structural questions about it.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/maraichr/catalograph/internal/graph"
)

// ErrTableNotFound is returned when no Table carries the requested name.
var ErrTableNotFound = errors.New("table not found")

// ColumnSummary is a column as listed in a table summary.
type ColumnSummary struct {
	Name     *string `json:"name"`
	DataType string  `json:"data_type"`
}

// TableSummary is a table as returned by listing and search.
type TableSummary struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Columns     []ColumnSummary `json:"columns,omitempty"`
}

// Column is a column in a table detail view. Name is nil when the stored
// column has no name; callers decide whether to show it.
type Column struct {
	Name     *string  `json:"name"`
	DataType string   `json:"data_type"`
	IsCDE    bool     `json:"is_cde"`
	CDEName  *string  `json:"cde_name"`
	CDENames []string `json:"cde_names,omitempty"`
}

// TableDetail is the denormalized view of one table.
type TableDetail struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Columns     []Column `json:"columns"`
	Regions     []string `json:"regions"`
}

// Service reads the metadata graph.
type Service struct {
	store  graph.Querier
	logger *slog.Logger
}

// NewService creates a catalog service over a graph querier.
func NewService(store graph.Querier, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListTables returns every table ordered by name, with its columns.
func (s *Service) ListTables(ctx context.Context) ([]TableSummary, error) {
	rows, err := s.store.Read(ctx, graph.ListTables, nil)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	tables := make([]TableSummary, 0, len(rows))
	for _, row := range rows {
		ts := TableSummary{
			Name:        row.String("name"),
			Description: row.String("description"),
		}
		list, _ := row["columns"].([]any)
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			dt, _ := m["data_type"].(string)
			ts.Columns = append(ts.Columns, ColumnSummary{Name: optString(m["name"]), DataType: dt})
		}
		tables = append(tables, ts)
	}
	sort.SliceStable(tables, func(i, j int) bool { return tables[i].Name < tables[j].Name })
	return tables, nil
}

// SearchTables filters the table list by a case-insensitive substring of name
// or description. An empty (or blank) query returns the full list.
func (s *Service) SearchTables(ctx context.Context, query string) ([]TableSummary, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	return FilterTables(tables, query), nil
}

// FilterTables applies the search predicate to an already loaded list.
func FilterTables(tables []TableSummary, query string) []TableSummary {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return tables
	}
	out := make([]TableSummary, 0, len(tables))
	for _, t := range tables {
		if strings.Contains(strings.ToLower(t.Name), q) || strings.Contains(strings.ToLower(t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// GetTableDetails returns the table's description, each owned column exactly
// once with its CDE flags, and its regions. Names match case-sensitively.
func (s *Service) GetTableDetails(ctx context.Context, name string) (*TableDetail, error) {
	params := map[string]any{"name": name}

	rows, err := s.store.Read(ctx, graph.GetTable, params)
	if err != nil {
		return nil, fmt.Errorf("get table %s: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, name)
	}
	detail := &TableDetail{
		Name:        rows[0].String("name"),
		Description: rows[0].String("description"),
		Columns:     []Column{},
		Regions:     []string{},
	}

	colRows, err := s.store.Read(ctx, graph.TableColumns, params)
	if err != nil {
		return nil, fmt.Errorf("get columns of %s: %w", name, err)
	}
	seen := make(map[string]bool, len(colRows))
	for _, row := range colRows {
		id := row.String("id")
		if id != "" {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		cdes := row.Strings("cdes")
		sort.Strings(cdes)
		col := Column{
			Name:     optString(row["name"]),
			DataType: row.String("data_type"),
			IsCDE:    len(cdes) > 0,
		}
		if col.IsCDE {
			col.CDEName = &cdes[0]
			col.CDENames = cdes
		}
		detail.Columns = append(detail.Columns, col)
	}

	regionRows, err := s.store.Read(ctx, graph.TableRegions, params)
	if err != nil {
		return nil, fmt.Errorf("get regions of %s: %w", name, err)
	}
	for _, row := range regionRows {
		if r := row.String("name"); r != "" {
			detail.Regions = append(detail.Regions, r)
		}
	}

	s.logger.Debug("table details",
		slog.String("table", name),
		slog.Int("columns", len(detail.Columns)),
		slog.Int("regions", len(detail.Regions)))
	return detail, nil
}

// SchemaContext renders "table: col (type), ..." lines used to prompt the query intent service.
func (s *Service) SchemaContext(ctx context.Context) (string, error) {
	rows, err := s.store.Read(ctx, graph.SchemaContext, nil)
	if err != nil {
		return "", fmt.Errorf("schema context: %w", err)
	}
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(row.String("table"))
		b.WriteString(":")
		list, _ := row["columns"].([]any)
		written := 0
		for _, item := range list {
			m, _ := item.(map[string]any)
			name, _ := m["name"].(string)
			if name == "" {
				continue
			}
			typ, _ := m["type"].(string)
			if written > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, " %s (%s)", name, typ)
			written++
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

func optString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
