// Package graphtest provides an in-memory graph.Querier that answers the
// catalog and lineage queries without a running Neo4j.
package graphtest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/maraichr/catalograph/internal/graph"
)

// Memory is a metadata graph held in memory. It understands the Cypher constants
// of package graph and nothing else; any other query returns graph.ErrQuery.
type Memory struct {
	mu      sync.Mutex
	tables  map[string]*table
	order   []string
	rels    []rel
	labels  map[string]int64
	calls   []string
	failOn  map[string]error
	nextRel int
}

type table struct {
	name        string
	description any
	columns     []column
	regions     []string
}

type column struct {
	id       string
	name     any
	dataType string
	cdes     []string
}

type rel struct {
	id          string
	kind        string
	source      string
	target      string
	joinKey     any
	lineageType any
}

// New returns an empty graph.
func New() *Memory {
	return &Memory{
		tables: make(map[string]*table),
		labels: make(map[string]int64),
		failOn: make(map[string]error),
	}
}

// AddTable adds a table node. Adding an existing name updates its description.
func (m *Memory) AddTable(name, description string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addTable(name, description)
	return m
}

func (m *Memory) addTable(name string, description any) *table {
	if t, ok := m.tables[name]; ok {
		if description != nil {
			t.description = description
		}
		return t
	}
	t := &table{name: name, description: description}
	m.tables[name] = t
	m.order = append(m.order, name)
	return t
}

// AddColumn attaches a column to a table. A nil name models a column stored without one.
func (m *Memory) AddColumn(tableName string, name any, dataType string, cdes ...string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.addTable(tableName, nil)
	id := fmt.Sprintf("col:%s:%d", tableName, len(t.columns))
	t.columns = append(t.columns, column{id: id, name: name, dataType: dataType, cdes: cdes})
	return m
}

// AddRegion links a table to a region.
func (m *Memory) AddRegion(tableName, region string) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.addTable(tableName, nil)
	t.regions = append(t.regions, region)
	return m
}

// Loads adds a LOADS_INTO relationship, creating tables as needed.
func (m *Memory) Loads(source, target string) *Memory {
	return m.addRel("LOADS_INTO", source, target, nil, "ETL")
}

// Joins adds a JOINS relationship, creating tables as needed.
func (m *Memory) Joins(source, target, key string) *Memory {
	return m.addRel("JOINS", source, target, key, nil)
}

func (m *Memory) addRel(kind, source, target string, joinKey, lineageType any) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addTable(source, nil)
	m.addTable(target, nil)
	m.nextRel++
	m.rels = append(m.rels, rel{
		id:          fmt.Sprintf("rel:%d", m.nextRel),
		kind:        kind,
		source:      source,
		target:      target,
		joinKey:     joinKey,
		lineageType: lineageType,
	})
	return m
}

// SetCount fixes the count returned for a node label. Table and Column are
// derived from the graph unless set here.
func (m *Memory) SetCount(label string, n int64) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[label] = n
	return m
}

// FailOn makes every query equal to cypher return err.
func (m *Memory) FailOn(cypher string, err error) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[cypher] = err
	return m
}

// Calls returns the queries executed so far, in order.
func (m *Memory) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Read implements graph.Querier.
func (m *Memory) Read(ctx context.Context, cypher string, params map[string]any) ([]graph.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, cypher)
	if err, ok := m.failOn[cypher]; ok {
		return nil, err
	}

	switch cypher {
	case graph.ListTables:
		return m.listTables(), nil
	case graph.GetTable:
		return m.getTable(params), nil
	case graph.TableColumns:
		return m.tableColumns(params), nil
	case graph.TableRegions:
		return m.tableRegions(params), nil
	case graph.LineageNeighbors:
		return m.neighbors(params), nil
	case graph.LineageEdgesAmong:
		return m.edgesAmong(params), nil
	case graph.SchemaContext:
		return m.schemaContext(), nil
	}
	if label, ok := countLabel(cypher); ok {
		return []graph.Row{{"count": m.count(label)}}, nil
	}
	return nil, &graph.StoreError{Kind: graph.ErrQuery, Cause: fmt.Errorf("graphtest: unsupported query %q", cypher)}
}

func (m *Memory) sortedNames() []string {
	names := append([]string(nil), m.order...)
	sort.Strings(names)
	return names
}

func (m *Memory) listTables() []graph.Row {
	var rows []graph.Row
	for _, name := range m.sortedNames() {
		t := m.tables[name]
		cols := make([]any, 0, len(t.columns))
		for _, c := range t.columns {
			cols = append(cols, map[string]any{"name": c.name, "data_type": c.dataType})
		}
		rows = append(rows, graph.Row{"name": t.name, "description": t.description, "columns": cols})
	}
	return rows
}

func (m *Memory) getTable(params map[string]any) []graph.Row {
	t, ok := m.tables[paramString(params, "name")]
	if !ok {
		return nil
	}
	return []graph.Row{{"name": t.name, "description": t.description}}
}

func (m *Memory) tableColumns(params map[string]any) []graph.Row {
	t, ok := m.tables[paramString(params, "name")]
	if !ok {
		return nil
	}
	rows := make([]graph.Row, 0, len(t.columns))
	for _, c := range t.columns {
		cdes := make([]any, 0, len(c.cdes))
		for _, n := range c.cdes {
			cdes = append(cdes, n)
		}
		rows = append(rows, graph.Row{"id": c.id, "name": c.name, "data_type": c.dataType, "cdes": cdes})
	}
	return rows
}

func (m *Memory) tableRegions(params map[string]any) []graph.Row {
	t, ok := m.tables[paramString(params, "name")]
	if !ok {
		return nil
	}
	regions := append([]string(nil), t.regions...)
	sort.Strings(regions)
	var rows []graph.Row
	seen := map[string]bool{}
	for _, r := range regions {
		if !seen[r] {
			seen[r] = true
			rows = append(rows, graph.Row{"name": r})
		}
	}
	return rows
}

func (m *Memory) neighbors(params map[string]any) []graph.Row {
	origins := paramSet(params, "names")
	seen := map[string]bool{}
	var rows []graph.Row
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			rows = append(rows, graph.Row{"name": name})
		}
	}
	for _, r := range m.rels {
		if origins[r.source] {
			add(r.target)
		}
		if origins[r.target] {
			add(r.source)
		}
	}
	return rows
}

func (m *Memory) edgesAmong(params map[string]any) []graph.Row {
	names := paramSet(params, "names")
	var rows []graph.Row
	for _, r := range m.rels {
		if names[r.source] && names[r.target] {
			rows = append(rows, graph.Row{
				"id":           r.id,
				"type":         r.kind,
				"source":       r.source,
				"target":       r.target,
				"join_key":     r.joinKey,
				"lineage_type": r.lineageType,
			})
		}
	}
	return rows
}

func (m *Memory) schemaContext() []graph.Row {
	var rows []graph.Row
	for _, name := range m.sortedNames() {
		t := m.tables[name]
		if len(t.columns) == 0 {
			continue
		}
		cols := make([]any, 0, len(t.columns))
		for _, c := range t.columns {
			cols = append(cols, map[string]any{"name": c.name, "type": c.dataType})
		}
		rows = append(rows, graph.Row{"table": name, "columns": cols})
	}
	return rows
}

func (m *Memory) count(label string) int64 {
	if n, ok := m.labels[label]; ok {
		return n
	}
	switch label {
	case "Table":
		return int64(len(m.tables))
	case "Column":
		var n int64
		for _, t := range m.tables {
			n += int64(len(t.columns))
		}
		return n
	}
	return 0
}

func countLabel(cypher string) (string, bool) {
	prefix, suffix, _ := strings.Cut(graph.CountLabel, "%s")
	if !strings.HasPrefix(cypher, prefix) || !strings.HasSuffix(cypher, suffix) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(cypher, prefix), suffix), true
}

func paramString(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

func paramSet(params map[string]any, key string) map[string]bool {
	set := map[string]bool{}
	switch v := params[key].(type) {
	case []string:
		for _, s := range v {
			set[s] = true
		}
	case []any:
		for _, s := range v {
			if str, ok := s.(string); ok {
				set[str] = true
			}
		}
	}
	return set
}
