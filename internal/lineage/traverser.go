// Package lineage expands table-level data lineage around a table and lays the
// result out for rendering.
package lineage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/maraichr/catalograph/internal/graph"
)

const (
	// MinDepth and MaxDepth bound the number of hops a request may expand.
	MinDepth = 1
	MaxDepth = 5
	// DefaultDepth is used when a caller does not specify a depth.
	DefaultDepth = 2

	RoleCenter  = "center"
	RoleRelated = "related"

	EdgeLoadsInto = "LOADS_INTO"
	EdgeJoins     = "JOINS"
)

var (
	// ErrTableNotFound is returned when the origin table does not exist.
	ErrTableNotFound = errors.New("table not found")
	// ErrInvalidDepth is returned for a depth outside [MinDepth, MaxDepth].
	ErrInvalidDepth = errors.New("depth out of range")
)

// Node is a table in a lineage graph. Type is the node's role; Hop is its
// distance from the origin.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
	Hop   int    `json:"hop"`
}

// Edge is a LOADS_INTO or JOINS relationship between two visited tables.
type Edge struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	JoinKey     string `json:"join_key,omitempty"`
	LineageType string `json:"lineage_type,omitempty"`
}

// Graph is the result of a lineage expansion.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Traverser runs bounded breadth-first lineage expansion against the graph store.
type Traverser struct {
	store  graph.Querier
	logger *slog.Logger
}

// NewTraverser creates a traverser over a graph querier.
func NewTraverser(store graph.Querier, logger *slog.Logger) *Traverser {
	return &Traverser{store: store, logger: logger}
}

// ValidateDepth reports whether depth is an accepted hop count.
func ValidateDepth(depth int) error {
	if depth < MinDepth || depth > MaxDepth {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidDepth, depth, MinDepth, MaxDepth)
	}
	return nil
}

// Lineage expands up to depth hops from table over LOADS_INTO and JOINS in both
// directions. Each table appears once; a visited table is never expanded again,
// so cycles terminate. Edges are every relationship among the visited tables.
func (t *Traverser) Lineage(ctx context.Context, table string, depth int) (*Graph, error) {
	if err := ValidateDepth(depth); err != nil {
		return nil, err
	}

	rows, err := t.store.Read(ctx, graph.GetTable, map[string]any{"name": table})
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", table, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, table)
	}

	visited := map[string]bool{table: true}
	nodes := []Node{{ID: table, Label: table, Type: RoleCenter, Hop: 0}}
	frontier := []string{table}

	for hop := 1; hop <= depth && len(frontier) > 0; hop++ {
		rows, err := t.store.Read(ctx, graph.LineageNeighbors, map[string]any{"names": frontier})
		if err != nil {
			return nil, fmt.Errorf("expand hop %d: %w", hop, err)
		}
		var next []string
		for _, row := range rows {
			name := row.String("name")
			if visited[name] {
				continue
			}
			visited[name] = true
			next = append(next, name)
		}
		sort.Strings(next)
		for _, name := range next {
			nodes = append(nodes, Node{ID: name, Label: name, Type: RoleRelated, Hop: hop})
		}
		frontier = next
	}

	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.ID)
	}
	edges, err := t.edgesAmong(ctx, names)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("lineage expanded",
		slog.String("table", table),
		slog.Int("depth", depth),
		slog.Int("nodes", len(nodes)),
		slog.Int("edges", len(edges)))
	return &Graph{Nodes: nodes, Edges: edges}, nil
}

func (t *Traverser) edgesAmong(ctx context.Context, names []string) ([]Edge, error) {
	rows, err := t.store.Read(ctx, graph.LineageEdgesAmong, map[string]any{"names": names})
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}
	seen := make(map[string]bool, len(rows))
	edges := make([]Edge, 0, len(rows))
	for _, row := range rows {
		id := row.String("id")
		if id == "" {
			// Without an element id fall back to the edge's identity; parallel
			// edges differ in type so they survive.
			id = row.String("type") + "|" + row.String("source") + "|" + row.String("target") + "|" + row.String("join_key")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		e := Edge{
			Source: row.String("source"),
			Target: row.String("target"),
			Type:   row.String("type"),
		}
		switch e.Type {
		case EdgeJoins:
			e.JoinKey = row.String("join_key")
		case EdgeLoadsInto:
			e.LineageType = row.String("lineage_type")
		}
		edges = append(edges, e)
	}
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Target < b.Target
	})
	return edges, nil
}
