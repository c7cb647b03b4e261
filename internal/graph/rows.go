package graph

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// Row is a single result record keyed by column alias.
type Row map[string]any

// String returns the string value at key, or "" when absent or null.
func (r Row) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Int returns the integer value at key, or 0 when absent or null.
func (r Row) Int(key string) int64 {
	switch v := r[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// Strings returns the list at key as strings, skipping nulls and non-strings.
func (r Row) Strings(key string) []string {
	list, _ := r[key].([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Normalize converts driver values into JSON-friendly Go values. Nodes and
// relationships become maps carrying their labels/type next to their properties.
func Normalize(v any) any {
	switch x := v.(type) {
	case dbtype.Node:
		return map[string]any{
			"element_id": x.ElementId,
			"labels":     x.Labels,
			"properties": normalizeMap(x.Props),
		}
	case dbtype.Relationship:
		return map[string]any{
			"element_id":       x.ElementId,
			"type":             x.Type,
			"start_element_id": x.StartElementId,
			"end_element_id":   x.EndElementId,
			"properties":       normalizeMap(x.Props),
		}
	case dbtype.Path:
		nodes := make([]any, len(x.Nodes))
		for i, n := range x.Nodes {
			nodes[i] = Normalize(n)
		}
		rels := make([]any, len(x.Relationships))
		for i, r := range x.Relationships {
			rels[i] = Normalize(r)
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	case dbtype.Date:
		return x.Time().Format("2006-01-02")
	case dbtype.LocalDateTime:
		return x.Time().Format("2006-01-02T15:04:05.999999999")
	case dbtype.LocalTime:
		return x.Time().Format("15:04:05.999999999")
	case dbtype.Time:
		return x.Time().Format("15:04:05.999999999Z07:00")
	case dbtype.Duration:
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case map[string]any:
		return normalizeMap(x)
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}
