package mcp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maraichr/catalograph/internal/catalog"
	"github.com/maraichr/catalograph/internal/lineage"
)

const defaultMaxTokens = 4000

// ResponseBuilder constructs token-budgeted Markdown responses for MCP tools.
type ResponseBuilder struct {
	buf           strings.Builder
	tokenEstimate int
	maxTokens     int
	truncated     bool
	itemCount     int
}

// NewResponseBuilder creates a builder with the given token budget.
// If maxTokens <= 0, defaultMaxTokens is used.
func NewResponseBuilder(maxTokens int) *ResponseBuilder {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &ResponseBuilder{maxTokens: maxTokens}
}

// AddHeader writes a header line. Headers are always written.
func (rb *ResponseBuilder) AddHeader(text string) {
	line := text + "\n\n"
	rb.buf.WriteString(line)
	rb.tokenEstimate += len(line) / 4
}

// AddLine writes a single line, returning false if the budget is exceeded.
func (rb *ResponseBuilder) AddLine(text string) bool {
	return rb.add(text+"\n", false)
}

// AddItem writes a list item and counts it.
func (rb *ResponseBuilder) AddItem(text string) bool {
	return rb.add("- "+text+"\n", true)
}

// AddSection writes a section with a heading.
func (rb *ResponseBuilder) AddSection(heading, content string) bool {
	return rb.add(fmt.Sprintf("### %s\n%s\n\n", heading, content), false)
}

func (rb *ResponseBuilder) add(text string, item bool) bool {
	cost := len(text) / 4
	if rb.tokenEstimate+cost > rb.maxTokens {
		rb.truncated = true
		return false
	}
	rb.buf.WriteString(text)
	rb.tokenEstimate += cost
	if item {
		rb.itemCount++
	}
	return true
}

// Finalize appends a truncation notice when items were dropped and returns the text.
func (rb *ResponseBuilder) Finalize(totalCount int) string {
	if rb.truncated || rb.itemCount < totalCount {
		fmt.Fprintf(&rb.buf, "\n---\n*Showing %d of %d items (truncated to ~%d tokens).*\n",
			rb.itemCount, totalCount, rb.maxTokens)
	}
	return rb.buf.String()
}

// TokenEstimate returns the current estimated token count.
func (rb *ResponseBuilder) TokenEstimate() int {
	return rb.tokenEstimate
}

// IsTruncated returns whether the response was truncated.
func (rb *ResponseBuilder) IsTruncated() bool {
	return rb.truncated
}

// ItemCount returns the number of items added.
func (rb *ResponseBuilder) ItemCount() int {
	return rb.itemCount
}

// FormatLineage renders a lineage graph as nodes grouped by hop followed by edges.
func FormatLineage(table string, depth int, g *lineage.Graph, maxTokens int) string {
	rb := NewResponseBuilder(maxTokens)
	rb.AddHeader(fmt.Sprintf("## Lineage of %s (depth %d): %d tables, %d edges",
		table, depth, len(g.Nodes), len(g.Edges)))

	total := len(g.Nodes) + len(g.Edges)
	hop := -1
	for _, n := range g.Nodes {
		if n.Hop != hop {
			hop = n.Hop
			if !rb.AddLine(fmt.Sprintf("**Hop %d**", hop)) {
				return rb.Finalize(total)
			}
		}
		if !rb.AddItem(fmt.Sprintf("%s (%s)", n.Label, n.Type)) {
			return rb.Finalize(total)
		}
	}

	if len(g.Edges) > 0 {
		rb.AddLine("")
		rb.AddLine("**Edges**")
	}
	for _, e := range g.Edges {
		if !rb.AddItem(formatEdge(e)) {
			break
		}
	}
	return rb.Finalize(total)
}

func formatEdge(e lineage.Edge) string {
	switch e.Type {
	case lineage.EdgeJoins:
		if e.JoinKey != "" {
			return fmt.Sprintf("%s JOINS %s on `%s`", e.Source, e.Target, e.JoinKey)
		}
		return fmt.Sprintf("%s JOINS %s", e.Source, e.Target)
	default:
		if e.LineageType != "" {
			return fmt.Sprintf("%s -> %s (%s)", e.Source, e.Target, e.LineageType)
		}
		return fmt.Sprintf("%s -> %s", e.Source, e.Target)
	}
}

// FormatTableDetail renders one table with its columns, CDE tags and regions.
// Columns without a name are not shown.
func FormatTableDetail(t *catalog.TableDetail, maxTokens int) string {
	rb := NewResponseBuilder(maxTokens)
	rb.AddHeader("## " + t.Name)
	if t.Description != "" {
		rb.AddLine(t.Description)
		rb.AddLine("")
	}
	if len(t.Regions) > 0 {
		rb.AddLine("Regions: " + strings.Join(t.Regions, ", "))
		rb.AddLine("")
	}

	var named int
	rb.AddLine("**Columns**")
	for _, c := range t.Columns {
		if c.Name == nil || *c.Name == "" {
			continue
		}
		named++
		line := fmt.Sprintf("`%s` %s", *c.Name, c.DataType)
		if c.IsCDE {
			line += " [CDE: " + strings.Join(c.CDENames, ", ") + "]"
		}
		if !rb.AddItem(line) {
			break
		}
	}
	if named == 0 {
		rb.AddLine("(none)")
	}
	return rb.Finalize(named)
}

// FormatTableList renders table summaries one per line.
func FormatTableList(heading string, tables []catalog.TableSummary, maxTokens int) string {
	rb := NewResponseBuilder(maxTokens)
	rb.AddHeader(fmt.Sprintf("## %s (%d)", heading, len(tables)))
	if len(tables) == 0 {
		rb.AddLine("No tables found.")
	}
	for _, t := range tables {
		line := fmt.Sprintf("**%s** (%d columns)", t.Name, len(t.Columns))
		if t.Description != "" {
			line += ": " + t.Description
		}
		if !rb.AddItem(line) {
			break
		}
	}
	return rb.Finalize(len(tables))
}

// FormatStats renders entity counts in a stable order.
func FormatStats(stats map[string]int64) string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("## Catalog statistics\n\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %d\n", k, stats[k])
	}
	return b.String()
}
