package graph

import (
	"context"
	"fmt"
)

// SeedCatalog is the metadata graph written by the seed command.
type SeedCatalog struct {
	Tables  []SeedTable  `json:"tables"`
	CDEs    []SeedCDE    `json:"cdes"`
	Regions []SeedRegion `json:"regions"`
	Loads   []SeedLoad   `json:"loads"`
	Joins   []SeedJoin   `json:"joins"`
}

type SeedTable struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Columns     []SeedColumn `json:"columns"`
}

type SeedColumn struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
}

type SeedCDE struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Columns     []SeedColumnRef `json:"columns"`
}

type SeedColumnRef struct {
	Table  string `json:"table"`
	Column string `json:"column"`
}

type SeedRegion struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tables      []string `json:"tables"`
}

type SeedLoad struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	LineageType string `json:"lineage_type"`
}

type SeedJoin struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	JoinKey string `json:"join_key"`
}

// SeedStats reports what a seeded graph contains.
type SeedStats struct {
	Nodes         int64
	Relationships int64
}

// Validate checks that every reference in the catalog names a declared table or column.
func (c SeedCatalog) Validate() error {
	tables := make(map[string]map[string]bool, len(c.Tables))
	for _, t := range c.Tables {
		if t.Name == "" {
			return fmt.Errorf("table with empty name")
		}
		if _, dup := tables[t.Name]; dup {
			return fmt.Errorf("duplicate table %q", t.Name)
		}
		cols := make(map[string]bool, len(t.Columns))
		for _, col := range t.Columns {
			cols[col.Name] = true
		}
		tables[t.Name] = cols
	}
	for _, cde := range c.CDEs {
		for _, ref := range cde.Columns {
			if !tables[ref.Table][ref.Column] {
				return fmt.Errorf("cde %s references unknown column %s.%s", cde.Name, ref.Table, ref.Column)
			}
		}
	}
	for _, r := range c.Regions {
		for _, name := range r.Tables {
			if _, ok := tables[name]; !ok {
				return fmt.Errorf("region %s references unknown table %s", r.Name, name)
			}
		}
	}
	for _, l := range c.Loads {
		if tables[l.Source] == nil || tables[l.Target] == nil {
			return fmt.Errorf("LOADS_INTO %s->%s references unknown table", l.Source, l.Target)
		}
	}
	for _, j := range c.Joins {
		if tables[j.Source] == nil || tables[j.Target] == nil {
			return fmt.Errorf("JOINS %s->%s references unknown table", j.Source, j.Target)
		}
	}
	return nil
}

// Statements renders the catalog as batched UNWIND statements, in dependency order.
func (c SeedCatalog) Statements() []Statement {
	tables := make([]map[string]any, 0, len(c.Tables))
	var columns []map[string]any
	for _, t := range c.Tables {
		tables = append(tables, map[string]any{"name": t.Name, "description": t.Description})
		for _, col := range t.Columns {
			columns = append(columns, map[string]any{"table": t.Name, "name": col.Name, "data_type": col.DataType})
		}
	}

	cdes := make([]map[string]any, 0, len(c.CDEs))
	for _, cde := range c.CDEs {
		refs := make([]map[string]any, 0, len(cde.Columns))
		for _, ref := range cde.Columns {
			refs = append(refs, map[string]any{"table": ref.Table, "column": ref.Column})
		}
		cdes = append(cdes, map[string]any{"name": cde.Name, "description": cde.Description, "columns": refs})
	}

	regions := make([]map[string]any, 0, len(c.Regions))
	for _, r := range c.Regions {
		regions = append(regions, map[string]any{"name": r.Name, "description": r.Description, "tables": r.Tables})
	}

	loads := make([]map[string]any, 0, len(c.Loads))
	for _, l := range c.Loads {
		loads = append(loads, map[string]any{"source": l.Source, "target": l.Target, "lineage_type": l.LineageType})
	}

	joins := make([]map[string]any, 0, len(c.Joins))
	for _, j := range c.Joins {
		joins = append(joins, map[string]any{"source": j.Source, "target": j.Target, "join_key": j.JoinKey})
	}

	return []Statement{
		{Cypher: UpsertTables, Params: map[string]any{"tables": tables}},
		{Cypher: UpsertColumns, Params: map[string]any{"columns": columns}},
		{Cypher: UpsertCDEs, Params: map[string]any{"cdes": cdes}},
		{Cypher: UpsertRegions, Params: map[string]any{"regions": regions}},
		{Cypher: UpsertLoads, Params: map[string]any{"edges": loads}},
		{Cypher: UpsertJoins, Params: map[string]any{"edges": joins}},
	}
}

// Seed writes the catalog in one transaction, optionally wiping the graph first,
// and returns node/relationship totals.
func (c *Client) Seed(ctx context.Context, catalog SeedCatalog, reset bool) (*SeedStats, error) {
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	if reset {
		if err := c.Write(ctx, Statement{Cypher: DeleteAll}); err != nil {
			return nil, fmt.Errorf("clear graph: %w", err)
		}
	}
	if err := c.Write(ctx, catalog.Statements()...); err != nil {
		return nil, fmt.Errorf("write catalog: %w", err)
	}

	nodes, err := c.Read(ctx, CountNodes, nil)
	if err != nil {
		return nil, fmt.Errorf("count nodes: %w", err)
	}
	rels, err := c.Read(ctx, CountRelationships, nil)
	if err != nil {
		return nil, fmt.Errorf("count relationships: %w", err)
	}
	stats := &SeedStats{}
	if len(nodes) > 0 {
		stats.Nodes = nodes[0].Int("count")
	}
	if len(rels) > 0 {
		stats.Relationships = rels[0].Int("count")
	}
	return stats, nil
}

// SampleCatalog is the bank metadata graph used for demos and local development.
func SampleCatalog() SeedCatalog {
	return SeedCatalog{
		Tables: []SeedTable{
			{Name: "CUSTOMER_MASTER", Description: "Main customer information table", Columns: []SeedColumn{
				{Name: "customer_id", DataType: "VARCHAR(20)"},
				{Name: "account_number", DataType: "VARCHAR(30)"},
			}},
			{Name: "TRANSACTION_DATA", Description: "Daily transaction records", Columns: []SeedColumn{
				{Name: "transaction_id", DataType: "VARCHAR(50)"},
				{Name: "amount", DataType: "DECIMAL(15,2)"},
			}},
			{Name: "DEPOSIT_SUMMARY", Description: "Summary of customer deposits", Columns: []SeedColumn{
				{Name: "customer_id", DataType: "VARCHAR(20)"},
				{Name: "deposit_date", DataType: "DATE"},
			}},
			{Name: "LOAN_ACCOUNTS", Description: "Loan account details", Columns: []SeedColumn{
				{Name: "loan_id", DataType: "VARCHAR(25)"},
				{Name: "customer_id", DataType: "VARCHAR(20)"},
			}},
			{Name: "FINAL_REPORT", Description: "Consolidated reporting table", Columns: []SeedColumn{
				{Name: "amount", DataType: "DECIMAL(15,2)"},
				{Name: "risk_score", DataType: "DECIMAL(5,2)"},
			}},
			{Name: "RISK_METRICS", Description: "Risk assessment metrics", Columns: []SeedColumn{
				{Name: "risk_score", DataType: "DECIMAL(5,2)"},
			}},
		},
		CDEs: []SeedCDE{
			{Name: "CDE_00145", Description: "Customer Identification Number", Columns: []SeedColumnRef{
				{Table: "CUSTOMER_MASTER", Column: "customer_id"},
				{Table: "DEPOSIT_SUMMARY", Column: "customer_id"},
				{Table: "LOAN_ACCOUNTS", Column: "customer_id"},
			}},
			{Name: "CDE_00289", Description: "Account Balance Amount", Columns: []SeedColumnRef{
				{Table: "TRANSACTION_DATA", Column: "amount"},
				{Table: "FINAL_REPORT", Column: "amount"},
			}},
		},
		Regions: []SeedRegion{
			{Name: "APAC", Description: "Asia Pacific region", Tables: []string{"DEPOSIT_SUMMARY", "LOAN_ACCOUNTS"}},
			{Name: "EMEA", Description: "Europe, Middle East, Africa", Tables: []string{"FINAL_REPORT"}},
			{Name: "NAM", Description: "North America", Tables: []string{"CUSTOMER_MASTER"}},
		},
		Loads: []SeedLoad{
			{Source: "CUSTOMER_MASTER", Target: "DEPOSIT_SUMMARY", LineageType: "ETL"},
			{Source: "TRANSACTION_DATA", Target: "DEPOSIT_SUMMARY", LineageType: "ETL"},
			{Source: "CUSTOMER_MASTER", Target: "FINAL_REPORT", LineageType: "ETL"},
			{Source: "DEPOSIT_SUMMARY", Target: "FINAL_REPORT", LineageType: "ETL"},
			{Source: "LOAN_ACCOUNTS", Target: "FINAL_REPORT", LineageType: "ETL"},
			{Source: "RISK_METRICS", Target: "FINAL_REPORT", LineageType: "ETL"},
		},
		Joins: []SeedJoin{
			{Source: "CUSTOMER_MASTER", Target: "DEPOSIT_SUMMARY", JoinKey: "customer_id"},
			{Source: "CUSTOMER_MASTER", Target: "LOAN_ACCOUNTS", JoinKey: "customer_id"},
			{Source: "DEPOSIT_SUMMARY", Target: "FINAL_REPORT", JoinKey: "customer_id"},
			{Source: "LOAN_ACCOUNTS", Target: "FINAL_REPORT", JoinKey: "customer_id"},
		},
	}
}
