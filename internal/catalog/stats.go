package catalog

import (
	"context"
	"fmt"

	"github.com/maraichr/catalograph/internal/graph"
)

// StatCategory maps a reported category to the node label it counts.
type StatCategory struct {
	Name  string
	Label string
}

// StatCategories are the fixed categories reported by Stats.
var StatCategories = []StatCategory{
	{Name: "tables", Label: "Table"},
	{Name: "columns", Label: "Column"},
	{Name: "clients", Label: "Client"},
	{Name: "accounts", Label: "Bank_account"},
	{Name: "transactions", Label: "Card_transaction"},
	{Name: "loans", Label: "Loan_record"},
}

// Stats counts nodes for each category. A label with no nodes counts as 0.
func (s *Service) Stats(ctx context.Context) (map[string]int64, error) {
	stats := make(map[string]int64, len(StatCategories))
	for _, c := range StatCategories {
		rows, err := s.store.Read(ctx, fmt.Sprintf(graph.CountLabel, c.Label), nil)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", c.Name, err)
		}
		var n int64
		if len(rows) > 0 {
			n = rows[0].Int("count")
		}
		stats[c.Name] = n
	}
	return stats, nil
}
