// Package query answers natural-language questions and runs raw Cypher
// against the graph, always through the read-only guard.
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maraichr/catalograph/internal/cypher"
	"github.com/maraichr/catalograph/internal/graph"
	"github.com/maraichr/catalograph/internal/history"
	"github.com/maraichr/catalograph/internal/llm"
)

// ErrIntent wraps failures of the question-to-Cypher translation.
var ErrIntent = errors.New("query intent service failed")

// Intent turns questions into Cypher and explains results.
type Intent interface {
	Translate(ctx context.Context, question, schema string) (*llm.Translation, error)
	Summarize(ctx context.Context, question, cypherQuery string, results []map[string]any) (string, error)
	ToSQL(ctx context.Context, cypherQuery, question string) (string, error)
}

// SchemaSource renders the schema used to prompt translation.
type SchemaSource interface {
	SchemaContext(ctx context.Context) (string, error)
}

// Answer is the full response to a question.
type Answer struct {
	Explanation string           `json:"explanation"`
	CypherQuery string           `json:"cypher_query"`
	SQLQuery    string           `json:"sql_query"`
	Results     []map[string]any `json:"results"`
	Summary     string           `json:"summary"`
	Timestamp   time.Time        `json:"timestamp"`
	HistoryID   string           `json:"history_id,omitempty"`
}

// Service runs the ask pipeline.
type Service struct {
	store   graph.Querier
	schema  SchemaSource
	intent  Intent
	history history.Store
	logger  *slog.Logger
}

// NewService wires the pipeline. history may be nil to skip recording.
func NewService(store graph.Querier, schema SchemaSource, intent Intent, hist history.Store, logger *slog.Logger) *Service {
	return &Service{store: store, schema: schema, intent: intent, history: hist, logger: logger}
}

// Ask translates question to Cypher, checks it is read-only, runs it, and
// adds a SQL rendering and a summary. Translation, guard and execution
// failures abort; SQL and summary failures are reported in their fields.
func (s *Service) Ask(ctx context.Context, question string) (*Answer, error) {
	schema, err := s.schema.SchemaContext(ctx)
	if err != nil {
		return nil, err
	}

	tr, err := s.intent.Translate(ctx, question, schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntent, err)
	}

	query, err := cypher.ValidateReadOnly(tr.Cypher)
	if err != nil {
		s.logger.Warn("generated query rejected",
			slog.String("question", question),
			slog.String("cypher", tr.Cypher),
			slog.String("error", err.Error()))
		return nil, err
	}

	results, err := s.execute(ctx, query)
	if err != nil {
		return nil, err
	}

	sql, err := s.intent.ToSQL(ctx, query, question)
	if err != nil {
		sql = "-- SQL generation failed: " + err.Error()
	}
	summary, err := s.intent.Summarize(ctx, question, query, results)
	if err != nil {
		summary = "Summary generation failed: " + err.Error()
	}

	answer := &Answer{
		Explanation: tr.Explanation,
		CypherQuery: query,
		SQLQuery:    sql,
		Results:     results,
		Summary:     summary,
		Timestamp:   time.Now().UTC(),
	}

	if s.history != nil {
		entry, err := s.history.Save(ctx, history.Entry{
			Question:    question,
			Explanation: answer.Explanation,
			CypherQuery: answer.CypherQuery,
			SQLQuery:    answer.SQLQuery,
			Summary:     answer.Summary,
			Results:     results,
			ResultCount: len(results),
		})
		if err != nil {
			s.logger.Warn("save history entry", slog.String("error", err.Error()))
		} else {
			answer.HistoryID = entry.ID
			answer.Timestamp = entry.Timestamp
		}
	}

	s.logger.Info("question answered",
		slog.String("question", question),
		slog.Int("results", len(results)))
	return answer, nil
}

// Run executes caller-supplied Cypher after the read-only guard.
func (s *Service) Run(ctx context.Context, query string) ([]map[string]any, error) {
	normalized, err := cypher.ValidateReadOnly(query)
	if err != nil {
		return nil, err
	}
	return s.execute(ctx, normalized)
}

func (s *Service) execute(ctx context.Context, query string) ([]map[string]any, error) {
	rows, err := s.store.Read(ctx, query, nil)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	results := make([]map[string]any, len(rows))
	for i, row := range rows {
		results[i] = row
	}
	return results, nil
}
