package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/maraichr/catalograph/internal/config"
)

// Querier executes a parametrized read query and returns its rows.
type Querier interface {
	Read(ctx context.Context, cypher string, params map[string]any) ([]Row, error)
}

// Client wraps the Neo4j driver and provides graph operations.
type Client struct {
	driver  neo4j.DriverWithContext
	db      string
	timeout time.Duration
}

// NewClient creates a new Neo4j client from configuration.
func NewClient(cfg config.Neo4jConfig) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	return &Client{driver: driver, db: cfg.Database, timeout: cfg.QueryTimeout}, nil
}

// EnsureIndexes creates the uniqueness constraint on Table(name) if it does not exist.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (struct{}, error) {
		if _, err := tx.Run(ctx, CreateConstraintTableName, nil); err != nil {
			return struct{}{}, fmt.Errorf("create table name constraint: %w", err)
		}
		return struct{}{}, nil
	})
	return classify(err)
}

// Close releases the Neo4j driver resources.
func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

// Verify checks connectivity to Neo4j.
func (c *Client) Verify(ctx context.Context) error {
	return classify(c.driver.VerifyConnectivity(ctx))
}

// Read runs a query in a read transaction on a fresh session. The session is
// closed before Read returns, whatever the outcome.
func (c *Client) Read(ctx context.Context, cypher string, params map[string]any) ([]Row, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	session := c.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	rows, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) ([]Row, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		rows := make([]Row, 0, len(records))
		for _, rec := range records {
			rows = append(rows, recordToRow(rec))
		}
		return rows, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	return rows, nil
}

// Write runs statements in a single write transaction. Only the seed command writes.
func (c *Client) Write(ctx context.Context, stmts ...Statement) error {
	session := c.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (struct{}, error) {
		for _, s := range stmts {
			if _, err := tx.Run(ctx, s.Cypher, s.Params); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return classify(err)
}

// Statement is a Cypher string with its parameters.
type Statement struct {
	Cypher string
	Params map[string]any
}

func (c *Client) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: c.db})
}

func recordToRow(rec *neo4j.Record) Row {
	row := make(Row, len(rec.Keys))
	for i, k := range rec.Keys {
		row[k] = Normalize(rec.Values[i])
	}
	return row
}
