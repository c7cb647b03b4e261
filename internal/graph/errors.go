package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

var (
	// ErrStoreUnavailable means the graph store could not be reached.
	ErrStoreUnavailable = errors.New("graph store unavailable")
	// ErrQuery means the store rejected or failed to execute a query.
	ErrQuery = errors.New("graph query failed")
)

// StoreError carries the raw driver message alongside its category.
type StoreError struct {
	Kind  error
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
}

// Is lets errors.Is match the category sentinel.
func (e *StoreError) Is(target error) bool { return target == e.Kind }

func (e *StoreError) Unwrap() error { return e.Cause }

// classify maps driver errors onto ErrStoreUnavailable / ErrQuery. Context
// cancellation passes through untouched so callers can tell a timeout apart.
//
// ExecuteRead retries transient failures and then returns a
// *neo4j.TransactionExecutionLimit, which does not unwrap; its attempt errors
// are inspected directly.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var limit *neo4j.TransactionExecutionLimit
	if errors.As(err, &limit) {
		for _, attempt := range limit.Errors {
			if unavailable(attempt) {
				return &StoreError{Kind: ErrStoreUnavailable, Cause: err}
			}
		}
		if n := len(limit.Errors); n > 0 {
			last := limit.Errors[n-1]
			switch {
			case errors.Is(last, context.DeadlineExceeded):
				return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
			case errors.Is(last, context.Canceled):
				return fmt.Errorf("%w: %v", context.Canceled, err)
			}
		}
		switch limit.Cause {
		case context.DeadlineExceeded.Error():
			return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
		case context.Canceled.Error():
			return fmt.Errorf("%w: %v", context.Canceled, err)
		}
		return &StoreError{Kind: ErrQuery, Cause: err}
	}

	if unavailable(err) {
		return &StoreError{Kind: ErrStoreUnavailable, Cause: err}
	}
	return &StoreError{Kind: ErrQuery, Cause: err}
}

func unavailable(err error) bool {
	var conn *neo4j.ConnectivityError
	if errors.As(err, &conn) {
		return true
	}
	var nerr *neo4j.Neo4jError
	return errors.As(err, &nerr) && nerr.Code == "Neo.TransientError.General.DatabaseUnavailable"
}
