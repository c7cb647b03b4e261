package handler

import (
	"context"
	"errors"

	"github.com/maraichr/catalograph/internal/cypher"
	"github.com/maraichr/catalograph/internal/graph"
	"github.com/maraichr/catalograph/internal/query"
	"github.com/maraichr/catalograph/pkg/apierr"
)

// storeError maps failures of graph reads and the query pipeline to API errors.
func storeError(err error) *apierr.Error {
	switch {
	case errors.Is(err, cypher.ErrRejected):
		return apierr.QueryRejected(err)
	case errors.Is(err, query.ErrIntent):
		return apierr.IntentFailed(err)
	case errors.Is(err, graph.ErrStoreUnavailable):
		return apierr.StoreUnavailable(err)
	case errors.Is(err, graph.ErrQuery):
		return apierr.QueryFailed(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apierr.QueryTimeout(err)
	default:
		return apierr.InternalError(err)
	}
}
