package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maraichr/catalograph/internal/catalog"
	"github.com/maraichr/catalograph/pkg/apierr"
)

// CatalogService reads the table catalog.
type CatalogService interface {
	ListTables(ctx context.Context) ([]catalog.TableSummary, error)
	SearchTables(ctx context.Context, query string) ([]catalog.TableSummary, error)
	GetTableDetails(ctx context.Context, name string) (*catalog.TableDetail, error)
	Stats(ctx context.Context) (map[string]int64, error)
}

type SchemaHandler struct {
	logger  *slog.Logger
	catalog CatalogService
}

func NewSchemaHandler(logger *slog.Logger, c CatalogService) *SchemaHandler {
	return &SchemaHandler{logger: logger, catalog: c}
}

// Tables lists every table with its columns.
// GET /api/schema/tables
func (h *SchemaHandler) Tables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.catalog.ListTables(r.Context())
	if err != nil {
		writeAPIError(w, h.logger, storeError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tables": tables,
		"count":  len(tables),
	})
}

// Table returns one table with its columns, CDE flags and regions.
// GET /api/schema/table/{name}
func (h *SchemaHandler) Table(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	detail, err := h.catalog.GetTableDetails(r.Context(), name)
	if err != nil {
		if errors.Is(err, catalog.ErrTableNotFound) {
			writeAPIError(w, h.logger, apierr.TableNotFound(name))
			return
		}
		writeAPIError(w, h.logger, storeError(err))
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Search filters tables by name or description.
// GET /api/search/tables?q=...
func (h *SchemaHandler) Search(w http.ResponseWriter, r *http.Request) {
	tables, err := h.catalog.SearchTables(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeAPIError(w, h.logger, storeError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tables": tables,
		"count":  len(tables),
	})
}

// Stats returns node counts per category.
// GET /api/stats
func (h *SchemaHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalog.Stats(r.Context())
	if err != nil {
		writeAPIError(w, h.logger, storeError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}
