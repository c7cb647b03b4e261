package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maraichr/catalograph/internal/lineage"
	"github.com/maraichr/catalograph/pkg/apierr"
)

// LineageService expands lineage around a table.
type LineageService interface {
	Lineage(ctx context.Context, table string, depth int) (*lineage.Graph, error)
}

type LineageHandler struct {
	logger  *slog.Logger
	lineage LineageService
}

func NewLineageHandler(logger *slog.Logger, l LineageService) *LineageHandler {
	return &LineageHandler{logger: logger, lineage: l}
}

// Get returns the lineage graph around a table with render positions.
// GET /api/lineage/{table}?depth=1..5
func (h *LineageHandler) Get(w http.ResponseWriter, r *http.Request) {
	table := chi.URLParam(r, "table")
	depth, apiErr := parseDepth(r)
	if apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}

	g, err := h.lineage.Lineage(r.Context(), table, depth)
	if err != nil {
		switch {
		case errors.Is(err, lineage.ErrTableNotFound):
			writeAPIError(w, h.logger, apierr.TableNotFound(table))
		case errors.Is(err, lineage.ErrInvalidDepth):
			writeAPIError(w, h.logger, apierr.InvalidDepth(err))
		default:
			writeAPIError(w, h.logger, storeError(err))
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"nodes":     g.Nodes,
		"edges":     g.Edges,
		"positions": lineage.AssignPositions(g.Nodes),
	})
}
