package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/maraichr/catalograph/internal/query"
)

// QueryService answers questions and runs raw Cypher.
type QueryService interface {
	Ask(ctx context.Context, question string) (*query.Answer, error)
	Run(ctx context.Context, cypher string) ([]map[string]any, error)
}

type QueryHandler struct {
	logger *slog.Logger
	query  QueryService
}

func NewQueryHandler(logger *slog.Logger, q QueryService) *QueryHandler {
	return &QueryHandler{logger: logger, query: q}
}

type askRequest struct {
	Question string `json:"question"`
}

type cypherRequest struct {
	Cypher string `json:"cypher"`
}

// Ask answers a natural-language question.
// POST /api/ask
func (h *QueryHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}
	if apiErr := validateQuestion(req.Question); apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}

	answer, err := h.query.Ask(r.Context(), req.Question)
	if err != nil {
		writeAPIError(w, h.logger, storeError(err))
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// Cypher runs a read-only Cypher query.
// POST /api/query/cypher
func (h *QueryHandler) Cypher(w http.ResponseWriter, r *http.Request) {
	var req cypherRequest
	if apiErr := decodeJSON(w, r, &req); apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}
	if apiErr := validateCypher(req.Cypher); apiErr != nil {
		writeAPIError(w, h.logger, apiErr)
		return
	}

	results, err := h.query.Run(r.Context(), req.Cypher)
	if err != nil {
		writeAPIError(w, h.logger, storeError(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": results,
		"count":   len(results),
	})
}
