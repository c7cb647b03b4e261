package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/maraichr/catalograph/internal/history"
	"github.com/maraichr/catalograph/pkg/apierr"
)

type HistoryHandler struct {
	logger *slog.Logger
	store  history.Store
}

func NewHistoryHandler(logger *slog.Logger, s history.Store) *HistoryHandler {
	return &HistoryHandler{logger: logger, store: s}
}

// List returns saved entries newest first, filtered by ?q= when given.
// GET /api/history
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeAPIError(w, h.logger, apierr.HistoryUnavailable(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"count":   len(entries),
	})
}

// Get returns one entry.
// GET /api/history/{id}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAPIError(w, h.logger, historyError(err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Delete removes one entry.
// DELETE /api/history/{id}
func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAPIError(w, h.logger, historyError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Clear removes every entry.
// DELETE /api/history
func (h *HistoryHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Clear(r.Context()); err != nil {
		writeAPIError(w, h.logger, apierr.HistoryUnavailable(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func historyError(err error) *apierr.Error {
	if errors.Is(err, history.ErrNotFound) {
		return apierr.HistoryNotFound()
	}
	return apierr.HistoryUnavailable(err)
}
