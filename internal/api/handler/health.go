package handler

import (
	"context"
	"net/http"

	"github.com/maraichr/catalograph/pkg/apierr"
)

// Pinger checks connectivity to the graph store.
type Pinger interface {
	Verify(ctx context.Context) error
}

type HealthHandler struct {
	store   Pinger
	version string
}

func NewHealthHandler(store Pinger, version string) *HealthHandler {
	return &HealthHandler{store: store, version: version}
}

// Root identifies the service.
// GET /
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Bank Data Catalog API",
		"version": h.version,
	})
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Verify(r.Context()); err != nil {
			writeAPIError(w, nil, apierr.StoreNotReady())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
