package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apihandler "github.com/maraichr/catalograph/internal/api/handler"
	apimw "github.com/maraichr/catalograph/internal/api/middleware"
	"github.com/maraichr/catalograph/internal/history"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// RouterDeps holds the services behind the HTTP routes.
type RouterDeps struct {
	Store       apihandler.Pinger
	Catalog     apihandler.CatalogService
	Lineage     apihandler.LineageService
	Query       apihandler.QueryService
	History     history.Store
	CORSOrigins []string
}

func NewRouter(logger *slog.Logger, deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(apimw.CORS(deps.CORSOrigins))
	r.Use(chimw.Recoverer)

	// Health checks
	health := apihandler.NewHealthHandler(deps.Store, Version)
	r.Get("/", health.Root)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Route("/api", func(r chi.Router) {
		schema := apihandler.NewSchemaHandler(logger, deps.Catalog)
		r.Get("/schema/tables", schema.Tables)
		r.Get("/schema/table/{name}", schema.Table)
		r.Get("/search/tables", schema.Search)
		r.Get("/stats", schema.Stats)

		lineage := apihandler.NewLineageHandler(logger, deps.Lineage)
		r.Get("/lineage/{table}", lineage.Get)

		queries := apihandler.NewQueryHandler(logger, deps.Query)
		r.Post("/ask", queries.Ask)
		r.Post("/query/cypher", queries.Cypher)

		if deps.History != nil {
			hist := apihandler.NewHistoryHandler(logger, deps.History)
			r.Route("/history", func(r chi.Router) {
				r.Get("/", hist.List)
				r.Delete("/", hist.Clear)
				r.Get("/{id}", hist.Get)
				r.Delete("/{id}", hist.Delete)
			})
		}
	})

	return r
}
