package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"papergraph-backend/internal/interfaces/http/middleware"
)

// RouterConfig carries the cross-cutting settings of the router.
type RouterConfig struct {
	ServiceName    string
	RequestTimeout time.Duration
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	CORSMaxAge     int
	MetricsPath    string
	// Metrics and MetricsHandler are optional; nil disables both.
	Metrics        middleware.RequestRecorder
	MetricsHandler http.Handler
}

// NewRouter mounts every route.
func NewRouter(cfg RouterConfig, logger *zap.Logger, graphH *GraphHandler, ingestH *IngestionHandler, healthH *HealthHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   []string{"Location", "X-Request-Id", "X-Trace-ID"},
		AllowCredentials: false,
		MaxAge:           cfg.CORSMaxAge,
	}))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health", healthH.Check)
	if cfg.MetricsHandler != nil && cfg.MetricsPath != "" {
		r.Handle(cfg.MetricsPath, cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimw.Timeout(cfg.RequestTimeout))
		}

		r.Get("/graph", graphH.ExportGraph)
		r.Put("/graph", graphH.ImportGraph)

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", graphH.ListNodes)
			r.Post("/", graphH.CreateNode)
			r.Get("/{nodeId}", graphH.GetNode)
			r.Put("/{nodeId}", graphH.UpdateNode)
			r.Delete("/{nodeId}", graphH.DeleteNode)
			r.Get("/{nodeId}/neighbors", graphH.Neighbors)
			r.Get("/{nodeId}/centrality", graphH.Centrality)
		})

		r.Route("/edges", func(r chi.Router) {
			r.Get("/", graphH.ListEdges)
			r.Post("/", graphH.CreateEdge)
			r.Get("/{edgeId}", graphH.GetEdge)
			r.Put("/{edgeId}", graphH.UpdateEdge)
			r.Delete("/{edgeId}", graphH.DeleteEdge)
		})

		r.Get("/path", graphH.ShortestPath)
		r.Get("/rankings", graphH.Rankings)
		r.Get("/components", graphH.Components)

		r.Post("/ingest", ingestH.Ingest)
		r.Post("/extract", ingestH.Extract)
	})

	return r
}
