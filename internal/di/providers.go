// Package di wires the service together. Provider functions live here;
// wire.go declares the injector and wire_gen.go is its generated form.
package di

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/wire"
	"go.uber.org/zap"

	"papergraph-backend/internal/application/ingestion"
	"papergraph-backend/internal/application/services"
	"papergraph-backend/internal/config"
	"papergraph-backend/internal/domain/graph"
	"papergraph-backend/internal/infrastructure/observability"
	"papergraph-backend/internal/infrastructure/persistence/sqlite"
	"papergraph-backend/internal/interfaces/http/handlers"
	"papergraph-backend/internal/interfaces/http/response"
	"papergraph-backend/internal/service/llm"
)

// Version is the build version reported by /health.
type Version string

// Container holds the long-lived components of a running service.
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       *graph.Store
	Graph       *services.GraphService
	Coordinator *ingestion.Coordinator
	Autosaver   *services.Autosaver
	Repository  *sqlite.SnapshotRepository
	Tracing     *observability.TracerProvider
	Router      http.Handler
}

// SuperSet is every provider the injector needs.
var SuperSet = wire.NewSet(
	InfrastructureProviders,
	ApplicationProviders,
	InterfaceProviders,
	wire.Struct(new(Container), "*"),
	wire.Bind(new(http.Handler), new(*chi.Mux)),
)

// InfrastructureProviders builds logging, metrics, tracing and storage.
var InfrastructureProviders = wire.NewSet(
	provideZapLogger,
	provideCollector,
	provideTracing,
	provideRepository,
	provideStore,
)

// ApplicationProviders builds the graph service, extraction and ingestion.
var ApplicationProviders = wire.NewSet(
	provideGraphService,
	provideAutosaver,
	provideLLMProvider,
	provideLLMService,
	provideAdapter,
	provideCoordinator,
	wire.Bind(new(ingestion.Extractor), new(*llm.Service)),
)

// InterfaceProviders builds the HTTP layer.
var InterfaceProviders = wire.NewSet(
	provideResponseWriter,
	provideGraphHandler,
	provideIngestionHandler,
	provideHealthHandler,
	provideRouter,
)

func provideZapLogger(l *observability.Logger) *zap.Logger {
	return l.Logger
}

func provideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

func provideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, cfg.Tracing.ServiceName, string(cfg.Environment), cfg.Tracing.Endpoint)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

func provideRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sqlite.SnapshotRepository, func(), error) {
	repo, err := sqlite.NewSnapshotRepository(ctx, cfg.Storage.Path, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := repo.Close(); err != nil {
			logger.Warn("closing snapshot repository failed", zap.Error(err))
		}
	}
	return repo, cleanup, nil
}

func provideStore(collector *observability.Collector, logger *zap.Logger) *graph.Store {
	return graph.NewStore(graph.WithMetrics(collector), graph.WithLogger(logger))
}

func provideGraphService(store *graph.Store, logger *zap.Logger, collector *observability.Collector) *services.GraphService {
	return services.NewGraphService(store, logger, collector)
}

func provideAutosaver(store *graph.Store, repo *sqlite.SnapshotRepository, cfg *config.Config, logger *zap.Logger) *services.Autosaver {
	return services.NewAutosaver(store, repo, cfg.PaperID, logger)
}

// provideLLMProvider picks the configured producer and puts it behind a
// circuit breaker.
func provideLLMProvider(cfg *config.Config, logger *zap.Logger) llm.Provider {
	var provider llm.Provider
	switch cfg.Extraction.Provider {
	case "openai":
		provider = llm.NewOpenAIProvider(cfg.Extraction.APIKey, cfg.Extraction.BaseURL, cfg.Extraction.Model, cfg.Extraction.Timeout)
	default:
		provider = llm.NewMockProvider()
	}

	b := cfg.Extraction.Breaker
	return llm.NewBreakerProvider(provider, llm.BreakerConfig{
		Name:             "extraction-" + cfg.Extraction.Provider,
		MaxRequests:      b.MaxRequests,
		Interval:         b.Interval,
		Timeout:          b.Timeout,
		FailureThreshold: b.FailureThreshold,
		MinRequests:      b.MinRequests,
	}, logger)
}

func provideLLMService(provider llm.Provider, logger *zap.Logger) *llm.Service {
	return llm.NewService(provider, logger)
}

func provideAdapter(store *graph.Store, logger *zap.Logger, collector *observability.Collector, tp *observability.TracerProvider) *ingestion.Adapter {
	return ingestion.NewAdapter(store, logger,
		ingestion.WithMetrics(collector),
		ingestion.WithTracer(tp.Tracer()),
	)
}

func provideCoordinator(adapter *ingestion.Adapter, extractor ingestion.Extractor, logger *zap.Logger) *ingestion.Coordinator {
	return ingestion.NewCoordinator(adapter, extractor, logger)
}

func provideResponseWriter(cfg *config.Config, logger *zap.Logger) *response.Writer {
	return response.NewWriter(logger, cfg.IsProduction())
}

func provideGraphHandler(svc *services.GraphService, out *response.Writer, cfg *config.Config) *handlers.GraphHandler {
	return handlers.NewGraphHandler(svc, out, cfg.Server.MaxRequestSize)
}

func provideIngestionHandler(coordinator *ingestion.Coordinator, out *response.Writer, logger *zap.Logger, cfg *config.Config) *handlers.IngestionHandler {
	return handlers.NewIngestionHandler(coordinator, out, logger, cfg.Server.MaxRequestSize, cfg.Extraction.Timeout)
}

func provideHealthHandler(store *graph.Store, extractor *llm.Service, coordinator *ingestion.Coordinator, version Version, out *response.Writer) *handlers.HealthHandler {
	return handlers.NewHealthHandler(store, extractor, coordinator, string(version), out)
}

func provideRouter(cfg *config.Config, logger *zap.Logger, collector *observability.Collector, g *handlers.GraphHandler, i *handlers.IngestionHandler, h *handlers.HealthHandler) *chi.Mux {
	rc := handlers.RouterConfig{
		ServiceName:    cfg.Tracing.ServiceName,
		RequestTimeout: cfg.Server.WriteTimeout,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		CORSMaxAge:     cfg.CORS.MaxAge,
	}
	if cfg.Metrics.Enabled {
		rc.Metrics = collector
		rc.MetricsHandler = collector.Handler()
		rc.MetricsPath = cfg.Metrics.Path
	}
	return handlers.NewRouter(rc, logger, g, i, h)
}
