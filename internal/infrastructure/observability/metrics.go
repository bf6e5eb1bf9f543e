package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"papergraph-backend/internal/application/ingestion"
	"papergraph-backend/internal/domain/shared"
)

// Collector holds all Prometheus metrics for the application. Each
// collector owns its registry, so several can coexist in tests.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Graph metrics
	Mutations     *prometheus.CounterVec
	RejectedEdges prometheus.Counter
	QueryDuration *prometheus.HistogramVec

	// Ingestion metrics
	Ingestions   *prometheus.CounterVec
	DroppedEdges prometheus.Counter
	SoftDefaults *prometheus.CounterVec
}

// NewCollector creates a collector with the given namespace.
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_mutations_total",
				Help:      "Committed graph mutations by change type",
			},
			[]string{"change"},
		),
		RejectedEdges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "graph_rejected_edges_total",
				Help:      "Edges rejected because an endpoint was missing",
			},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "graph_query_duration_seconds",
				Help:      "Graph query duration in seconds",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"query"},
		),
		Ingestions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingestions_total",
				Help:      "Ingestion runs by outcome",
			},
			[]string{"outcome"},
		),
		DroppedEdges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingestion_dropped_edges_total",
				Help:      "Ingested edges dropped for unresolved endpoints",
			},
		),
		SoftDefaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ingestion_soft_conditions_total",
				Help:      "Defaulted or clamped values seen during ingestion",
			},
			[]string{"condition"},
		),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Mutations,
		c.RejectedEdges,
		c.QueryDuration,
		c.Ingestions,
		c.DroppedEdges,
		c.SoftDefaults,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordMutation implements graph.Metrics.
func (c *Collector) RecordMutation(change shared.ChangeType) {
	c.Mutations.WithLabelValues(string(change)).Inc()
}

// RecordRejectedEdge implements graph.Metrics.
func (c *Collector) RecordRejectedEdge() {
	c.RejectedEdges.Inc()
}

// RecordIngestion implements ingestion.Metrics.
func (c *Collector) RecordIngestion(outcome string, report ingestion.Report) {
	c.Ingestions.WithLabelValues(outcome).Inc()
	if outcome != ingestion.OutcomeApplied {
		return
	}
	c.DroppedEdges.Add(float64(report.DroppedEdges))
	c.SoftDefaults.WithLabelValues("defaulted_kind").Add(float64(report.DefaultedKinds))
	c.SoftDefaults.WithLabelValues("defaulted_relationship").Add(float64(report.DefaultedRelationships))
	c.SoftDefaults.WithLabelValues("defaulted_value").Add(float64(report.DefaultedValues))
	c.SoftDefaults.WithLabelValues("clamped_importance").Add(float64(report.ClampedImportance))
	c.SoftDefaults.WithLabelValues("clamped_strength").Add(float64(report.ClampedStrength))
	c.SoftDefaults.WithLabelValues("skipped_node").Add(float64(report.SkippedNodes))
}

// ObserveQuery records how long a graph query took.
func (c *Collector) ObserveQuery(query string, d time.Duration) {
	c.QueryDuration.WithLabelValues(query).Observe(d.Seconds())
}

// RecordHTTPRequest records a served request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
