package handlers

import (
	"net/http"
	"time"

	"papergraph-backend/internal/domain/graph"
	"papergraph-backend/internal/interfaces/http/response"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// Availability reports whether a dependency can currently serve.
type Availability interface {
	IsAvailable() bool
}

// IngestionTracker reports the ticket of the ingestion run currently live.
type IngestionTracker interface {
	LastInstalled() uint64
}

// HealthHandler reports liveness plus a summary of the live graph.
type HealthHandler struct {
	store     *graph.Store
	extractor Availability
	ingestion IngestionTracker
	version   string
	started   time.Time
	out       *response.Writer
}

// NewHealthHandler creates a health handler. extractor and ingestion may
// be nil.
func NewHealthHandler(store *graph.Store, extractor Availability, ingestion IngestionTracker, version string, out *response.Writer) *HealthHandler {
	return &HealthHandler{
		store:     store,
		extractor: extractor,
		ingestion: ingestion,
		version:   version,
		started:   time.Now(),
		out:       out,
	}
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Uptime       string `json:"uptime"`
	GraphVersion uint64 `json:"graphVersion"`
	Nodes        int    `json:"nodes"`
	Edges        int    `json:"edges"`
	Extraction   string `json:"extraction"`
	// LastIngestion is the ticket of the live ingestion run, 0 if none.
	LastIngestion uint64 `json:"lastIngestion"`
}

// Check always answers 200; an unavailable extractor only degrades status.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	nodes, edges := h.store.Len()
	resp := HealthResponse{
		Status:       StatusHealthy,
		Version:      h.version,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		GraphVersion: h.store.Version(),
		Nodes:        nodes,
		Edges:        edges,
		Extraction:   "available",
	}
	if h.ingestion != nil {
		resp.LastIngestion = h.ingestion.LastInstalled()
	}
	if h.extractor == nil || !h.extractor.IsAvailable() {
		resp.Status = StatusDegraded
		resp.Extraction = "unavailable"
	}
	h.out.JSON(w, r, http.StatusOK, resp)
}
