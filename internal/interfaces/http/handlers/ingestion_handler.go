package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"papergraph-backend/internal/application/commands"
	"papergraph-backend/internal/application/ingestion"
	"papergraph-backend/internal/interfaces/http/response"
	"papergraph-backend/internal/service/llm"
)

// IngestionHandler accepts producer payloads and extraction requests.
type IngestionHandler struct {
	coordinator    *ingestion.Coordinator
	out            *response.Writer
	logger         *zap.Logger
	maxBody        int64
	extractTimeout time.Duration
}

// NewIngestionHandler creates a handler. extractTimeout bounds background
// extractions, which outlive the request that started them.
func NewIngestionHandler(coordinator *ingestion.Coordinator, out *response.Writer, logger *zap.Logger, maxBody int64, extractTimeout time.Duration) *IngestionHandler {
	return &IngestionHandler{
		coordinator:    coordinator,
		out:            out,
		logger:         logger,
		maxBody:        maxBody,
		extractTimeout: extractTimeout,
	}
}

// Ingest installs a raw extraction envelope synchronously.
func (h *IngestionHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		h.out.Error(w, r, badBody(err))
		return
	}
	outcome := h.coordinator.Apply(r.Context(), payload)
	if outcome.Err != nil {
		h.out.Error(w, r, outcome.Err)
		return
	}
	h.out.JSON(w, r, http.StatusOK, outcome)
}

// ExtractAccepted acknowledges a background extraction.
type ExtractAccepted struct {
	Status   string `json:"status"`
	Sections int    `json:"sections"`
}

// Extract starts a background extraction over the request's sections and
// answers 202 at once. The live graph is replaced when the run installs.
func (h *IngestionHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var cmd commands.IngestCommand
	if err := decodeJSON(w, r, h.maxBody, &cmd); err != nil {
		h.out.Error(w, r, err)
		return
	}
	if err := commands.Validate(cmd); err != nil {
		h.out.Error(w, r, err)
		return
	}

	sections := make([]llm.Section, 0, len(cmd.Sections))
	for _, s := range cmd.Sections {
		sections = append(sections, llm.Section{Title: s.Title, Content: s.Content})
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.extractTimeout)
	done := h.coordinator.Trigger(ctx, sections)
	go func() {
		defer cancel()
		outcome := <-done
		if outcome.Err != nil {
			h.logger.Warn("background extraction failed", zap.Uint64("ticket", outcome.Ticket), zap.Error(outcome.Err))
			return
		}
		h.logger.Info("background extraction finished",
			zap.Uint64("ticket", outcome.Ticket),
			zap.Bool("stale", outcome.Stale),
			zap.Int("nodes", outcome.Report.NodesAdded),
			zap.Int("edges", outcome.Report.EdgesAdded),
		)
	}()

	h.out.JSON(w, r, http.StatusAccepted, ExtractAccepted{Status: "accepted", Sections: len(sections)})
}
