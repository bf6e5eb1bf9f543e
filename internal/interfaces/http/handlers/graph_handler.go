// Package handlers implements the REST API over the graph service and the
// ingestion coordinator.
package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"papergraph-backend/internal/application/commands"
	"papergraph-backend/internal/application/services"
	"papergraph-backend/internal/domain/shared"
	"papergraph-backend/internal/errors"
	"papergraph-backend/internal/interfaces/http/response"
	"papergraph-backend/internal/serialization"
)

// GraphHandler serves node, edge, query and whole-graph routes.
type GraphHandler struct {
	svc     *services.GraphService
	out     *response.Writer
	maxBody int64
}

// NewGraphHandler creates a handler. maxBody bounds request bodies.
func NewGraphHandler(svc *services.GraphService, out *response.Writer, maxBody int64) *GraphHandler {
	return &GraphHandler{svc: svc, out: out, maxBody: maxBody}
}

// RankingResponse is one entry of the centrality ranking.
type RankingResponse struct {
	NodeID     string  `json:"nodeId"`
	Title      string  `json:"title"`
	Centrality float64 `json:"centrality"`
	Degree     int     `json:"degree"`
}

// CentralityResponse scores one node.
type CentralityResponse struct {
	NodeID     string  `json:"nodeId"`
	Centrality float64 `json:"centrality"`
}

// ---- nodes ----

// ListNodes handles GET /api/v1/nodes.
func (h *GraphHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	h.out.JSON(w, r, http.StatusOK, h.svc.Export(r.Context()).Nodes)
}

// CreateNode handles POST /api/v1/nodes with a fresh id.
func (h *GraphHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var cmd commands.NodeCommand
	if err := h.decode(w, r, &cmd); err != nil {
		h.out.Error(w, r, err)
		return
	}
	n, err := h.svc.CreateNode(r.Context(), cmd)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/nodes/"+n.ID.String())
	h.out.JSON(w, r, http.StatusCreated, serialization.NodeToDoc(n))
}

// GetNode handles GET /api/v1/nodes/{nodeId}.
func (h *GraphHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.GetNode(r.Context(), chi.URLParam(r, "nodeId"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, r, http.StatusOK, serialization.NodeToDoc(n))
}

// UpdateNode handles PUT /api/v1/nodes/{nodeId}; an unknown id is created.
func (h *GraphHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	var cmd commands.NodeCommand
	if err := h.decode(w, r, &cmd); err != nil {
		h.out.Error(w, r, err)
		return
	}
	n, err := h.svc.UpdateNode(r.Context(), chi.URLParam(r, "nodeId"), cmd)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, r, http.StatusOK, serialization.NodeToDoc(n))
}

// DeleteNode handles DELETE /api/v1/nodes/{nodeId} and cascades to its edges.
func (h *GraphHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNode(r.Context(), chi.URLParam(r, "nodeId")); err != nil {
		h.out.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Neighbors handles GET /api/v1/nodes/{nodeId}/neighbors.
func (h *GraphHandler) Neighbors(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.svc.Neighbors(r.Context(), chi.URLParam(r, "nodeId"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	docs := make([]serialization.NodeDoc, 0, len(nodes))
	for _, n := range nodes {
		docs = append(docs, serialization.NodeToDoc(n))
	}
	h.out.JSON(w, r, http.StatusOK, docs)
}

// Centrality handles GET /api/v1/nodes/{nodeId}/centrality.
func (h *GraphHandler) Centrality(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeId")
	score, err := h.svc.Centrality(r.Context(), id)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, r, http.StatusOK, CentralityResponse{NodeID: id, Centrality: score})
}

// ---- edges ----

// ListEdges handles GET /api/v1/edges.
func (h *GraphHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	h.out.JSON(w, r, http.StatusOK, h.svc.Export(r.Context()).Edges)
}

// CreateEdge handles POST /api/v1/edges.
func (h *GraphHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var cmd commands.EdgeCommand
	if err := h.decode(w, r, &cmd); err != nil {
		h.out.Error(w, r, err)
		return
	}
	e, err := h.svc.CreateEdge(r.Context(), cmd)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/edges/"+e.ID.String())
	h.out.JSON(w, r, http.StatusCreated, serialization.EdgeToDoc(e))
}

// GetEdge handles GET /api/v1/edges/{edgeId}.
func (h *GraphHandler) GetEdge(w http.ResponseWriter, r *http.Request) {
	e, err := h.svc.GetEdge(r.Context(), chi.URLParam(r, "edgeId"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, r, http.StatusOK, serialization.EdgeToDoc(e))
}

// UpdateEdge handles PUT /api/v1/edges/{edgeId}.
func (h *GraphHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	var cmd commands.EdgeCommand
	if err := h.decode(w, r, &cmd); err != nil {
		h.out.Error(w, r, err)
		return
	}
	e, err := h.svc.UpdateEdge(r.Context(), chi.URLParam(r, "edgeId"), cmd)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, r, http.StatusOK, serialization.EdgeToDoc(e))
}

// DeleteEdge handles DELETE /api/v1/edges/{edgeId}.
func (h *GraphHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEdge(r.Context(), chi.URLParam(r, "edgeId")); err != nil {
		h.out.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- queries ----

// ShortestPath handles GET /api/v1/path?from=&to=.
func (h *GraphHandler) ShortestPath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.ShortestPath(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.JSON(w, r, http.StatusOK, res)
}

// Rankings handles GET /api/v1/rankings.
func (h *GraphHandler) Rankings(w http.ResponseWriter, r *http.Request) {
	ranked := h.svc.Rankings(r.Context())
	titles := make(map[string]string)
	for _, n := range h.svc.Export(r.Context()).Nodes {
		titles[n.ID] = n.Title
	}
	out := make([]RankingResponse, 0, len(ranked))
	for _, rk := range ranked {
		id := rk.NodeID.String()
		out = append(out, RankingResponse{
			NodeID:     id,
			Title:      titles[id],
			Centrality: rk.Centrality,
			Degree:     rk.Degree,
		})
	}
	h.out.JSON(w, r, http.StatusOK, out)
}

// Components handles GET /api/v1/components.
func (h *GraphHandler) Components(w http.ResponseWriter, r *http.Request) {
	comps := h.svc.Components(r.Context())
	if comps == nil {
		comps = [][]shared.NodeID{}
	}
	h.out.JSON(w, r, http.StatusOK, comps)
}

// ---- whole graph ----

// ExportGraph returns the graph document, as JSON unless ?format=yaml.
func (h *GraphHandler) ExportGraph(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	body, err := serialization.Marshal(h.svc.Export(r.Context()), format)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	h.out.Raw(w, http.StatusOK, contentType(format), body)
}

// ImportGraph replaces the graph with the request body document.
func (h *GraphHandler) ImportGraph(w http.ResponseWriter, r *http.Request) {
	format, err := requestFormat(r)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		h.out.Error(w, r, badBody(err))
		return
	}
	doc, err := serialization.Unmarshal(body, format)
	if err != nil {
		h.out.Error(w, r, err)
		return
	}
	if err := h.svc.Import(r.Context(), doc); err != nil {
		h.out.Error(w, r, err)
		return
	}
	nodes, edges := h.svc.Store().Len()
	h.out.JSON(w, r, http.StatusOK, map[string]int{"nodes": nodes, "edges": edges})
}

func (h *GraphHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return decodeJSON(w, r, h.maxBody, dst)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBody int64, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	if err := dec.Decode(dst); err != nil {
		return badBody(err)
	}
	return nil
}

func badBody(err error) error {
	return errors.Validation(errors.CodeInvalidInput.String(), "malformed request body").
		WithDetails(err.Error()).
		WithCause(err).
		Build()
}

// requestFormat reads ?format, then a YAML Content-Type, defaulting to JSON.
func requestFormat(r *http.Request) (serialization.Format, error) {
	if f := r.URL.Query().Get("format"); f != "" {
		return serialization.ParseFormat(f)
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return serialization.FormatYAML, nil
	}
	return serialization.FormatJSON, nil
}

func contentType(f serialization.Format) string {
	if f == serialization.FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}
