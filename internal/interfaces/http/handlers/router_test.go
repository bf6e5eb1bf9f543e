package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"papergraph-backend/internal/application/ingestion"
	"papergraph-backend/internal/application/services"
	"papergraph-backend/internal/domain/graph"
	"papergraph-backend/internal/infrastructure/observability"
	"papergraph-backend/internal/interfaces/http/response"
	"papergraph-backend/internal/service/llm"
)

type testServer struct {
	store       *graph.Store
	coordinator *ingestion.Coordinator
	provider    *llm.MockProvider
	handler     http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	collector := observability.NewCollector("test")
	store := graph.NewStore(graph.WithMetrics(collector))
	svc := services.NewGraphService(store, logger, collector)

	provider := llm.NewMockProvider()
	extractor := llm.NewService(provider, logger)
	coordinator := ingestion.NewCoordinator(
		ingestion.NewAdapter(store, logger, ingestion.WithMetrics(collector)),
		extractor, logger)

	out := response.NewWriter(logger, false)
	router := NewRouter(RouterConfig{
		ServiceName:    "test",
		RequestTimeout: 5 * time.Second,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
		MetricsPath:    "/metrics",
		Metrics:        collector,
		MetricsHandler: collector.Handler(),
	}, logger,
		NewGraphHandler(svc, out, 1<<20),
		NewIngestionHandler(coordinator, out, logger, 1<<20, 5*time.Second),
		NewHealthHandler(store, extractor, coordinator, "test", out),
	)
	return &testServer{store: store, coordinator: coordinator, provider: provider, handler: router}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// data decodes the envelope's data field into dst.
func data(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	require.True(t, env.Success)
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func problem(t *testing.T, rec *httptest.ResponseRecorder) response.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p response.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p), rec.Body.String())
	return p
}

type nodeBody struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Kind       string `json:"kind"`
	Importance int    `json:"importance"`
}

func createNode(t *testing.T, s *testServer, title string) nodeBody {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/nodes", `{"title":"`+title+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n nodeBody
	data(t, rec, &n)
	return n
}

func createEdge(t *testing.T, s *testServer, from, to string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/v1/edges", `{"sourceId":"`+from+`","targetId":"`+to+`","relationship":"supports"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var e struct {
		ID string `json:"id"`
	}
	data(t, rec, &e)
	return e.ID
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var h HealthResponse
	data(t, rec, &h)
	assert.Equal(t, StatusHealthy, h.Status)
	assert.Equal(t, "available", h.Extraction)
	assert.Zero(t, h.LastIngestion)

	out := s.coordinator.Apply(context.Background(), []byte(`{"nodes":[{"id":"X"}],"edges":[]}`))
	require.True(t, out.Applied())
	rec = s.do(t, http.MethodGet, "/health", "")
	data(t, rec, &h)
	assert.Equal(t, out.Ticket, h.LastIngestion)
	assert.Equal(t, 1, h.Nodes)

	s.provider.SetAvailable(false)
	rec = s.do(t, http.MethodGet, "/health", "")
	data(t, rec, &h)
	assert.Equal(t, StatusDegraded, h.Status)
}

func TestNodeRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/nodes", `{"title":"Attention","kind":"method","importance":9,"pageReferences":[3]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var n nodeBody
	data(t, rec, &n)
	assert.Equal(t, "/api/v1/nodes/"+n.ID, rec.Header().Get("Location"))
	assert.Equal(t, 5, n.Importance)
	assert.Equal(t, "method", n.Kind)

	rec = s.do(t, http.MethodGet, "/api/v1/nodes/"+n.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/nodes/"+n.ID, `{"title":"Self-Attention"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data(t, rec, &n)
	assert.Equal(t, "Self-Attention", n.Title)

	rec = s.do(t, http.MethodGet, "/api/v1/nodes", "")
	var list []nodeBody
	data(t, rec, &list)
	assert.Len(t, list, 1)

	rec = s.do(t, http.MethodDelete, "/api/v1/nodes/"+n.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/nodes/"+n.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NODE_NOT_FOUND", problem(t, rec).Code)
}

func TestNodeRoutes_BadRequests(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		code   string
	}{
		{"malformed json", http.MethodPost, "/api/v1/nodes", `{"title":`, "INVALID_INPUT"},
		{"missing title", http.MethodPost, "/api/v1/nodes", `{"kind":"method"}`, "INVALID_INPUT"},
		{"unknown kind", http.MethodPost, "/api/v1/nodes", `{"title":"x","kind":"hunch"}`, "INVALID_INPUT"},
		{"bad id", http.MethodGet, "/api/v1/nodes/not-a-uuid", "", "INVALID_UUID"},
		{"bad path ids", http.MethodGet, "/api/v1/path?from=x&to=y", "", "INVALID_UUID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, problem(t, rec).Code)
		})
	}
}

func TestEdgeRoutes(t *testing.T) {
	s := newTestServer(t)
	a := createNode(t, s, "a")
	b := createNode(t, s, "b")
	id := createEdge(t, s, a.ID, b.ID)

	rec := s.do(t, http.MethodPut, "/api/v1/edges/"+id, `{"sourceId":"`+a.ID+`","targetId":"`+b.ID+`","strength":4}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var e struct {
		Strength     float64 `json:"strength"`
		Relationship string  `json:"relationship"`
	}
	data(t, rec, &e)
	assert.Equal(t, 1.0, e.Strength)
	assert.Equal(t, "influences", e.Relationship)

	rec = s.do(t, http.MethodGet, "/api/v1/edges", "")
	var list []json.RawMessage
	data(t, rec, &list)
	assert.Len(t, list, 1)

	rec = s.do(t, http.MethodDelete, "/api/v1/edges/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/v1/edges/"+id, "")
	assert.Equal(t, "EDGE_NOT_FOUND", problem(t, rec).Code)
}

func TestEdgeRoutes_UnknownEndpoint(t *testing.T) {
	s := newTestServer(t)
	a := createNode(t, s, "a")

	rec := s.do(t, http.MethodPost, "/api/v1/edges",
		`{"sourceId":"`+a.ID+`","targetId":"6f1c7f55-3a8e-4a43-9d7e-0c2b8d9f1a22"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "UNKNOWN_ENDPOINT", problem(t, rec).Code)
	assert.Empty(t, s.store.Edges())
}

func TestQueryRoutes(t *testing.T) {
	s := newTestServer(t)
	a := createNode(t, s, "a")
	b := createNode(t, s, "b")
	c := createNode(t, s, "c")
	island := createNode(t, s, "island")
	createEdge(t, s, a.ID, b.ID)
	createEdge(t, s, b.ID, c.ID)

	rec := s.do(t, http.MethodGet, "/api/v1/path?from="+a.ID+"&to="+c.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var path services.PathResult
	data(t, rec, &path)
	assert.True(t, path.Found)
	assert.Equal(t, 2, path.Hops)
	require.Len(t, path.Path, 3)
	assert.Equal(t, b.ID, path.Path[1].String())

	rec = s.do(t, http.MethodGet, "/api/v1/path?from="+a.ID+"&to="+island.ID, "")
	data(t, rec, &path)
	assert.False(t, path.Found)
	assert.Empty(t, path.Path)

	rec = s.do(t, http.MethodGet, "/api/v1/nodes/"+b.ID+"/centrality", "")
	var cr CentralityResponse
	data(t, rec, &cr)
	assert.Equal(t, 1.0, cr.Centrality)

	rec = s.do(t, http.MethodGet, "/api/v1/nodes/"+b.ID+"/neighbors", "")
	var neighbors []nodeBody
	data(t, rec, &neighbors)
	assert.Len(t, neighbors, 2)

	rec = s.do(t, http.MethodGet, "/api/v1/rankings", "")
	var ranked []RankingResponse
	data(t, rec, &ranked)
	require.Len(t, ranked, 4)
	assert.Equal(t, "b", ranked[0].Title)
	assert.Equal(t, 2, ranked[0].Degree)

	rec = s.do(t, http.MethodGet, "/api/v1/components", "")
	var comps [][]string
	data(t, rec, &comps)
	require.Len(t, comps, 2)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, comps[0])
	assert.Equal(t, []string{island.ID}, comps[1])
}

func TestGraphExportImport(t *testing.T) {
	s := newTestServer(t)
	a := createNode(t, s, "a")
	b := createNode(t, s, "b")
	createEdge(t, s, a.ID, b.ID)

	rec := s.do(t, http.MethodGet, "/api/v1/graph", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	exported := rec.Body.String()

	rec = s.do(t, http.MethodGet, "/api/v1/graph?format=yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "sourceId:")

	rec = s.do(t, http.MethodGet, "/api/v1/graph?format=xml", "")
	assert.Equal(t, "UNSUPPORTED_FORMAT", problem(t, rec).Code)

	s.store.Clear()
	rec = s.do(t, http.MethodPut, "/api/v1/graph", exported)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	nodes, edges := s.store.Len()
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 1, edges)

	rec = s.do(t, http.MethodPut, "/api/v1/graph", `{"nodes":[],"edges":[{"id":"x"}]}`)
	assert.Equal(t, "INVALID_EXPORT_DOCUMENT", problem(t, rec).Code)
	nodes, _ = s.store.Len()
	assert.Equal(t, 2, nodes)
}

func TestIngestRoute(t *testing.T) {
	s := newTestServer(t)
	payload := `{"nodes":[{"id":"X","type":"method","importance":7},{"id":"Y","type":"bogus"}],
		"edges":[{"source":"X","target":"Y","relationship":"supports","strength":1.5},{"source":"X","target":"Z"}]}`

	rec := s.do(t, http.MethodPost, "/api/v1/ingest", payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var outcome ingestion.Outcome
	data(t, rec, &outcome)
	assert.False(t, outcome.Stale)
	assert.Equal(t, 2, outcome.Report.NodesAdded)
	assert.Equal(t, 1, outcome.Report.DroppedEdges)

	rec = s.do(t, http.MethodPost, "/api/v1/ingest", `{"nodes":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MALFORMED_INGESTION_INPUT", problem(t, rec).Code)
	nodes, _ := s.store.Len()
	assert.Equal(t, 2, nodes)
}

func TestExtractRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/extract", `{"sections":[{"title":"Intro","content":"Transformers use attention."}]}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	s.coordinator.Wait()
	nodes, edges := s.store.Len()
	assert.Equal(t, 5, nodes)
	assert.Equal(t, 3, edges)

	rec = s.do(t, http.MethodPost, "/api/v1/extract", `{"sections":[]}`)
	assert.Equal(t, "INVALID_INPUT", problem(t, rec).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	createNode(t, s, "a")

	rec := s.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `test_graph_mutations_total{change="node.upserted"} 1`)
	assert.True(t, strings.Contains(body, `route="/api/v1/nodes/"`) || strings.Contains(body, `route="/api/v1/nodes"`), body)
}
