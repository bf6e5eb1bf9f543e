// Package services exposes graph operations to the transport layers,
// adding request validation, tracing and query timing around the store
// and query engine.
package services

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"papergraph-backend/internal/application/commands"
	"papergraph-backend/internal/domain/edge"
	"papergraph-backend/internal/domain/graph"
	"papergraph-backend/internal/domain/node"
	"papergraph-backend/internal/domain/shared"
	"papergraph-backend/internal/errors"
	"papergraph-backend/internal/serialization"
)

// QueryObserver records query latency.
type QueryObserver interface {
	ObserveQuery(query string, d time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveQuery(string, time.Duration) {}

// GraphService serves node, edge and query requests against one store.
type GraphService struct {
	store   *graph.Store
	logger  *zap.Logger
	metrics QueryObserver
	tracer  trace.Tracer
}

// NewGraphService creates a service over store. metrics may be nil.
func NewGraphService(store *graph.Store, logger *zap.Logger, metrics QueryObserver) *GraphService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = noopObserver{}
	}
	return &GraphService{
		store:   store,
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer("papergraph/graph"),
	}
}

// Store returns the underlying store.
func (s *GraphService) Store() *graph.Store { return s.store }

// ============================================================================
// NODES
// ============================================================================

// CreateNode adds a node with a fresh id.
func (s *GraphService) CreateNode(ctx context.Context, cmd commands.NodeCommand) (node.Node, error) {
	return s.putNode(ctx, "CreateNode", shared.NewNodeID(), cmd)
}

// UpdateNode replaces the node with the given id, creating it if absent.
func (s *GraphService) UpdateNode(ctx context.Context, rawID string, cmd commands.NodeCommand) (node.Node, error) {
	id, err := shared.ParseNodeID(rawID)
	if err != nil {
		return node.Node{}, err
	}
	return s.putNode(ctx, "UpdateNode", id, cmd)
}

func (s *GraphService) putNode(ctx context.Context, op string, id shared.NodeID, cmd commands.NodeCommand) (node.Node, error) {
	_, span := s.tracer.Start(ctx, "graph."+op, trace.WithAttributes(attribute.String("node.id", id.String())))
	defer span.End()

	if err := commands.Validate(cmd); err != nil {
		return node.Node{}, err
	}

	opts := []node.Option{
		node.WithID(id),
		node.WithDescription(cmd.Description),
		node.WithPageReferences(cmd.PageReferences...),
	}
	if cmd.Kind != "" {
		opts = append(opts, node.WithKind(shared.NodeKind(cmd.Kind)))
	}
	if cmd.Importance != nil {
		opts = append(opts, node.WithImportance(*cmd.Importance))
	}
	for _, raw := range cmd.RelatedConcepts {
		rid, err := shared.ParseNodeID(raw)
		if err != nil {
			return node.Node{}, err
		}
		opts = append(opts, node.WithRelatedConcepts(rid))
	}

	n := node.New(cmd.Title, opts...)
	if err := s.store.UpdateNode(n); err != nil {
		span.RecordError(err)
		return node.Node{}, err
	}
	stored, _ := s.store.Node(id)
	return stored, nil
}

// GetNode returns the node or NODE_NOT_FOUND.
func (s *GraphService) GetNode(ctx context.Context, rawID string) (node.Node, error) {
	id, err := shared.ParseNodeID(rawID)
	if err != nil {
		return node.Node{}, err
	}
	n, ok := s.store.Node(id)
	if !ok {
		return node.Node{}, nodeNotFound("GetNode", id)
	}
	return n, nil
}

// DeleteNode removes the node and its edges.
func (s *GraphService) DeleteNode(ctx context.Context, rawID string) error {
	id, err := shared.ParseNodeID(rawID)
	if err != nil {
		return err
	}
	if _, ok := s.store.Node(id); !ok {
		return nodeNotFound("DeleteNode", id)
	}
	s.store.RemoveNode(id)
	return nil
}

// ============================================================================
// EDGES
// ============================================================================

// CreateEdge adds an edge with a fresh id.
func (s *GraphService) CreateEdge(ctx context.Context, cmd commands.EdgeCommand) (edge.Edge, error) {
	return s.putEdge(ctx, "CreateEdge", shared.NewEdgeID(), cmd)
}

// UpdateEdge replaces the edge with the given id, creating it if absent.
func (s *GraphService) UpdateEdge(ctx context.Context, rawID string, cmd commands.EdgeCommand) (edge.Edge, error) {
	id, err := shared.ParseEdgeID(rawID)
	if err != nil {
		return edge.Edge{}, err
	}
	return s.putEdge(ctx, "UpdateEdge", id, cmd)
}

func (s *GraphService) putEdge(ctx context.Context, op string, id shared.EdgeID, cmd commands.EdgeCommand) (edge.Edge, error) {
	_, span := s.tracer.Start(ctx, "graph."+op, trace.WithAttributes(attribute.String("edge.id", id.String())))
	defer span.End()

	if err := commands.Validate(cmd); err != nil {
		return edge.Edge{}, err
	}
	source, err := shared.ParseNodeID(cmd.SourceID)
	if err != nil {
		return edge.Edge{}, err
	}
	target, err := shared.ParseNodeID(cmd.TargetID)
	if err != nil {
		return edge.Edge{}, err
	}

	relationship := shared.DefaultRelationType
	if cmd.Relationship != "" {
		relationship = shared.RelationType(cmd.Relationship)
	}
	strength := shared.DefaultStrength
	if cmd.Strength != nil {
		strength = *cmd.Strength
	}

	e := edge.New(source, target, relationship, strength).WithDescription(cmd.Description)
	e.ID = id
	if err := s.store.UpdateEdge(e); err != nil {
		span.RecordError(err)
		return edge.Edge{}, err
	}
	stored, _ := s.store.Edge(id)
	return stored, nil
}

// GetEdge returns the edge or EDGE_NOT_FOUND.
func (s *GraphService) GetEdge(ctx context.Context, rawID string) (edge.Edge, error) {
	id, err := shared.ParseEdgeID(rawID)
	if err != nil {
		return edge.Edge{}, err
	}
	e, ok := s.store.Edge(id)
	if !ok {
		return edge.Edge{}, edgeNotFound("GetEdge", id)
	}
	return e, nil
}

// DeleteEdge removes an edge.
func (s *GraphService) DeleteEdge(ctx context.Context, rawID string) error {
	id, err := shared.ParseEdgeID(rawID)
	if err != nil {
		return err
	}
	if _, ok := s.store.Edge(id); !ok {
		return edgeNotFound("DeleteEdge", id)
	}
	s.store.RemoveEdge(id)
	return nil
}

// ============================================================================
// QUERIES
// ============================================================================

// Neighbors lists nodes adjacent to id. An unknown id has no neighbors.
func (s *GraphService) Neighbors(ctx context.Context, rawID string) ([]node.Node, error) {
	id, err := shared.ParseNodeID(rawID)
	if err != nil {
		return nil, err
	}
	defer s.observe(ctx, "neighbors")()
	return s.engine().Neighbors(id), nil
}

// PathResult is a shortest path answer; Found is false when none exists.
type PathResult struct {
	Found bool            `json:"found"`
	Path  []shared.NodeID `json:"path"`
	Hops  int             `json:"hops"`
}

// ShortestPath finds a minimum-hop path between two nodes.
func (s *GraphService) ShortestPath(ctx context.Context, rawFrom, rawTo string) (PathResult, error) {
	from, err := shared.ParseNodeID(rawFrom)
	if err != nil {
		return PathResult{}, err
	}
	to, err := shared.ParseNodeID(rawTo)
	if err != nil {
		return PathResult{}, err
	}
	defer s.observe(ctx, "shortest_path")()

	path, ok := s.engine().ShortestPath(from, to)
	if !ok {
		return PathResult{Path: []shared.NodeID{}}, nil
	}
	return PathResult{Found: true, Path: path, Hops: len(path) - 1}, nil
}

// Centrality scores one node; the node must exist.
func (s *GraphService) Centrality(ctx context.Context, rawID string) (float64, error) {
	id, err := shared.ParseNodeID(rawID)
	if err != nil {
		return 0, err
	}
	defer s.observe(ctx, "centrality")()

	q := s.engine()
	if !q.Snapshot().HasNode(id) {
		return 0, nodeNotFound("Centrality", id)
	}
	return q.Centrality(id), nil
}

// Rankings scores every node, highest centrality first.
func (s *GraphService) Rankings(ctx context.Context) []graph.Ranked {
	defer s.observe(ctx, "rankings")()
	return s.engine().RankByCentrality()
}

// Components lists connected components.
func (s *GraphService) Components(ctx context.Context) [][]shared.NodeID {
	defer s.observe(ctx, "components")()
	return s.engine().Components()
}

// Export returns the current graph as a document.
func (s *GraphService) Export(ctx context.Context) serialization.Document {
	return serialization.Export(s.store)
}

// Import replaces the current graph with doc. An invalid document leaves
// the graph unchanged.
func (s *GraphService) Import(ctx context.Context, doc serialization.Document) error {
	_, span := s.tracer.Start(ctx, "graph.Import")
	defer span.End()

	built, err := serialization.Import(doc, graph.WithLogger(s.logger))
	if err != nil {
		span.RecordError(err)
		return err
	}
	s.store.ReplaceWith(built)
	return nil
}

func (s *GraphService) engine() *graph.QueryEngine {
	return graph.NewQueryEngine(s.store.Snapshot())
}

func (s *GraphService) observe(ctx context.Context, query string) func() {
	_, span := s.tracer.Start(ctx, "graph.query."+query)
	start := time.Now()
	return func() {
		s.metrics.ObserveQuery(query, time.Since(start))
		span.End()
	}
}

func nodeNotFound(op string, id shared.NodeID) error {
	return errors.NotFound(errors.CodeNodeNotFound.String(), "node not found").
		WithDetailsf("node %s", id).
		WithOperation(op).
		WithResource("node").
		Build()
}

func edgeNotFound(op string, id shared.EdgeID) error {
	return errors.NotFound(errors.CodeEdgeNotFound.String(), "edge not found").
		WithDetailsf("edge %s", id).
		WithOperation(op).
		WithResource("edge").
		Build()
}
