// Package graph owns the canonical set of knowledge nodes and edges.
//
// Store is the only place graph contents are mutated. It keeps nodes and
// edges in id-keyed maps (cycles are plain id references) plus insertion
// order slices that define the store's enumeration order. Every edge in a
// Store has both endpoints present: AddEdge rejects unknown endpoints and
// RemoveNode cascades to incident edges under the same write lock.
//
// Read-only algorithms run on an immutable Snapshot through QueryEngine.
package graph

import (
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"papergraph-backend/internal/domain/edge"
	"papergraph-backend/internal/domain/node"
	"papergraph-backend/internal/domain/shared"
	"papergraph-backend/internal/errors"
)

// Observer receives committed changes. It is invoked after the store lock
// has been released, so it may read from the store.
type Observer func(shared.GraphChange)

// Metrics receives mutation counts. The prometheus collector implements it.
type Metrics interface {
	RecordMutation(change shared.ChangeType)
	RecordRejectedEdge()
}

type noopMetrics struct{}

func (noopMetrics) RecordMutation(shared.ChangeType) {}
func (noopMetrics) RecordRejectedEdge()              {}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the diagnostic logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Store is the sole authority for graph contents.
type Store struct {
	mu        sync.RWMutex
	nodes     map[shared.NodeID]node.Node
	edges     map[shared.EdgeID]edge.Edge
	nodeOrder []shared.NodeID
	edgeOrder []shared.EdgeID
	version   uint64

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int

	logger   *zap.Logger
	metrics  Metrics
	validate *validator.Validate
}

var nodeValidator = validator.New()

// NewStore creates an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		nodes:     make(map[shared.NodeID]node.Node),
		edges:     make(map[shared.EdgeID]edge.Edge),
		observers: make(map[int]Observer),
		logger:    zap.NewNop(),
		metrics:   noopMetrics{},
		validate:  nodeValidator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ============================================================================
// NODE OPERATIONS
// ============================================================================

// AddNode inserts n or overwrites the node with the same id. Importance is
// clamped. RelatedConcepts is stored as given, without existence checks.
func (s *Store) AddNode(n node.Node) error {
	return s.upsertNode("AddNode", n)
}

// UpdateNode has the same upsert semantics as AddNode; an unknown id is
// created.
func (s *Store) UpdateNode(n node.Node) error {
	return s.upsertNode("UpdateNode", n)
}

func (s *Store) upsertNode(op string, n node.Node) error {
	if n.ID.IsZero() {
		return errors.Validation(errors.CodeInvalidNode.String(), "invalid node").
			WithDetails("node id is required").
			WithOperation(op).
			WithResource("node").
			Build()
	}
	// Related ids may dangle but must be real ids so exports re-import.
	for rid := range n.RelatedConcepts {
		if rid.IsZero() {
			return errors.Validation(errors.CodeInvalidNode.String(), "invalid node").
				WithDetails("related concept id must not be empty").
				WithOperation(op).
				WithResource("node").
				Build()
		}
	}
	n = n.Normalized()
	if err := s.validate.Struct(n); err != nil {
		return errors.Validation(errors.CodeInvalidNode.String(), "invalid node").
			WithDetails(err.Error()).
			WithOperation(op).
			WithResource("node").
			WithCause(err).
			Build()
	}

	s.mu.Lock()
	if _, exists := s.nodes[n.ID]; !exists {
		s.nodeOrder = append(s.nodeOrder, n.ID)
	}
	s.nodes[n.ID] = n
	s.version++
	change := shared.NewGraphChange(shared.ChangeNodeUpserted, s.version)
	change.NodeID = n.ID
	s.mu.Unlock()

	s.publish(change)
	return nil
}

// RemoveNode deletes the node and every edge touching it. Removing an
// unknown id is a no-op. RelatedConcepts of other nodes are left as is.
func (s *Store) RemoveNode(id shared.NodeID) {
	s.mu.Lock()
	if _, exists := s.nodes[id]; !exists {
		s.mu.Unlock()
		return
	}

	delete(s.nodes, id)
	s.nodeOrder = removeID(s.nodeOrder, id)

	var removed []shared.EdgeID
	kept := s.edgeOrder[:0]
	for _, eid := range s.edgeOrder {
		if s.edges[eid].Touches(id) {
			delete(s.edges, eid)
			removed = append(removed, eid)
			continue
		}
		kept = append(kept, eid)
	}
	s.edgeOrder = kept

	s.version++
	change := shared.NewGraphChange(shared.ChangeNodeRemoved, s.version)
	change.NodeID = id
	change.RemovedEdges = removed
	s.mu.Unlock()

	if len(removed) > 0 {
		s.logger.Debug("Cascaded edge removal",
			zap.String("node_id", id.String()),
			zap.Int("edges_removed", len(removed)),
		)
	}
	s.publish(change)
}

// ============================================================================
// EDGE OPERATIONS
// ============================================================================

// AddEdge inserts e or overwrites the edge with the same id. Both endpoints
// must already be in the store; otherwise ErrUnknownEndpoint is returned and
// the edge set is unchanged.
func (s *Store) AddEdge(e edge.Edge) error {
	return s.upsertEdge("AddEdge", e)
}

// UpdateEdge has the same semantics as AddEdge.
func (s *Store) UpdateEdge(e edge.Edge) error {
	return s.upsertEdge("UpdateEdge", e)
}

func (s *Store) upsertEdge(op string, e edge.Edge) error {
	if e.ID.IsZero() {
		return errors.Validation(errors.CodeInvalidInput.String(), "invalid edge").
			WithDetails("edge id is required").
			WithOperation(op).
			WithResource("edge").
			Build()
	}
	e = e.Normalized()
	if !e.Relationship.IsValid() {
		return errors.Validation(errors.CodeInvalidInput.String(), "invalid edge").
			WithDetailsf("unknown relationship %q", e.Relationship).
			WithOperation(op).
			WithResource("edge").
			Build()
	}

	s.mu.Lock()
	_, sourceExists := s.nodes[e.SourceID]
	_, targetExists := s.nodes[e.TargetID]
	if !sourceExists || !targetExists {
		s.mu.Unlock()
		s.metrics.RecordRejectedEdge()
		s.logger.Debug("Rejected edge with unknown endpoint",
			zap.String("edge_id", e.ID.String()),
			zap.String("source_id", e.SourceID.String()),
			zap.String("target_id", e.TargetID.String()),
			zap.Bool("source_exists", sourceExists),
			zap.Bool("target_exists", targetExists),
		)
		return errors.Domain(errors.CodeUnknownEndpoint.String(), "edge endpoint does not exist").
			WithDetailsf("source %s present=%t, target %s present=%t",
				e.SourceID, sourceExists, e.TargetID, targetExists).
			WithOperation(op).
			WithResource("edge").
			Build()
	}

	if _, exists := s.edges[e.ID]; !exists {
		s.edgeOrder = append(s.edgeOrder, e.ID)
	}
	s.edges[e.ID] = e
	s.version++
	change := shared.NewGraphChange(shared.ChangeEdgeUpserted, s.version)
	change.EdgeID = e.ID
	s.mu.Unlock()

	s.publish(change)
	return nil
}

// RemoveEdge deletes the edge; unknown ids are a no-op.
func (s *Store) RemoveEdge(id shared.EdgeID) {
	s.mu.Lock()
	if _, exists := s.edges[id]; !exists {
		s.mu.Unlock()
		return
	}
	delete(s.edges, id)
	s.edgeOrder = removeID(s.edgeOrder, id)
	s.version++
	change := shared.NewGraphChange(shared.ChangeEdgeRemoved, s.version)
	change.EdgeID = id
	s.mu.Unlock()

	s.publish(change)
}

// ============================================================================
// WHOLE-GRAPH OPERATIONS
// ============================================================================

// ReplaceWith installs a copy of other's contents in a single step. Readers
// observe either the previous graph or the new one, never a mix. other is
// not modified and stays usable.
func (s *Store) ReplaceWith(other *Store) {
	if other == nil || other == s {
		return
	}

	other.mu.RLock()
	nodes := make(map[shared.NodeID]node.Node, len(other.nodes))
	for id, n := range other.nodes {
		nodes[id] = n.Clone()
	}
	edges := make(map[shared.EdgeID]edge.Edge, len(other.edges))
	for id, e := range other.edges {
		edges[id] = e
	}
	nodeOrder := append([]shared.NodeID(nil), other.nodeOrder...)
	edgeOrder := append([]shared.EdgeID(nil), other.edgeOrder...)
	other.mu.RUnlock()

	s.mu.Lock()
	s.nodes = nodes
	s.edges = edges
	s.nodeOrder = nodeOrder
	s.edgeOrder = edgeOrder
	s.version++
	change := shared.NewGraphChange(shared.ChangeGraphReplaced, s.version)
	s.mu.Unlock()

	s.logger.Info("Graph replaced",
		zap.Int("nodes", len(nodeOrder)),
		zap.Int("edges", len(edgeOrder)),
		zap.Uint64("version", change.Version),
	)
	s.publish(change)
}

// Clear removes every node and edge.
func (s *Store) Clear() {
	s.ReplaceWith(NewStore())
}

// ============================================================================
// READ SURFACE
// ============================================================================

// Node returns a copy of the node with the given id.
func (s *Store) Node(id shared.NodeID) (node.Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[id]
	if !ok {
		return node.Node{}, false
	}
	return n.Clone(), true
}

// Edge returns the edge with the given id.
func (s *Store) Edge(id shared.EdgeID) (edge.Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.edges[id]
	return e, ok
}

// Nodes returns copies of all nodes in enumeration order.
func (s *Store) Nodes() []node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]node.Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Edges returns all edges in enumeration order.
func (s *Store) Edges() []edge.Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]edge.Edge, 0, len(s.edgeOrder))
	for _, id := range s.edgeOrder {
		out = append(out, s.edges[id])
	}
	return out
}

// Len returns the node and edge counts.
func (s *Store) Len() (nodes, edges int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes), len(s.edges)
}

// Version increases by one on every committed mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Neighbors returns the nodes one edge away from id in either direction,
// excluding id itself, without duplicates.
func (s *Store) Neighbors(id shared.NodeID) []node.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[shared.NodeID]struct{})
	var out []node.Node
	for _, eid := range s.edgeOrder {
		other, ok := s.edges[eid].Other(id)
		if !ok || other == id {
			continue
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, s.nodes[other].Clone())
	}
	return out
}

// Snapshot returns an immutable copy of the current graph.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make(map[shared.NodeID]node.Node, len(s.nodes))
	for id, n := range s.nodes {
		nodes[id] = n.Clone()
	}
	edges := make([]edge.Edge, 0, len(s.edgeOrder))
	for _, id := range s.edgeOrder {
		edges = append(edges, s.edges[id])
	}
	return newSnapshot(s.version, nodes, append([]shared.NodeID(nil), s.nodeOrder...), edges)
}

// ============================================================================
// CHANGE NOTIFICATION
// ============================================================================

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	key := s.nextObs
	s.nextObs++
	s.observers[key] = o
	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, key)
	}
}

func (s *Store) publish(change shared.GraphChange) {
	s.metrics.RecordMutation(change.Type)

	s.obsMu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for i := 0; i < s.nextObs; i++ {
		if o, ok := s.observers[i]; ok {
			observers = append(observers, o)
		}
	}
	s.obsMu.Unlock()

	for _, o := range observers {
		o(change)
	}
}

func removeID[T comparable](ids []T, id T) []T {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
