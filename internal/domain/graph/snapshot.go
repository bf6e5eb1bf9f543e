package graph

import (
	"papergraph-backend/internal/domain/edge"
	"papergraph-backend/internal/domain/node"
	"papergraph-backend/internal/domain/shared"
)

// Snapshot is an immutable copy of a Store taken at one version. It carries
// an undirected adjacency index built in edge enumeration order, so every
// traversal over the same snapshot makes the same choices.
type Snapshot struct {
	version   uint64
	nodes     map[shared.NodeID]node.Node
	nodeOrder []shared.NodeID
	edges     []edge.Edge
	adjacency map[shared.NodeID][]shared.NodeID
}

func newSnapshot(version uint64, nodes map[shared.NodeID]node.Node, order []shared.NodeID, edges []edge.Edge) *Snapshot {
	adj := make(map[shared.NodeID][]shared.NodeID, len(nodes))
	seen := make(map[[2]shared.NodeID]struct{}, len(edges)*2)
	link := func(a, b shared.NodeID) {
		key := [2]shared.NodeID{a, b}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		adj[a] = append(adj[a], b)
	}
	for _, e := range edges {
		if e.IsSelfLoop() {
			continue
		}
		link(e.SourceID, e.TargetID)
		link(e.TargetID, e.SourceID)
	}
	return &Snapshot{
		version:   version,
		nodes:     nodes,
		nodeOrder: order,
		edges:     edges,
		adjacency: adj,
	}
}

// Version is the store version the snapshot was taken at.
func (s *Snapshot) Version() uint64 { return s.version }

// HasNode reports whether id is present.
func (s *Snapshot) HasNode(id shared.NodeID) bool {
	_, ok := s.nodes[id]
	return ok
}

// Node returns a copy of the node with the given id.
func (s *Snapshot) Node(id shared.NodeID) (node.Node, bool) {
	n, ok := s.nodes[id]
	if !ok {
		return node.Node{}, false
	}
	return n.Clone(), true
}

// NodeIDs returns node ids in enumeration order.
func (s *Snapshot) NodeIDs() []shared.NodeID {
	return append([]shared.NodeID(nil), s.nodeOrder...)
}

// Nodes returns node copies in enumeration order.
func (s *Snapshot) Nodes() []node.Node {
	out := make([]node.Node, 0, len(s.nodeOrder))
	for _, id := range s.nodeOrder {
		out = append(out, s.nodes[id].Clone())
	}
	return out
}

// Edges returns edges in enumeration order.
func (s *Snapshot) Edges() []edge.Edge {
	return append([]edge.Edge(nil), s.edges...)
}

// NodeCount returns the number of nodes.
func (s *Snapshot) NodeCount() int { return len(s.nodeOrder) }

// EdgeCount returns the number of edges.
func (s *Snapshot) EdgeCount() int { return len(s.edges) }

func (s *Snapshot) adjacent(id shared.NodeID) []shared.NodeID {
	return s.adjacency[id]
}
