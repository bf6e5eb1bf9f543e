// Package edge implements the typed, weighted relationship between two
// knowledge nodes.
//
// Edges are directed in meaning (the relationship reads source → target)
// but traversal treats them as undirected. Strength is clamped to [0,1]
// whenever an edge is built or normalized. Whether both endpoints exist is
// the graph store's concern, not the edge's.
package edge

import (
	"papergraph-backend/internal/domain/shared"
)

// Edge represents a directed, typed relationship between two nodes.
type Edge struct {
	ID           shared.EdgeID
	SourceID     shared.NodeID
	TargetID     shared.NodeID
	Relationship shared.RelationType
	Strength     float64
	Description  string
}

// New creates an edge with a fresh id. Strength is clamped.
func New(sourceID, targetID shared.NodeID, relationship shared.RelationType, strength float64) Edge {
	return Edge{
		ID:           shared.NewEdgeID(),
		SourceID:     sourceID,
		TargetID:     targetID,
		Relationship: relationship,
		Strength:     shared.ClampStrength(strength),
	}
}

// WithDescription returns a copy of e carrying description.
func (e Edge) WithDescription(description string) Edge {
	e.Description = description
	return e
}

// Normalized returns a copy with value invariants re-applied.
func (e Edge) Normalized() Edge {
	e.Strength = shared.ClampStrength(e.Strength)
	if e.Relationship == "" {
		e.Relationship = shared.DefaultRelationType
	}
	return e
}

// Touches reports whether the edge has id as either endpoint.
func (e Edge) Touches(id shared.NodeID) bool {
	return e.SourceID == id || e.TargetID == id
}

// Other returns the endpoint opposite id. ok is false when id is not an
// endpoint of e.
func (e Edge) Other(id shared.NodeID) (shared.NodeID, bool) {
	switch id {
	case e.SourceID:
		return e.TargetID, true
	case e.TargetID:
		return e.SourceID, true
	}
	return shared.NodeID{}, false
}

// IsSelfLoop reports whether source and target are the same node.
func (e Edge) IsSelfLoop() bool {
	return e.SourceID == e.TargetID
}
