// Package node implements the knowledge node value stored in the graph.
//
// A Node is a plain value: the graph store keeps nodes in an id-keyed map
// and hands out copies, so nothing outside the store can alias its state.
// Importance is clamped to [1,5] whenever a node is built or normalized.
package node

import (
	"sort"

	"papergraph-backend/internal/domain/shared"
)

// Node is a unit of extracted domain knowledge.
type Node struct {
	ID          shared.NodeID
	Title       string `validate:"required"`
	Description string
	Kind        shared.NodeKind `validate:"oneof=concept method theory finding conclusion"`
	Importance  int

	// PageReferences keeps insertion order; duplicates are allowed.
	PageReferences []int `validate:"dive,gt=0"`

	// RelatedConcepts is an informal association set. Ids are never
	// checked for existence and are not pruned when nodes are removed.
	RelatedConcepts map[shared.NodeID]struct{}
}

// Option customizes a node built with New.
type Option func(*Node)

// WithDescription sets the free-text description.
func WithDescription(description string) Option {
	return func(n *Node) { n.Description = description }
}

// WithKind sets the node kind.
func WithKind(kind shared.NodeKind) Option {
	return func(n *Node) { n.Kind = kind }
}

// WithImportance sets the importance; it is clamped by New.
func WithImportance(importance int) Option {
	return func(n *Node) { n.Importance = importance }
}

// WithPageReferences appends page numbers in the given order.
func WithPageReferences(pages ...int) Option {
	return func(n *Node) { n.PageReferences = append(n.PageReferences, pages...) }
}

// WithRelatedConcepts adds ids to the related set.
func WithRelatedConcepts(ids ...shared.NodeID) Option {
	return func(n *Node) {
		for _, id := range ids {
			n.RelatedConcepts[id] = struct{}{}
		}
	}
}

// WithID overrides the generated id; used when rebuilding stored nodes.
func WithID(id shared.NodeID) Option {
	return func(n *Node) { n.ID = id }
}

// New creates a node with a fresh id, kind concept and importance 3 unless
// overridden.
func New(title string, opts ...Option) Node {
	n := Node{
		ID:              shared.NewNodeID(),
		Title:           title,
		Kind:            shared.DefaultNodeKind,
		Importance:      shared.DefaultImportance,
		PageReferences:  []int{},
		RelatedConcepts: make(map[shared.NodeID]struct{}),
	}
	for _, opt := range opts {
		opt(&n)
	}
	n.Importance = shared.ClampImportance(n.Importance)
	return n
}

// Normalized returns a deep copy with value invariants re-applied.
func (n Node) Normalized() Node {
	c := n.Clone()
	c.Importance = shared.ClampImportance(c.Importance)
	if c.Kind == "" {
		c.Kind = shared.DefaultNodeKind
	}
	return c
}

// Clone deep-copies the slice and set fields.
func (n Node) Clone() Node {
	c := n
	c.PageReferences = make([]int, len(n.PageReferences))
	copy(c.PageReferences, n.PageReferences)
	c.RelatedConcepts = make(map[shared.NodeID]struct{}, len(n.RelatedConcepts))
	for id := range n.RelatedConcepts {
		c.RelatedConcepts[id] = struct{}{}
	}
	return c
}

// IsRelatedTo reports whether id is in the related set.
func (n Node) IsRelatedTo(id shared.NodeID) bool {
	_, ok := n.RelatedConcepts[id]
	return ok
}

// RelatedIDs returns the related set sorted by id string, for stable output.
func (n Node) RelatedIDs() []shared.NodeID {
	ids := make([]shared.NodeID, 0, len(n.RelatedConcepts))
	for id := range n.RelatedConcepts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// Equal compares two nodes by value, treating nil and empty collections alike.
func (n Node) Equal(other Node) bool {
	if n.ID != other.ID || n.Title != other.Title || n.Description != other.Description ||
		n.Kind != other.Kind || n.Importance != other.Importance {
		return false
	}
	if len(n.PageReferences) != len(other.PageReferences) {
		return false
	}
	for i := range n.PageReferences {
		if n.PageReferences[i] != other.PageReferences[i] {
			return false
		}
	}
	if len(n.RelatedConcepts) != len(other.RelatedConcepts) {
		return false
	}
	for id := range n.RelatedConcepts {
		if !other.IsRelatedTo(id) {
			return false
		}
	}
	return true
}
