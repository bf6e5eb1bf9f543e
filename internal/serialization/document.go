// Package serialization exports graphs to a self-describing document and
// imports them back.
//
// Import is strict where ingestion is lenient: the document is the
// engine's own validated output, so a dangling edge, malformed id or
// unknown tag aborts the import and no store is returned.
package serialization

import (
	"fmt"

	"papergraph-backend/internal/domain/edge"
	"papergraph-backend/internal/domain/graph"
	"papergraph-backend/internal/domain/node"
	"papergraph-backend/internal/domain/shared"
	"papergraph-backend/internal/errors"
)

// NodeDoc is the document form of a node.
type NodeDoc struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title" yaml:"title"`
	Description     string   `json:"description" yaml:"description"`
	Kind            string   `json:"kind" yaml:"kind"`
	Importance      int      `json:"importance" yaml:"importance"`
	PageReferences  []int    `json:"pageReferences" yaml:"pageReferences"`
	RelatedConcepts []string `json:"relatedConcepts" yaml:"relatedConcepts"`
}

// EdgeDoc is the document form of an edge.
type EdgeDoc struct {
	ID           string  `json:"id" yaml:"id"`
	SourceID     string  `json:"sourceId" yaml:"sourceId"`
	TargetID     string  `json:"targetId" yaml:"targetId"`
	Relationship string  `json:"relationship" yaml:"relationship"`
	Strength     float64 `json:"strength" yaml:"strength"`
	Description  string  `json:"description" yaml:"description"`
}

// Document is a full graph export.
type Document struct {
	Nodes []NodeDoc `json:"nodes" yaml:"nodes"`
	Edges []EdgeDoc `json:"edges" yaml:"edges"`
}

// Export lists all nodes then all edges in the store's enumeration order.
func Export(store *graph.Store) Document {
	return ExportSnapshot(store.Snapshot())
}

// ExportSnapshot exports an already taken snapshot.
func ExportSnapshot(snap *graph.Snapshot) Document {
	doc := Document{
		Nodes: make([]NodeDoc, 0, snap.NodeCount()),
		Edges: make([]EdgeDoc, 0, snap.EdgeCount()),
	}
	for _, n := range snap.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeToDoc(n))
	}
	for _, e := range snap.Edges() {
		doc.Edges = append(doc.Edges, EdgeToDoc(e))
	}
	return doc
}

// NodeToDoc converts one node. Related ids are sorted; pages are never nil.
func NodeToDoc(n node.Node) NodeDoc {
	related := make([]string, 0, len(n.RelatedConcepts))
	for _, id := range n.RelatedIDs() {
		related = append(related, id.String())
	}
	pages := n.PageReferences
	if pages == nil {
		pages = []int{}
	}
	return NodeDoc{
		ID:              n.ID.String(),
		Title:           n.Title,
		Description:     n.Description,
		Kind:            n.Kind.String(),
		Importance:      n.Importance,
		PageReferences:  pages,
		RelatedConcepts: related,
	}
}

// EdgeToDoc converts one edge.
func EdgeToDoc(e edge.Edge) EdgeDoc {
	return EdgeDoc{
		ID:           e.ID.String(),
		SourceID:     e.SourceID.String(),
		TargetID:     e.TargetID.String(),
		Relationship: e.Relationship.String(),
		Strength:     e.Strength,
		Description:  e.Description,
	}
}

// Import rebuilds a store from doc, inserting nodes first and then edges
// through the store's validated mutators. Any failure returns
// INVALID_EXPORT_DOCUMENT and a nil store.
func Import(doc Document, opts ...graph.Option) (*graph.Store, error) {
	store := graph.NewStore(opts...)
	seenNodes := make(map[shared.NodeID]struct{}, len(doc.Nodes))
	seenEdges := make(map[shared.EdgeID]struct{}, len(doc.Edges))

	for i, nd := range doc.Nodes {
		n, err := nodeFromDoc(nd)
		if err != nil {
			return nil, invalidDocument(fmt.Sprintf("nodes[%d]", i), err)
		}
		if _, dup := seenNodes[n.ID]; dup {
			return nil, invalidDocument(fmt.Sprintf("nodes[%d]", i), fmt.Errorf("duplicate node id %s", n.ID))
		}
		seenNodes[n.ID] = struct{}{}
		if err := store.AddNode(n); err != nil {
			return nil, invalidDocument(fmt.Sprintf("nodes[%d]", i), err)
		}
	}

	for i, ed := range doc.Edges {
		e, err := edgeFromDoc(ed)
		if err != nil {
			return nil, invalidDocument(fmt.Sprintf("edges[%d]", i), err)
		}
		if _, dup := seenEdges[e.ID]; dup {
			return nil, invalidDocument(fmt.Sprintf("edges[%d]", i), fmt.Errorf("duplicate edge id %s", e.ID))
		}
		seenEdges[e.ID] = struct{}{}
		if err := store.AddEdge(e); err != nil {
			return nil, invalidDocument(fmt.Sprintf("edges[%d]", i), err)
		}
	}
	return store, nil
}

func nodeFromDoc(nd NodeDoc) (node.Node, error) {
	id, err := shared.ParseNodeID(nd.ID)
	if err != nil {
		return node.Node{}, fmt.Errorf("id %q: %w", nd.ID, err)
	}
	kind, ok := shared.ParseNodeKind(nd.Kind)
	if !ok {
		return node.Node{}, fmt.Errorf("unknown kind %q", nd.Kind)
	}
	related := make([]shared.NodeID, 0, len(nd.RelatedConcepts))
	for _, raw := range nd.RelatedConcepts {
		rid, err := shared.ParseNodeID(raw)
		if err != nil {
			return node.Node{}, fmt.Errorf("related concept %q: %w", raw, err)
		}
		related = append(related, rid)
	}
	return node.New(nd.Title,
		node.WithID(id),
		node.WithDescription(nd.Description),
		node.WithKind(kind),
		node.WithImportance(nd.Importance),
		node.WithPageReferences(nd.PageReferences...),
		node.WithRelatedConcepts(related...),
	), nil
}

func edgeFromDoc(ed EdgeDoc) (edge.Edge, error) {
	id, err := shared.ParseEdgeID(ed.ID)
	if err != nil {
		return edge.Edge{}, fmt.Errorf("id %q: %w", ed.ID, err)
	}
	source, err := shared.ParseNodeID(ed.SourceID)
	if err != nil {
		return edge.Edge{}, fmt.Errorf("sourceId %q: %w", ed.SourceID, err)
	}
	target, err := shared.ParseNodeID(ed.TargetID)
	if err != nil {
		return edge.Edge{}, fmt.Errorf("targetId %q: %w", ed.TargetID, err)
	}
	relationship, ok := shared.ParseRelationType(ed.Relationship)
	if !ok {
		return edge.Edge{}, fmt.Errorf("unknown relationship %q", ed.Relationship)
	}
	e := edge.New(source, target, relationship, ed.Strength).WithDescription(ed.Description)
	e.ID = id
	return e, nil
}

func invalidDocument(where string, cause error) error {
	return errors.Validation(errors.CodeInvalidExportDocument.String(), "invalid export document").
		WithDetailsf("%s: %v", where, cause).
		WithOperation("Import").
		WithResource("document").
		WithCause(cause).
		Build()
}
