package shared

// NodeKind classifies a knowledge node.
type NodeKind string

const (
	NodeKindConcept    NodeKind = "concept"
	NodeKindMethod     NodeKind = "method"
	NodeKindTheory     NodeKind = "theory"
	NodeKindFinding    NodeKind = "finding"
	NodeKindConclusion NodeKind = "conclusion"
)

// DefaultNodeKind is used when a producer supplies an unrecognized tag.
const DefaultNodeKind = NodeKindConcept

// AllNodeKinds lists every kind in declaration order.
func AllNodeKinds() []NodeKind {
	return []NodeKind{NodeKindConcept, NodeKindMethod, NodeKindTheory, NodeKindFinding, NodeKindConclusion}
}

// ParseNodeKind maps a wire tag onto a NodeKind. Matching is exact.
func ParseNodeKind(tag string) (NodeKind, bool) {
	switch k := NodeKind(tag); k {
	case NodeKindConcept, NodeKindMethod, NodeKindTheory, NodeKindFinding, NodeKindConclusion:
		return k, true
	}
	return "", false
}

// NodeKindOrDefault parses tag, falling back to DefaultNodeKind.
func NodeKindOrDefault(tag string) (NodeKind, bool) {
	if k, ok := ParseNodeKind(tag); ok {
		return k, true
	}
	return DefaultNodeKind, false
}

// IsValid reports whether k is one of the declared kinds.
func (k NodeKind) IsValid() bool {
	_, ok := ParseNodeKind(string(k))
	return ok
}

func (k NodeKind) String() string { return string(k) }

// RelationType is the typed label carried by an edge.
type RelationType string

const (
	RelationIsPartOf    RelationType = "isPartOf"
	RelationInfluences  RelationType = "influences"
	RelationSupports    RelationType = "supports"
	RelationContradicts RelationType = "contradicts"
	RelationReferences  RelationType = "references"
	RelationImplements  RelationType = "implements"
)

// DefaultRelationType is used when a producer supplies an unrecognized tag.
const DefaultRelationType = RelationInfluences

// AllRelationTypes lists every relation in declaration order.
func AllRelationTypes() []RelationType {
	return []RelationType{
		RelationIsPartOf, RelationInfluences, RelationSupports,
		RelationContradicts, RelationReferences, RelationImplements,
	}
}

// ParseRelationType maps a wire tag onto a RelationType. Matching is exact.
func ParseRelationType(tag string) (RelationType, bool) {
	switch r := RelationType(tag); r {
	case RelationIsPartOf, RelationInfluences, RelationSupports,
		RelationContradicts, RelationReferences, RelationImplements:
		return r, true
	}
	return "", false
}

// RelationTypeOrDefault parses tag, falling back to DefaultRelationType.
func RelationTypeOrDefault(tag string) (RelationType, bool) {
	if r, ok := ParseRelationType(tag); ok {
		return r, true
	}
	return DefaultRelationType, false
}

// IsValid reports whether r is one of the declared relations.
func (r RelationType) IsValid() bool {
	_, ok := ParseRelationType(string(r))
	return ok
}

func (r RelationType) String() string { return string(r) }
