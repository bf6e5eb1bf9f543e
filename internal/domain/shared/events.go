package shared

import "time"

// ChangeType names a committed graph mutation.
type ChangeType string

const (
	ChangeNodeUpserted  ChangeType = "node.upserted"
	ChangeNodeRemoved   ChangeType = "node.removed"
	ChangeEdgeUpserted  ChangeType = "edge.upserted"
	ChangeEdgeRemoved   ChangeType = "edge.removed"
	ChangeGraphReplaced ChangeType = "graph.replaced"
)

// GraphChange is delivered to observers after a mutation has completed.
// NodeID/EdgeID are set according to Type; RemovedEdges lists the edges
// dropped by a node removal cascade.
type GraphChange struct {
	Type         ChangeType
	NodeID       NodeID
	EdgeID       EdgeID
	RemovedEdges []EdgeID
	Version      uint64
	Timestamp    time.Time
}

// NewGraphChange stamps a change with the store version and current time.
func NewGraphChange(t ChangeType, version uint64) GraphChange {
	return GraphChange{
		Type:      t,
		Version:   version,
		Timestamp: time.Now(),
	}
}
