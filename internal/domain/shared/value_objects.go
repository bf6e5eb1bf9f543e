// Package shared holds the value objects, sentinel errors and change events
// shared by the node, edge and graph packages.
package shared

import (
	"math"

	"github.com/google/uuid"
)

// NodeID is a value object that ensures valid node identifiers
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// ParseNodeID creates a NodeID from a string, validating it's a proper UUID
func ParseNodeID(id string) (NodeID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return NodeID{}, ErrInvalidID
	}
	return NodeID{value: parsed.String()}, nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero reports whether the id was never assigned.
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// EdgeID identifies an edge. It is a distinct type so node and edge ids
// cannot be mixed up in store lookups.
type EdgeID struct {
	value string
}

// NewEdgeID creates a new random EdgeID
func NewEdgeID() EdgeID {
	return EdgeID{value: uuid.New().String()}
}

// ParseEdgeID creates an EdgeID from a string, validating it's a proper UUID
func ParseEdgeID(id string) (EdgeID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return EdgeID{}, ErrInvalidID
	}
	return EdgeID{value: parsed.String()}, nil
}

// String returns the string representation of the EdgeID
func (id EdgeID) String() string {
	return id.value
}

// IsZero reports whether the id was never assigned.
func (id EdgeID) IsZero() bool {
	return id.value == ""
}

// Importance bounds. Importance is an integer rank, 1 = peripheral, 5 = central.
const (
	MinImportance     = 1
	MaxImportance     = 5
	DefaultImportance = 3
)

// ClampImportance forces an importance score into [MinImportance, MaxImportance].
func ClampImportance(v int) int {
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return v
}

// Strength bounds for edges.
const (
	MinStrength     = 0.0
	MaxStrength     = 1.0
	DefaultStrength = 0.5
)

// ClampStrength forces an edge strength into [MinStrength, MaxStrength].
// NaN is treated as the minimum.
func ClampStrength(v float64) float64 {
	if math.IsNaN(v) || v < MinStrength {
		return MinStrength
	}
	if v > MaxStrength {
		return MaxStrength
	}
	return v
}

// MarshalText encodes the id as its UUID string.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText parses a UUID string.
func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MarshalText encodes the id as its UUID string.
func (id EdgeID) MarshalText() ([]byte, error) {
	return []byte(id.value), nil
}

// UnmarshalText parses a UUID string.
func (id *EdgeID) UnmarshalText(text []byte) error {
	parsed, err := ParseEdgeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
