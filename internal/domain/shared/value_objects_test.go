package shared

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampImportance(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-10, 1}, {0, 1}, {1, 1}, {3, 3}, {5, 5}, {6, 5}, {9, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampImportance(tt.in), "ClampImportance(%d)", tt.in)
	}
}

func TestClampStrength(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0}, {0, 0}, {0.4, 0.4}, {1, 1}, {1.5, 1}, {math.Inf(1), 1}, {math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampStrength(tt.in), "ClampStrength(%v)", tt.in)
	}
}

func TestParseNodeID(t *testing.T) {
	id := NewNodeID()
	parsed, err := ParseNodeID(id.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(id))

	_, err = ParseNodeID("not-a-uuid")
	assert.True(t, errors.Is(err, ErrInvalidID))

	assert.True(t, NodeID{}.IsZero())
	assert.False(t, id.IsZero())
}

func TestParseEdgeID(t *testing.T) {
	id := NewEdgeID()
	parsed, err := ParseEdgeID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseEdgeID("")
	assert.Error(t, err)
}

func TestNodeKindOrDefault(t *testing.T) {
	for _, k := range AllNodeKinds() {
		got, ok := NodeKindOrDefault(string(k))
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}

	got, ok := NodeKindOrDefault("bogus")
	assert.False(t, ok)
	assert.Equal(t, NodeKindConcept, got)

	// Tags are matched exactly, as the producer emits them.
	_, ok = ParseNodeKind("Concept")
	assert.False(t, ok)
}

func TestRelationTypeOrDefault(t *testing.T) {
	for _, r := range AllRelationTypes() {
		got, ok := RelationTypeOrDefault(string(r))
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}

	got, ok := RelationTypeOrDefault("causes")
	assert.False(t, ok)
	assert.Equal(t, RelationInfluences, got)
	assert.False(t, RelationType("").IsValid())
}

func TestNodeID_JSON(t *testing.T) {
	id := NewNodeID()
	data, err := json.Marshal([]NodeID{id})
	require.NoError(t, err)
	assert.Equal(t, `["`+id.String()+`"]`, string(data))

	var back []NodeID
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []NodeID{id}, back)

	assert.Error(t, json.Unmarshal([]byte(`["nope"]`), &back))
}
