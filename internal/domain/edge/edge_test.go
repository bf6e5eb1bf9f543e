package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"papergraph-backend/internal/domain/shared"
)

func TestNew_ClampsStrength(t *testing.T) {
	a, b := shared.NewNodeID(), shared.NewNodeID()

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"valid", 0.8, 0.8},
		{"too high", 1.5, 1.0},
		{"negative", -0.1, 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(a, b, shared.RelationSupports, tt.in)
			assert.Equal(t, tt.want, e.Strength)
			assert.False(t, e.ID.IsZero())
		})
	}
}

func TestNormalized(t *testing.T) {
	e := New(shared.NewNodeID(), shared.NewNodeID(), shared.RelationIsPartOf, 0.3)
	e.Strength = 7
	e.Relationship = ""

	n := e.Normalized()
	assert.Equal(t, 1.0, n.Strength)
	assert.Equal(t, shared.RelationInfluences, n.Relationship)
	assert.Equal(t, 7.0, e.Strength)
}

func TestEndpoints(t *testing.T) {
	a, b, c := shared.NewNodeID(), shared.NewNodeID(), shared.NewNodeID()
	e := New(a, b, shared.RelationReferences, 0.5)

	assert.True(t, e.Touches(a))
	assert.True(t, e.Touches(b))
	assert.False(t, e.Touches(c))

	other, ok := e.Other(a)
	assert.True(t, ok)
	assert.Equal(t, b, other)
	other, ok = e.Other(b)
	assert.True(t, ok)
	assert.Equal(t, a, other)
	_, ok = e.Other(c)
	assert.False(t, ok)

	assert.False(t, e.IsSelfLoop())
	assert.True(t, New(a, a, shared.RelationSupports, 1).IsSelfLoop())
}
