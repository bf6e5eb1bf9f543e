package node

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"papergraph-backend/internal/domain/shared"
)

func TestNew_Defaults(t *testing.T) {
	n := New("Transformer")

	assert.False(t, n.ID.IsZero())
	assert.Equal(t, "Transformer", n.Title)
	assert.Equal(t, shared.NodeKindConcept, n.Kind)
	assert.Equal(t, 3, n.Importance)
	assert.Empty(t, n.PageReferences)
	assert.Empty(t, n.RelatedConcepts)
}

func TestNew_ClampsImportance(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"above range", 9, 5},
		{"below range", 0, 1},
		{"negative", -4, 1},
		{"in range", 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New("x", WithImportance(tt.in))
			assert.Equal(t, tt.want, n.Importance)
		})
	}
}

func TestNormalized_ReappliesInvariants(t *testing.T) {
	n := New("x")
	n.Importance = 42
	n.Kind = ""

	norm := n.Normalized()
	assert.Equal(t, 5, norm.Importance)
	assert.Equal(t, shared.NodeKindConcept, norm.Kind)
	// Original untouched.
	assert.Equal(t, 42, n.Importance)
}

func TestClone_DoesNotAlias(t *testing.T) {
	other := shared.NewNodeID()
	n := New("x", WithPageReferences(3, 1, 3), WithRelatedConcepts(other))

	c := n.Clone()
	c.PageReferences[0] = 99
	delete(c.RelatedConcepts, other)

	assert.Equal(t, []int{3, 1, 3}, n.PageReferences)
	assert.True(t, n.IsRelatedTo(other))
}

func TestEqual(t *testing.T) {
	a := New("x", WithPageReferences(2, 5))
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.PageReferences = []int{5, 2}
	assert.False(t, a.Equal(b), "page order is significant")

	empty := New("y")
	withNil := empty
	withNil.PageReferences = nil
	withNil.RelatedConcepts = nil
	assert.True(t, empty.Equal(withNil))
}

func TestRelatedIDs_Sorted(t *testing.T) {
	ids := []shared.NodeID{shared.NewNodeID(), shared.NewNodeID(), shared.NewNodeID()}
	n := New("x", WithRelatedConcepts(ids...))

	got := n.RelatedIDs()
	assert.Len(t, got, 3)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1].String(), got[i].String())
	}
}
