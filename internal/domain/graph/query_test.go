package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papergraph-backend/internal/domain/node"
	"papergraph-backend/internal/domain/shared"
)

// chain builds a - b - c.
func chain(t *testing.T) (*Store, node.Node, node.Node, node.Node) {
	s := NewStore()
	a := mustAddNode(t, s, "a")
	b := mustAddNode(t, s, "b")
	c := mustAddNode(t, s, "c")
	mustAddEdge(t, s, a, b)
	mustAddEdge(t, s, b, c)
	return s, a, b, c
}

func TestShortestPath_Chain(t *testing.T) {
	s, a, b, c := chain(t)
	q := NewQueryEngine(s.Snapshot())

	path, ok := q.ShortestPath(a.ID, c.ID)
	require.True(t, ok)
	assert.Equal(t, []shared.NodeID{a.ID, b.ID, c.ID}, path)

	// Edge direction is ignored.
	path, ok = q.ShortestPath(c.ID, a.ID)
	require.True(t, ok)
	assert.Equal(t, []shared.NodeID{c.ID, b.ID, a.ID}, path)
}

func TestShortestPath_SameNode(t *testing.T) {
	s, a, _, _ := chain(t)
	q := NewQueryEngine(s.Snapshot())

	path, ok := q.ShortestPath(a.ID, a.ID)
	require.True(t, ok)
	assert.Equal(t, []shared.NodeID{a.ID}, path)

	_, ok = q.ShortestPath(shared.NewNodeID(), shared.NewNodeID())
	assert.False(t, ok)
}

func TestShortestPath_None(t *testing.T) {
	s, a, _, _ := chain(t)
	island := mustAddNode(t, s, "island")
	q := NewQueryEngine(s.Snapshot())

	_, ok := q.ShortestPath(a.ID, island.ID)
	assert.False(t, ok)
	_, ok = q.ShortestPath(a.ID, shared.NewNodeID())
	assert.False(t, ok)
	_, ok = q.ShortestPath(shared.NewNodeID(), a.ID)
	assert.False(t, ok)
}

func TestShortestPath_MinimalAndValid(t *testing.T) {
	// a - b - c - d with a shortcut a - d.
	s := NewStore()
	a := mustAddNode(t, s, "a")
	b := mustAddNode(t, s, "b")
	c := mustAddNode(t, s, "c")
	d := mustAddNode(t, s, "d")
	mustAddEdge(t, s, a, b)
	mustAddEdge(t, s, b, c)
	mustAddEdge(t, s, c, d)
	mustAddEdge(t, s, d, a)

	snap := s.Snapshot()
	q := NewQueryEngine(snap)
	path, ok := q.ShortestPath(a.ID, d.ID)
	require.True(t, ok)
	assert.Equal(t, []shared.NodeID{a.ID, d.ID}, path)

	path, ok = q.ShortestPath(b.ID, d.ID)
	require.True(t, ok)
	assert.Len(t, path, 3)
	for i := 1; i < len(path); i++ {
		connected := false
		for _, e := range snap.Edges() {
			if other, ok := e.Other(path[i-1]); ok && other == path[i] {
				connected = true
			}
		}
		assert.True(t, connected, "consecutive path nodes must share an edge")
	}

	again, _ := q.ShortestPath(b.ID, d.ID)
	assert.Equal(t, path, again)
}

func TestNeighbors_Symmetric(t *testing.T) {
	s, a, b, c := chain(t)
	q := NewQueryEngine(s.Snapshot())

	ids := func(nodes []node.Node) []shared.NodeID {
		var out []shared.NodeID
		for _, n := range nodes {
			out = append(out, n.ID)
		}
		return out
	}
	assert.Equal(t, []shared.NodeID{a.ID, c.ID}, ids(q.Neighbors(b.ID)))
	assert.Contains(t, ids(q.Neighbors(a.ID)), b.ID)
	assert.Contains(t, ids(q.Neighbors(c.ID)), b.ID)
	assert.Empty(t, q.Neighbors(shared.NewNodeID()))
}

func TestCentrality_Chain(t *testing.T) {
	s, a, b, c := chain(t)
	q := NewQueryEngine(s.Snapshot())

	assert.Equal(t, 1.0, q.Centrality(b.ID))
	assert.Equal(t, 0.0, q.Centrality(a.ID))
	assert.Equal(t, 0.0, q.Centrality(c.ID))
}

func TestCentrality_Degenerate(t *testing.T) {
	s := NewStore()
	a := mustAddNode(t, s, "a")
	q := NewQueryEngine(s.Snapshot())
	assert.Equal(t, 0.0, q.Centrality(a.ID))

	b := mustAddNode(t, s, "b")
	mustAddEdge(t, s, a, b)
	q = NewQueryEngine(s.Snapshot())
	assert.Equal(t, 0.0, q.Centrality(a.ID), "fewer than two other nodes")

	// Two other nodes but no path between them.
	s = NewStore()
	hub := mustAddNode(t, s, "hub")
	mustAddNode(t, s, "x")
	mustAddNode(t, s, "y")
	q = NewQueryEngine(s.Snapshot())
	assert.Equal(t, 0.0, q.Centrality(hub.ID))
	assert.Equal(t, 0.0, q.Centrality(shared.NewNodeID()))
}

func TestCentrality_Star(t *testing.T) {
	s := NewStore()
	hub := mustAddNode(t, s, "hub")
	var leaves []node.Node
	for _, title := range []string{"l1", "l2", "l3", "l4"} {
		leaf := mustAddNode(t, s, title)
		mustAddEdge(t, s, hub, leaf)
		leaves = append(leaves, leaf)
	}
	q := NewQueryEngine(s.Snapshot())

	assert.Equal(t, 1.0, q.Centrality(hub.ID))
	for _, leaf := range leaves {
		assert.Equal(t, 0.0, q.Centrality(leaf.ID))
	}
}

func TestCentrality_InRange(t *testing.T) {
	s := NewStore()
	a := mustAddNode(t, s, "a")
	b := mustAddNode(t, s, "b")
	c := mustAddNode(t, s, "c")
	d := mustAddNode(t, s, "d")
	e := mustAddNode(t, s, "e")
	mustAddEdge(t, s, a, b)
	mustAddEdge(t, s, b, c)
	mustAddEdge(t, s, c, a)
	mustAddEdge(t, s, c, d)
	mustAddNode(t, s, "isolated")
	_ = e

	q := NewQueryEngine(s.Snapshot())
	for _, n := range s.Nodes() {
		v := q.Centrality(n.ID)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	// Of the six connected ordered pairs outside c only a-b avoids it.
	assert.InDelta(t, 4.0/6.0, q.Centrality(c.ID), 1e-12)
}

func TestRankByCentrality_MatchesCentrality(t *testing.T) {
	s := NewStore()
	a := mustAddNode(t, s, "a")
	b := mustAddNode(t, s, "b")
	c := mustAddNode(t, s, "c")
	d := mustAddNode(t, s, "d")
	e := mustAddNode(t, s, "e")
	mustAddEdge(t, s, a, b)
	mustAddEdge(t, s, b, c)
	mustAddEdge(t, s, c, d)
	mustAddEdge(t, s, b, d)
	mustAddEdge(t, s, d, e)

	q := NewQueryEngine(s.Snapshot())
	ranked := q.RankByCentrality()
	require.Len(t, ranked, 5)
	for i, r := range ranked {
		assert.InDelta(t, q.Centrality(r.NodeID), r.Centrality, 1e-12)
		assert.Equal(t, q.Degree(r.NodeID), r.Degree)
		if i > 0 {
			assert.GreaterOrEqual(t, ranked[i-1].Centrality, r.Centrality)
		}
	}
}

func TestComponents(t *testing.T) {
	s, a, b, c := chain(t)
	x := mustAddNode(t, s, "x")
	y := mustAddNode(t, s, "y")
	mustAddEdge(t, s, y, x)
	z := mustAddNode(t, s, "z")

	comps := NewQueryEngine(s.Snapshot()).Components()
	require.Len(t, comps, 3)
	assert.Equal(t, []shared.NodeID{a.ID, b.ID, c.ID}, comps[0])
	assert.Equal(t, []shared.NodeID{x.ID, y.ID}, comps[1])
	assert.Equal(t, []shared.NodeID{z.ID}, comps[2])
}

func TestSnapshot_Isolated(t *testing.T) {
	s, a, b, _ := chain(t)
	snap := s.Snapshot()

	s.RemoveNode(b.ID)

	assert.True(t, snap.HasNode(b.ID))
	assert.Equal(t, 2, snap.EdgeCount())
	path, ok := NewQueryEngine(snap).ShortestPath(a.ID, b.ID)
	assert.True(t, ok)
	assert.Len(t, path, 2)
	assert.Less(t, snap.Version(), s.Version())
}
