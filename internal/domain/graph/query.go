package graph

import (
	"sort"

	"papergraph-backend/internal/domain/node"
	"papergraph-backend/internal/domain/shared"
)

// QueryEngine answers read-only structural questions over a Snapshot.
// All traversal treats edges as undirected.
type QueryEngine struct {
	snap *Snapshot
}

// NewQueryEngine creates an engine bound to snap.
func NewQueryEngine(snap *Snapshot) *QueryEngine {
	return &QueryEngine{snap: snap}
}

// Snapshot returns the snapshot the engine reads from.
func (q *QueryEngine) Snapshot() *Snapshot { return q.snap }

// Neighbors returns nodes joined to id by at least one edge, in either
// direction, without duplicates. An unknown id yields an empty result.
func (q *QueryEngine) Neighbors(id shared.NodeID) []node.Node {
	adj := q.snap.adjacent(id)
	out := make([]node.Node, 0, len(adj))
	for _, other := range adj {
		if n, ok := q.snap.Node(other); ok {
			out = append(out, n)
		}
	}
	return out
}

// Degree counts distinct neighbors of id.
func (q *QueryEngine) Degree(id shared.NodeID) int {
	return len(q.snap.adjacent(id))
}

// ShortestPath returns a minimum-hop path from one node to another,
// inclusive of both endpoints. A node reaches itself with a one-element
// path. ok is false when either endpoint is absent or no path exists.
// Among equal-length paths the result is fixed for a given snapshot.
func (q *QueryEngine) ShortestPath(from, to shared.NodeID) ([]shared.NodeID, bool) {
	if !q.snap.HasNode(from) || !q.snap.HasNode(to) {
		return nil, false
	}
	if from == to {
		return []shared.NodeID{from}, true
	}

	parent := map[shared.NodeID]shared.NodeID{from: from}
	queue := []shared.NodeID{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range q.snap.adjacent(current) {
			if _, visited := parent[next]; visited {
				continue
			}
			parent[next] = current
			if next == to {
				return buildPath(parent, from, to), true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}

func buildPath(parent map[shared.NodeID]shared.NodeID, from, to shared.NodeID) []shared.NodeID {
	var path []shared.NodeID
	for at := to; ; at = parent[at] {
		path = append(path, at)
		if at == from {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Centrality is the fraction of connected ordered pairs (s, t) of other
// nodes whose ShortestPath result passes through id. Pairs with no path are
// excluded from the denominator. The score is 0 when fewer than two other
// nodes exist, when no such pair is connected, or when id is absent.
func (q *QueryEngine) Centrality(id shared.NodeID) float64 {
	if !q.snap.HasNode(id) {
		return 0
	}
	var connected, through int
	for _, s := range q.snap.nodeOrder {
		if s == id {
			continue
		}
		for _, t := range q.snap.nodeOrder {
			if t == id || t == s {
				continue
			}
			path, ok := q.ShortestPath(s, t)
			if !ok {
				continue
			}
			connected++
			if containsID(path, id) {
				through++
			}
		}
	}
	if connected == 0 {
		return 0
	}
	return float64(through) / float64(connected)
}

// Ranked pairs a node id with its centrality score.
type Ranked struct {
	NodeID     shared.NodeID `json:"nodeId"`
	Centrality float64       `json:"centrality"`
	Degree     int           `json:"degree"`
}

// RankByCentrality scores every node and returns them highest first. Ties
// keep enumeration order. Each score equals Centrality for that node; the
// pairwise paths are computed once and shared across nodes.
func (q *QueryEngine) RankByCentrality() []Ranked {
	order := q.snap.nodeOrder
	through := make(map[shared.NodeID]int, len(order))
	involving := make(map[shared.NodeID]int, len(order))
	total := 0

	for _, s := range order {
		for _, t := range order {
			if s == t {
				continue
			}
			path, ok := q.ShortestPath(s, t)
			if !ok {
				continue
			}
			total++
			involving[s]++
			involving[t]++
			for _, mid := range path[1 : len(path)-1] {
				through[mid]++
			}
		}
	}

	out := make([]Ranked, 0, len(order))
	for _, id := range order {
		score := 0.0
		if denom := total - involving[id]; denom > 0 {
			score = float64(through[id]) / float64(denom)
		}
		out = append(out, Ranked{NodeID: id, Centrality: score, Degree: q.Degree(id)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Centrality > out[j].Centrality })
	return out
}

// Components groups nodes into connected components. Components and their
// members follow enumeration order of their first node.
func (q *QueryEngine) Components() [][]shared.NodeID {
	visited := make(map[shared.NodeID]bool, len(q.snap.nodeOrder))
	var components [][]shared.NodeID
	for _, start := range q.snap.nodeOrder {
		if visited[start] {
			continue
		}
		visited[start] = true
		component := []shared.NodeID{start}
		for i := 0; i < len(component); i++ {
			for _, next := range q.snap.adjacent(component[i]) {
				if !visited[next] {
					visited[next] = true
					component = append(component, next)
				}
			}
		}
		components = append(components, component)
	}
	return components
}

func containsID(ids []shared.NodeID, id shared.NodeID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
