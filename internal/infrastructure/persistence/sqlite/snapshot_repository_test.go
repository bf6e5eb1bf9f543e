package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papergraph-backend/internal/domain/edge"
	"papergraph-backend/internal/domain/graph"
	"papergraph-backend/internal/domain/node"
	"papergraph-backend/internal/domain/shared"
	"papergraph-backend/internal/errors"
	"papergraph-backend/internal/serialization"
)

func newRepo(t *testing.T) *SnapshotRepository {
	t.Helper()
	repo, err := NewSnapshotRepository(context.Background(), filepath.Join(t.TempDir(), "graphs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func sampleDocument(t *testing.T) serialization.Document {
	t.Helper()
	s := graph.NewStore()
	a := node.New("Transformer", node.WithKind(shared.NodeKindMethod), node.WithPageReferences(2))
	b := node.New("BERT", node.WithRelatedConcepts(a.ID))
	require.NoError(t, s.AddNode(a))
	require.NoError(t, s.AddNode(b))
	require.NoError(t, s.AddEdge(edge.New(a.ID, b.ID, shared.RelationIsPartOf, 0.8)))
	return serialization.Export(s)
}

func TestSnapshotRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	doc := sampleDocument(t)

	require.NoError(t, repo.Save(ctx, "paper-1", doc))
	loaded, err := repo.Load(ctx, "paper-1")
	require.NoError(t, err)
	assert.Equal(t, doc, loaded)

	store, err := serialization.Import(loaded)
	require.NoError(t, err)
	nodes, edges := store.Len()
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 1, edges)
}

func TestSnapshotRepository_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)

	require.NoError(t, repo.Save(ctx, "paper-1", sampleDocument(t)))
	empty := serialization.Export(graph.NewStore())
	require.NoError(t, repo.Save(ctx, "paper-1", empty))

	loaded, err := repo.Load(ctx, "paper-1")
	require.NoError(t, err)
	assert.Empty(t, loaded.Nodes)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Zero(t, list[0].Nodes)
}

func TestSnapshotRepository_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	doc := sampleDocument(t)

	require.NoError(t, repo.Save(ctx, "b-paper", doc))
	require.NoError(t, repo.Save(ctx, "a-paper", doc))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a-paper", list[0].PaperID)
	assert.Equal(t, 2, list[0].Nodes)
	assert.Equal(t, 1, list[0].Edges)
	assert.False(t, list[0].UpdatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, "a-paper"))
	_, err = repo.Load(ctx, "a-paper")
	assert.Equal(t, errors.CodeSnapshotNotFound, errors.CodeOf(err))
	assert.True(t, errors.IsNotFound(err))

	err = repo.Delete(ctx, "a-paper")
	assert.Equal(t, errors.CodeSnapshotNotFound, errors.CodeOf(err))
}
