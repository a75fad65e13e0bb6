package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/mocks"
	"github.com/ersonp/watlas/internal/domain/ports"
)

func newSearchService(t *testing.T) (*SearchService, *fixture, *mocks.Embedder, *mocks.VectorDB) {
	t.Helper()
	f := newFixture(t)
	emb := &mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2}}
	vdb := mocks.NewVectorDB()
	return NewSearchService(f.db, emb, vdb, f.authorizer), f, emb, vdb
}

func TestSearchService_Search_FiltersByScope(t *testing.T) {
	svc, f, _, vdb := newSearchService(t)
	f.addPage(t, newPage("a", "Alpha", entities.KindCharacter, true, "saga"))
	f.addPage(t, newPage("b", "Beta", entities.KindCharacter, false, "saga"))
	f.addPage(t, newPage("c", "Gamma", entities.KindCharacter, true, "other"))
	vdb.Hits = []ports.SearchHit{
		{PageID: "b", Score: 0.9},
		{PageID: "gone", Score: 0.8},
		{PageID: "c", Score: 0.7},
		{PageID: "a", Score: 0.6},
	}

	results, selected, err := svc.Search(context.Background(), "hero", graph.NewScope(true, "saga"), 5)
	require.NoError(t, err)
	assert.True(t, selected)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Page.ID)
	assert.InDelta(t, 0.6, results[0].Score, 1e-6)
	assert.Equal(t, 5*searchOversample, vdb.SearchLastLimit)

	results, _, err = svc.Search(context.Background(), "hero", graph.NewScope(true, ""), 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c", results[0].Page.ID)
}

func TestSearchService_Search_Edges(t *testing.T) {
	svc, _, emb, vdb := newSearchService(t)

	_, _, err := svc.Search(context.Background(), "  ", graph.NewScope(true, ""), 0)
	assert.ErrorIs(t, err, entities.ErrValidation)

	results, selected, err := svc.Search(context.Background(), "q", graph.Scope{}, 0)
	require.NoError(t, err)
	assert.False(t, selected)
	assert.Empty(t, results)

	_, _, err = svc.Search(context.Background(), "q", graph.NewScope(true, ""), 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSearchLimit*searchOversample, vdb.SearchLastLimit)

	emb.Err = errors.New("quota")
	_, _, err = svc.Search(context.Background(), "q", graph.NewScope(true, ""), 0)
	assert.Error(t, err)
}

func TestSearchService_IndexAndRemove(t *testing.T) {
	svc, _, emb, vdb := newSearchService(t)
	page := newPage("hero", "Hero", entities.KindCharacter, false, "saga")

	svc.Index(context.Background(), &page)
	require.Contains(t, vdb.Vectors, "hero")
	assert.Equal(t, "saga", vdb.Vectors["hero"].Universe)
	assert.False(t, vdb.Vectors["hero"].Canonical)

	svc.Remove(context.Background(), "hero")
	assert.NotContains(t, vdb.Vectors, "hero")

	// Failures are swallowed.
	emb.Err = errors.New("down")
	svc.Index(context.Background(), &page)
	assert.NotContains(t, vdb.Vectors, "hero")
}

func TestSearchService_Reindex(t *testing.T) {
	svc, f, _, vdb := newSearchService(t)
	for i := 0; i < reindexBatchSize+3; i++ {
		id := string(rune('a'+i%26)) + string(rune('a'+i/26))
		f.addPage(t, newPage(id, id, entities.KindObject, true, ""))
	}
	vdb.Vectors["stale"] = ports.PageVector{PageID: "stale"}

	_, err := svc.Reindex(context.Background(), f.viewer, ReindexOptions{})
	assert.ErrorIs(t, err, entities.ErrForbidden)

	result, err := svc.Reindex(context.Background(), f.editor, ReindexOptions{})
	require.NoError(t, err)
	assert.Equal(t, reindexBatchSize+3, result.Pages)
	assert.Equal(t, uint64(reindexBatchSize+3), result.Indexed)
	assert.Equal(t, 2, vdb.SaveBatchCallCount)
	assert.Equal(t, 1, vdb.DeleteAllCallCount)
	assert.Len(t, vdb.Vectors, reindexBatchSize+3)
	assert.NotContains(t, vdb.Vectors, "stale")

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(reindexBatchSize+3), count)
}

func TestSearchService_Reindex_EmbeddingFailureKeepsIndex(t *testing.T) {
	svc, f, emb, vdb := newSearchService(t)
	f.addPage(t, newPage("hero", "Hero", entities.KindCharacter, true, "saga"))
	vdb.Vectors["old"] = ports.PageVector{PageID: "old"}
	emb.Err = errors.New("rate limited")

	_, err := svc.Reindex(context.Background(), f.editor, ReindexOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generating embeddings")
	assert.Equal(t, 0, vdb.DeleteAllCallCount)
	assert.Equal(t, 0, vdb.SaveBatchCallCount)
	assert.Contains(t, vdb.Vectors, "old")
}

func TestSearchService_Reindex_Collection(t *testing.T) {
	tests := []struct {
		name          string
		recreate      bool
		ensureErr     error
		deleteErr     error
		wantErr       string
		wantDeletes   int
		wantEnsures   int
		wantDeleteAll int
	}{
		{name: "clears existing collection", wantEnsures: 1, wantDeleteAll: 1},
		{name: "recreates collection", recreate: true, wantDeletes: 1, wantEnsures: 1},
		{name: "ensure fails", ensureErr: errors.New("refused"), wantErr: "creating collection", wantEnsures: 1},
		{name: "drop fails", recreate: true, deleteErr: errors.New("refused"), wantErr: "dropping collection", wantDeletes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, f, _, vdb := newSearchService(t)
			f.addPage(t, newPage("hero", "Hero", entities.KindCharacter, true, "saga"))
			collections := &mocks.CollectionManager{EnsureErr: tt.ensureErr, DeleteErr: tt.deleteErr}
			svc.WithCollection(collections, 2)

			result, err := svc.Reindex(context.Background(), f.editor, ReindexOptions{Recreate: tt.recreate})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, 0, vdb.SaveBatchCallCount)
			} else {
				require.NoError(t, err)
				assert.Equal(t, 1, result.Pages)
				assert.Equal(t, uint64(2), collections.LastVectorSize)
			}
			assert.Equal(t, tt.wantDeletes, collections.DeleteCollectionCallCount)
			assert.Equal(t, tt.wantEnsures, collections.EnsureCollectionCallCount)
			assert.Equal(t, tt.wantDeleteAll, vdb.DeleteAllCallCount)
		})
	}
}

func TestSearchService_Reindex_RecreateWithoutCollection(t *testing.T) {
	svc, f, emb, _ := newSearchService(t)

	_, err := svc.Reindex(context.Background(), f.editor, ReindexOptions{Recreate: true})
	assert.ErrorIs(t, err, entities.ErrValidation)
	assert.Empty(t, emb.Texts)
}

func TestPageText(t *testing.T) {
	page := entities.Page{
		Name:     "Hero",
		Kind:     entities.KindCharacter,
		Universe: "saga",
		Sections: []entities.Section{{Title: "History", Content: "Born in 1990."}},
	}
	assert.Equal(t, "Hero\ncharacter\nsaga\nHistory\nBorn in 1990.", PageText(&page))
}
