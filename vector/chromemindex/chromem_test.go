package chromemindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/recall/vector"
)

func seedEntries() []vector.Entry {
	return []vector.Entry{
		{ID: "a", Text: "likes tea", Vector: []float32{1, 0, 0}, Metadata: map[string]string{"created_at": "1"}},
		{ID: "b", Text: "likes coffee", Vector: []float32{0, 1, 0}, Metadata: map[string]string{"created_at": "2"}},
		{ID: "c", Text: "likes water", Vector: []float32{0, 0, 1}, Metadata: map[string]string{"created_at": "3"}},
	}
}

func TestUpsertAndSearch(t *testing.T) {
	ctx := context.Background()
	x := New()

	collection := vector.CollectionName(42)
	require.NoError(t, x.Upsert(ctx, collection, seedEntries()))

	results, err := x.Search(ctx, collection, []float32{0.9, 0.1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "a", results[0].ID)
	require.Equal(t, "likes tea", results[0].Text)
	require.Equal(t, "1", results[0].Metadata["created_at"])
	require.Greater(t, results[0].Score, results[1].Score)
}

func TestUpsertReplacesExisting(t *testing.T) {
	ctx := context.Background()
	x := New()

	collection := vector.CollectionName(42)
	require.NoError(t, x.Upsert(ctx, collection, seedEntries()))
	require.NoError(t, x.Upsert(ctx, collection, []vector.Entry{
		{ID: "a", Text: "now likes juice", Vector: []float32{1, 0, 0}},
	}))

	results, err := x.Search(ctx, collection, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "a", results[0].ID)
	require.Equal(t, "now likes juice", results[0].Text)
}

func TestSearchLimitClamped(t *testing.T) {
	ctx := context.Background()
	x := New()

	collection := vector.CollectionName(7)
	require.NoError(t, x.Upsert(ctx, collection, seedEntries()[:2]))

	results, err := x.Search(ctx, collection, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
}

func TestSearchMissingCollection(t *testing.T) {
	ctx := context.Background()
	x := New()

	results, err := x.Search(ctx, vector.CollectionName(99), []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	x := New()

	collection := vector.CollectionName(1)
	require.NoError(t, x.Upsert(ctx, collection, seedEntries()))
	require.NoError(t, x.Delete(ctx, collection, []string{"a"}))

	results, err := x.Search(ctx, collection, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		require.NotEqual(t, "a", r.ID)
	}

	// Missing collections and empty id lists are tolerated.
	require.NoError(t, x.Delete(ctx, vector.CollectionName(99), []string{"a"}))
	require.NoError(t, x.Delete(ctx, collection, nil))
}

func TestDeleteCollection(t *testing.T) {
	ctx := context.Background()
	x := New()

	collection := vector.CollectionName(1)
	require.NoError(t, x.Upsert(ctx, collection, seedEntries()))
	require.NoError(t, x.DeleteCollection(ctx, collection))

	results, err := x.Search(ctx, collection, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Empty(t, results)

	// Deleting a collection that never existed is a no-op.
	require.NoError(t, x.DeleteCollection(ctx, vector.CollectionName(99)))
}
