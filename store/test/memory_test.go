package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/recall/internal/errors"
)

func TestMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created, err := ts.CreateMemory(ctx, 1, "  remembers the user prefers tea  ")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.Equal(t, int32(1), created.CreatorID)
	require.Equal(t, "remembers the user prefers tea", created.Content)
	require.Equal(t, created.CreatedTs, created.UpdatedTs)

	got, err := ts.GetMemory(ctx, created.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, created.Content, got.Content)

	updated, err := ts.UpdateMemoryContent(ctx, created.ID, 1, "prefers coffee now")
	require.NoError(t, err)
	require.Equal(t, "prefers coffee now", updated.Content)
	require.Greater(t, updated.UpdatedTs, created.UpdatedTs)
	require.Equal(t, created.CreatedTs, updated.CreatedTs)

	deleted, err := ts.DeleteMemory(ctx, created.ID, 1)
	require.NoError(t, err)
	require.True(t, deleted)

	got, err = ts.GetMemory(ctx, created.ID, 1)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestMemoryValidation(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	_, err := ts.CreateMemory(ctx, 1, "   ")
	require.Error(t, err)
	require.True(t, errors.IsInvalidArgument(err))

	created, err := ts.CreateMemory(ctx, 1, "a fact")
	require.NoError(t, err)

	_, err = ts.UpdateMemoryContent(ctx, created.ID, 1, "")
	require.Error(t, err)
	require.True(t, errors.IsInvalidArgument(err))

	// The stored record is untouched by the rejected update.
	got, err := ts.GetMemory(ctx, created.ID, 1)
	require.NoError(t, err)
	require.Equal(t, "a fact", got.Content)
}

func TestMemoryOwnerScoping(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	mine, err := ts.CreateMemory(ctx, 1, "owned by one")
	require.NoError(t, err)
	theirs, err := ts.CreateMemory(ctx, 2, "owned by two")
	require.NoError(t, err)

	got, err := ts.GetMemory(ctx, mine.ID, 2)
	require.NoError(t, err)
	require.Nil(t, got)

	_, err = ts.UpdateMemoryContent(ctx, mine.ID, 2, "hijacked")
	require.Error(t, err)
	require.True(t, errors.IsNotFound(err))

	deleted, err := ts.DeleteMemory(ctx, mine.ID, 2)
	require.NoError(t, err)
	require.False(t, deleted)

	list, err := ts.ListMemoriesByCreator(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, mine.ID, list[0].ID)

	list, err = ts.ListMemoriesByCreator(ctx, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, theirs.ID, list[0].ID)
}

func TestMemoryUpdatedTsStrictlyIncreases(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	m, err := ts.CreateMemory(ctx, 1, "v0")
	require.NoError(t, err)

	// Back-to-back updates land within the same wall-clock second.
	prev := m.UpdatedTs
	for i := 0; i < 3; i++ {
		m, err = ts.UpdateMemoryContent(ctx, m.ID, 1, "next version")
		require.NoError(t, err)
		require.Greater(t, m.UpdatedTs, prev)
		prev = m.UpdatedTs
	}
}

func TestDeleteMemoriesByCreator(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	for i := 0; i < 3; i++ {
		_, err := ts.CreateMemory(ctx, 1, "fact")
		require.NoError(t, err)
	}
	other, err := ts.CreateMemory(ctx, 2, "untouched")
	require.NoError(t, err)

	deleted, err := ts.DeleteMemoriesByCreator(ctx, 1)
	require.NoError(t, err)
	require.True(t, deleted)

	list, err := ts.ListMemoriesByCreator(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, list)

	got, err := ts.GetMemory(ctx, other.ID, 2)
	require.NoError(t, err)
	require.NotNil(t, got)

	// Deleting an already-empty owner reports nothing matched.
	deleted, err = ts.DeleteMemoriesByCreator(ctx, 1)
	require.NoError(t, err)
	require.False(t, deleted)
}
