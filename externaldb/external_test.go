package externaldb

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/recall/internal/errors"
)

func getPostgresDSN() string {
	return os.Getenv("POSTGRES_TEST_DSN")
}

// newTestingAdapter provisions a fresh memories table in the test database
// and returns an adapter whose schema cache will discover it.
func newTestingAdapter(ctx context.Context, t *testing.T) *Adapter {
	db, err := sql.Open("postgres", getPostgresDSN())
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `DROP TABLE IF EXISTS memories`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		CREATE TABLE memories (
			id BIGSERIAL PRIMARY KEY,
			content TEXT NOT NULL,
			category TEXT,
			importance BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DROP TABLE IF EXISTS memories`)
		_ = db.Close()
	})
	return NewAdapter(db)
}

func TestAdapterLiveRoundTrip(t *testing.T) {
	if getPostgresDSN() == "" {
		t.Skip("External adapter live tests require POSTGRES_TEST_DSN")
	}

	ctx := context.Background()
	a := newTestingAdapter(ctx, t)

	created, err := a.Create(ctx, &CreateExternalMemory{
		Content:    "  remembers the meeting notes  ",
		Category:   ptr("work"),
		Importance: ptr(int64(3)),
	})
	require.NoError(t, err)
	require.Greater(t, created.ID, int64(0))
	require.Equal(t, "remembers the meeting notes", created.Content)
	require.NotNil(t, created.Category)
	require.Equal(t, "work", *created.Category)
	require.NotNil(t, created.Importance)
	require.Equal(t, int64(3), *created.Importance)
	require.NotNil(t, created.CreatedAt)
	require.NotNil(t, created.UpdatedAt)
	require.Equal(t, allColumns(), created.Columns())

	updated, err := a.Update(ctx, created.ID, &UpdateExternalMemory{
		Content:  ptr("revised meeting notes"),
		Category: ptr("  "),
	})
	require.NoError(t, err)
	require.Equal(t, "revised meeting notes", updated.Content)
	require.Nil(t, updated.Category)
	require.False(t, updated.UpdatedAt.Before(*created.UpdatedAt))
	require.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	require.NoError(t, a.Delete(ctx, created.ID))
	err = a.Delete(ctx, created.ID)
	require.Error(t, err)
	require.True(t, errors.IsNotFound(err))
}

func TestAdapterLiveListOrdering(t *testing.T) {
	if getPostgresDSN() == "" {
		t.Skip("External adapter live tests require POSTGRES_TEST_DSN")
	}

	ctx := context.Background()
	a := newTestingAdapter(ctx, t)

	_, err := a.Create(ctx, &CreateExternalMemory{Content: "second", Category: ptr("b")})
	require.NoError(t, err)
	_, err = a.Create(ctx, &CreateExternalMemory{Content: "first", Category: ptr("a")})
	require.NoError(t, err)
	_, err = a.Create(ctx, &CreateExternalMemory{Content: "uncategorized"})
	require.NoError(t, err)

	list, err := a.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "first", list[0].Content)
	require.Equal(t, "second", list[1].Content)
	// NULL categories sort last under postgres default ordering.
	require.Equal(t, "uncategorized", list[2].Content)
}

func TestAdapterLiveSchemaDiscoveredOnce(t *testing.T) {
	if getPostgresDSN() == "" {
		t.Skip("External adapter live tests require POSTGRES_TEST_DSN")
	}

	ctx := context.Background()
	a := newTestingAdapter(ctx, t)

	_, err := a.List(ctx)
	require.NoError(t, err)

	// Columns added after first discovery stay invisible for the process
	// lifetime; existing statements keep working.
	_, err = a.db.ExecContext(ctx, `ALTER TABLE memories ADD COLUMN extra TEXT`)
	require.NoError(t, err)

	created, err := a.Create(ctx, &CreateExternalMemory{Content: "post-alter"})
	require.NoError(t, err)
	require.Equal(t, allColumns(), created.Columns())
}

func TestAdapterLiveUpdateUnknownID(t *testing.T) {
	if getPostgresDSN() == "" {
		t.Skip("External adapter live tests require POSTGRES_TEST_DSN")
	}

	ctx := context.Background()
	a := newTestingAdapter(ctx, t)

	_, err := a.Update(ctx, 424242, &UpdateExternalMemory{Content: ptr("anything")})
	require.Error(t, err)
	require.True(t, errors.IsNotFound(err))
}
