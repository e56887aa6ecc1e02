package test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/recall/internal/profile"
	"github.com/hrygo/recall/store"
	"github.com/hrygo/recall/store/db"
)

// getPostgresDSN returns the DSN for PostgreSQL-backed tests. Tests gate on
// it being non-empty and skip otherwise.
func getPostgresDSN() string {
	return os.Getenv("POSTGRES_TEST_DSN")
}

// NewTestingPostgresStore opens a postgres-backed store against
// POSTGRES_TEST_DSN and runs migrations. The memory table is emptied so
// every test starts from a clean slate.
func NewTestingPostgresStore(ctx context.Context, t *testing.T) *store.Store {
	p := &profile.Profile{
		Mode:   "dev",
		Driver: "postgres",
		DSN:    getPostgresDSN(),
	}

	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	ts := store.New(driver, p)
	require.NoError(t, ts.Migrate(ctx))

	_, err = ts.GetDriver().GetDB().ExecContext(ctx, "DELETE FROM memory")
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = ts.Close()
	})
	return ts
}
