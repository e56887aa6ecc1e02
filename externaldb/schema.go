package externaldb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/hrygo/recall/internal/errors"
)

// Schema describes the resolved shape of the externally-managed memories
// table: which of the two candidate names exists and which optional columns
// it carries.
type Schema struct {
	Table   string
	Columns ColumnSet
}

// ResolveFunc discovers the schema within the given transaction.
type ResolveFunc func(ctx context.Context, tx *sql.Tx) (Schema, error)

// SchemaCache memoizes the discovered schema for the lifetime of the
// process. The first completed discovery wins; concurrent discoveries are
// redundant but idempotent since the catalog query is read-only and
// deterministic. There is no refresh path: if the underlying table is
// altered after first use, behavior is undefined until process restart.
type SchemaCache struct {
	mu      sync.RWMutex
	schema  *Schema
	resolve ResolveFunc
}

// NewSchemaCache creates a cache backed by the information_schema catalog.
func NewSchemaCache() *SchemaCache {
	return &SchemaCache{resolve: resolveSchema}
}

// newSchemaCacheWithResolver is used by tests to observe discovery calls.
func newSchemaCacheWithResolver(resolve ResolveFunc) *SchemaCache {
	return &SchemaCache{resolve: resolve}
}

// Resolve returns the cached schema, discovering it on first use. The
// discovery query runs without the cache lock held; both fields become
// visible together in a single write.
func (c *SchemaCache) Resolve(ctx context.Context, tx *sql.Tx) (Schema, error) {
	c.mu.RLock()
	cached := c.schema
	c.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	schema, err := c.resolve(ctx, tx)
	if err != nil {
		return Schema{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.schema == nil {
		c.schema = &schema
	}
	return *c.schema, nil
}

// resolveSchema queries the catalog for the candidate tables and the column
// set of the resolved one. Prefers "memories" when both candidates exist.
func resolveSchema(ctx context.Context, tx *sql.Tx) (Schema, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT table_name FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name IN ('memories', 'memory')`)
	if err != nil {
		return Schema{}, errors.Upstream("failed to query catalog tables", err)
	}
	defer rows.Close()

	available := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return Schema{}, errors.Upstream("failed to scan catalog table", err)
		}
		available[name] = true
	}
	if err := rows.Err(); err != nil {
		return Schema{}, errors.Upstream("failed to iterate catalog tables", err)
	}

	var table string
	switch {
	case available["memories"]:
		table = "memories"
	case available["memory"]:
		table = "memory"
	default:
		return Schema{}, errors.NotFound("memories table not found in external database")
	}

	columnRows, err := tx.QueryContext(ctx,
		`SELECT column_name FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1`, table)
	if err != nil {
		return Schema{}, errors.Upstream("failed to query catalog columns", err)
	}
	defer columnRows.Close()

	names := []string{}
	for columnRows.Next() {
		var name string
		if err := columnRows.Scan(&name); err != nil {
			return Schema{}, errors.Upstream("failed to scan catalog column", err)
		}
		names = append(names, name)
	}
	if err := columnRows.Err(); err != nil {
		return Schema{}, errors.Upstream("failed to iterate catalog columns", err)
	}

	return Schema{Table: table, Columns: columnSetFromNames(names)}, nil
}
