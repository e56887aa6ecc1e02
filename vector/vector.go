// Package vector defines the vector index consumed by the sync engine. The
// index is a black box exposing per-collection upsert/search/delete; each
// owner gets their own collection.
package vector

import (
	"context"
	"fmt"
)

// Entry is one vector-index document mirroring a memory record. Existence of
// an entry is derived from and subordinate to the relational record with the
// same ID.
type Entry struct {
	ID       string
	Text     string
	Vector   []float32
	Metadata map[string]string
}

// Result is a ranked search hit.
type Result struct {
	Entry
	Score float32
}

// Index is the vector index contract.
type Index interface {
	// Upsert inserts or overwrites entries in the collection.
	Upsert(ctx context.Context, collection string, entries []Entry) error

	// Search returns up to limit entries ranked by similarity to the query
	// vector. A missing collection yields an empty result, not an error.
	Search(ctx context.Context, collection string, queryVector []float32, limit int) ([]Result, error)

	// Delete removes the entries with the given ids from the collection.
	Delete(ctx context.Context, collection string, ids []string) error

	// DeleteCollection removes the whole collection. Deleting a collection
	// that does not exist is a no-op.
	DeleteCollection(ctx context.Context, collection string) error
}

// CollectionName returns the collection namespacing all vector entries of
// one owner.
func CollectionName(userID int32) string {
	return fmt.Sprintf("user-memory-%d", userID)
}
