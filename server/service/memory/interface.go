package memory

import (
	"context"

	"github.com/hrygo/recall/store"
	"github.com/hrygo/recall/vector"
)

// Embedder is the embedding gateway contract consumed by the sync engine.
type Embedder interface {
	Embed(ctx context.Context, text string, userID int32) ([]float32, error)
}

// SyncState reports the vector-mirror outcome of a mutation. The relational
// store is the source of truth; SyncPending means the relational write is
// durable but the mirror lags until the next reset repairs it.
type SyncState int

const (
	// SyncClean means the vector mirror reflects the mutation.
	SyncClean SyncState = iota
	// SyncPending means the mirror step failed after the relational write
	// was committed.
	SyncPending
)

func (s SyncState) String() string {
	if s == SyncPending {
		return "pending"
	}
	return "clean"
}

// MemoryResult couples a durable relational record with the mirror outcome
// of the mutation that produced it.
type MemoryResult struct {
	Memory *store.Memory
	Sync   SyncState
}

// Service defines the memory business logic: owner-scoped CRUD over the
// relational store with synchronized propagation into the per-owner vector
// collection.
type Service interface {
	// List returns all memories owned by userID.
	List(ctx context.Context, userID int32) ([]*store.Memory, error)

	// Create inserts a memory and mirrors it into the vector index.
	Create(ctx context.Context, userID int32, content string) (*MemoryResult, error)

	// Update replaces the content of an owner-scoped memory and re-embeds it.
	Update(ctx context.Context, id string, userID int32, content string) (*MemoryResult, error)

	// Delete removes a single owner-scoped memory and its vector entry.
	Delete(ctx context.Context, id string, userID int32) (SyncState, error)

	// DeleteAll removes every memory of the owner and drops the owner's
	// collection. A collection-drop failure never fails the call once the
	// relational delete is committed.
	DeleteAll(ctx context.Context, userID int32) (SyncState, error)

	// Query searches the owner's collection. Fails with NOT_FOUND when the
	// owner has no relational records, regardless of any stale collection.
	Query(ctx context.Context, userID int32, content string, k int) ([]vector.Result, error)

	// Reset drops the owner's collection and rebuilds it from the current
	// relational records. Resetting an owner with no records is a no-op.
	Reset(ctx context.Context, userID int32) error
}
