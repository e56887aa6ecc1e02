// Package memory implements the synchronization core between the relational
// memory store and the per-owner vector collections.
//
// The relational write always happens first: an embedding or vector-index
// failure after a committed relational write leaves the record durable but
// temporarily unsearchable, which the next reset repairs. The reverse order
// would fabricate search results for content that does not durably exist.
package memory

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/recall/internal/errors"
	"github.com/hrygo/recall/internal/observability"
	"github.com/hrygo/recall/store"
	"github.com/hrygo/recall/vector"
)

const (
	// DefaultQueryLimit is the result count when the caller supplies none.
	DefaultQueryLimit = 1

	// resetEmbedConcurrency bounds concurrent embedding calls during a full
	// reset to avoid overwhelming the gateway.
	resetEmbedConcurrency = 3
)

type service struct {
	store    *store.Store
	index    vector.Index
	embedder Embedder
	logger   *slog.Logger
}

// NewService creates the sync engine over the given store, index, and
// embedding gateway.
func NewService(store *store.Store, index vector.Index, embedder Embedder, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		store:    store,
		index:    index,
		embedder: embedder,
		logger:   logger,
	}
}

func (s *service) List(ctx context.Context, userID int32) ([]*store.Memory, error) {
	return s.store.ListMemoriesByCreator(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID int32, content string) (*MemoryResult, error) {
	op := observability.NewOperationContext(s.logger, "memory.create", userID)

	memory, err := s.store.CreateMemory(ctx, userID, content)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"created_at": strconv.FormatInt(memory.CreatedTs, 10),
	}
	sync := s.upsertMirror(ctx, op, memory, metadata)

	op.Info("memory created",
		slog.String(observability.LogFieldMemoryID, memory.ID),
		slog.Int64(observability.LogFieldDuration, op.DurationMs()))
	return &MemoryResult{Memory: memory, Sync: sync}, nil
}

func (s *service) Update(ctx context.Context, id string, userID int32, content string) (*MemoryResult, error) {
	op := observability.NewOperationContext(s.logger, "memory.update", userID)

	memory, err := s.store.UpdateMemoryContent(ctx, id, userID, content)
	if err != nil {
		return nil, err
	}

	metadata := map[string]string{
		"created_at": strconv.FormatInt(memory.CreatedTs, 10),
		"updated_at": strconv.FormatInt(memory.UpdatedTs, 10),
	}
	sync := s.upsertMirror(ctx, op, memory, metadata)

	op.Info("memory updated",
		slog.String(observability.LogFieldMemoryID, memory.ID),
		slog.Int64(observability.LogFieldDuration, op.DurationMs()))
	return &MemoryResult{Memory: memory, Sync: sync}, nil
}

func (s *service) Delete(ctx context.Context, id string, userID int32) (SyncState, error) {
	op := observability.NewOperationContext(s.logger, "memory.delete", userID)

	found, err := s.store.DeleteMemory(ctx, id, userID)
	if err != nil {
		return SyncClean, err
	}
	if !found {
		return SyncClean, errors.NotFoundf("memory %s not found", id)
	}

	// The relational delete is committed; a mirror failure only delays the
	// vector-side removal.
	collection := vector.CollectionName(userID)
	if err := s.index.Delete(ctx, collection, []string{id}); err != nil {
		op.Error("vector delete failed, mirror lags until next reset",
			errors.MirrorPending("vector entry not deleted", err),
			slog.String(observability.LogFieldMemoryID, id),
			slog.String(observability.LogFieldCollection, collection))
		return SyncPending, nil
	}
	return SyncClean, nil
}

func (s *service) DeleteAll(ctx context.Context, userID int32) (SyncState, error) {
	op := observability.NewOperationContext(s.logger, "memory.delete_all", userID)

	found, err := s.store.DeleteMemoriesByCreator(ctx, userID)
	if err != nil {
		return SyncClean, err
	}
	if !found {
		return SyncClean, errors.NotFoundf("no memories found for user %d", userID)
	}

	collection := vector.CollectionName(userID)
	if err := s.index.DeleteCollection(ctx, collection); err != nil {
		// Stale collection is acceptable: query checks the relational store
		// first and the next reset repairs the drift.
		op.Error("collection delete failed, mirror lags until next reset",
			errors.MirrorPending("vector collection not deleted", err),
			slog.String(observability.LogFieldCollection, collection))
		return SyncPending, nil
	}
	return SyncClean, nil
}

func (s *service) Query(ctx context.Context, userID int32, content string, k int) ([]vector.Result, error) {
	// The existence check runs against the relational store, not the vector
	// index, so an orphaned collection can never answer.
	memories, err := s.store.ListMemoriesByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memories) == 0 {
		return nil, errors.NotFoundf("no memories found for user %d", userID)
	}

	queryVector, err := s.embedder.Embed(ctx, content, userID)
	if err != nil {
		return nil, errors.Upstream("failed to embed query", err)
	}

	if k <= 0 {
		k = DefaultQueryLimit
	}
	results, err := s.index.Search(ctx, vector.CollectionName(userID), queryVector, k)
	if err != nil {
		return nil, errors.Upstream("failed to search vector index", err)
	}
	return results, nil
}

func (s *service) Reset(ctx context.Context, userID int32) error {
	op := observability.NewOperationContext(s.logger, "memory.reset", userID)
	collection := vector.CollectionName(userID)

	// The collection is dropped unconditionally, even when it does not
	// exist yet; repopulating on top of stale entries could leave orphans.
	if err := s.index.DeleteCollection(ctx, collection); err != nil {
		return errors.Upstream("failed to delete collection", err)
	}

	memories, err := s.store.ListMemoriesByCreator(ctx, userID)
	if err != nil {
		return err
	}
	if len(memories) == 0 {
		return nil
	}

	entries := make([]vector.Entry, len(memories))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resetEmbedConcurrency)
	for i, m := range memories {
		i, m := i, m
		g.Go(func() error {
			v, err := s.embedder.Embed(gctx, m.Content, userID)
			if err != nil {
				return err
			}
			entries[i] = vector.Entry{
				ID:     m.ID,
				Text:   m.Content,
				Vector: v,
				Metadata: map[string]string{
					"created_at": strconv.FormatInt(m.CreatedTs, 10),
					"updated_at": strconv.FormatInt(m.UpdatedTs, 10),
				},
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Upstream("failed to embed memories", err)
	}

	if err := s.index.Upsert(ctx, collection, entries); err != nil {
		return errors.Upstream("failed to repopulate collection", err)
	}

	op.Info("collection rebuilt",
		slog.String(observability.LogFieldCollection, collection),
		slog.Int64(observability.LogFieldDuration, op.DurationMs()))
	return nil
}

// upsertMirror embeds the record and overwrites its vector entry. Failures
// are logged with identifiers only and surface as SyncPending, never as an
// error: the relational write is already committed.
func (s *service) upsertMirror(ctx context.Context, op *observability.OperationContext, m *store.Memory, metadata map[string]string) SyncState {
	collection := vector.CollectionName(m.CreatorID)

	v, err := s.embedder.Embed(ctx, m.Content, m.CreatorID)
	if err != nil {
		op.Error("embedding failed, mirror lags until next reset",
			errors.MirrorPending("vector entry not written", err),
			slog.String(observability.LogFieldMemoryID, m.ID),
			slog.String(observability.LogFieldCollection, collection))
		return SyncPending
	}

	entry := vector.Entry{
		ID:       m.ID,
		Text:     m.Content,
		Vector:   v,
		Metadata: metadata,
	}
	if err := s.index.Upsert(ctx, collection, []vector.Entry{entry}); err != nil {
		op.Error("vector upsert failed, mirror lags until next reset",
			errors.MirrorPending("vector entry not written", err),
			slog.String(observability.LogFieldMemoryID, m.ID),
			slog.String(observability.LogFieldCollection, collection))
		return SyncPending
	}
	return SyncClean
}
