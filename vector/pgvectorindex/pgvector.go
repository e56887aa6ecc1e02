// Package pgvectorindex backs the vector index with PostgreSQL + pgvector.
// All collections share one table keyed by (collection, id).
package pgvectorindex

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/recall/vector"
)

type Index struct {
	db *sql.DB
}

// New wraps an already-open PostgreSQL connection. The pgvector extension
// must be installed.
func New(db *sql.DB) *Index {
	return &Index{db: db}
}

// Migrate creates the backing table when it does not exist yet.
func (x *Index) Migrate(ctx context.Context) error {
	stmt := `
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS memory_vector (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			content TEXT NOT NULL,
			embedding vector NOT NULL,
			metadata JSONB,
			PRIMARY KEY (collection, id)
		);
	`
	if _, err := x.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to migrate memory_vector table")
	}
	return nil
}

func (x *Index) Upsert(ctx context.Context, collection string, entries []vector.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt := `
		INSERT INTO memory_vector (collection, id, content, embedding, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (collection, id)
		DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			metadata = EXCLUDED.metadata
	`
	for _, e := range entries {
		metadata, err := json.Marshal(e.Metadata)
		if err != nil {
			return errors.Wrap(err, "failed to marshal metadata")
		}
		if _, err := tx.ExecContext(ctx, stmt, collection, e.ID, e.Text, pgvector.NewVector(e.Vector), metadata); err != nil {
			return errors.Wrapf(err, "failed to upsert vector entry %s", e.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (x *Index) Search(ctx context.Context, collection string, queryVector []float32, limit int) ([]vector.Result, error) {
	if limit <= 0 {
		limit = 10
	}

	// <=> is cosine distance, so ascending order is most similar first.
	query := `
		SELECT id, content, embedding, metadata,
			1 - (embedding <=> $1) AS score
		FROM memory_vector
		WHERE collection = $2
		ORDER BY embedding <=> $3
		LIMIT $4
	`

	v := pgvector.NewVector(queryVector)
	rows, err := x.db.QueryContext(ctx, query, v, collection, v, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search collection %s", collection)
	}
	defer rows.Close()

	results := []vector.Result{}
	for rows.Next() {
		var r vector.Result
		var embedding pgvector.Vector
		var metadata []byte
		if err := rows.Scan(&r.ID, &r.Text, &embedding, &metadata, &r.Score); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector entry")
		}
		r.Vector = embedding.Slice()
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &r.Metadata); err != nil {
				return nil, errors.Wrap(err, "failed to unmarshal metadata")
			}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate vector entries")
	}

	return results, nil
}

func (x *Index) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	stmt := `DELETE FROM memory_vector WHERE collection = $1 AND id = ANY($2)`
	if _, err := x.db.ExecContext(ctx, stmt, collection, pq.Array(ids)); err != nil {
		return errors.Wrapf(err, "failed to delete entries from %s", collection)
	}
	return nil
}

func (x *Index) DeleteCollection(ctx context.Context, collection string) error {
	stmt := `DELETE FROM memory_vector WHERE collection = $1`
	if _, err := x.db.ExecContext(ctx, stmt, collection); err != nil {
		return errors.Wrapf(err, "failed to delete collection %s", collection)
	}
	return nil
}
