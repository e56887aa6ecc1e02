// Package chromemindex backs the vector index with chromem-go, a pure Go
// embedded vector database. This is the default index in dev mode and the
// one the sync-engine tests run against.
package chromemindex

import (
	"context"

	chromem "github.com/philippgille/chromem-go"
	"github.com/pkg/errors"

	"github.com/hrygo/recall/vector"
)

type Index struct {
	db *chromem.DB
}

// New creates an in-memory index.
func New() *Index {
	return &Index{db: chromem.NewDB()}
}

// NewPersistent creates an index persisted under the given directory.
func NewPersistent(path string) (*Index, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open chromem db")
	}
	return &Index{db: db}, nil
}

func (x *Index) Upsert(ctx context.Context, collection string, entries []vector.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	col, err := x.db.GetOrCreateCollection(collection, nil, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to get collection %s", collection)
	}

	docs := make([]chromem.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, chromem.Document{
			ID:        e.ID,
			Content:   e.Text,
			Embedding: e.Vector,
			Metadata:  e.Metadata,
		})
	}

	if err := col.AddDocuments(ctx, docs, 1); err != nil {
		return errors.Wrapf(err, "failed to upsert %d entries into %s", len(docs), collection)
	}
	return nil
}

func (x *Index) Search(ctx context.Context, collection string, queryVector []float32, limit int) ([]vector.Result, error) {
	col := x.db.GetCollection(collection, nil)
	if col == nil {
		return []vector.Result{}, nil
	}

	// chromem rejects a result count larger than the collection.
	if count := col.Count(); limit > count {
		limit = count
	}
	if limit <= 0 {
		return []vector.Result{}, nil
	}

	hits, err := col.QueryEmbedding(ctx, queryVector, limit, nil, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to search collection %s", collection)
	}

	results := make([]vector.Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, vector.Result{
			Entry: vector.Entry{
				ID:       hit.ID,
				Text:     hit.Content,
				Vector:   hit.Embedding,
				Metadata: hit.Metadata,
			},
			Score: hit.Similarity,
		})
	}
	return results, nil
}

func (x *Index) Delete(ctx context.Context, collection string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	col := x.db.GetCollection(collection, nil)
	if col == nil {
		return nil
	}

	if err := col.Delete(ctx, nil, nil, ids...); err != nil {
		return errors.Wrapf(err, "failed to delete entries from %s", collection)
	}
	return nil
}

func (x *Index) DeleteCollection(ctx context.Context, collection string) error {
	if err := x.db.DeleteCollection(collection); err != nil {
		return errors.Wrapf(err, "failed to delete collection %s", collection)
	}
	return nil
}
