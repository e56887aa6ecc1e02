package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/recall/store"
)

func (d *DB) CreateMemory(ctx context.Context, create *store.Memory) (*store.Memory, error) {
	fields := []string{"id", "creator_id", "content", "created_ts", "updated_ts"}
	args := []any{create.ID, create.CreatorID, create.Content, create.CreatedTs, create.UpdatedTs}

	stmt := `INSERT INTO memory (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)`

	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to create memory")
	}

	return create, nil
}

func (d *DB) ListMemories(ctx context.Context, find *store.FindMemory) ([]*store.Memory, error) {
	if find == nil {
		return nil, errors.New("find parameter cannot be nil")
	}

	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.CreatorID != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *find.CreatorID)
	}

	query := `SELECT id, creator_id, content, created_ts, updated_ts
		FROM memory WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list memories")
	}
	defer rows.Close()

	list := make([]*store.Memory, 0)
	for rows.Next() {
		m := &store.Memory{}
		if err := rows.Scan(
			&m.ID,
			&m.CreatorID,
			&m.Content,
			&m.CreatedTs,
			&m.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan memory")
		}
		list = append(list, m)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate memories")
	}

	return list, nil
}

func (d *DB) UpdateMemory(ctx context.Context, update *store.UpdateMemory) (*store.Memory, error) {
	// MAX keeps updated_ts strictly increasing even when two updates land
	// within the same second.
	stmt := `UPDATE memory
		SET content = ?, updated_ts = MAX(?, updated_ts + 1)
		WHERE id = ? AND creator_id = ?`

	result, err := d.db.ExecContext(ctx, stmt, update.Content, update.UpdatedTs, update.ID, update.CreatorID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update memory")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, nil
	}

	list, err := d.ListMemories(ctx, &store.FindMemory{ID: &update.ID, CreatorID: &update.CreatorID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (d *DB) DeleteMemories(ctx context.Context, delete *store.DeleteMemory) (int64, error) {
	if delete == nil {
		return 0, errors.New("delete parameter cannot be nil")
	}

	where, args := []string{}, []any{}

	if delete.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *delete.ID)
	}
	if delete.CreatorID != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *delete.CreatorID)
	}

	if len(where) == 0 {
		return 0, errors.New("no condition to delete memory")
	}

	stmt := `DELETE FROM memory WHERE ` + strings.Join(where, " AND ")
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete memory")
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
