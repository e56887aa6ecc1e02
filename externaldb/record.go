package externaldb

import (
	"database/sql"
	"encoding/json"
	"time"
)

// ExternalMemory is a row of the externally-managed memories table. Fields
// backed by columns absent from the discovered schema stay nil and are
// omitted from the JSON encoding entirely, so a caller can tell a missing
// column apart from a present-but-NULL value.
type ExternalMemory struct {
	ID         int64
	Content    string
	Category   *string
	Importance *int64
	CreatedAt  *time.Time
	UpdatedAt  *time.Time

	columns ColumnSet
}

// Columns returns the column set the record was read with.
func (m *ExternalMemory) Columns() ColumnSet {
	return m.columns
}

// MarshalJSON emits id and content always, optional fields only when the
// underlying column exists (as null when the stored value is NULL).
func (m *ExternalMemory) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":      m.ID,
		"content": m.Content,
	}
	if m.columns.Has(ColumnCategory) {
		out["category"] = m.Category
	}
	if m.columns.Has(ColumnImportance) {
		out["importance"] = m.Importance
	}
	if m.columns.Has(ColumnCreatedAt) {
		out["created_at"] = m.CreatedAt
	}
	if m.columns.Has(ColumnUpdatedAt) {
		out["updated_at"] = m.UpdatedAt
	}
	return json.Marshal(out)
}

// scanExternalMemory scans one row whose select list was produced by
// selectColumns for the same schema.
func scanExternalMemory(schema Schema, scan func(dest ...any) error) (*ExternalMemory, error) {
	m := &ExternalMemory{columns: schema.Columns}

	var category sql.NullString
	var importance sql.NullInt64
	var createdAt, updatedAt sql.NullTime

	dest := []any{&m.ID, &m.Content}
	if schema.Columns.Has(ColumnCategory) {
		dest = append(dest, &category)
	}
	if schema.Columns.Has(ColumnImportance) {
		dest = append(dest, &importance)
	}
	if schema.Columns.Has(ColumnCreatedAt) {
		dest = append(dest, &createdAt)
	}
	if schema.Columns.Has(ColumnUpdatedAt) {
		dest = append(dest, &updatedAt)
	}

	if err := scan(dest...); err != nil {
		return nil, err
	}

	if category.Valid {
		m.Category = &category.String
	}
	if importance.Valid {
		m.Importance = &importance.Int64
	}
	if createdAt.Valid {
		m.CreatedAt = &createdAt.Time
	}
	if updatedAt.Valid {
		m.UpdatedAt = &updatedAt.Time
	}
	return m, nil
}
