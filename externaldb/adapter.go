// Package externaldb adapts to an externally-managed memories table whose
// shape varies between deployments. The table is read and written but never
// migrated: the adapter discovers whatever schema exists and builds its
// statements around it.
package externaldb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/hrygo/recall/internal/errors"
	"github.com/hrygo/recall/internal/profile"
)

// Adapter provides list/create/update/delete against the resolved table.
// Every call runs inside a single transaction scope so that a schema
// resolution race never straddles a partially-applied mutation.
type Adapter struct {
	db     *sql.DB
	schema *SchemaCache
}

// Open connects to the external memories database configured in the profile.
// Returns a NOT_CONFIGURED error when no DSN is set.
func Open(profile *profile.Profile) (*Adapter, error) {
	if profile == nil || profile.MemoriesDSN == "" {
		return nil, errors.NotConfigured("external memories database is not configured")
	}

	db, err := sql.Open("postgres", profile.MemoriesDSN)
	if err != nil {
		return nil, errors.Upstream("failed to open external memories database", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, errors.Upstream("failed to ping external memories database", err)
	}

	return NewAdapter(db), nil
}

// NewAdapter wraps an already-open connection. The schema cache is owned by
// the adapter instance, not global state.
func NewAdapter(db *sql.DB) *Adapter {
	return &Adapter{
		db:     db,
		schema: NewSchemaCache(),
	}
}

func (a *Adapter) Close() error {
	return a.db.Close()
}

// CreateExternalMemory is the payload for Create.
type CreateExternalMemory struct {
	Content    string
	Category   *string
	Importance *int64
}

// UpdateExternalMemory is the payload for Update. Nil fields are left
// untouched.
type UpdateExternalMemory struct {
	Content    *string
	Category   *string
	Importance *int64
}

// List returns all rows ordered by category (when that column exists) then
// id ascending.
func (a *Adapter) List(ctx context.Context) ([]*ExternalMemory, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Upstream("failed to begin transaction", err)
	}
	defer tx.Rollback()

	schema, err := a.schema.Resolve(ctx, tx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx, buildListQuery(schema))
	if err != nil {
		return nil, errors.Upstream("failed to list external memories", err)
	}
	defer rows.Close()

	list := make([]*ExternalMemory, 0)
	for rows.Next() {
		m, err := scanExternalMemory(schema, rows.Scan)
		if err != nil {
			return nil, errors.Upstream("failed to scan external memory", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Upstream("failed to iterate external memories", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Upstream("failed to commit transaction", err)
	}
	return list, nil
}

// Create inserts a new row and returns it as stored, including any
// server-computed defaults.
func (a *Adapter) Create(ctx context.Context, create *CreateExternalMemory) (*ExternalMemory, error) {
	content := strings.TrimSpace(create.Content)
	if content == "" {
		return nil, errors.InvalidArgument("content must not be empty")
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Upstream("failed to begin transaction", err)
	}
	defer tx.Rollback()

	schema, err := a.schema.Resolve(ctx, tx)
	if err != nil {
		return nil, err
	}

	stmt, args := buildInsertStatement(schema, content, create.Category, create.Importance)
	m, err := scanExternalMemory(schema, tx.QueryRowContext(ctx, stmt, args...).Scan)
	if err != nil {
		return nil, errors.Upstream("failed to create external memory", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Upstream("failed to commit transaction", err)
	}
	return m, nil
}

// Update applies the supplied changes to the row with the given id. At least
// one change must map to an existing column.
func (a *Adapter) Update(ctx context.Context, id int64, update *UpdateExternalMemory) (*ExternalMemory, error) {
	var content *string
	if update.Content != nil {
		trimmed := strings.TrimSpace(*update.Content)
		if trimmed == "" {
			return nil, errors.InvalidArgument("content must not be empty")
		}
		content = &trimmed
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Upstream("failed to begin transaction", err)
	}
	defer tx.Rollback()

	schema, err := a.schema.Resolve(ctx, tx)
	if err != nil {
		return nil, err
	}

	stmt, args, ok := buildUpdateStatement(schema, id, content, update.Category, update.Importance)
	if !ok {
		return nil, errors.InvalidArgument("no changes provided")
	}

	m, err := scanExternalMemory(schema, tx.QueryRowContext(ctx, stmt, args...).Scan)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("external memory %d not found", id)
	}
	if err != nil {
		return nil, errors.Upstream("failed to update external memory", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Upstream("failed to commit transaction", err)
	}
	return m, nil
}

// Delete removes the row with the given id.
func (a *Adapter) Delete(ctx context.Context, id int64) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Upstream("failed to begin transaction", err)
	}
	defer tx.Rollback()

	schema, err := a.schema.Resolve(ctx, tx)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM `+schema.Table+` WHERE id = $1`, id)
	if err != nil {
		return errors.Upstream("failed to delete external memory", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return errors.NotFoundf("external memory %d not found", id)
	}

	if err := tx.Commit(); err != nil {
		return errors.Upstream("failed to commit transaction", err)
	}
	return nil
}

// selectColumns returns the select list for the schema: id and content,
// then each optional column that exists, in a fixed order matching
// scanExternalMemory.
func selectColumns(schema Schema) []string {
	columns := []string{"id", "content"}
	if schema.Columns.Has(ColumnCategory) {
		columns = append(columns, "category")
	}
	if schema.Columns.Has(ColumnImportance) {
		columns = append(columns, "importance")
	}
	if schema.Columns.Has(ColumnCreatedAt) {
		columns = append(columns, "created_at")
	}
	if schema.Columns.Has(ColumnUpdatedAt) {
		columns = append(columns, "updated_at")
	}
	return columns
}

func buildListQuery(schema Schema) string {
	order := []string{}
	if schema.Columns.Has(ColumnCategory) {
		order = append(order, "category")
	}
	order = append(order, "id")

	return `SELECT ` + strings.Join(selectColumns(schema), ", ") +
		` FROM ` + schema.Table +
		` ORDER BY ` + strings.Join(order, ", ")
}

func buildInsertStatement(schema Schema, content string, category *string, importance *int64) (string, []any) {
	insert := []string{"content"}
	args := []any{content}

	// category is always written when the column exists, NULL when no value
	// was supplied; importance only when both the column and a value exist.
	if schema.Columns.Has(ColumnCategory) {
		insert = append(insert, "category")
		args = append(args, nullableString(category))
	}
	if schema.Columns.Has(ColumnImportance) && importance != nil {
		insert = append(insert, "importance")
		args = append(args, *importance)
	}

	stmt := `INSERT INTO ` + schema.Table + ` (` + strings.Join(insert, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING ` + strings.Join(selectColumns(schema), ", ")
	return stmt, args
}

func buildUpdateStatement(schema Schema, id int64, content, category *string, importance *int64) (string, []any, bool) {
	sets, args := []string{}, []any{}

	if content != nil {
		sets, args = append(sets, "content = "+placeholder(len(args)+1)), append(args, *content)
	}
	if schema.Columns.Has(ColumnCategory) && category != nil {
		sets, args = append(sets, "category = "+placeholder(len(args)+1)), append(args, nullableString(category))
	}
	if schema.Columns.Has(ColumnImportance) && importance != nil {
		sets, args = append(sets, "importance = "+placeholder(len(args)+1)), append(args, *importance)
	}

	if len(sets) == 0 {
		return "", nil, false
	}

	// updated_at moves on every successful update regardless of which
	// fields changed.
	if schema.Columns.Has(ColumnUpdatedAt) {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	}

	args = append(args, id)
	stmt := `UPDATE ` + schema.Table + ` SET ` + strings.Join(sets, ", ") +
		` WHERE id = ` + placeholder(len(args)) +
		` RETURNING ` + strings.Join(selectColumns(schema), ", ")
	return stmt, args, true
}

// nullableString trims the value and maps nil or blank to SQL NULL.
func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return trimmed
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}
