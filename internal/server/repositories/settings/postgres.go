// Package settings implements the site_settings repository over PostgreSQL.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sitedir/internal/common"
	"github.com/dmitrijs2005/sitedir/internal/dbx"
	"github.com/dmitrijs2005/sitedir/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the setting for (category, key) or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, category, key string) (*models.Setting, error) {
	query := `SELECT category, key, value, updated_at FROM site_settings WHERE category=$1 AND key=$2`

	s := &models.Setting{}
	err := r.db.QueryRowContext(ctx, query, category, key).Scan(&s.Category, &s.Key, &s.Value, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select setting: %w", err)
	}
	return s, nil
}

// ListByCategory returns every setting under category ordered by key.
func (r *PostgresRepository) ListByCategory(ctx context.Context, category string) ([]*models.Setting, error) {
	query := `SELECT category, key, value, updated_at FROM site_settings WHERE category=$1 ORDER BY key`

	rows, err := r.db.QueryContext(ctx, query, category)
	if err != nil {
		return nil, fmt.Errorf("failed to select settings: %w", err)
	}
	defer rows.Close()

	var result []*models.Setting
	for rows.Next() {
		var item models.Setting
		if err := rows.Scan(&item.Category, &item.Key, &item.Value, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Upsert creates or replaces the value for (category, key).
func (r *PostgresRepository) Upsert(ctx context.Context, s *models.Setting) error {
	query := `
		INSERT INTO site_settings (category, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (category, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, s.Category, s.Key, s.Value); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes (category, key). Deleting a missing entry returns
// common.ErrorNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, category, key string) error {
	query := `DELETE FROM site_settings WHERE category=$1 AND key=$2`

	res, err := r.db.ExecContext(ctx, query, category, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
