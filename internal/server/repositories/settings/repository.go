package settings

import (
	"context"

	"github.com/dmitrijs2005/sitedir/internal/server/models"
)

// Repository is the persisted settings store.
type Repository interface {
	Get(ctx context.Context, category, key string) (*models.Setting, error)
	ListByCategory(ctx context.Context, category string) ([]*models.Setting, error)
	Upsert(ctx context.Context, s *models.Setting) error
	Delete(ctx context.Context, category, key string) error
}
