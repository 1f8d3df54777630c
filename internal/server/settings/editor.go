package settings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/sitedir/internal/dbx"
	"github.com/dmitrijs2005/sitedir/internal/server/models"
	"github.com/dmitrijs2005/sitedir/internal/server/repositories/repomanager"
)

// Editor is the administration write path. After every successful write it
// invalidates the Resolver cache so readers in this process see new values
// immediately instead of after the TTL.
type Editor struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	resolver    *Resolver
}

func NewEditor(db *sql.DB, repomanager repomanager.RepositoryManager, resolver *Resolver) *Editor {
	return &Editor{db: db, repomanager: repomanager, resolver: resolver}
}

// Set upserts all entries in one transaction.
func (e *Editor) Set(ctx context.Context, entries ...models.Setting) error {
	if len(entries) == 0 {
		return nil
	}

	err := dbx.WithTx(ctx, e.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := e.repomanager.Settings(tx)
		for i := range entries {
			if err := repo.Upsert(ctx, &entries[i]); err != nil {
				return fmt.Errorf("set %s.%s: %w", entries[i].Category, entries[i].Key, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	e.resolver.Invalidate()
	return nil
}

// Unset deletes (category, key). A missing entry returns common.ErrorNotFound.
func (e *Editor) Unset(ctx context.Context, category, key string) error {
	if err := e.repomanager.Settings(e.db).Delete(ctx, category, key); err != nil {
		return err
	}
	e.resolver.Invalidate()
	return nil
}
