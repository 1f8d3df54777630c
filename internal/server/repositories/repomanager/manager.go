package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sitedir/internal/dbx"
	"github.com/dmitrijs2005/sitedir/internal/server/repositories/settings"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Settings(db dbx.DBTX) settings.Repository
}
