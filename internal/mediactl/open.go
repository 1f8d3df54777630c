package mediactl

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/sitedir/internal/logging"
	"github.com/dmitrijs2005/sitedir/internal/server"
	"github.com/dmitrijs2005/sitedir/internal/server/config"
	"github.com/dmitrijs2005/sitedir/internal/server/repositories/repomanager"
)

// openPostgres is a seam for tests.
var openPostgres = repomanager.OpenPostgres

// Open loads the dotenv file, connects to the settings database unless
// g.NoDB is set, and wires the services. The returned func closes the
// database.
func Open(ctx context.Context, g *Globals, out, logOut io.Writer) (*Services, func() error, error) {
	if err := config.LoadEnvFile(g.EnvFile); err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", g.EnvFile, err)
	}

	logger, err := logging.NewLogger(logOut, g.LogFormat, g.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.DatabaseDSN = g.DatabaseDSN
	cfg.S3BaseEndpoint = g.Endpoint
	cfg.S3UsePathStyle = g.PathStyle

	rm := repomanager.NewPostgresRepositoryManager()
	closeDB := func() error { return nil }

	var db *sql.DB
	if !g.NoDB {
		db, err = openPostgres(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrations error: %w", err)
		}
		closeDB = db.Close
	}

	core := server.NewCore(db, rm, cfg, logger, nil)

	s := &Services{
		Uploader: core.Uploader,
		Signer:   core.Signer,
		Deleter:  core.Deleter,
		Reader:   core.Resolver,
		Out:      out,
		Logger:   logger,
	}
	if core.Editor != nil {
		s.Writer = core.Editor
	}
	return s, closeDB, nil
}
