package server

import (
	"database/sql"

	"github.com/dmitrijs2005/sitedir/internal/logging"
	"github.com/dmitrijs2005/sitedir/internal/server/config"
	"github.com/dmitrijs2005/sitedir/internal/server/metrics"
	"github.com/dmitrijs2005/sitedir/internal/server/objectstore"
	"github.com/dmitrijs2005/sitedir/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sitedir/internal/server/settings"
)

// Core owns the long-lived settings and object-storage services. Build one
// per process and hand it to whoever needs it.
type Core struct {
	Resolver *settings.Resolver
	Editor   *settings.Editor
	Factory  *objectstore.Factory
	Uploader *objectstore.Uploader
	Signer   *objectstore.Signer
	Deleter  *objectstore.Deleter
}

// NewCore wires the services. With a nil db the resolver only consults the
// environment and Editor is nil.
func NewCore(db *sql.DB, rm repomanager.RepositoryManager, c *config.Config, logger logging.Logger, m *metrics.Metrics) *Core {
	var store settings.Store
	if db != nil {
		store = rm.Settings(db)
	}

	resolver := settings.NewResolver(store,
		settings.WithTTL(c.SettingsCacheTTL),
		settings.WithLogger(logger),
		settings.WithMetrics(m),
	)

	factory := objectstore.NewFactory(resolver, objectstore.Endpoint{
		BaseURL:      c.S3BaseEndpoint,
		UsePathStyle: c.S3UsePathStyle,
	})

	opts := []objectstore.Option{
		objectstore.WithLogger(logger),
		objectstore.WithMetrics(m),
		objectstore.WithUploadURLExpiry(c.UploadURLExpiry),
		objectstore.WithSignURLExpiry(c.SignURLExpiry),
	}
	signer := objectstore.NewSigner(factory, opts...)

	core := &Core{
		Resolver: resolver,
		Factory:  factory,
		Signer:   signer,
		Uploader: objectstore.NewUploader(factory, signer, opts...),
		Deleter:  objectstore.NewDeleter(factory, opts...),
	}
	if db != nil {
		core.Editor = settings.NewEditor(db, rm, resolver)
	}
	return core
}
