// Package app wires configuration, storage and services together and
// exposes them through the ventanita command line.
package app

import (
	"context"
	"fmt"

	"ventanita/internal/archive"
	"ventanita/internal/blocks"
	"ventanita/internal/config"
	"ventanita/internal/logger"
	mcpserver "ventanita/internal/mcp"
	"ventanita/internal/metrics"
	"ventanita/internal/schemaorg"
	"ventanita/internal/service"
	"ventanita/internal/storage"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// App holds every long-lived component of a running CMS.
type App struct {
	cfg *config.Config
	log *logger.Logger

	db       *storage.DB
	registry *blocks.Registry
	metrics  *metrics.Collector

	pages     *service.PageService
	content   *service.ContentService
	media     *service.MediaService
	scheduler *service.Scheduler
	importer  *service.Importer

	// nil when no archive is configured
	archiver *archive.Archiver
	sink     *archive.MongoSink

	events service.Emitters
}

// New opens storage and builds the services described by cfg.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{
		cfg:      cfg,
		log:      log,
		db:       db,
		registry: blocks.NewStandardRegistry(),
		metrics:  metrics.New(),
	}
	a.events = service.Emitters{service.LogEmitter{Log: log}}

	mediaStore := storage.NewMediaStore(db)

	// Services hold the address of the fan-out so emitters appended below
	// (the archive needs the content service) still receive events.
	a.pages = service.NewPageService(
		storage.NewPageStore(db),
		storage.NewRevisionStore(db),
		a.registry,
		&a.events,
		a.metrics,
		log.With("component", "pages"),
		cfg.Site.DefaultLocale,
		cfg.Site.Locales,
	)
	a.content, err = service.NewContentService(
		a.pages,
		mediaStore,
		a.registry,
		schemaorg.New(siteFromConfig(cfg.Site)),
		cfg.Site.BaseURL,
		cfg.Cache.GraphSize,
		a.metrics,
		log.With("component", "content"),
	)
	if err != nil {
		db.Close()
		return nil, err
	}
	// Ahead of the archive so it renders from a fresh cache.
	a.events = append(a.events, a.content)
	a.media = service.NewMediaService(mediaStore, &a.events)
	a.scheduler = service.NewScheduler(a.pages, a.metrics, log.With("component", "scheduler"))
	a.importer = service.NewImporter(a.pages, mediaStore, a.metrics, log.With("component", "importer"))

	if cfg.Archive.MongoURI != "" {
		sink, err := archive.Dial(ctx, cfg.Archive)
		if err != nil {
			db.Close()
			return nil, err
		}
		a.sink = sink
		a.archiver = archive.NewArchiver(a.content, sink, cfg.Archive.Timeout, a.metrics, log.With("component", "archive"))
		a.events = append(a.events, a.archiver)
		log.Info("structured data archive enabled", "database", cfg.Archive.Database, "collection", cfg.Archive.Collection)
	}
	return a, nil
}

func siteFromConfig(c config.SiteConfig) schemaorg.Site {
	return schemaorg.Site{
		Name:               c.Name,
		BaseURL:            c.BaseURL,
		LicensePath:        c.LicensePath,
		AcquireLicensePath: c.AcquireLicensePath,
		LogoURL:            c.LogoURL,
		SupportEmail:       c.SupportEmail,
		SupportPhone:       c.SupportPhone,
		SupportAddress:     c.SupportAddress,
		AddressLocality:    c.AddressLocality,
		AddressRegion:      c.AddressRegion,
		AddressCountry:     c.AddressCountry,
		PostalCode:         c.PostalCode,
		SameAs:             c.SameAs,
	}
}

// MCP builds the MCP server over the app's services.
func (a *App) MCP() *mcpserver.Server {
	deps := mcpserver.Deps{
		Pages:    a.pages,
		Content:  a.content,
		Media:    a.media,
		Registry: a.registry,
		Metrics:  a.metrics,
		Log:      a.log.With("component", "mcp"),
		Version:  Version,
	}
	if a.archiver != nil {
		deps.History = a.archiver
	}
	return mcpserver.New(deps)
}

// Shutdown stops background work and closes connections.
func (a *App) Shutdown(ctx context.Context) {
	a.scheduler.Stop()
	a.scheduler.WaitRunning(ctx)
	a.importer.Stop()

	if a.archiver != nil {
		a.archiver.Wait()
	}
	if a.sink != nil {
		if err := a.sink.Close(ctx); err != nil {
			a.log.Warn("close archive", "error", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	a.log.Sync()
}
