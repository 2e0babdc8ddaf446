package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/audit"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/cache"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/config"
	dbpkg "github.com/BruksfildServices01/kingdom-dashboard/internal/db"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/diagnostics"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/domain/view"
	infraRepo "github.com/BruksfildServices01/kingdom-dashboard/internal/infra/repository"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/market"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/narrative"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/schema"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/source"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/storage"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/usecase/dashboard"
)

// App holds the process-wide singletons. Optional collaborators are nil
// when their configuration is absent.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Mapping *schema.Mapping
	Backend source.Backend
	Loader  *source.Loader
	Cache   *cache.Cache
	Data    *dashboard.Data

	// Model is nil without GOOGLE_API_KEY.
	Model    *narrative.GenAIModel
	Narrator *narrative.Narrator

	Audit     *audit.Dispatcher
	AuditRepo *infraRepo.AuditGormRepository
	Archiver  storage.Archiver

	Market      *market.Loader
	Diagnostics *diagnostics.Runner

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Logger: logger}

	mapping, err := schema.Load(cfg.SchemaFile)
	if err != nil {
		return nil, err
	}
	app.Mapping = mapping

	// ======================================================
	// SOURCE + CACHE
	// ======================================================

	switch cfg.DataSource {
	case config.SourceHTTP:
		app.Backend = source.NewHTTPBackend(cfg.APIBaseURL, mapping, cfg.SourceTimeout)
	default:
		app.Backend = source.NewFileBackend(cfg.DataDir, mapping)
	}
	app.Loader = source.NewLoader(app.Backend, mapping, source.LoaderOptions{
		Timeout: cfg.SourceTimeout,
		Strict:  cfg.SchemaStrict,
	}, logger.Named("source"))

	var store cache.Store = cache.NewMemoryStore()
	if cfg.RedisAddr != "" {
		rs, err := cache.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warn("redis unavailable, using in-process cache", zap.Error(err))
		} else {
			store = rs
			app.closers = append(app.closers, rs.Close)
		}
	}
	app.Cache = cache.New(store, cfg.CacheTTL, logger.Named("cache"))
	app.Data = dashboard.NewData(app.Loader, app.Cache, view.DefaultOptions())
	app.Market = market.NewLoader(cfg.SourceTimeout*3, app.Cache)

	// ======================================================
	// GENERATIVE MODEL
	// ======================================================

	var model narrative.Model
	var lister diagnostics.ModelLister
	gm, err := narrative.NewGenAIModel(ctx, cfg.GoogleAPIKey, cfg.GenAIModel, cfg.GenAIImageModel)
	switch {
	case errors.Is(err, narrative.ErrNotConfigured):
		logger.Info("generative model not configured")
	case err != nil:
		logger.Warn("generative model unavailable", zap.Error(err))
	default:
		app.Model = gm
		model = gm
		lister = gm
	}
	app.Narrator = narrative.NewNarrator(model, cfg.GenAITimeout, logger.Named("narrative"))
	app.Diagnostics = diagnostics.NewRunner(lister, app.Backend, mapping, diagnostics.DefaultTimeout)

	// ======================================================
	// AUDIT + ARCHIVE
	// ======================================================

	var sinks []audit.Sink
	if cfg.DBUrl != "" {
		gdb, err := dbpkg.NewDB(cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() error { return dbpkg.Close(gdb) })
		app.AuditRepo = infraRepo.NewAuditGormRepository(gdb)
		sinks = append(sinks, audit.New(app.AuditRepo))
	}
	if cfg.KafkaBroker != "" {
		ks := audit.NewKafkaSink(cfg.KafkaBroker, cfg.KafkaTopic)
		app.closers = append(app.closers, ks.Close)
		sinks = append(sinks, ks)
	}
	app.Audit = audit.NewDispatcher(logger.Named("audit"), sinks...)

	if cfg.S3Bucket != "" {
		arch, err := storage.NewS3Archiver(storage.S3Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.AWSKeyID,
			SecretKey: cfg.AWSSecret,
		})
		if err != nil {
			return nil, err
		}
		app.Archiver = arch
	}

	logger.Info("application ready",
		zap.String("source", app.Backend.Descriptor()),
		zap.Bool("generative", app.Model != nil),
		zap.Int("audit_sinks", len(sinks)),
		zap.Bool("archive", app.Archiver != nil),
	)
	return app, nil
}

// GenerateReport builds the report use case over the app singletons.
func (a *App) GenerateReport() *dashboard.GenerateReport {
	return dashboard.NewGenerateReport(a.Data, a.Narrator, a.Archiver, a.Audit, a.Config.Timezone, a.Logger.Named("report"))
}

// Close drains the audit queue before closing sinks and stores.
func (a *App) Close() error {
	if a.Audit != nil {
		a.Audit.Close()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close: %w", errors.Join(errs...))
	}
	return nil
}
