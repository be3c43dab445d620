package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-seating-api/internal/handler"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/internal/repository"
	"github.com/noah-isme/exam-seating-api/internal/service"
	"github.com/noah-isme/exam-seating-api/pkg/broker"
	"github.com/noah-isme/exam-seating-api/pkg/cache"
	"github.com/noah-isme/exam-seating-api/pkg/config"
	"github.com/noah-isme/exam-seating-api/pkg/database"
	"github.com/noah-isme/exam-seating-api/pkg/export"
	"github.com/noah-isme/exam-seating-api/pkg/jobs"
	"github.com/noah-isme/exam-seating-api/pkg/storage"
)

type planStore interface {
	Save(ctx context.Context, plan *models.SeatingPlan) error
	Load(ctx context.Context) (*models.SeatingPlan, error)
	Clear(ctx context.Context) error
}

type eventPublisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

type exportStorage interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	CleanupOlderThan(ctx context.Context, ttl time.Duration) ([]string, error)
}

type application struct {
	handlers handler.Handlers
	queue    *jobs.Queue
	exports  *service.ExportJobService
	closers  []func() error
	logger   *zap.Logger
}

func buildApp(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*application, error) {
	app := &application{logger: logr}
	validate := validator.New()
	metrics := service.NewMetricsService()

	plans, checks, err := app.openPlanStore(ctx, cfg)
	if err != nil {
		app.close()
		return nil, err
	}

	facultyStore, err := storage.NewLocalStorage(filepath.Dir(cfg.Faculty.DirectoryFile))
	if err != nil {
		app.close()
		return nil, fmt.Errorf("open faculty directory: %w", err)
	}
	faculty := repository.NewFacultyRepository(facultyStore, filepath.Base(cfg.Faculty.DirectoryFile))

	var events eventPublisher = broker.NopPublisher{}
	if cfg.Events.Enabled {
		publisher := broker.NewAMQPPublisher(cfg.Events.RabbitMQURL, cfg.Events.Queue, logr).
			WithDialTimeout(cfg.Events.DialTimeout)
		app.closers = append(app.closers, publisher.Close)
		events = publisher
	}

	authService := service.NewFacultyAuthService(faculty, validate, logr.Named("auth"), service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	seatingService := service.NewSeatingService(plans, events, metrics, validate, logr.Named("seating"), service.SeatingConfig{
		MaxRoster: cfg.Seating.MaxRoster,
	})

	app.handlers = handler.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Seating:  handler.NewSeatingHandler(seatingService, cfg.Seating.MaxUploadBytes),
		Metrics:  handler.NewMetricsHandler(metrics.Handler(), checks...),
		Tokens:   authService,
		Observer: metrics,
	}

	if cfg.Exports.Enabled {
		if err := app.wireExports(ctx, cfg, plans, metrics, validate); err != nil {
			app.close()
			return nil, err
		}
	}
	return app, nil
}

func (a *application) openPlanStore(ctx context.Context, cfg *config.Config) (planStore, []handler.ReadinessCheck, error) {
	switch cfg.PlanStore.Driver {
	case config.PlanStoreRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		cacheRepo := repository.NewCacheRepository(client, a.logger.Named("cache"))
		a.closers = append(a.closers, cacheRepo.Close)
		return repository.NewRedisPlanRepository(cacheRepo, cfg.PlanStore.Key),
			[]handler.ReadinessCheck{{Name: "redis", Check: cacheRepo.Ping}}, nil
	case config.PlanStorePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, db.Close)
		repo := repository.NewPostgresPlanRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, nil, fmt.Errorf("prepare plan schema: %w", err)
		}
		return repo, []handler.ReadinessCheck{{Name: "postgres", Check: db.PingContext}}, nil
	case config.PlanStoreFile, "":
		store, err := storage.NewLocalStorage(cfg.PlanStore.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open plan directory: %w", err)
		}
		return repository.NewFilePlanRepository(store), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown plan store driver %q", cfg.PlanStore.Driver)
	}
}

func (a *application) wireExports(ctx context.Context, cfg *config.Config, plans planStore, metrics *service.MetricsService, validate *validator.Validate) error {
	var files exportStorage
	switch cfg.Exports.StorageDriver {
	case config.StorageS3:
		objects, err := storage.NewObjectStorage(ctx, cfg.S3)
		if err != nil {
			return fmt.Errorf("open export bucket: %w", err)
		}
		files = objects
	default:
		local, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			return fmt.Errorf("open export directory: %w", err)
		}
		files = local
	}

	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exporter := service.NewExportService(plans, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, a.logger.Named("export"), export.NewCSVExporter(), export.NewPDFExporter())

	jobRepo := repository.NewExportJobRepository(cfg.Exports.SignedURLTTL)
	worker := service.NewExportWorker(jobRepo, exporter, metrics, a.logger.Named("export_worker"))
	a.queue = jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:     cfg.Exports.WorkerConcurrency,
		MaxRetries:  cfg.Exports.WorkerRetries,
		OnExhausted: worker.Exhausted,
		Logger:      a.logger,
	})
	metrics.TrackQueueDepth("exports", a.queue.Depth)
	a.exports = service.NewExportJobService(jobRepo, plans, a.queue, exporter, validate, a.logger.Named("export_jobs"), service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	a.handlers.Export = handler.NewExportHandler(a.exports)
	return nil
}

// startBackground launches the export workers and the retention sweep.
func (a *application) startBackground(ctx context.Context) {
	if a.queue == nil {
		return
	}
	a.queue.Start(ctx)
	a.exports.RecoverPendingJobs(ctx)
	a.exports.StartCleanup(ctx)
}

func (a *application) close() {
	if a.queue != nil {
		a.queue.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close dependency", zap.Error(err))
		}
	}
}
