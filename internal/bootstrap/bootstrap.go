package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vasii/catalog/internal/config"
	"github.com/vasii/catalog/internal/core/collection"
	"github.com/vasii/catalog/internal/core/inventory"
	"github.com/vasii/catalog/internal/core/ports"
	"github.com/vasii/catalog/internal/core/usecase"
	"github.com/vasii/catalog/internal/infrastructure/extractor"
	"github.com/vasii/catalog/internal/infrastructure/queue/nats"
	"github.com/vasii/catalog/internal/infrastructure/repository/postgres"
	"github.com/vasii/catalog/internal/infrastructure/resilience"
	"github.com/vasii/catalog/internal/infrastructure/staging/memory"
	redisstaging "github.com/vasii/catalog/internal/infrastructure/staging/redis"
	"github.com/vasii/catalog/internal/infrastructure/storage/localfs"
	s3storage "github.com/vasii/catalog/internal/infrastructure/storage/s3"
)

type App struct {
	Config config.Config

	Queue       ports.MessageQueue
	Uploads     ports.UploadRepository
	Collections *collection.Catalog

	IngestUC  ports.InventoryIngestor
	ProcessUC ports.InventoryProcessor
	ReviewUC  *usecase.ReviewInventoryUseCase
	CatalogUC ports.CatalogQueryService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	collections, err := collection.LoadCatalog(cfg.CollectionsFile)
	if err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}

	executor := resilience.NewExecutor(resilienceConfig(cfg))

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	uploads := postgres.NewUploadRepository(db)
	products := postgres.NewProductRepository(db, executor)

	storage, err := newObjectStorage(ctx, cfg, executor)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	staging, closeStaging, err := newStagingStore(ctx, cfg, executor)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init staging store: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		QueueGroup:         cfg.NATSQueueGroup,
		ResilienceExecutor: executor,
	})
	if err != nil {
		closeStaging()
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	classifier := collection.NewRuleClassifier()
	cache := inventory.NewCache(cfg.ParseCacheItems)

	ingestUC := usecase.NewIngestInventoryUseCase(uploads, storage, queue, cache, classifier)
	processUC := usecase.NewProcessInventoryUseCase(uploads, extractor.New(storage), staging, cache, classifier, cfg.AutoClassify)
	reviewUC := usecase.NewReviewInventoryUseCase(uploads, staging, products, classifier)
	catalogUC := usecase.NewCatalogUseCase(products)

	return &App{
		Config:      cfg,
		Queue:       queue,
		Uploads:     uploads,
		Collections: collections,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		ReviewUC:  reviewUC,
		CatalogUC: catalogUC,

		closeFn: func() {
			queue.Close()
			closeStaging()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func resilienceConfig(cfg config.Config) resilience.Config {
	rc := resilience.DefaultConfig()
	rc.RetryMaxAttempts = cfg.RetryMaxAttempts
	rc.RetryInitialBackoff = cfg.RetryInitialBackoff
	rc.RetryMaxBackoff = cfg.RetryMaxBackoff
	rc.BreakerEnabled = cfg.BreakerEnabled
	rc.BreakerFailureRatio = cfg.BreakerFailureRatio
	rc.BreakerOpenTimeout = cfg.BreakerOpenTimeout
	return rc
}

func newObjectStorage(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.ObjectStorage, error) {
	switch cfg.StorageBackend {
	case "", "localfs":
		storage, err := localfs.New(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return storage, nil
	case "s3":
		client, err := s3storage.NewClient(ctx, s3storage.ClientOptions{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PathStyle: cfg.S3PathStyle,
		})
		if err != nil {
			return nil, err
		}
		storage, err := s3storage.New(client, s3storage.Options{
			Bucket:             cfg.S3Bucket,
			Prefix:             cfg.S3Prefix,
			ResilienceExecutor: executor,
		})
		if err != nil {
			return nil, err
		}
		return storage, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// newStagingStore uses Redis when REDIS_URL is set. The in-process store
// only works when the API and worker share a process.
func newStagingStore(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.StagingStore, func(), error) {
	if cfg.RedisURL == "" {
		slog.Warn("staging_store_in_memory", "reason", "REDIS_URL is not set")
		return memory.NewStore(cfg.StagingTTL), func() {}, nil
	}

	client, err := redisstaging.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	store := redisstaging.NewStore(client, redisstaging.Options{
		Prefix:             cfg.RedisKeyPrefix,
		TTL:                cfg.StagingTTL,
		ResilienceExecutor: executor,
	})
	return store, func() { _ = client.Close() }, nil
}
