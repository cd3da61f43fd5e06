package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lieux_backend/internal/adapters/storage"
	"lieux_backend/internal/auth"
	"lieux_backend/internal/email"
	"lieux_backend/internal/events"
	apphttp "lieux_backend/internal/http"
	"lieux_backend/internal/http/router"
	"lieux_backend/internal/leads"
	leadsrepo "lieux_backend/internal/leads/repository"
	leadssvc "lieux_backend/internal/leads/service"
	"lieux_backend/internal/notification"
	"lieux_backend/internal/odoo"
	"lieux_backend/internal/push"
	"lieux_backend/internal/ratelimit"
	"lieux_backend/internal/scheduler"
	"lieux_backend/internal/venues"
	venuesrepo "lieux_backend/internal/venues/repository"
	venuessvc "lieux_backend/internal/venues/service"
	"lieux_backend/migrations"
	"lieux_backend/platform/config"
	"lieux_backend/platform/db"
	"lieux_backend/platform/logger"
	"lieux_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// Redis backs the contact-form quota and the task queue. Without it the
	// quota falls back to allow-all and resync enqueueing is unavailable.
	var limiter ratelimit.Limiter = ratelimit.NoopLimiter{}
	var schedClient *scheduler.Client
	if cfg.RedisURL != "" {
		rdb, err := ratelimit.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize redis client", "error", err)
			panic("failed to initialize redis client: " + err.Error())
		}
		defer rdb.Close()
		limiter = ratelimit.NewRedisLimiter(rdb, "contact", cfg.GetContactRateLimit(), cfg.GetContactRateWindow())

		schedClient, err = scheduler.NewClient(cfg)
		if err != nil {
			log.Error("failed to initialize task queue client", "error", err)
			panic("failed to initialize task queue client: " + err.Error())
		}
		defer schedClient.Close()
	} else {
		log.Warn("REDIS_URL not configured; contact rate limiting and CRM resync queue disabled")
	}

	// Object storage for venue images (MinIO). Optional in development.
	var store storage.ObjectStore
	if cfg.IsMinIOEnabled() {
		minioStore, err := storage.NewMinIOStore(cfg)
		if err != nil {
			log.Error("failed to initialize object storage", "error", err)
			panic("failed to initialize object storage: " + err.Error())
		}
		if err := withRetry(ctx, log, "ensure venue-images bucket", 5, 2*time.Second, func() error {
			return minioStore.EnsureBucketExists(ctx, cfg.GetMinioBucketVenueImages())
		}); err != nil {
			log.Error("failed to ensure storage bucket exists", "error", err, "bucket", cfg.GetMinioBucketVenueImages())
			panic("failed to ensure storage bucket exists: " + err.Error())
		}
		store = minioStore
		log.Info("object storage initialized", "venueImagesBucket", cfg.GetMinioBucketVenueImages())
	} else {
		log.Warn("MinIO not configured; venue image uploads disabled")
	}

	crm := odoo.NewClient(cfg)
	if crm.IsConfigured() {
		log.Info("odoo CRM connector configured", "url", cfg.GetOdooURL())
	} else {
		log.Warn("odoo CRM not configured; leads will not sync")
	}

	sender := email.NewSender(cfg)
	notifier := push.NewNotifier(cfg)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	pushModule := push.NewModule(pool, val)

	leadsService := leadssvc.New(
		leadsrepo.New(pool),
		limiter,
		crm,
		pushModule.Repository(),
		notifier,
		eventBus,
		val,
		log,
		cfg,
	)
	leadsModule := leads.NewModule(leadsService, schedClient, log)

	venuesService := venuessvc.New(venuesrepo.New(pool), store, cfg.GetMinioBucketVenueImages(), eventBus, val, log)
	venuesModule := venues.NewModule(venuesService)

	authModule := auth.NewModule(auth.NewService(cfg, log), val)

	// Operator email notification subscribes to domain events (not HTTP-facing)
	notification.New(sender, leadsService, cfg, log).Subscribe(eventBus)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			authModule,
			leadsModule,
			venuesModule,
			pushModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
