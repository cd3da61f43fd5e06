// The worker binary consumes the asynq task queue. It runs the same leads
// service as the API so CRM re-exports behave identically in both processes.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lieux_backend/internal/events"
	leadsrepo "lieux_backend/internal/leads/repository"
	leadssvc "lieux_backend/internal/leads/service"
	"lieux_backend/internal/odoo"
	"lieux_backend/internal/push"
	"lieux_backend/internal/ratelimit"
	"lieux_backend/internal/scheduler"
	"lieux_backend/platform/config"
	"lieux_backend/platform/db"
	"lieux_backend/platform/logger"
	"lieux_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	pool, err := db.NewPool(connectCtx, cfg)
	cancel()
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	crm := odoo.NewClient(cfg)
	if !crm.IsConfigured() {
		log.Warn("odoo CRM not configured; resync tasks will fail until it is")
	}

	// The worker only runs resync tasks, which never touch the rate limiter.
	// Push and events still fire so a resynced lead behaves like a fresh one.
	eventBus := events.NewInMemoryBus(log)
	pushModule := push.NewModule(pool, validator.New())

	leadsService := leadssvc.New(
		leadsrepo.New(pool),
		ratelimit.NoopLimiter{},
		crm,
		pushModule.Repository(),
		push.NewNotifier(cfg),
		eventBus,
		validator.New(),
		log,
		cfg,
	)

	worker, err := scheduler.NewWorker(cfg, leadsService, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("worker stopped")
}
