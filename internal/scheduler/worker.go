package scheduler

import (
	"context"
	"fmt"

	"lieux_backend/platform/apperr"
	"lieux_backend/platform/config"
	"lieux_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Resyncer re-exports a lead to the CRM.
type Resyncer interface {
	ResyncLead(ctx context.Context, id uuid.UUID) error
}

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	resyncer Resyncer
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, resyncer Resyncer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		resyncer: resyncer,
		log:      log,
	}

	mux.HandleFunc(TaskLeadCRMResync, w.handleLeadCRMResync)

	return w, nil
}

func (w *Worker) handleLeadCRMResync(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadCRMResyncPayload(task)
	if err != nil {
		return err
	}

	leadID, err := uuid.Parse(payload.LeadID)
	if err != nil {
		return err
	}

	if err := w.resyncer.ResyncLead(ctx, leadID); err != nil {
		// A deleted lead is not worth retrying.
		if apperr.Is(err, apperr.KindNotFound) {
			w.log.Warn("lead resync skipped, lead gone", "lead_id", payload.LeadID)
			return nil
		}
		w.log.Error("lead resync failed", "lead_id", payload.LeadID, "error", err.Error())
		return err
	}
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
