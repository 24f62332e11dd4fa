// Package worker runs the console's scheduled jobs: publishing the audit
// outbox and periodic cleanup.
package worker

import (
	"context"
	"time"

	"github.com/robfig/cron"

	"github.com/madhava-poojari/jobs-admin-console/internal/audit"
	"github.com/madhava-poojari/jobs-admin-console/internal/logger"
	"github.com/madhava-poojari/jobs-admin-console/internal/models"
)

const (
	workerName    = "ConsoleCronWorker"
	outboxBatch   = 100
	jobTimeout    = 2 * time.Minute
	processedKeep = 7 * 24 * time.Hour
)

type OutboxStore interface {
	PendingEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	MarkEventProcessed(ctx context.Context, id uint) error
	BumpEventRetry(ctx context.Context, id uint) error
	PurgeProcessedEvents(ctx context.Context, cutoff time.Time) (int64, error)
}

type TokenStore interface {
	DeleteExpiredTokens(ctx context.Context) (int64, error)
}

type ExportPruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int, error)
}

type Schedules struct {
	Outbox          string
	Maintenance     string
	ExportRetention time.Duration
}

type Worker struct {
	cron      *cron.Cron
	schedules Schedules
	outbox    OutboxStore
	publisher audit.Publisher
	tokens    TokenStore
	exports   ExportPruner
	log       *logger.Logger
	now       func() time.Time
}

func New(s Schedules, outbox OutboxStore, publisher audit.Publisher, tokens TokenStore, exports ExportPruner, log *logger.Logger) *Worker {
	if log == nil {
		log = logger.Nop()
	}
	return &Worker{
		cron:      cron.New(),
		schedules: s,
		outbox:    outbox,
		publisher: publisher,
		tokens:    tokens,
		exports:   exports,
		log:       log.Named("worker"),
		now:       time.Now,
	}
}

func (w *Worker) Name() string { return workerName }

// Start registers both jobs and starts the scheduler in its own goroutine.
func (w *Worker) Start() error {
	if err := w.cron.AddFunc(w.schedules.Outbox, func() { w.runJob("outbox", w.DispatchOutbox) }); err != nil {
		w.log.Errorf(err, "Could not add outbox job to %s", workerName)
		return err
	}
	if err := w.cron.AddFunc(w.schedules.Maintenance, func() { w.runJob("maintenance", w.Maintain) }); err != nil {
		w.log.Errorf(err, "Could not add maintenance job to %s", workerName)
		return err
	}
	w.cron.Start()
	w.log.Infof("%s started (outbox %q, maintenance %q)", workerName, w.schedules.Outbox, w.schedules.Maintenance)
	return nil
}

func (w *Worker) Stop() {
	w.cron.Stop()
}

func (w *Worker) runJob(name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		w.log.Errorf(err, "%s job failed", name)
	}
}

// DispatchOutbox publishes one batch of pending events. A publish failure
// bumps that event's retry counter and moves on to the next event.
func (w *Worker) DispatchOutbox(ctx context.Context) error {
	events, err := w.outbox.PendingEvents(ctx, outboxBatch)
	if err != nil {
		return err
	}
	for _, e := range events {
		if err := w.publisher.Publish(ctx, audit.NewMessage(e)); err != nil {
			w.log.Errorf(err, "Can't publish event %s", e.EventID)
			if err := w.outbox.BumpEventRetry(ctx, e.ID); err != nil {
				return err
			}
			continue
		}
		if err := w.outbox.MarkEventProcessed(ctx, e.ID); err != nil {
			return err
		}
	}
	return nil
}

// Maintain drops expired refresh tokens, old exports and published events.
func (w *Worker) Maintain(ctx context.Context) error {
	now := w.now()
	n, err := w.tokens.DeleteExpiredTokens(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		w.log.Infof("deleted %d expired refresh tokens", n)
	}

	if w.exports != nil && w.schedules.ExportRetention > 0 {
		pruned, err := w.exports.Prune(ctx, now.Add(-w.schedules.ExportRetention))
		if err != nil {
			return err
		}
		if pruned > 0 {
			w.log.Infof("pruned %d exports", pruned)
		}
	}

	if _, err := w.outbox.PurgeProcessedEvents(ctx, now.Add(-processedKeep)); err != nil {
		return err
	}
	return nil
}
