// Package scheduler drains the outbox table and hands events to processors.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Builder-Lawyers/orbiter-backend/internal/application"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/consts"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/errs"
	"github.com/Builder-Lawyers/orbiter-backend/internal/application/events"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/db/repo"
	"github.com/Builder-Lawyers/orbiter-backend/internal/infra/mail"
	dbs "github.com/Builder-Lawyers/orbiter-backend/pkg/db"
	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
	"github.com/Builder-Lawyers/orbiter-backend/pkg/interfaces"
	"github.com/jackc/pgx/v5"
)

type OutboxPoller struct {
	processors *application.Processors
	uowFactory *dbs.UOWFactory
	cfg        *OutboxConfig
	stop       chan struct{}
	done       chan struct{}
}

type OutboxConfig struct {
	Limit       int
	Interval    time.Duration
	MaxAttempts int
}

func NewOutboxConfig() *OutboxConfig {
	return &OutboxConfig{
		Limit:       env.GetInt("SCHEDULER_LIMIT", 5),
		Interval:    env.GetDuration("SCHEDULER_INTERVAL", 5*time.Second),
		MaxAttempts: env.GetInt("CLEANUP_MAX_ATTEMPTS", 10),
	}
}

func NewOutboxPoller(processors *application.Processors, uowFactory *dbs.UOWFactory, cfg *OutboxConfig) *OutboxPoller {
	return &OutboxPoller{
		processors: processors,
		uowFactory: uowFactory,
		cfg:        cfg,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (o *OutboxPoller) Start() {
	slog.Info("Starting outbox poller...")
	defer close(o.done)
	t := time.NewTimer(o.cfg.Interval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	for {
		select {
		case <-t.C:
			o.Poll(ctx)
			// wait after poll finishes
			t.Reset(o.cfg.Interval)
		case <-o.stop:
			slog.Info("Cancelling current execution")
			t.Stop()
			return
		}
	}
}

// Poll claims up to Limit pending events and processes them concurrently.
func (o *OutboxPoller) Poll(ctx context.Context) {
	uow := o.uowFactory.GetUoW()
	tx, err := uow.Begin()
	if err != nil {
		slog.Error("error in poller", "err", err)
		return
	}

	query := `SELECT id, event, status, attempts, payload, created_at FROM orbiter.outbox
		WHERE status = $1 ORDER BY created_at FOR NO KEY UPDATE SKIP LOCKED LIMIT $2`
	rows, err := tx.Query(ctx, query, consts.NotProcessed, o.cfg.Limit)
	if err != nil {
		_ = uow.Rollback()
		slog.Error("error in poller", "err", err)
		return
	}

	var eventsToProcess []db.Outbox
	var eventIDs []int64
	for rows.Next() {
		var event db.Outbox
		if err = rows.Scan(&event.ID, &event.Event, &event.Status, &event.Attempts, &event.Payload, &event.CreatedAt); err != nil {
			slog.Error("error in poller", "err", err)
			continue
		}
		eventIDs = append(eventIDs, int64(event.ID))
		eventsToProcess = append(eventsToProcess, event)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		slog.Error("error reading result sets", "err", err)
	}

	if len(eventsToProcess) == 0 {
		_ = uow.Rollback()
		slog.Debug("no events to process")
		return
	}

	_, err = tx.Exec(ctx, "UPDATE orbiter.outbox SET status = $1 WHERE id = ANY($2)", consts.Processing, eventIDs)
	if err != nil {
		_ = uow.Rollback()
		slog.Error("error setting events status to processing", "err", err)
		return
	}

	if err := uow.Commit(); err != nil {
		slog.Error("err committing", "err", err)
		return
	}

	var wg sync.WaitGroup
	for _, event := range eventsToProcess {
		wg.Add(1)
		go func(ev db.Outbox) {
			defer wg.Done()
			if err := o.handleEvent(ctx, ev); err != nil {
				slog.Error("handler error", "event", ev.ID, "err", err)
			}
		}(event)
	}

	wg.Wait()
	slog.Debug("Finished poller thread processing")
}

func (o *OutboxPoller) handleEvent(ctx context.Context, outbox db.Outbox) error {
	var (
		uow      interfaces.UoW
		tx       pgx.Tx
		err      error
		escalate interfaces.Event
	)

	slog.Info("Handling event", "event", outbox.Event, "id", outbox.ID, "attempt", outbox.Attempts+1)

	switch outbox.Event {
	case events.CleanupStepFailed{}.GetType():
		event := db.MapOutboxModelToCleanupStepFailed(outbox)
		uow, err = o.processors.RetryCleanup.Handle(ctx, event)
		if err != nil {
			alert := mail.CleanupAlert{
				SiteID:   event.SiteID,
				Step:     string(event.Step),
				Target:   event.Target,
				Attempts: outbox.Attempts + 1,
				Reasons:  []string{event.Reason, err.Error()},
			}
			escalate = events.NotifyOperators{Subject: alert.GetSubject(), Body: alert.GetBody()}
		}
	case events.NotifyOperators{}.GetType():
		event := db.MapOutboxModelToNotifyOperators(outbox)
		uow, err = o.processors.NotifyOperators.Handle(ctx, event)
	default:
		slog.Warn("no processor for event", "event", outbox.Event, "id", outbox.ID)
	}

	status, attempts := o.nextStatus(outbox, err)
	if err != nil {
		slog.Error("error in handler", "event", outbox.Event, "id", outbox.ID, "status", status, "err", err)
	}

	if uow == nil {
		var errTx error
		// open new transaction if there was none in event handler
		uow = o.uowFactory.GetUoW()
		tx, errTx = uow.Begin()
		if errTx != nil {
			return errors.Join(err, errTx)
		}
	} else {
		tx = uow.GetTx()
	}

	_, errUpdate := tx.Exec(ctx, "UPDATE orbiter.outbox SET status = $1, attempts = $2 WHERE id = $3", status, attempts, outbox.ID)
	if errUpdate != nil {
		errRollback := uow.Rollback()
		slog.Error("error in poller", "err", errUpdate)
		return errors.Join(errUpdate, errRollback)
	}

	if status == consts.InError && escalate != nil {
		if errInsert := repo.NewEventRepo(tx).InsertEvent(ctx, escalate); errInsert != nil {
			errRollback := uow.Rollback()
			return errors.Join(errInsert, errRollback)
		}
	}

	if err := uow.Commit(); err != nil {
		slog.Error("error in poller", "err", err)
		return err
	}

	slog.Info("processed event", "id", outbox.ID, "status", status)
	return nil
}

// nextStatus puts retryable failures back in the queue until MaxAttempts is
// used up.
func (o *OutboxPoller) nextStatus(outbox db.Outbox, err error) (consts.OutboxStatus, int) {
	attempts := outbox.Attempts + 1
	if err == nil {
		return consts.Processed, attempts
	}
	var r errs.RetryableError
	if errors.As(err, &r) && attempts < o.cfg.MaxAttempts {
		return consts.NotProcessed, attempts
	}
	return consts.InError, attempts
}

func (o *OutboxPoller) Stop() {
	slog.Info("Stopping poller")
	close(o.stop)
	<-o.done
}
