package notification

import (
	"context"
	"time"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
	"rental-ledger-backend/internal/repository"
)

type DispatcherOptions struct {
	BatchSize   int
	MaxAttempts int
}

// Dispatcher drains the outbox. Each event is claimed, written to the inbox and
// marked sent in one transaction, so the inbox gets it exactly once; external
// channels are attempted after that commit and never retried.
type Dispatcher struct {
	store       repository.Store
	channels    []Channel
	batchSize   int
	maxAttempts int
	now         func() time.Time
	kick        chan struct{}
}

func NewDispatcher(store repository.Store, opts DispatcherOptions, channels ...Channel) *Dispatcher {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	return &Dispatcher{
		store:       store,
		channels:    channels,
		batchSize:   opts.BatchSize,
		maxAttempts: opts.MaxAttempts,
		now:         func() time.Time { return time.Now().UTC() },
		kick:        make(chan struct{}, 1),
	}
}

// Kick requests a dispatch pass without blocking; kicks coalesce.
func (d *Dispatcher) Kick() {
	select {
	case d.kick <- struct{}{}:
	default:
	}
}

// Run dispatches on every kick until ctx is done
func (d *Dispatcher) Run(ctx context.Context) {
	logger.Info("Notification dispatcher started", "channels", len(d.channels))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification dispatcher stopped")
			return
		case <-d.kick:
			if _, err := d.DispatchPending(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Notification dispatch failed", "error", err)
			}
		}
	}
}

// DispatchPending delivers one batch of pending events and returns how many were sent
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	events, err := d.store.Outbox().ListPending(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		delivered, err := d.deliverInApp(ctx, e)
		if err != nil {
			giveUp := e.Attempts+1 >= d.maxAttempts
			logger.Warn("Failed to deliver notification", "eventID", e.ID, "attempt", e.Attempts+1, "giveUp", giveUp, "error", err)
			if markErr := d.store.Outbox().MarkFailed(ctx, e.ID, err.Error(), giveUp); markErr != nil {
				logger.Error("Failed to record notification failure", "eventID", e.ID, "error", markErr)
			}
			continue
		}
		if !delivered {
			continue
		}

		d.fanOut(ctx, e)
		sent++
	}

	if sent > 0 {
		logger.Debug("Dispatched notifications", "count", sent)
	}
	return sent, nil
}

func (d *Dispatcher) deliverInApp(ctx context.Context, e domain.OutboxEvent) (bool, error) {
	delivered := false
	err := d.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		claimed, err := tx.Outbox().Claim(ctx, e.ID)
		if err != nil || !claimed {
			return err
		}
		n := e.Notification()
		if err := tx.Notifications().Create(ctx, &n); err != nil {
			return err
		}
		if err := tx.Outbox().MarkSent(ctx, e.ID, d.now()); err != nil {
			return err
		}
		delivered = true
		return nil
	})
	return delivered, err
}

func (d *Dispatcher) fanOut(ctx context.Context, e domain.OutboxEvent) {
	if len(d.channels) == 0 {
		return
	}
	recipient, err := d.store.Users().GetByID(ctx, e.UserID)
	if err != nil {
		logger.Warn("Skipping external channels, recipient lookup failed", "eventID", e.ID, "userID", e.UserID, "error", err)
		return
	}

	n := e.Notification()
	for _, ch := range d.channels {
		logger.ExternalServiceCall(ch.Name(), "Deliver", "eventID", e.ID, "userID", e.UserID)
		err := ch.Deliver(ctx, recipient, n)
		logger.ExternalServiceResult(ch.Name(), "Deliver", err, "eventID", e.ID)
	}
}
