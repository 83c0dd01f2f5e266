package jobs

import (
	"context"
	"time"

	"rental-ledger-backend/internal/config"
	"rental-ledger-backend/internal/logger"
	"rental-ledger-backend/internal/service"
)

// completionBatch bounds one CompleteElapsedRentals pass
const completionBatch = 500

// NotificationDispatcher drains the notification outbox
type NotificationDispatcher interface {
	DispatchPending(ctx context.Context) (int, error)
}

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	services *Services
	config   *config.Config
	timeout  time.Duration
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Booking    service.BookingService
	Ledger     service.LedgerService
	Dispatcher NotificationDispatcher
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		services: services,
		config:   cfg,
		timeout:  10 * time.Minute,
	}
}

// Config returns the configuration the jobs were built with
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery and a deadline
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func(ctx context.Context)) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), jr.timeout)
	defer cancel()

	logger.Info("Starting job", "job", jobName)
	start := time.Now()
	jobFunc(ctx)
	logger.Info("Job completed", "job", jobName, "duration", time.Since(start))
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.CompleteElapsedRentals()
	jr.DispatchNotifications()
	jr.ReconcileLedger()
}
