// Package app assembles the store, services and notification dispatcher shared
// by the server, the cronjob runner and ledgerctl.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"rental-ledger-backend/internal/config"
	"rental-ledger-backend/internal/jobs"
	"rental-ledger-backend/internal/logger"
	"rental-ledger-backend/internal/notification"
	"rental-ledger-backend/internal/repository"
	"rental-ledger-backend/internal/repository/memory"
	"rental-ledger-backend/internal/repository/postgres"
	"rental-ledger-backend/internal/security"
	"rental-ledger-backend/internal/service"
)

type App struct {
	Config       *config.Config
	Store        repository.Store
	Tokens       security.TokenManager
	Dispatcher   *notification.Dispatcher
	Booking      service.BookingService
	Ledger       service.LedgerService
	Review       service.ReviewService
	Notification service.NotificationService

	db *sql.DB // nil for the memory driver
}

// New opens the configured store and wires every service on top of it
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Tokens: TokenManager(cfg)}

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	channels, err := buildChannels(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Dispatcher = notification.NewDispatcher(a.Store, notification.DispatcherOptions{
		BatchSize:   cfg.Notification.BatchSize,
		MaxAttempts: cfg.Notification.MaxAttempts,
	}, channels...)

	a.Booking = service.NewBookingService(a.Store, service.NewAvailabilityChecker(a.Store.Rentals()), service.BookingOptions{
		Tiers:        cfg.DiscountTiers(),
		CancelCutoff: cfg.CancelCutoff(),
		BaseURL:      cfg.Notification.BaseURL,
		Signal:       a.Dispatcher,
	})
	a.Ledger = service.NewLedgerService(a.Store)
	a.Review = service.NewReviewService(a.Store.CompletedRentals(), a.Store.Reviews())
	a.Notification = service.NewNotificationService(a.Store.Notifications())
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	cfg := a.Config
	if cfg.Database.Driver == "memory" {
		logger.Warn("Using in-memory store; data is lost on exit")
		a.Store = memory.NewStore()
		return nil
	}

	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established", "host", cfg.Database.Host, "database", cfg.Database.Database)

	if cfg.Database.AutoMigrate {
		if err := postgres.Migrate(cfg.Database.MigrationsDir, cfg.GetDatabaseConnectionString()); err != nil {
			db.Close()
			return err
		}
	}

	a.db = db
	a.Store = postgres.NewStore(db, cfg.Booking.LockTimeout)
	return nil
}

func buildChannels(ctx context.Context, cfg *config.Config) ([]notification.Channel, error) {
	var channels []notification.Channel

	if sg := cfg.Notification.SendGrid; sg.APIKey != "" {
		channels = append(channels, notification.NewEmailChannel(sg.APIKey, sg.FromEmail, sg.FromName))
		logger.Info("Email notifications enabled", "from", sg.FromEmail)
	}

	if fb := cfg.Notification.Firebase; fb.Enabled {
		push, err := notification.NewPushChannel(ctx, fb.CredentialsFile, fb.TopicPrefix)
		if err != nil {
			return nil, err
		}
		channels = append(channels, push)
		logger.Info("Push notifications enabled", "topic_prefix", fb.TopicPrefix)
	}

	return channels, nil
}

// TokenManager validates tokens signed with the configured identity provider secret
func TokenManager(cfg *config.Config) security.TokenManager {
	return security.NewTokenManager(cfg.JWT.Secret)
}

// Health pings the database; the memory store is always healthy
func (a *App) Health(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	return a.db.PingContext(ctx)
}

// JobRunner returns a runner for the scheduled jobs over this app's services
func (a *App) JobRunner() *jobs.JobRunner {
	return jobs.NewJobRunner(&jobs.Services{
		Booking:    a.Booking,
		Ledger:     a.Ledger,
		Dispatcher: a.Dispatcher,
	}, a.Config)
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
