package service

import (
	"context"
	"time"

	"rental-ledger-backend/internal/domain"
)

// CreateBookingInput carries an already authenticated renter's request
type CreateBookingInput struct {
	ProductID    int64
	UserID       int64
	StartDate    time.Time
	EndDate      time.Time
	HowToReceive domain.HowToReceive
	Memo         string
}

type BookingService interface {
	CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.RentalRequest, error)
	Approve(ctx context.Context, actor domain.Principal, requestID int64) (*domain.RentalRequest, error)
	Cancel(ctx context.Context, requestID, userID int64) (*domain.RefundResult, error)
	RejectByAdmin(ctx context.Context, actor domain.Principal, requestID int64) (*domain.RefundResult, error)
	Complete(ctx context.Context, actor domain.Principal, requestID int64) (*domain.CompletedRental, error)
	// CompleteElapsed completes up to limit APPROVED requests whose end date has passed
	// and returns how many it completed.
	CompleteElapsed(ctx context.Context, limit int) (int, error)
	GetBooking(ctx context.Context, actor domain.Principal, requestID int64) (*domain.RentalRequest, error)
	ListMyBookings(ctx context.Context, userID int64, status domain.RentalStatus, page, pageSize int) ([]domain.RentalRequest, int64, error)
	QuotePrice(ctx context.Context, productID int64, startDate, endDate time.Time) (int64, error)
}

type AvailabilityChecker interface {
	HasConflict(ctx context.Context, productID int64, startDate, endDate time.Time) (bool, error)
}

type ReviewService interface {
	CreateReview(ctx context.Context, completedRentalID, userID int64, rating int, content string) (*domain.Review, error)
}

type LedgerService interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	GetPaymentLogs(ctx context.Context, userID int64, filter domain.PaymentLogFilter) ([]domain.PaymentLogEntry, int64, error)
	GetPlatformPaymentLogs(ctx context.Context, actor domain.Principal, filter domain.PaymentLogFilter) ([]domain.PaymentLogEntry, int64, error)
	Deposit(ctx context.Context, actor domain.Principal, userID, amount int64, memo string) (*domain.PaymentLogEntry, error)
	Reconcile(ctx context.Context) ([]domain.Mismatch, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int64, page, pageSize int) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID int64) error
}

// OutboxSignal is told that new outbox rows have been committed
type OutboxSignal interface {
	Kick()
}

// Clock returns the current time; tests replace it to pin "now".
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}
