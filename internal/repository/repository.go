package repository

import (
	"context"
	"time"

	"rental-ledger-backend/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// ProductRepository is the read side of the product catalog
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

type AccountRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Account, error)
	// LockByUserID reads the account row under an exclusive lock held until the transaction ends.
	LockByUserID(ctx context.Context, userID int64) (*domain.Account, error)
	// Ensure creates a zero-balance account for userID if none exists.
	Ensure(ctx context.Context, userID int64) (*domain.Account, error)
	// Debit subtracts amount only if the balance covers it; otherwise it returns ErrInsufficientBalance.
	Debit(ctx context.Context, userID, amount int64) (domain.BalanceChange, error)
	Credit(ctx context.Context, userID, amount int64) (domain.BalanceChange, error)
	List(ctx context.Context) ([]domain.Account, error)
}

type PlatformAccountRepository interface {
	Get(ctx context.Context) (*domain.PlatformAccount, error)
	// Lock reads the singleton row under an exclusive lock; ErrPlatformAccountMissing if absent.
	Lock(ctx context.Context) (*domain.PlatformAccount, error)
	Credit(ctx context.Context, amount int64) (domain.BalanceChange, error)
	// Debit subtracts amount only if the balance covers it; otherwise ErrPlatformBalanceInsufficient.
	Debit(ctx context.Context, amount int64) (domain.BalanceChange, error)
}

type PaymentLogRepository interface {
	Append(ctx context.Context, entry *domain.PaymentLogEntry) error
	List(ctx context.Context, filter domain.PaymentLogFilter) ([]domain.PaymentLogEntry, int64, error)
	Sum(ctx context.Context, account domain.AccountRef) (int64, error)
}

type RentalRepository interface {
	Create(ctx context.Context, rental *domain.RentalRequest) error
	GetByID(ctx context.Context, id int64) (*domain.RentalRequest, error)
	// LockByID reads the request row under an exclusive lock held until the transaction ends.
	LockByID(ctx context.Context, id int64) (*domain.RentalRequest, error)
	// TransitionStatus moves the request to `to` only while its status equals `from`.
	// It reports false when no row matched.
	TransitionStatus(ctx context.Context, id int64, from, to domain.RentalStatus) (bool, error)
	HasApprovedOverlap(ctx context.Context, productID int64, start, end time.Time, excludeID int64) (bool, error)
	HasActiveOverlapForUser(ctx context.Context, productID, userID int64, start, end time.Time) (bool, error)
	ListByUser(ctx context.Context, userID int64, status domain.RentalStatus, page, pageSize int) ([]domain.RentalRequest, int64, error)
	ListApprovedEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.RentalRequest, error)
}

type CompletedRentalRepository interface {
	Create(ctx context.Context, completed *domain.CompletedRental) error
	GetByID(ctx context.Context, id int64) (*domain.CompletedRental, error)
	GetByRentalRequestID(ctx context.Context, rentalRequestID int64) (*domain.CompletedRental, error)
}

type ReviewRepository interface {
	// Create returns ErrAlreadyReviewed when the completed rental already has a review.
	Create(ctx context.Context, review *domain.Review) error
	GetByCompletedRentalID(ctx context.Context, completedRentalID int64) (*domain.Review, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, userID int64, limit, offset int) ([]domain.Notification, int64, error)
	MarkAsRead(ctx context.Context, id, userID int64) error
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, event *domain.OutboxEvent) error
	ListPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	// Claim locks a still pending event for the current transaction. It reports
	// false when another dispatcher holds it or it is no longer pending.
	Claim(ctx context.Context, id string) (bool, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, lastError string, giveUp bool) error
}

// Tx exposes every repository bound to one unit of work. Outside WithTx the
// same accessors run each statement on its own.
type Tx interface {
	Users() UserRepository
	Products() ProductRepository
	Accounts() AccountRepository
	Platform() PlatformAccountRepository
	PaymentLogs() PaymentLogRepository
	Rentals() RentalRepository
	CompletedRentals() CompletedRentalRepository
	Reviews() ReviewRepository
	Notifications() NotificationRepository
	Outbox() OutboxRepository
	// LockProduct serializes writers that must agree on a product's APPROVED calendar.
	LockProduct(ctx context.Context, productID int64) error
}

// Store runs fn atomically: every write made through tx commits together or
// not at all, and row locks are released when fn returns.
type Store interface {
	Tx
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
