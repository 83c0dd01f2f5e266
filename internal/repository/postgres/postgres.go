package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"rental-ledger-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db DBTX
}

func (q *queries) Users() repository.UserRepository       { return &userRepository{db: q.db} }
func (q *queries) Products() repository.ProductRepository { return &productRepository{db: q.db} }
func (q *queries) Accounts() repository.AccountRepository { return &accountRepository{db: q.db} }
func (q *queries) Platform() repository.PlatformAccountRepository {
	return &platformAccountRepository{db: q.db}
}
func (q *queries) PaymentLogs() repository.PaymentLogRepository { return &paymentLogRepository{db: q.db} }
func (q *queries) Rentals() repository.RentalRepository         { return &rentalRepository{db: q.db} }
func (q *queries) CompletedRentals() repository.CompletedRentalRepository {
	return &completedRentalRepository{db: q.db}
}
func (q *queries) Reviews() repository.ReviewRepository { return &reviewRepository{db: q.db} }
func (q *queries) Notifications() repository.NotificationRepository {
	return &notificationRepository{db: q.db}
}
func (q *queries) Outbox() repository.OutboxRepository { return &outboxRepository{db: q.db} }

func (q *queries) LockProduct(ctx context.Context, productID int64) error {
	var id int64
	err := q.db.QueryRowContext(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&id)
	return convertErr(err)
}

type Store struct {
	*queries
	db          *sql.DB
	lockTimeout time.Duration
}

// NewStore wraps db. Every transaction opened by WithTx waits at most
// lockTimeout for a row lock before failing with a retryable error.
func NewStore(db *sql.DB, lockTimeout time.Duration) *Store {
	return &Store{
		queries:     &queries{db: db},
		db:          db,
		lockTimeout: lockTimeout,
	}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return convertErr(err)
	}
	defer tx.Rollback()

	if s.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return convertErr(err)
		}
	}

	if err := fn(ctx, &queries{db: tx}); err != nil {
		return err
	}

	return convertErr(tx.Commit())
}

var _ repository.Store = (*Store)(nil)
