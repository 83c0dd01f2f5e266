package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
)

type platformAccountRepository struct {
	db DBTX
}

func (r *platformAccountRepository) scan(row *sql.Row) (*domain.PlatformAccount, error) {
	p := &domain.PlatformAccount{}
	err := row.Scan(&p.ID, &p.Balance, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlatformAccountMissing
	}
	if err != nil {
		return nil, convertErr(err)
	}
	return p, nil
}

func (r *platformAccountRepository) Get(ctx context.Context) (*domain.PlatformAccount, error) {
	query := `SELECT id, balance, updated_at FROM platform_account WHERE id = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, domain.PlatformAccountID))
}

func (r *platformAccountRepository) Lock(ctx context.Context) (*domain.PlatformAccount, error) {
	query := `SELECT id, balance, updated_at FROM platform_account WHERE id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "platform_account")
	p, err := r.scan(r.db.QueryRowContext(ctx, query, domain.PlatformAccountID))
	logger.DatabaseResult("SELECT FOR UPDATE", 1, err)
	return p, err
}

func (r *platformAccountRepository) Credit(ctx context.Context, amount int64) (domain.BalanceChange, error) {
	if err := domain.CheckAmount(amount); err != nil {
		return domain.BalanceChange{}, err
	}
	query := `UPDATE platform_account SET balance = balance + $1, updated_at = $2 WHERE id = $3 RETURNING balance`
	var after int64
	err := r.db.QueryRowContext(ctx, query, amount, time.Now().UTC(), domain.PlatformAccountID).Scan(&after)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.BalanceChange{}, domain.ErrPlatformAccountMissing
	}
	if err != nil {
		return domain.BalanceChange{}, convertErr(err)
	}
	return domain.BalanceChange{Before: after - amount, After: after}, nil
}

func (r *platformAccountRepository) Debit(ctx context.Context, amount int64) (domain.BalanceChange, error) {
	if err := domain.CheckAmount(amount); err != nil {
		return domain.BalanceChange{}, err
	}
	query := `UPDATE platform_account SET balance = balance - $1, updated_at = $2
	          WHERE id = $3 AND balance >= $1 RETURNING balance`
	var after int64
	err := r.db.QueryRowContext(ctx, query, amount, time.Now().UTC(), domain.PlatformAccountID).Scan(&after)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.Get(ctx); getErr != nil {
			return domain.BalanceChange{}, getErr
		}
		return domain.BalanceChange{}, domain.ErrPlatformBalanceInsufficient
	}
	if err != nil {
		return domain.BalanceChange{}, convertErr(err)
	}
	return domain.BalanceChange{Before: after + amount, After: after}, nil
}
