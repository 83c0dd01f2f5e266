package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
)

const accountColumns = `id, user_id, balance, created_at, updated_at`

type accountRepository struct {
	db DBTX
}

func scanAccount(row interface{ Scan(...any) error }) (*domain.Account, error) {
	a := &domain.Account{}
	if err := row.Scan(&a.ID, &a.UserID, &a.Balance, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, convertErr(err)
	}
	return a, nil
}

func (r *accountRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, userID))
}

func (r *accountRepository) LockByUserID(ctx context.Context, userID int64) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1 FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "accounts", "userID", userID)
	a, err := scanAccount(r.db.QueryRowContext(ctx, query, userID))
	logger.DatabaseResult("SELECT FOR UPDATE", 1, err, "userID", userID)
	return a, err
}

func (r *accountRepository) Ensure(ctx context.Context, userID int64) (*domain.Account, error) {
	query := `INSERT INTO accounts (user_id, balance, created_at, updated_at) VALUES ($1, 0, $2, $2)
	          ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, userID, time.Now().UTC()); err != nil {
		return nil, convertErr(err)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *accountRepository) Debit(ctx context.Context, userID, amount int64) (domain.BalanceChange, error) {
	logger.EnterMethod("accountRepository.Debit", "userID", userID, "amount", amount)
	if err := domain.CheckAmount(amount); err != nil {
		logger.ExitMethodWithError("accountRepository.Debit", err, "userID", userID)
		return domain.BalanceChange{}, err
	}

	query := `UPDATE accounts SET balance = balance - $1, updated_at = $2
	          WHERE user_id = $3 AND balance >= $1 RETURNING balance`
	logger.DatabaseCall("UPDATE", "accounts", "userID", userID)

	var after int64
	err := r.db.QueryRowContext(ctx, query, amount, time.Now().UTC(), userID).Scan(&after)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the account is missing or the guard rejected the debit.
		if _, getErr := r.GetByUserID(ctx, userID); getErr != nil {
			logger.ExitMethodWithError("accountRepository.Debit", getErr, "userID", userID)
			return domain.BalanceChange{}, getErr
		}
		logger.ExitMethodWithError("accountRepository.Debit", domain.ErrInsufficientBalance, "userID", userID)
		return domain.BalanceChange{}, domain.ErrInsufficientBalance
	}
	if err != nil {
		err = convertErr(err)
		logger.ExitMethodWithError("accountRepository.Debit", err, "userID", userID)
		return domain.BalanceChange{}, err
	}

	logger.ExitMethod("accountRepository.Debit", "userID", userID, "balance", after)
	return domain.BalanceChange{Before: after + amount, After: after}, nil
}

func (r *accountRepository) Credit(ctx context.Context, userID, amount int64) (domain.BalanceChange, error) {
	if err := domain.CheckAmount(amount); err != nil {
		return domain.BalanceChange{}, err
	}
	query := `UPDATE accounts SET balance = balance + $1, updated_at = $2 WHERE user_id = $3 RETURNING balance`
	var after int64
	if err := r.db.QueryRowContext(ctx, query, amount, time.Now().UTC(), userID).Scan(&after); err != nil {
		return domain.BalanceChange{}, convertErr(err)
	}
	return domain.BalanceChange{Before: after - amount, After: after}, nil
}

func (r *accountRepository) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY user_id`)
	if err != nil {
		return nil, convertErr(err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}
