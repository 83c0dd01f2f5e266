package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rental-ledger-backend/internal/domain"
)

type paymentLogRepository struct {
	db DBTX
}

func accountArgs(ref domain.AccountRef) (string, sql.NullInt64) {
	if ref.Type == domain.AccountTypePlatform {
		return string(domain.AccountTypePlatform), sql.NullInt64{}
	}
	return string(domain.AccountTypeUser), sql.NullInt64{Int64: ref.UserID, Valid: true}
}

func (r *paymentLogRepository) Append(ctx context.Context, e *domain.PaymentLogEntry) error {
	if !e.Reconciles() {
		return fmt.Errorf("payment log entry does not reconcile: %d -> %d by %d", e.BalanceBefore, e.BalanceAfter, e.Amount)
	}
	accountType, userID := accountArgs(e.Account)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO payment_logs (account_type, user_id, rental_request_id, amount, kind, balance_before, balance_after, memo, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, accountType, userID, e.RentalRequestID, e.Amount, e.Kind,
		e.BalanceBefore, e.BalanceAfter, e.Memo, e.CreatedAt).Scan(&e.ID)
	return convertErr(err)
}

func (r *paymentLogRepository) List(ctx context.Context, f domain.PaymentLogFilter) ([]domain.PaymentLogEntry, int64, error) {
	f.Normalize()
	accountType, userID := accountArgs(f.Account)

	conds := []string{"account_type = $1"}
	args := []any{accountType}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if userID.Valid {
		add("user_id = $%d", userID.Int64)
	}
	if f.Kind != nil {
		add("kind = $%d", string(*f.Kind))
	}
	if f.RentalRequestID != nil {
		add("rental_request_id = $%d", *f.RentalRequestID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at < $%d", *f.To)
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM payment_logs"+where, args...).Scan(&total); err != nil {
		return nil, 0, convertErr(err)
	}

	query := `SELECT id, account_type, user_id, rental_request_id, amount, kind, balance_before, balance_after, memo, created_at
	          FROM payment_logs` + where +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.PageSize, f.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, convertErr(err)
	}
	defer rows.Close()

	var entries []domain.PaymentLogEntry
	for rows.Next() {
		var (
			e        domain.PaymentLogEntry
			accType  string
			uid      sql.NullInt64
			rentalID sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &accType, &uid, &rentalID, &e.Amount, &e.Kind, &e.BalanceBefore, &e.BalanceAfter, &e.Memo, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		e.Account = domain.AccountRef{Type: domain.AccountType(accType), UserID: uid.Int64}
		if rentalID.Valid {
			id := rentalID.Int64
			e.RentalRequestID = &id
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *paymentLogRepository) Sum(ctx context.Context, ref domain.AccountRef) (int64, error) {
	accountType, userID := accountArgs(ref)
	var sum int64
	var err error
	if userID.Valid {
		err = r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payment_logs WHERE account_type = $1 AND user_id = $2`,
			accountType, userID.Int64).Scan(&sum)
	} else {
		err = r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM payment_logs WHERE account_type = $1`,
			accountType).Scan(&sum)
	}
	return sum, convertErr(err)
}
