package postgres

import (
	"context"
	"fmt"
	"time"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"

	"github.com/lib/pq"
)

const rentalColumns = `id, product_id, user_id, owner_id, start_date, end_date, total_price, status, how_to_receive, memo, created_at, updated_at, deleted_at`

type rentalRepository struct {
	db DBTX
}

func scanRental(row interface{ Scan(...any) error }) (*domain.RentalRequest, error) {
	rt := &domain.RentalRequest{}
	err := row.Scan(&rt.ID, &rt.ProductID, &rt.UserID, &rt.OwnerID, &rt.StartDate, &rt.EndDate, &rt.TotalPrice,
		&rt.Status, &rt.HowToReceive, &rt.Memo, &rt.CreatedAt, &rt.UpdatedAt, &rt.DeletedAt)
	if err != nil {
		return nil, convertErr(err)
	}
	return rt, nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.RentalRequest) error {
	now := time.Now().UTC()
	query := `INSERT INTO rental_requests (product_id, user_id, owner_id, start_date, end_date, total_price, status, how_to_receive, memo, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, rt.ProductID, rt.UserID, rt.OwnerID, rt.StartDate, rt.EndDate,
		rt.TotalPrice, rt.Status, rt.HowToReceive, rt.Memo, now).Scan(&rt.ID)
	if err != nil {
		return convertErr(err)
	}
	rt.CreatedAt, rt.UpdatedAt = now, now
	return nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int64) (*domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE id = $1 AND deleted_at IS NULL`
	return scanRental(r.db.QueryRowContext(ctx, query, id))
}

func (r *rentalRepository) LockByID(ctx context.Context, id int64) (*domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	logger.DatabaseCall("SELECT FOR UPDATE", "rental_requests", "rentalID", id)
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	logger.DatabaseResult("SELECT FOR UPDATE", 1, err, "rentalID", id)
	return rt, err
}

func (r *rentalRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.RentalStatus) (bool, error) {
	query := `UPDATE rental_requests SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4 AND deleted_at IS NULL`
	logger.DatabaseCall("UPDATE", "rental_requests", "rentalID", id, "from", from, "to", to)
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		err = convertErr(err)
		logger.DatabaseResult("UPDATE", 0, err, "rentalID", id)
		return false, err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "rentalID", id)
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *rentalRepository) HasApprovedOverlap(ctx context.Context, productID int64, start, end time.Time, excludeID int64) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM rental_requests
	            WHERE product_id = $1 AND status = $2 AND deleted_at IS NULL AND id <> $3
	              AND start_date <= $4 AND end_date >= $5)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, productID, domain.RentalStatusApproved, excludeID, end, start).Scan(&exists)
	return exists, convertErr(err)
}

func (r *rentalRepository) HasActiveOverlapForUser(ctx context.Context, productID, userID int64, start, end time.Time) (bool, error) {
	query := `SELECT EXISTS (
	            SELECT 1 FROM rental_requests
	            WHERE product_id = $1 AND user_id = $2 AND status = ANY($3) AND deleted_at IS NULL
	              AND start_date <= $4 AND end_date >= $5)`
	statuses := make([]string, len(domain.NonTerminalStatuses))
	for i, s := range domain.NonTerminalStatuses {
		statuses[i] = string(s)
	}
	var exists bool
	err := r.db.QueryRowContext(ctx, query, productID, userID, pq.Array(statuses), end, start).Scan(&exists)
	return exists, convertErr(err)
}

func (r *rentalRepository) ListByUser(ctx context.Context, userID int64, status domain.RentalStatus, page, pageSize int) ([]domain.RentalRequest, int64, error) {
	offset := (page - 1) * pageSize
	sql := `SELECT ` + rentalColumns + ` FROM rental_requests WHERE user_id = $1 AND deleted_at IS NULL`

	args := []any{userID}
	argIdx := 2
	if status != "" {
		sql += " AND status = $2"
		args = append(args, status)
		argIdx++
	}

	var count int64
	countSql := "SELECT count(*) FROM (" + sql + ") as sub"
	if err := r.db.QueryRowContext(ctx, countSql, args...).Scan(&count); err != nil {
		return nil, 0, convertErr(err)
	}

	sql += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, 0, convertErr(err)
	}
	defer rows.Close()

	var rentals []domain.RentalRequest
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, 0, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, count, rows.Err()
}

func (r *rentalRepository) ListApprovedEndedBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.RentalRequest, error) {
	query := `SELECT ` + rentalColumns + ` FROM rental_requests
	          WHERE status = $1 AND end_date <= $2 AND deleted_at IS NULL
	          ORDER BY end_date, id LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, domain.RentalStatusApproved, cutoff, limit)
	if err != nil {
		return nil, convertErr(err)
	}
	defer rows.Close()

	var rentals []domain.RentalRequest
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}
