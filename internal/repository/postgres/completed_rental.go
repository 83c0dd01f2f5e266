package postgres

import (
	"context"
	"time"

	"rental-ledger-backend/internal/domain"
)

const completedRentalColumns = `id, rental_request_id, user_id, product_id, start_date, end_date, total_price, created_at`

type completedRentalRepository struct {
	db DBTX
}

func (r *completedRentalRepository) scan(row interface{ Scan(...any) error }) (*domain.CompletedRental, error) {
	c := &domain.CompletedRental{}
	if err := row.Scan(&c.ID, &c.RentalRequestID, &c.UserID, &c.ProductID, &c.StartDate, &c.EndDate, &c.TotalPrice, &c.CreatedAt); err != nil {
		return nil, convertErr(err)
	}
	return c, nil
}

func (r *completedRentalRepository) Create(ctx context.Context, c *domain.CompletedRental) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO completed_rentals (rental_request_id, user_id, product_id, start_date, end_date, total_price, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, c.RentalRequestID, c.UserID, c.ProductID, c.StartDate, c.EndDate, c.TotalPrice, c.CreatedAt).Scan(&c.ID)
	if isUniqueViolation(err) {
		return domain.ErrAlreadyProcessed
	}
	return convertErr(err)
}

func (r *completedRentalRepository) GetByID(ctx context.Context, id int64) (*domain.CompletedRental, error) {
	query := `SELECT ` + completedRentalColumns + ` FROM completed_rentals WHERE id = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, id))
}

func (r *completedRentalRepository) GetByRentalRequestID(ctx context.Context, rentalRequestID int64) (*domain.CompletedRental, error) {
	query := `SELECT ` + completedRentalColumns + ` FROM completed_rentals WHERE rental_request_id = $1`
	return r.scan(r.db.QueryRowContext(ctx, query, rentalRequestID))
}
