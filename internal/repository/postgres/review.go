package postgres

import (
	"context"
	"time"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
)

type reviewRepository struct {
	db DBTX
}

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	logger.EnterMethod("reviewRepository.Create", "completedRentalID", rv.CompletedRentalID, "userID", rv.UserID)

	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO reviews (completed_rental_id, user_id, product_id, rating, content, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, rv.CompletedRentalID, rv.UserID, rv.ProductID, rv.Rating, rv.Content, rv.CreatedAt).Scan(&rv.ID)
	if isUniqueViolation(err) {
		logger.ExitMethodWithError("reviewRepository.Create", domain.ErrAlreadyReviewed, "completedRentalID", rv.CompletedRentalID)
		return domain.ErrAlreadyReviewed
	}
	if err != nil {
		err = convertErr(err)
		logger.ExitMethodWithError("reviewRepository.Create", err, "completedRentalID", rv.CompletedRentalID)
		return err
	}

	logger.ExitMethod("reviewRepository.Create", "reviewID", rv.ID)
	return nil
}

func (r *reviewRepository) GetByCompletedRentalID(ctx context.Context, completedRentalID int64) (*domain.Review, error) {
	rv := &domain.Review{}
	query := `SELECT id, completed_rental_id, user_id, product_id, rating, content, created_at FROM reviews WHERE completed_rental_id = $1`
	err := r.db.QueryRowContext(ctx, query, completedRentalID).Scan(&rv.ID, &rv.CompletedRentalID, &rv.UserID, &rv.ProductID, &rv.Rating, &rv.Content, &rv.CreatedAt)
	if err != nil {
		return nil, convertErr(err)
	}
	return rv, nil
}
