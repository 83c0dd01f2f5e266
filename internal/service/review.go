package service

import (
	"context"
	"errors"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
	"rental-ledger-backend/internal/repository"
)

type reviewService struct {
	completedRepo repository.CompletedRentalRepository
	reviewRepo    repository.ReviewRepository
}

func NewReviewService(completedRepo repository.CompletedRentalRepository, reviewRepo repository.ReviewRepository) ReviewService {
	return &reviewService{completedRepo: completedRepo, reviewRepo: reviewRepo}
}

func (s *reviewService) CreateReview(ctx context.Context, completedRentalID, userID int64, rating int, content string) (*domain.Review, error) {
	logger.EnterMethod("reviewService.CreateReview", "completedRentalID", completedRentalID, "userID", userID)

	if rating < domain.MinReviewRating || rating > domain.MaxReviewRating {
		return nil, domain.Newf(domain.ErrValidation, "rating must be between %d and %d", domain.MinReviewRating, domain.MaxReviewRating)
	}

	completed, err := s.completedRepo.GetByID(ctx, completedRentalID)
	if err != nil {
		return nil, err
	}
	if completed.UserID != userID {
		return nil, domain.Newf(domain.ErrNoPermission, "only the renter may review completed rental %d", completedRentalID)
	}

	if _, err := s.reviewRepo.GetByCompletedRentalID(ctx, completedRentalID); err == nil {
		return nil, domain.Newf(domain.ErrAlreadyReviewed, "completed rental %d already has a review", completedRentalID)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	review := &domain.Review{
		CompletedRentalID: completedRentalID,
		UserID:            userID,
		ProductID:         completed.ProductID,
		Rating:            rating,
		Content:           content,
	}
	// the unique index still decides a race between two first reviews
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		logger.ExitMethodWithError("reviewService.CreateReview", err)
		return nil, err
	}

	logger.ExitMethod("reviewService.CreateReview", "reviewID", review.ID)
	return review, nil
}
