package grpc

import (
	"context"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/service"
)

type ReviewHandler struct {
	reviewSvc service.ReviewService
}

func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

func (h *ReviewHandler) CreateReview(ctx context.Context, req *wire.CreateReviewRequest) (*wire.ReviewResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	review, err := h.reviewSvc.CreateReview(ctx, req.CompletedRentalID, principal.UserID, req.Rating, req.Content)
	if err != nil {
		return nil, err
	}
	return &wire.ReviewResponse{Review: wire.MapDomainReviewToWire(review)}, nil
}
