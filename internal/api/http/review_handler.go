package http

import (
	"net/http"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/service"
)

type ReviewHandler struct {
	reviewSvc service.ReviewService
}

func NewReviewHandler(reviewSvc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewSvc: reviewSvc}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	var req wire.CreateReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := wire.Validate(&req); err != nil {
		writeError(w, r, err)
		return
	}
	review, err := h.reviewSvc.CreateReview(r.Context(), req.CompletedRentalID, principal.UserID, req.Rating, req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wire.ReviewResponse{Review: wire.MapDomainReviewToWire(review)})
}
