package service

import (
	"context"
	"time"

	"rental-ledger-backend/internal/repository"
)

type availabilityChecker struct {
	rentalRepo repository.RentalRepository
}

// NewAvailabilityChecker reports conflicts against APPROVED bookings only;
// pending requests from different users may overlap until one is approved.
func NewAvailabilityChecker(rentalRepo repository.RentalRepository) AvailabilityChecker {
	return &availabilityChecker{rentalRepo: rentalRepo}
}

func (c *availabilityChecker) HasConflict(ctx context.Context, productID int64, startDate, endDate time.Time) (bool, error) {
	return c.rentalRepo.HasApprovedOverlap(ctx, productID, startDate, endDate, 0)
}
