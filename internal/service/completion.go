package service

import (
	"context"
	"errors"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
	"rental-ledger-backend/internal/repository"
	"rental-ledger-backend/internal/utils"
)

// Complete is idempotent: a request that already has a completion snapshot
// returns it unchanged.
func (s *bookingService) Complete(ctx context.Context, actor domain.Principal, requestID int64) (*domain.CompletedRental, error) {
	logger.EnterMethod("bookingService.Complete", "actorID", actor.UserID, "rentalID", requestID)

	var completed *domain.CompletedRental
	created := false
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		rt, err := tx.Rentals().LockByID(ctx, requestID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && rt.UserID != actor.UserID && rt.OwnerID != actor.UserID {
			return domain.Newf(domain.ErrNoPermission, "user %d is not part of rental request %d", actor.UserID, rt.ID)
		}

		existing, err := tx.CompletedRentals().GetByRentalRequestID(ctx, rt.ID)
		if err == nil {
			completed = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		switch rt.Status {
		case domain.RentalStatusApproved:
		case domain.RentalStatusPending:
			return domain.Newf(domain.ErrInvalidState, "rental request %d has not been approved", rt.ID)
		default:
			return domain.Newf(domain.ErrAlreadyProcessed, "rental request %d is %s", rt.ID, rt.Status)
		}
		if rt.EndDate.After(s.now()) {
			return domain.Newf(domain.ErrRentalNotEnded, "rental request %d ends on %s", rt.ID, utils.FormatDate(rt.EndDate))
		}

		ok, err := tx.Rentals().TransitionStatus(ctx, rt.ID, domain.RentalStatusApproved, domain.RentalStatusCompleted)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Newf(domain.ErrAlreadyProcessed, "rental request %d changed status concurrently", rt.ID)
		}
		rt.Status = domain.RentalStatusCompleted

		snapshot := &domain.CompletedRental{
			RentalRequestID: rt.ID,
			UserID:          rt.UserID,
			ProductID:       rt.ProductID,
			StartDate:       rt.StartDate,
			EndDate:         rt.EndDate,
			TotalPrice:      rt.TotalPrice,
		}
		if err := tx.CompletedRentals().Create(ctx, snapshot); err != nil {
			return err
		}
		if err := enqueue(ctx, tx, s.events.reviewRequested(rt, snapshot, productTitle(ctx, tx, rt.ProductID))); err != nil {
			return err
		}
		completed = snapshot
		created = true
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.Complete", err)
		return nil, err
	}
	if created {
		s.kick()
	}

	logger.ExitMethod("bookingService.Complete", "rentalID", requestID, "completedRentalID", completed.ID, "created", created)
	return completed, nil
}

func (s *bookingService) CompleteElapsed(ctx context.Context, limit int) (int, error) {
	rentals, err := s.store.Rentals().ListApprovedEndedBefore(ctx, s.now(), limit)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, rt := range rentals {
		if err := ctx.Err(); err != nil {
			return completed, err
		}
		if _, err := s.Complete(ctx, domain.SystemPrincipal(), rt.ID); err != nil {
			if errors.Is(err, domain.ErrAlreadyProcessed) {
				continue
			}
			logger.Warn("Failed to complete elapsed rental", "rentalID", rt.ID, "error", err)
			continue
		}
		completed++
	}
	return completed, nil
}
