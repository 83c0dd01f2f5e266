package service

import (
	"context"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
	"rental-ledger-backend/internal/repository"
	"rental-ledger-backend/internal/utils"
)

func (s *bookingService) Cancel(ctx context.Context, requestID, userID int64) (*domain.RefundResult, error) {
	logger.EnterMethod("bookingService.Cancel", "rentalID", requestID, "userID", userID)

	result, err := s.refund(ctx, requestID, domain.RentalStatusCanceled, func(rt *domain.RentalRequest) error {
		if rt.UserID != userID {
			return domain.Newf(domain.ErrNoPermission, "only the renter may cancel rental request %d", rt.ID)
		}
		if rt.Status.IsTerminal() {
			return domain.Newf(domain.ErrAlreadyProcessed, "rental request %d is %s", rt.ID, rt.Status)
		}
		if rt.StartDate.Sub(s.now()) < s.cancelCutoff {
			return domain.Newf(domain.ErrCancelTooLate, "rental request %d starts on %s and can no longer be canceled",
				rt.ID, utils.FormatDate(rt.StartDate))
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.Cancel", err)
		return nil, err
	}

	logger.ExitMethod("bookingService.Cancel", "rentalID", requestID, "refunded", result.RefundedAmount)
	return result, nil
}

func (s *bookingService) RejectByAdmin(ctx context.Context, actor domain.Principal, requestID int64) (*domain.RefundResult, error) {
	logger.EnterMethod("bookingService.RejectByAdmin", "actorID", actor.UserID, "rentalID", requestID)

	if !actor.IsAdmin() {
		err := domain.Newf(domain.ErrNoPermission, "only an admin may reject rental request %d", requestID)
		logger.ExitMethodWithError("bookingService.RejectByAdmin", err)
		return nil, err
	}

	result, err := s.refund(ctx, requestID, domain.RentalStatusRejected, func(rt *domain.RentalRequest) error {
		if rt.Status.IsTerminal() {
			return domain.Newf(domain.ErrAlreadyProcessed, "rental request %d is %s", rt.ID, rt.Status)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.RejectByAdmin", err)
		return nil, err
	}

	logger.ExitMethod("bookingService.RejectByAdmin", "rentalID", requestID, "refunded", result.RefundedAmount)
	return result, nil
}

// refund locks the request row, runs the caller's gates, moves the request to
// target and returns its full price to the renter, all in one transaction.
func (s *bookingService) refund(ctx context.Context, requestID int64, target domain.RentalStatus, gate func(rt *domain.RentalRequest) error) (*domain.RefundResult, error) {
	var result *domain.RefundResult
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		rt, err := tx.Rentals().LockByID(ctx, requestID)
		if err != nil {
			return err
		}
		if err := gate(rt); err != nil {
			return err
		}

		ok, err := tx.Rentals().TransitionStatus(ctx, rt.ID, rt.Status, target)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Newf(domain.ErrAlreadyProcessed, "rental request %d changed status concurrently", rt.ID)
		}
		rt.Status = target

		if err := refundRental(ctx, tx, rt, string(target)); err != nil {
			return err
		}

		title := productTitle(ctx, tx, rt.ProductID)
		event := s.events.rentalCanceled(rt, title)
		if target == domain.RentalStatusRejected {
			event = s.events.rentalRejected(rt, title)
		}
		if err := enqueue(ctx, tx, event); err != nil {
			return err
		}

		result = &domain.RefundResult{
			RentalRequestID: rt.ID,
			RefundedAmount:  rt.TotalPrice,
			Status:          target,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.kick()
	return result, nil
}
