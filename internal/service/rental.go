package service

import (
	"context"
	"errors"
	"time"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
	"rental-ledger-backend/internal/repository"
	"rental-ledger-backend/internal/utils"
)

type BookingOptions struct {
	Tiers        []utils.DiscountTier
	CancelCutoff time.Duration
	BaseURL      string
	Signal       OutboxSignal
	Clock        Clock
}

type bookingService struct {
	store        repository.Store
	availability AvailabilityChecker
	tiers        []utils.DiscountTier
	cancelCutoff time.Duration
	events       eventBuilder
	signal       OutboxSignal
	now          Clock
}

func NewBookingService(store repository.Store, availability AvailabilityChecker, opts BookingOptions) BookingService {
	s := &bookingService{
		store:        store,
		availability: availability,
		tiers:        opts.Tiers,
		cancelCutoff: opts.CancelCutoff,
		events:       eventBuilder{baseURL: opts.BaseURL},
		signal:       opts.Signal,
		now:          opts.Clock,
	}
	if s.now == nil {
		s.now = systemClock
	}
	if s.cancelCutoff <= 0 {
		s.cancelCutoff = 3 * 24 * time.Hour
	}
	return s
}

// kick wakes the dispatcher once a transaction that wrote outbox rows has committed
func (s *bookingService) kick() {
	if s.signal != nil {
		s.signal.Kick()
	}
}

func (s *bookingService) availableProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	product, err := s.store.Products().GetByID(ctx, productID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Newf(domain.ErrProductUnavailable, "product %d does not exist", productID)
	}
	if err != nil {
		return nil, err
	}
	if product.IsDeleted() {
		return nil, domain.Newf(domain.ErrProductUnavailable, "product %d has been deleted", productID)
	}
	return product, nil
}

// validateRange accepts only whole calendar days, matching the DATE columns
// the range is stored in.
func validateRange(startDate, endDate time.Time) error {
	if !utils.IsCalendarDate(startDate) || !utils.IsCalendarDate(endDate) {
		return domain.Newf(domain.ErrValidation, "start and end dates must be UTC calendar days")
	}
	if !endDate.After(startDate) {
		return domain.Newf(domain.ErrValidation, "end date must be after start date")
	}
	return nil
}

func (s *bookingService) QuotePrice(ctx context.Context, productID int64, startDate, endDate time.Time) (int64, error) {
	if err := validateRange(startDate, endDate); err != nil {
		return 0, err
	}
	product, err := s.availableProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	total, err := utils.CalculateTotalPrice(product.PricePerDay, startDate, endDate, s.tiers)
	if err != nil {
		return 0, domain.Newf(domain.ErrValidation, "%s", err.Error())
	}
	return total, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*domain.RentalRequest, error) {
	logger.EnterMethod("bookingService.CreateBooking", "userID", in.UserID, "productID", in.ProductID)

	if in.UserID <= 0 {
		return nil, domain.Newf(domain.ErrValidation, "user id is required")
	}
	if err := validateRange(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	if !in.HowToReceive.Valid() {
		return nil, domain.Newf(domain.ErrValidation, "how to receive must be PICKUP or DELIVERY")
	}

	product, err := s.availableProduct(ctx, in.ProductID)
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}

	total, err := utils.CalculateTotalPrice(product.PricePerDay, in.StartDate, in.EndDate, s.tiers)
	if err != nil {
		return nil, domain.Newf(domain.ErrValidation, "%s", err.Error())
	}

	conflict, err := s.availability.HasConflict(ctx, product.ID, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	if conflict {
		err := domain.Newf(domain.ErrDateConflict, "product %d is already booked between %s and %s",
			product.ID, utils.FormatDate(in.StartDate), utils.FormatDate(in.EndDate))
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}

	rental := &domain.RentalRequest{
		ProductID:    product.ID,
		UserID:       in.UserID,
		OwnerID:      product.OwnerID,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		TotalPrice:   total,
		Status:       domain.RentalStatusPending,
		HowToReceive: in.HowToReceive,
		Memo:         in.Memo,
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := lockRenterAccount(ctx, tx, in.UserID); err != nil {
			return err
		}

		dup, err := tx.Rentals().HasActiveOverlapForUser(ctx, product.ID, in.UserID, in.StartDate, in.EndDate)
		if err != nil {
			return err
		}
		if dup {
			return domain.Newf(domain.ErrDuplicateRequest, "user %d already has an active request for product %d on these dates", in.UserID, product.ID)
		}

		change, err := debitRenter(ctx, tx, in.UserID, total)
		if err != nil {
			return err
		}
		if err := tx.Rentals().Create(ctx, rental); err != nil {
			return err
		}
		if err := recordRentalPayment(ctx, tx, rental, change); err != nil {
			return err
		}
		return enqueue(ctx, tx, s.events.rentalRequested(rental, product.Title))
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}
	s.kick()

	logger.ExitMethod("bookingService.CreateBooking", "rentalID", rental.ID, "totalPrice", total)
	return rental, nil
}

func (s *bookingService) Approve(ctx context.Context, actor domain.Principal, requestID int64) (*domain.RentalRequest, error) {
	logger.EnterMethod("bookingService.Approve", "actorID", actor.UserID, "rentalID", requestID)

	var approved *domain.RentalRequest
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		current, err := tx.Rentals().GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && current.OwnerID != actor.UserID {
			return domain.Newf(domain.ErrNoPermission, "only the product owner may approve rental request %d", requestID)
		}

		// product lock first, then the row: approvals on one product run one at a time
		if err := tx.LockProduct(ctx, current.ProductID); err != nil {
			return err
		}
		rt, err := tx.Rentals().LockByID(ctx, requestID)
		if err != nil {
			return err
		}
		if rt.Status != domain.RentalStatusPending {
			return domain.Newf(domain.ErrAlreadyProcessed, "rental request %d is %s", rt.ID, rt.Status)
		}

		product, err := tx.Products().GetByID(ctx, rt.ProductID)
		if err != nil {
			return err
		}
		if product.IsDeleted() {
			return domain.Newf(domain.ErrProductUnavailable, "product %d has been deleted", product.ID)
		}

		conflict, err := tx.Rentals().HasApprovedOverlap(ctx, rt.ProductID, rt.StartDate, rt.EndDate, rt.ID)
		if err != nil {
			return err
		}
		if conflict {
			return domain.Newf(domain.ErrDateConflict, "product %d already has an approved rental overlapping request %d", rt.ProductID, rt.ID)
		}

		ok, err := tx.Rentals().TransitionStatus(ctx, rt.ID, domain.RentalStatusPending, domain.RentalStatusApproved)
		if err != nil {
			return err
		}
		if !ok {
			return domain.Newf(domain.ErrAlreadyProcessed, "rental request %d is no longer pending", rt.ID)
		}
		rt.Status = domain.RentalStatusApproved
		rt.UpdatedAt = s.now()

		if err := enqueue(ctx, tx, s.events.rentalApproved(rt, product.Title)...); err != nil {
			return err
		}
		approved = rt
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("bookingService.Approve", err)
		return nil, err
	}
	s.kick()

	logger.ExitMethod("bookingService.Approve", "rentalID", approved.ID)
	return approved, nil
}

func (s *bookingService) GetBooking(ctx context.Context, actor domain.Principal, requestID int64) (*domain.RentalRequest, error) {
	rt, err := s.store.Rentals().GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && rt.UserID != actor.UserID && rt.OwnerID != actor.UserID {
		return nil, domain.Newf(domain.ErrNoPermission, "rental request %d is not visible to user %d", requestID, actor.UserID)
	}
	return rt, nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, userID int64, status domain.RentalStatus, page, pageSize int) ([]domain.RentalRequest, int64, error) {
	if status != "" && !status.Valid() {
		return nil, 0, domain.Newf(domain.ErrValidation, "unknown status %q", status)
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}
	return s.store.Rentals().ListByUser(ctx, userID, status, page, pageSize)
}
