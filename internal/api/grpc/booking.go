package grpc

import (
	"context"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/service"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

func (h *BookingHandler) CreateBooking(ctx context.Context, req *wire.CreateBookingRequest) (*wire.BookingResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	start, end, err := req.Dates()
	if err != nil {
		return nil, err
	}

	rt, err := h.bookingSvc.CreateBooking(ctx, service.CreateBookingInput{
		ProductID:    req.ProductID,
		UserID:       principal.UserID,
		StartDate:    start,
		EndDate:      end,
		HowToReceive: domain.HowToReceive(req.HowToReceive),
		Memo:         req.Memo,
	})
	if err != nil {
		return nil, err
	}
	return &wire.BookingResponse{Booking: wire.MapDomainBookingToWire(rt)}, nil
}

func (h *BookingHandler) ApproveBooking(ctx context.Context, req *wire.BookingIDRequest) (*wire.BookingResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	rt, err := h.bookingSvc.Approve(ctx, principal, req.ID)
	if err != nil {
		return nil, err
	}
	return &wire.BookingResponse{Booking: wire.MapDomainBookingToWire(rt)}, nil
}

func (h *BookingHandler) CancelBooking(ctx context.Context, req *wire.BookingIDRequest) (*wire.RefundResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	res, err := h.bookingSvc.Cancel(ctx, req.ID, principal.UserID)
	if err != nil {
		return nil, err
	}
	return wire.MapDomainRefundToWire(res), nil
}

func (h *BookingHandler) RejectBooking(ctx context.Context, req *wire.BookingIDRequest) (*wire.RefundResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	res, err := h.bookingSvc.RejectByAdmin(ctx, principal, req.ID)
	if err != nil {
		return nil, err
	}
	return wire.MapDomainRefundToWire(res), nil
}

func (h *BookingHandler) CompleteBooking(ctx context.Context, req *wire.BookingIDRequest) (*wire.CompletedRentalResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	completed, err := h.bookingSvc.Complete(ctx, principal, req.ID)
	if err != nil {
		return nil, err
	}
	return &wire.CompletedRentalResponse{CompletedRental: wire.MapDomainCompletedRentalToWire(completed)}, nil
}

func (h *BookingHandler) GetBooking(ctx context.Context, req *wire.BookingIDRequest) (*wire.BookingResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	rt, err := h.bookingSvc.GetBooking(ctx, principal, req.ID)
	if err != nil {
		return nil, err
	}
	return &wire.BookingResponse{Booking: wire.MapDomainBookingToWire(rt)}, nil
}

func (h *BookingHandler) ListMyBookings(ctx context.Context, req *wire.ListMyBookingsRequest) (*wire.ListBookingsResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	rentals, total, err := h.bookingSvc.ListMyBookings(ctx, principal.UserID, domain.RentalStatus(req.Status), req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	return &wire.ListBookingsResponse{Bookings: wire.MapDomainBookingsToWire(rentals), Total: total}, nil
}

// QuotePrice is public; it needs no principal.
func (h *BookingHandler) QuotePrice(ctx context.Context, req *wire.QuotePriceRequest) (*wire.QuotePriceResponse, error) {
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	start, end, err := req.Dates()
	if err != nil {
		return nil, err
	}
	total, err := h.bookingSvc.QuotePrice(ctx, req.ProductID, start, end)
	if err != nil {
		return nil, err
	}
	return &wire.QuotePriceResponse{TotalPrice: total}, nil
}
