package http

import (
	"net/http"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/service"
)

// BookingHandler exposes the booking coordinator over REST
type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())

	var req wire.CreateBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := wire.Validate(&req); err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := req.Dates()
	if err != nil {
		writeError(w, r, err)
		return
	}

	rt, err := h.bookingSvc.CreateBooking(r.Context(), service.CreateBookingInput{
		ProductID:    req.ProductID,
		UserID:       principal.UserID,
		StartDate:    start,
		EndDate:      end,
		HowToReceive: domain.HowToReceive(req.HowToReceive),
		Memo:         req.Memo,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wire.BookingResponse{Booking: wire.MapDomainBookingToWire(rt)})
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := h.bookingSvc.Approve(r.Context(), principal, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.BookingResponse{Booking: wire.MapDomainBookingToWire(rt)})
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.bookingSvc.Cancel(r.Context(), id, principal.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.MapDomainRefundToWire(res))
}

func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.bookingSvc.RejectByAdmin(r.Context(), principal, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.MapDomainRefundToWire(res))
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	completed, err := h.bookingSvc.Complete(r.Context(), principal, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.CompletedRentalResponse{CompletedRental: wire.MapDomainCompletedRentalToWire(completed)})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rt, err := h.bookingSvc.GetBooking(r.Context(), principal, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.BookingResponse{Booking: wire.MapDomainBookingToWire(rt)})
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	page, pageSize, err := paging(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req := wire.ListMyBookingsRequest{Status: r.URL.Query().Get("status"), Page: page, PageSize: pageSize}
	if err := wire.Validate(&req); err != nil {
		writeError(w, r, err)
		return
	}

	rentals, total, err := h.bookingSvc.ListMyBookings(r.Context(), principal.UserID, domain.RentalStatus(req.Status), req.Page, req.PageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.ListBookingsResponse{Bookings: wire.MapDomainBookingsToWire(rentals), Total: total})
}

func (h *BookingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	productID, err := queryInt64(r, "product_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	req := wire.QuotePriceRequest{ProductID: productID, StartDate: q.Get("start_date"), EndDate: q.Get("end_date")}
	if err := wire.Validate(&req); err != nil {
		writeError(w, r, err)
		return
	}
	start, end, err := req.Dates()
	if err != nil {
		writeError(w, r, err)
		return
	}

	total, err := h.bookingSvc.QuotePrice(r.Context(), req.ProductID, start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.QuotePriceResponse{TotalPrice: total})
}
