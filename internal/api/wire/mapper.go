package wire

import (
	"time"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/utils"
)

func MapDomainBookingToWire(rt *domain.RentalRequest) *Booking {
	if rt == nil {
		return nil
	}
	return &Booking{
		ID:           rt.ID,
		ProductID:    rt.ProductID,
		UserID:       rt.UserID,
		OwnerID:      rt.OwnerID,
		StartDate:    utils.FormatDate(rt.StartDate),
		EndDate:      utils.FormatDate(rt.EndDate),
		TotalPrice:   rt.TotalPrice,
		Status:       string(rt.Status),
		HowToReceive: string(rt.HowToReceive),
		Memo:         rt.Memo,
		CreatedAt:    rt.CreatedAt,
		UpdatedAt:    rt.UpdatedAt,
	}
}

func MapDomainBookingsToWire(rentals []domain.RentalRequest) []*Booking {
	out := make([]*Booking, 0, len(rentals))
	for i := range rentals {
		out = append(out, MapDomainBookingToWire(&rentals[i]))
	}
	return out
}

func MapDomainRefundToWire(r *domain.RefundResult) *RefundResponse {
	return &RefundResponse{
		RentalRequestID: r.RentalRequestID,
		RefundedAmount:  r.RefundedAmount,
		Status:          string(r.Status),
	}
}

func MapDomainCompletedRentalToWire(c *domain.CompletedRental) *CompletedRental {
	if c == nil {
		return nil
	}
	return &CompletedRental{
		ID:              c.ID,
		RentalRequestID: c.RentalRequestID,
		UserID:          c.UserID,
		ProductID:       c.ProductID,
		StartDate:       utils.FormatDate(c.StartDate),
		EndDate:         utils.FormatDate(c.EndDate),
		TotalPrice:      c.TotalPrice,
		CreatedAt:       c.CreatedAt,
	}
}

func MapDomainPaymentLogToWire(e *domain.PaymentLogEntry) *PaymentLog {
	if e == nil {
		return nil
	}
	return &PaymentLog{
		ID:              e.ID,
		AccountType:     string(e.Account.Type),
		UserID:          e.Account.UserID,
		RentalRequestID: e.RentalRequestID,
		Amount:          e.Amount,
		Kind:            string(e.Kind),
		BalanceBefore:   e.BalanceBefore,
		BalanceAfter:    e.BalanceAfter,
		Memo:            e.Memo,
		CreatedAt:       e.CreatedAt,
	}
}

func MapDomainPaymentLogsToWire(entries []domain.PaymentLogEntry) []*PaymentLog {
	out := make([]*PaymentLog, 0, len(entries))
	for i := range entries {
		out = append(out, MapDomainPaymentLogToWire(&entries[i]))
	}
	return out
}

func MapDomainMismatchesToWire(mismatches []domain.Mismatch) *ReconcileResponse {
	resp := &ReconcileResponse{Consistent: len(mismatches) == 0, Mismatches: make([]*Mismatch, 0, len(mismatches))}
	for _, m := range mismatches {
		resp.Mismatches = append(resp.Mismatches, &Mismatch{
			AccountType: string(m.Account.Type),
			UserID:      m.Account.UserID,
			Balance:     m.Balance,
			LedgerSum:   m.LedgerSum,
		})
	}
	return resp
}

func MapDomainReviewToWire(r *domain.Review) *Review {
	if r == nil {
		return nil
	}
	return &Review{
		ID:                r.ID,
		CompletedRentalID: r.CompletedRentalID,
		UserID:            r.UserID,
		ProductID:         r.ProductID,
		Rating:            r.Rating,
		Content:           r.Content,
		CreatedAt:         r.CreatedAt,
	}
}

func MapDomainNotificationsToWire(notes []domain.Notification) []*Notification {
	out := make([]*Notification, 0, len(notes))
	for _, n := range notes {
		out = append(out, &Notification{
			ID:         n.ID,
			Type:       string(n.Type),
			Title:      n.Title,
			Message:    n.Message,
			URL:        n.URL,
			IsRead:     n.IsRead,
			Attributes: n.Attributes,
			CreatedOn:  n.CreatedOn,
		})
	}
	return out
}

func parseDates(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := utils.ParseDate(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, domain.Newf(domain.ErrValidation, "start_date: %s", err.Error())
	}
	end, err := utils.ParseDate(endStr)
	if err != nil {
		return time.Time{}, time.Time{}, domain.Newf(domain.ErrValidation, "end_date: %s", err.Error())
	}
	return start, end, nil
}

// Dates parses the rental period of the request
func (r *CreateBookingRequest) Dates() (time.Time, time.Time, error) {
	return parseDates(r.StartDate, r.EndDate)
}

func (r *QuotePriceRequest) Dates() (time.Time, time.Time, error) {
	return parseDates(r.StartDate, r.EndDate)
}

// ToFilter converts a validated request into a payment log filter
func (r *PaymentLogsRequest) ToFilter() (domain.PaymentLogFilter, error) {
	f := domain.PaymentLogFilter{Page: r.Page, PageSize: r.PageSize}
	if r.Kind != "" {
		kind := domain.PaymentKind(r.Kind)
		f.Kind = &kind
	}
	if r.RentalRequestID > 0 {
		id := r.RentalRequestID
		f.RentalRequestID = &id
	}
	if r.From != "" {
		from, err := time.Parse(time.RFC3339, r.From)
		if err != nil {
			return f, domain.Newf(domain.ErrValidation, "from: %s", err.Error())
		}
		f.From = &from
	}
	if r.To != "" {
		to, err := time.Parse(time.RFC3339, r.To)
		if err != nil {
			return f, domain.Newf(domain.ErrValidation, "to: %s", err.Error())
		}
		f.To = &to
	}
	return f, nil
}
