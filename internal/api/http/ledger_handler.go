package http

import (
	"net/http"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/service"
)

type LedgerHandler struct {
	ledgerSvc service.LedgerService
}

func NewLedgerHandler(ledgerSvc service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	balance, err := h.ledgerSvc.GetBalance(r.Context(), principal.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.BalanceResponse{UserID: principal.UserID, Balance: balance})
}

// paymentLogFilter reads a payment log query from the URL
func paymentLogFilter(r *http.Request) (domain.PaymentLogFilter, error) {
	page, pageSize, err := paging(r)
	if err != nil {
		return domain.PaymentLogFilter{}, err
	}
	rentalID, err := queryInt64(r, "rental_request_id")
	if err != nil {
		return domain.PaymentLogFilter{}, err
	}
	q := r.URL.Query()
	req := wire.PaymentLogsRequest{
		Kind:            q.Get("kind"),
		RentalRequestID: rentalID,
		From:            q.Get("from"),
		To:              q.Get("to"),
		Page:            page,
		PageSize:        pageSize,
	}
	if err := wire.Validate(&req); err != nil {
		return domain.PaymentLogFilter{}, err
	}
	return req.ToFilter()
}

func (h *LedgerHandler) PaymentLogs(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	filter, err := paymentLogFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, total, err := h.ledgerSvc.GetPaymentLogs(r.Context(), principal.UserID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.PaymentLogsResponse{Entries: wire.MapDomainPaymentLogsToWire(entries), Total: total})
}

func (h *LedgerHandler) PlatformPaymentLogs(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	filter, err := paymentLogFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, total, err := h.ledgerSvc.GetPlatformPaymentLogs(r.Context(), principal, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.PaymentLogsResponse{Entries: wire.MapDomainPaymentLogsToWire(entries), Total: total})
}

func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	var req wire.DepositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := wire.Validate(&req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.ledgerSvc.Deposit(r.Context(), principal, req.UserID, req.Amount, req.Memo)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, wire.PaymentLogResponse{Entry: wire.MapDomainPaymentLogToWire(entry)})
}

func (h *LedgerHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	mismatches, err := h.ledgerSvc.Reconcile(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.MapDomainMismatchesToWire(mismatches))
}
