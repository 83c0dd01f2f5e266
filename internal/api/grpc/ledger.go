package grpc

import (
	"context"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/service"
)

type LedgerHandler struct {
	ledgerSvc service.LedgerService
}

func NewLedgerHandler(ledgerSvc service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

func (h *LedgerHandler) GetBalance(ctx context.Context, req *wire.GetBalanceRequest) (*wire.BalanceResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	balance, err := h.ledgerSvc.GetBalance(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return &wire.BalanceResponse{UserID: principal.UserID, Balance: balance}, nil
}

func (h *LedgerHandler) GetPaymentLogs(ctx context.Context, req *wire.PaymentLogsRequest) (*wire.PaymentLogsResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	filter, err := req.ToFilter()
	if err != nil {
		return nil, err
	}
	entries, total, err := h.ledgerSvc.GetPaymentLogs(ctx, principal.UserID, filter)
	if err != nil {
		return nil, err
	}
	return &wire.PaymentLogsResponse{Entries: wire.MapDomainPaymentLogsToWire(entries), Total: total}, nil
}

func (h *LedgerHandler) GetPlatformPaymentLogs(ctx context.Context, req *wire.PaymentLogsRequest) (*wire.PaymentLogsResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	filter, err := req.ToFilter()
	if err != nil {
		return nil, err
	}
	entries, total, err := h.ledgerSvc.GetPlatformPaymentLogs(ctx, principal, filter)
	if err != nil {
		return nil, err
	}
	return &wire.PaymentLogsResponse{Entries: wire.MapDomainPaymentLogsToWire(entries), Total: total}, nil
}

func (h *LedgerHandler) Deposit(ctx context.Context, req *wire.DepositRequest) (*wire.PaymentLogResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	entry, err := h.ledgerSvc.Deposit(ctx, principal, req.UserID, req.Amount, req.Memo)
	if err != nil {
		return nil, err
	}
	return &wire.PaymentLogResponse{Entry: wire.MapDomainPaymentLogToWire(entry)}, nil
}

func (h *LedgerHandler) Reconcile(ctx context.Context, req *wire.ReconcileRequest) (*wire.ReconcileResponse, error) {
	if _, err := GetPrincipalFromContext(ctx); err != nil {
		return nil, err
	}
	mismatches, err := h.ledgerSvc.Reconcile(ctx)
	if err != nil {
		return nil, err
	}
	return wire.MapDomainMismatchesToWire(mismatches), nil
}
