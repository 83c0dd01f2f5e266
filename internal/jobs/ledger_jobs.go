package jobs

import (
	"context"

	"rental-ledger-backend/internal/logger"
)

// DispatchNotifications sweeps outbox events the in-process dispatcher missed
func (jr *JobRunner) DispatchNotifications() {
	jr.runWithRecovery("DispatchNotifications", func(ctx context.Context) {
		sent, err := jr.services.Dispatcher.DispatchPending(ctx)
		if err != nil {
			logger.Error("Failed to dispatch notifications", "error", err)
			return
		}
		logger.Info("Dispatched pending notifications", "count", sent)
	})
}

// ReconcileLedger checks every balance against its payment log
func (jr *JobRunner) ReconcileLedger() {
	jr.runWithRecovery("ReconcileLedger", func(ctx context.Context) {
		mismatches, err := jr.services.Ledger.Reconcile(ctx)
		if err != nil {
			logger.Error("Failed to reconcile ledger", "error", err)
			return
		}
		for _, m := range mismatches {
			logger.Error("Ledger mismatch", "accountType", m.Account.Type, "userID", m.Account.UserID,
				"balance", m.Balance, "ledgerSum", m.LedgerSum)
		}
		logger.Info("Ledger reconciled", "mismatches", len(mismatches))
	})
}
