package jobs

import (
	"context"

	"rental-ledger-backend/internal/logger"
)

// CompleteElapsedRentals completes APPROVED rentals whose end date has passed
func (jr *JobRunner) CompleteElapsedRentals() {
	jr.runWithRecovery("CompleteElapsedRentals", func(ctx context.Context) {
		total := 0
		for {
			n, err := jr.services.Booking.CompleteElapsed(ctx, completionBatch)
			total += n
			if err != nil {
				logger.Error("Failed to complete elapsed rentals", "error", err)
				return
			}
			// a short batch means the backlog is drained; failures stay behind for the next run
			if n < completionBatch {
				break
			}
		}
		logger.Info("Completed elapsed rentals", "count", total)
	})
}
