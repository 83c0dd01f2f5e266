package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"rental-ledger-backend/internal/domain"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation      = "23505"
	pqNumericOutOfRange    = "22003"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
	pqLockNotAvailable     = "55P03"
)

// convertErr maps driver errors onto domain errors. Anything it does not
// recognise is returned unchanged.
func convertErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqSerializationFailure, pqDeadlockDetected, pqLockNotAvailable:
			return fmt.Errorf("%w: %s", domain.ErrRetryable, pqErr.Message)
		case pqNumericOutOfRange:
			return domain.Newf(domain.ErrValidation, "value out of range: %s", pqErr.Message)
		}
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
