package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"rental-ledger-backend/internal/domain"
)

func rentalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "product_id", "user_id", "owner_id", "start_date", "end_date", "total_price",
		"status", "how_to_receive", "memo", "created_at", "updated_at", "deleted_at"})
}

func TestRentalRepository_TransitionStatus(t *testing.T) {
	ctx := context.Background()
	updateSQL := regexp.QuoteMeta(`UPDATE rental_requests SET status = $1`)

	t.Run("Applied", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(updateSQL).
			WithArgs(domain.RentalStatusApproved, sqlmock.AnyArg(), int64(11), domain.RentalStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := store.Rentals().TransitionStatus(ctx, 11, domain.RentalStatusPending, domain.RentalStatusApproved)
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LostRace", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(updateSQL).WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := store.Rentals().TransitionStatus(ctx, 11, domain.RentalStatusPending, domain.RentalStatusApproved)
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LockTimeout", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(updateSQL).WillReturnError(&pq.Error{Code: pqLockNotAvailable, Message: "canceling statement due to lock timeout"})

		_, err := store.Rentals().TransitionStatus(ctx, 11, domain.RentalStatusPending, domain.RentalStatusApproved)
		assert.True(t, domain.IsRetryable(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRentalRepository_HasApprovedOverlap(t *testing.T) {
	store, mock := newMock(t)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)

	// inclusive overlap: existing.start <= end AND existing.end >= start
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(5), domain.RentalStatusApproved, int64(11), end, start).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	overlap, err := store.Rentals().HasApprovedOverlap(context.Background(), 5, start, end, 11)
	assert.NoError(t, err)
	assert.True(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_HasActiveOverlapForUser(t *testing.T) {
	store, mock := newMock(t)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 2)

	mock.ExpectQuery(regexp.QuoteMeta(`status = ANY($3)`)).
		WithArgs(int64(5), int64(2), "{\"PENDING\",\"APPROVED\"}", end, start).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	overlap, err := store.Rentals().HasActiveOverlapForUser(context.Background(), 5, 2, start, end)
	assert.NoError(t, err)
	assert.False(t, overlap)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_LockByID(t *testing.T) {
	ctx := context.Background()
	lockSQL := regexp.QuoteMeta(`FROM rental_requests WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`)

	t.Run("Found", func(t *testing.T) {
		store, mock := newMock(t)
		start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
		now := time.Now()
		mock.ExpectQuery(lockSQL).
			WithArgs(int64(11)).
			WillReturnRows(rentalRows().AddRow(11, 5, 2, 3, start, start.AddDate(0, 0, 2), 30000,
				"PENDING", "PICKUP", "", now, now, nil))

		rt, err := store.Rentals().LockByID(ctx, 11)
		assert.NoError(t, err)
		assert.Equal(t, domain.RentalStatusPending, rt.Status)
		assert.Equal(t, int64(30000), rt.TotalPrice)
		assert.Nil(t, rt.DeletedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectQuery(lockSQL).WithArgs(int64(11)).WillReturnRows(rentalRows())

		_, err := store.Rentals().LockByID(ctx, 11)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
