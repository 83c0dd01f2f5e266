package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/service"
)

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)

		rt := f.book(t, renterID, "2024-01-10", "2024-01-15")
		assert.Equal(t, domain.RentalStatusPending, rt.Status)
		assert.Equal(t, int64(45000), rt.TotalPrice)
		assert.Equal(t, ownerID, rt.OwnerID)

		assert.Equal(t, int64(55000), f.balance(t, renterID))
		assert.Equal(t, int64(45000), f.platformBalance(t))

		payment := domain.PaymentKindRentalPayment
		logs, total, err := f.ledger.GetPaymentLogs(ctx, renterID, domain.PaymentLogFilter{Kind: &payment})
		require.NoError(t, err)
		require.Equal(t, int64(1), total)
		assert.Equal(t, int64(-45000), logs[0].Amount)
		assert.Equal(t, int64(100000), logs[0].BalanceBefore)
		assert.Equal(t, int64(55000), logs[0].BalanceAfter)
		require.NotNil(t, logs[0].RentalRequestID)
		assert.Equal(t, rt.ID, *logs[0].RentalRequestID)

		platformLogs, _, err := f.ledger.GetPlatformPaymentLogs(ctx, admin, domain.PaymentLogFilter{})
		require.NoError(t, err)
		require.Len(t, platformLogs, 1)
		assert.Equal(t, domain.PaymentKindIncome, platformLogs[0].Kind)
		assert.Equal(t, int64(45000), platformLogs[0].Amount)

		events, err := f.store.Outbox().ListPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, ownerID, events[0].UserID)
		assert.Equal(t, domain.NotificationRentalRequested, events[0].Type)
		assert.Contains(t, events[0].URL, "/rentals/")
		assert.Equal(t, int32(1), f.signal.kicks.Load())

		f.requireReconciled(t)
	})

	t.Run("Insufficient balance leaves ledger untouched", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 40000)

		_, err := f.booking.CreateBooking(ctx, service.CreateBookingInput{
			ProductID: productID, UserID: renterID,
			StartDate: date(t, "2024-01-10"), EndDate: date(t, "2024-01-15"),
			HowToReceive: domain.HowToReceivePickup,
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		assert.Equal(t, int64(40000), f.balance(t, renterID))
		assert.Equal(t, int64(0), f.platformBalance(t))

		list, total, err := f.booking.ListMyBookings(ctx, renterID, "", 1, 20)
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, list)
	})

	t.Run("No account means no funds", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.booking.CreateBooking(ctx, service.CreateBookingInput{
			ProductID: productID, UserID: renterID,
			StartDate: date(t, "2024-01-10"), EndDate: date(t, "2024-01-11"),
			HowToReceive: domain.HowToReceiveDelivery,
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
	})

	t.Run("Validation", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)

		tests := []struct {
			name string
			in   service.CreateBookingInput
			want error
		}{
			{"end before start", service.CreateBookingInput{ProductID: productID, UserID: renterID, StartDate: date(t, "2024-01-10"), EndDate: date(t, "2024-01-09"), HowToReceive: domain.HowToReceivePickup}, domain.ErrValidation},
			{"end equals start", service.CreateBookingInput{ProductID: productID, UserID: renterID, StartDate: date(t, "2024-01-10"), EndDate: date(t, "2024-01-10"), HowToReceive: domain.HowToReceivePickup}, domain.ErrValidation},
			{"same day with times", service.CreateBookingInput{ProductID: productID, UserID: renterID, StartDate: date(t, "2024-01-10").Add(10 * time.Hour), EndDate: date(t, "2024-01-10").Add(20 * time.Hour), HowToReceive: domain.HowToReceivePickup}, domain.ErrValidation},
			{"end not a calendar day", service.CreateBookingInput{ProductID: productID, UserID: renterID, StartDate: date(t, "2024-01-10"), EndDate: date(t, "2024-01-11").Add(time.Minute), HowToReceive: domain.HowToReceivePickup}, domain.ErrValidation},
			{"bad receive mode", service.CreateBookingInput{ProductID: productID, UserID: renterID, StartDate: date(t, "2024-01-10"), EndDate: date(t, "2024-01-11"), HowToReceive: "DRONE"}, domain.ErrValidation},
			{"unknown product", service.CreateBookingInput{ProductID: 999, UserID: renterID, StartDate: date(t, "2024-01-10"), EndDate: date(t, "2024-01-11"), HowToReceive: domain.HowToReceivePickup}, domain.ErrProductUnavailable},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.booking.CreateBooking(ctx, tt.in)
				assert.ErrorIs(t, err, tt.want)
			})
		}
		assert.Equal(t, int64(100000), f.balance(t, renterID))
	})

	t.Run("Deleted product", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		deleted := f.now
		f.store.AddProduct(domain.Product{ID: 200, OwnerID: ownerID, PricePerDay: 100, DeletedAt: &deleted})

		_, err := f.booking.CreateBooking(ctx, service.CreateBookingInput{
			ProductID: 200, UserID: renterID,
			StartDate: date(t, "2024-01-10"), EndDate: date(t, "2024-01-11"),
			HowToReceive: domain.HowToReceivePickup,
		})
		assert.ErrorIs(t, err, domain.ErrProductUnavailable)
	})

	t.Run("Same user overlap is a duplicate, other users may overlap", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		f.deposit(t, renter2ID, 100000)

		f.book(t, renterID, "2024-01-10", "2024-01-12")

		_, err := f.booking.CreateBooking(ctx, service.CreateBookingInput{
			ProductID: productID, UserID: renterID,
			StartDate: date(t, "2024-01-12"), EndDate: date(t, "2024-01-13"),
			HowToReceive: domain.HowToReceivePickup,
		})
		assert.ErrorIs(t, err, domain.ErrDuplicateRequest)
		assert.Equal(t, int64(80000), f.balance(t, renterID))

		f.book(t, renter2ID, "2024-01-11", "2024-01-13")
		f.requireReconciled(t)
	})

	t.Run("Approved overlap is a date conflict", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		f.deposit(t, renter2ID, 100000)

		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")
		_, err := f.booking.Approve(ctx, owner, rt.ID)
		require.NoError(t, err)

		_, err = f.booking.CreateBooking(ctx, service.CreateBookingInput{
			ProductID: productID, UserID: renter2ID,
			StartDate: date(t, "2024-01-12"), EndDate: date(t, "2024-01-14"),
			HowToReceive: domain.HowToReceivePickup,
		})
		assert.ErrorIs(t, err, domain.ErrDateConflict)
		assert.Equal(t, int64(100000), f.balance(t, renter2ID))

		// the day after the approved range is free
		f.book(t, renter2ID, "2024-01-13", "2024-01-14")
	})
}

func TestBookingService_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner approves, renter and owner are notified", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")

		approved, err := f.booking.Approve(ctx, owner, rt.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusApproved, approved.Status)
		assert.Equal(t, domain.RentalStatusApproved, f.status(t, rt.ID))

		events, err := f.store.Outbox().ListPending(ctx, 10)
		require.NoError(t, err)
		var recipients []int64
		for _, e := range events {
			if e.Type == domain.NotificationRentalApproved {
				recipients = append(recipients, e.UserID)
			}
		}
		assert.ElementsMatch(t, []int64{renterID, ownerID}, recipients)

		// no funds move on approval
		assert.Equal(t, int64(80000), f.balance(t, renterID))
		assert.Equal(t, int64(20000), f.platformBalance(t))
	})

	t.Run("Only owner or admin", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")

		_, err := f.booking.Approve(ctx, domain.Principal{UserID: renterID, Role: domain.RoleUser}, rt.ID)
		assert.ErrorIs(t, err, domain.ErrNoPermission)

		_, err = f.booking.Approve(ctx, admin, rt.ID)
		assert.NoError(t, err)
	})

	t.Run("Second approval is already processed", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")

		_, err := f.booking.Approve(ctx, owner, rt.ID)
		require.NoError(t, err)
		_, err = f.booking.Approve(ctx, owner, rt.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	})

	t.Run("First approval wins, the loser stays pending", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		f.deposit(t, renter2ID, 100000)
		first := f.book(t, renterID, "2024-01-10", "2024-01-12")
		second := f.book(t, renter2ID, "2024-01-11", "2024-01-13")

		_, err := f.booking.Approve(ctx, owner, first.ID)
		require.NoError(t, err)
		_, err = f.booking.Approve(ctx, owner, second.ID)
		assert.ErrorIs(t, err, domain.ErrDateConflict)
		assert.Equal(t, domain.RentalStatusPending, f.status(t, second.ID))
	})

	t.Run("Concurrent overlapping approvals never both succeed", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		f.deposit(t, renter2ID, 100000)
		a := f.book(t, renterID, "2024-01-10", "2024-01-12")
		b := f.book(t, renter2ID, "2024-01-11", "2024-01-13")

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, id := range []int64{a.ID, b.ID} {
			wg.Add(1)
			go func(i int, id int64) {
				defer wg.Done()
				_, errs[i] = f.booking.Approve(ctx, owner, id)
			}(i, id)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, domain.ErrDateConflict)
			}
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("Missing request", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.booking.Approve(ctx, owner, 12345)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestBookingService_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Pending request is refunded in full", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-15")

		res, err := f.booking.Cancel(ctx, rt.ID, renterID)
		require.NoError(t, err)
		assert.Equal(t, int64(45000), res.RefundedAmount)
		assert.Equal(t, domain.RentalStatusCanceled, res.Status)
		assert.Equal(t, int64(100000), f.balance(t, renterID))
		assert.Equal(t, int64(0), f.platformBalance(t))

		refund := domain.PaymentKindRefund
		logs, _, err := f.ledger.GetPaymentLogs(ctx, renterID, domain.PaymentLogFilter{Kind: &refund})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, int64(45000), logs[0].Amount)

		platformLogs, _, err := f.ledger.GetPlatformPaymentLogs(ctx, admin, domain.PaymentLogFilter{Kind: &refund})
		require.NoError(t, err)
		require.Len(t, platformLogs, 1)
		assert.Equal(t, int64(-45000), platformLogs[0].Amount)

		f.requireReconciled(t)
	})

	t.Run("Approved request can be canceled", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")
		_, err := f.booking.Approve(ctx, owner, rt.ID)
		require.NoError(t, err)

		_, err = f.booking.Cancel(ctx, rt.ID, renterID)
		require.NoError(t, err)
		assert.Equal(t, domain.RentalStatusCanceled, f.status(t, rt.ID))
	})

	t.Run("Gates", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")
		soon := f.book(t, renterID, "2024-01-03", "2024-01-04")

		_, err := f.booking.Cancel(ctx, rt.ID, renter2ID)
		assert.ErrorIs(t, err, domain.ErrNoPermission)

		_, err = f.booking.Cancel(ctx, soon.ID, renterID)
		assert.ErrorIs(t, err, domain.ErrCancelTooLate)
		assert.Equal(t, domain.RentalStatusPending, f.status(t, soon.ID))

		_, err = f.booking.Cancel(ctx, rt.ID, renterID)
		require.NoError(t, err)
		_, err = f.booking.Cancel(ctx, rt.ID, renterID)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

		// exactly at the cutoff is still allowed
		f.now = date(t, "2024-01-07")
		_, err = f.booking.Cancel(ctx, f.book(t, renterID, "2024-01-10", "2024-01-11").ID, renterID)
		assert.NoError(t, err)
	})

	t.Run("Platform shortfall aborts the whole refund", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")
		f.store.ForcePlatformBalance(100)

		_, err := f.booking.Cancel(ctx, rt.ID, renterID)
		assert.ErrorIs(t, err, domain.ErrPlatformBalanceInsufficient)
		assert.Equal(t, domain.RentalStatusPending, f.status(t, rt.ID))
		assert.Equal(t, int64(80000), f.balance(t, renterID))
		assert.Equal(t, int64(100), f.platformBalance(t))
	})
}

func TestBookingService_RejectByAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.deposit(t, renterID, 100000)
	rt := f.book(t, renterID, "2024-01-02", "2024-01-04")

	_, err := f.booking.RejectByAdmin(ctx, owner, rt.ID)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	// admins are not bound by the cancel cutoff
	res, err := f.booking.RejectByAdmin(ctx, admin, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusRejected, res.Status)
	assert.Equal(t, int64(20000), res.RefundedAmount)
	assert.Equal(t, int64(100000), f.balance(t, renterID))

	_, err = f.booking.RejectByAdmin(ctx, admin, rt.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	events, err := f.store.Outbox().ListPending(ctx, 10)
	require.NoError(t, err)
	last := events[len(events)-1]
	assert.Equal(t, domain.NotificationRentalRejected, last.Type)
	assert.Equal(t, renterID, last.UserID)

	f.requireReconciled(t)
}

func TestBookingService_MissingPlatformAccount(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, renterID, 100000)
	f.store.RemovePlatformAccount()

	_, err := f.booking.CreateBooking(context.Background(), service.CreateBookingInput{
		ProductID: productID, UserID: renterID,
		StartDate: date(t, "2024-01-10"), EndDate: date(t, "2024-01-12"),
		HowToReceive: domain.HowToReceivePickup,
	})
	assert.ErrorIs(t, err, domain.ErrPlatformAccountMissing)
	assert.Equal(t, int64(100000), f.balance(t, renterID))
}

func TestBookingService_Complete(t *testing.T) {
	ctx := context.Background()

	t.Run("Lifecycle", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")

		_, err := f.booking.Complete(ctx, owner, rt.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidState)

		_, err = f.booking.Approve(ctx, owner, rt.ID)
		require.NoError(t, err)

		_, err = f.booking.Complete(ctx, owner, rt.ID)
		assert.ErrorIs(t, err, domain.ErrRentalNotEnded)

		f.now = date(t, "2024-01-12")
		done, err := f.booking.Complete(ctx, owner, rt.ID)
		require.NoError(t, err)
		assert.Equal(t, rt.ID, done.RentalRequestID)
		assert.Equal(t, int64(20000), done.TotalPrice)
		assert.Equal(t, domain.RentalStatusCompleted, f.status(t, rt.ID))

		again, err := f.booking.Complete(ctx, admin, rt.ID)
		require.NoError(t, err)
		assert.Equal(t, done.ID, again.ID)

		_, err = f.booking.Cancel(ctx, rt.ID, renterID)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

		// completion moves no money
		assert.Equal(t, int64(80000), f.balance(t, renterID))
		assert.Equal(t, int64(20000), f.platformBalance(t))
	})

	t.Run("Canceled request cannot complete", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")
		_, err := f.booking.Cancel(ctx, rt.ID, renterID)
		require.NoError(t, err)

		f.now = date(t, "2024-02-01")
		_, err = f.booking.Complete(ctx, owner, rt.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	})

	t.Run("Outsiders cannot complete", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")
		_, err := f.booking.Complete(ctx, domain.Principal{UserID: renter2ID, Role: domain.RoleUser}, rt.ID)
		assert.ErrorIs(t, err, domain.ErrNoPermission)
	})

	t.Run("Elapsed rentals are completed in bulk", func(t *testing.T) {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		ended := f.book(t, renterID, "2024-01-10", "2024-01-12")
		running := f.book(t, renterID, "2024-01-20", "2024-01-25")
		pending := f.book(t, renterID, "2024-01-05", "2024-01-06")
		for _, id := range []int64{ended.ID, running.ID} {
			_, err := f.booking.Approve(ctx, owner, id)
			require.NoError(t, err)
		}

		f.now = date(t, "2024-01-15")
		n, err := f.booking.CompleteElapsed(ctx, 50)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, domain.RentalStatusCompleted, f.status(t, ended.ID))
		assert.Equal(t, domain.RentalStatusApproved, f.status(t, running.ID))
		assert.Equal(t, domain.RentalStatusPending, f.status(t, pending.ID))
	})
}

func TestBookingService_ConcurrentCreatesNeverOverdraw(t *testing.T) {
	f := newFixture(t)
	f.deposit(t, renterID, 50000) // covers exactly two 2-day bookings

	ranges := [][2]string{
		{"2024-02-01", "2024-02-03"},
		{"2024-02-05", "2024-02-07"},
		{"2024-02-09", "2024-02-11"},
		{"2024-02-13", "2024-02-15"},
		{"2024-02-17", "2024-02-19"},
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for _, r := range ranges {
		in := service.CreateBookingInput{
			ProductID: productID, UserID: renterID,
			StartDate: date(t, r[0]), EndDate: date(t, r[1]),
			HowToReceive: domain.HowToReceivePickup,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.booking.CreateBooking(context.Background(), in)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, domain.ErrInsufficientBalance), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, int64(10000), f.balance(t, renterID))
	assert.Equal(t, int64(40000), f.platformBalance(t))
	f.requireReconciled(t)
}

func TestBookingService_ApproveRacesCancel(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		f.deposit(t, renterID, 100000)
		rt := f.book(t, renterID, "2024-01-10", "2024-01-12")

		var wg sync.WaitGroup
		var approveErr, cancelErr error
		wg.Add(2)
		go func() { defer wg.Done(); _, approveErr = f.booking.Approve(ctx, owner, rt.ID) }()
		go func() { defer wg.Done(); _, cancelErr = f.booking.Cancel(ctx, rt.ID, renterID) }()
		wg.Wait()

		// cancel is allowed from APPROVED, so it always lands; approve may lose
		require.NoError(t, cancelErr)
		if approveErr != nil {
			assert.ErrorIs(t, approveErr, domain.ErrAlreadyProcessed)
		}
		assert.Equal(t, domain.RentalStatusCanceled, f.status(t, rt.ID))
		assert.Equal(t, int64(100000), f.balance(t, renterID))
		f.requireReconciled(t)
	}
}

func TestBookingService_GetAndList(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.deposit(t, renterID, 100000)
	rt := f.book(t, renterID, "2024-01-10", "2024-01-12")
	f.book(t, renterID, "2024-01-20", "2024-01-22")

	for _, p := range []domain.Principal{admin, owner, {UserID: renterID, Role: domain.RoleUser}} {
		got, err := f.booking.GetBooking(ctx, p, rt.ID)
		require.NoError(t, err)
		assert.Equal(t, rt.ID, got.ID)
	}
	_, err := f.booking.GetBooking(ctx, domain.Principal{UserID: renter2ID}, rt.ID)
	assert.ErrorIs(t, err, domain.ErrNoPermission)

	list, total, err := f.booking.ListMyBookings(ctx, renterID, domain.RentalStatusPending, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, list, 1)

	_, _, err = f.booking.ListMyBookings(ctx, renterID, "LOST", 1, 10)
	assert.ErrorIs(t, err, domain.ErrValidation)

	price, err := f.booking.QuotePrice(ctx, productID, date(t, "2024-03-01"), date(t, "2024-03-06"))
	require.NoError(t, err)
	assert.Equal(t, int64(45000), price)
}

func TestBookingService_RejectsPriceOutsideInt64(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.store.AddProduct(domain.Product{ID: 777, OwnerID: ownerID, Title: "Castle", PricePerDay: 200_000_000_000_000})
	f.deposit(t, renterID, 1000)

	_, err := f.booking.QuotePrice(ctx, 777, date(t, "2025-01-01"), date(t, "2250-01-01"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.booking.CreateBooking(ctx, service.CreateBookingInput{
		ProductID: 777, UserID: renterID,
		StartDate: date(t, "2025-01-01"), EndDate: date(t, "2250-01-01"),
		HowToReceive: domain.HowToReceivePickup,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, int64(1000), f.balance(t, renterID))
	assert.Equal(t, int64(0), f.platformBalance(t))
	f.requireReconciled(t)
}
