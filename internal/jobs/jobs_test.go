package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-ledger-backend/internal/config"
	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/notification"
	"rental-ledger-backend/internal/repository/memory"
	"rental-ledger-backend/internal/service"
	"rental-ledger-backend/internal/utils"
)

func TestJobRunner_RunAll(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.AddUser(domain.User{ID: 1, Role: domain.RoleAdmin})
	store.AddUser(domain.User{ID: 2})
	store.AddUser(domain.User{ID: 3})
	store.AddProduct(domain.Product{ID: 10, OwnerID: 2, Title: "Ladder", PricePerDay: 1000})

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dispatcher := notification.NewDispatcher(store, notification.DispatcherOptions{})
	booking := service.NewBookingService(store, service.NewAvailabilityChecker(store.Rentals()), service.BookingOptions{
		Tiers:  []utils.DiscountTier{{MinDays: 7, Rate: decimal.RequireFromString("0.8")}},
		Signal: dispatcher,
		Clock:  func() time.Time { return now },
	})
	ledger := service.NewLedgerService(store)

	admin := domain.SystemPrincipal()
	_, err := ledger.Deposit(ctx, admin, 3, 10000, "seed")
	require.NoError(t, err)
	rt, err := booking.CreateBooking(ctx, service.CreateBookingInput{
		ProductID: 10, UserID: 3,
		StartDate: now.AddDate(0, 0, 5), EndDate: now.AddDate(0, 0, 7),
		HowToReceive: domain.HowToReceivePickup,
	})
	require.NoError(t, err)
	_, err = booking.Approve(ctx, domain.Principal{UserID: 2}, rt.ID)
	require.NoError(t, err)

	now = now.AddDate(0, 0, 8)
	jr := NewJobRunner(&Services{Booking: booking, Ledger: ledger, Dispatcher: dispatcher}, &config.Config{})
	jr.RunAll()

	got, err := store.Rentals().GetByID(ctx, rt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RentalStatusCompleted, got.Status)

	pending, err := store.Outbox().ListPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// owner got the request, renter and owner the approval, renter the review prompt
	_, ownerTotal, err := store.Notifications().List(ctx, 2, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ownerTotal)
	_, renterTotal, err := store.Notifications().List(ctx, 3, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), renterTotal)
}

type panickyDispatcher struct{}

func (panickyDispatcher) DispatchPending(ctx context.Context) (int, error) {
	panic("boom")
}

func TestJobRunner_RecoversFromPanic(t *testing.T) {
	jr := NewJobRunner(&Services{Dispatcher: panickyDispatcher{}}, &config.Config{})
	assert.NotPanics(t, jr.DispatchNotifications)
}
