package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/repository/memory"
	"rental-ledger-backend/internal/service"
	"rental-ledger-backend/internal/utils"
)

const (
	adminID   int64 = 1
	ownerID   int64 = 2
	renterID  int64 = 3
	renter2ID int64 = 4
	productID int64 = 100
)

type countingSignal struct{ kicks atomic.Int32 }

func (c *countingSignal) Kick() { c.kicks.Add(1) }

type fixture struct {
	store   *memory.Store
	booking service.BookingService
	ledger  service.LedgerService
	reviews service.ReviewService
	signal  *countingSignal
	now     time.Time
}

var (
	admin = domain.Principal{UserID: adminID, Role: domain.RoleAdmin}
	owner = domain.Principal{UserID: ownerID, Role: domain.RoleUser}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:  memory.NewStore(),
		signal: &countingSignal{},
		now:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	f.store.AddUser(domain.User{ID: adminID, Email: "admin@test.com", Role: domain.RoleAdmin})
	f.store.AddUser(domain.User{ID: ownerID, Email: "owner@test.com", Role: domain.RoleUser})
	f.store.AddUser(domain.User{ID: renterID, Email: "renter@test.com", Role: domain.RoleUser})
	f.store.AddUser(domain.User{ID: renter2ID, Email: "renter2@test.com", Role: domain.RoleUser})
	f.store.AddProduct(domain.Product{ID: productID, OwnerID: ownerID, Title: "Camping Tent", PricePerDay: 10000})

	tiers := []utils.DiscountTier{{MinDays: 5, Rate: decimal.RequireFromString("0.9")}}
	f.booking = service.NewBookingService(f.store, service.NewAvailabilityChecker(f.store.Rentals()), service.BookingOptions{
		Tiers:        tiers,
		CancelCutoff: 72 * time.Hour,
		BaseURL:      "https://app.test",
		Signal:       f.signal,
		Clock:        func() time.Time { return f.now },
	})
	f.ledger = service.NewLedgerService(f.store)
	f.reviews = service.NewReviewService(f.store.CompletedRentals(), f.store.Reviews())
	return f
}

func (f *fixture) deposit(t *testing.T, userID, amount int64) {
	t.Helper()
	_, err := f.ledger.Deposit(context.Background(), admin, userID, amount, "top up")
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	b, err := f.ledger.GetBalance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func (f *fixture) platformBalance(t *testing.T) int64 {
	t.Helper()
	p, err := f.store.Platform().Get(context.Background())
	require.NoError(t, err)
	return p.Balance
}

func (f *fixture) status(t *testing.T, id int64) domain.RentalStatus {
	t.Helper()
	rt, err := f.store.Rentals().GetByID(context.Background(), id)
	require.NoError(t, err)
	return rt.Status
}

func (f *fixture) requireReconciled(t *testing.T) {
	t.Helper()
	mismatches, err := f.ledger.Reconcile(context.Background())
	require.NoError(t, err)
	require.Empty(t, mismatches)
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := utils.ParseDate(s)
	require.NoError(t, err)
	return d
}

func (f *fixture) book(t *testing.T, userID int64, start, end string) *domain.RentalRequest {
	t.Helper()
	rt, err := f.booking.CreateBooking(context.Background(), service.CreateBookingInput{
		ProductID:    productID,
		UserID:       userID,
		StartDate:    date(t, start),
		EndDate:      date(t, end),
		HowToReceive: domain.HowToReceivePickup,
	})
	require.NoError(t, err)
	return rt
}
