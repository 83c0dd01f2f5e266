package grpc_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	apigrpc "rental-ledger-backend/internal/api/grpc"
	"rental-ledger-backend/internal/api/grpc/interceptor"
	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/repository/memory"
	"rental-ledger-backend/internal/security"
	"rental-ledger-backend/internal/service"
	"rental-ledger-backend/internal/utils"
)

type testEnv struct {
	conn   *grpc.ClientConn
	tokens security.TokenManager
	store  *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	store.AddUser(domain.User{ID: 1, Email: "admin@test.com", Role: domain.RoleAdmin})
	store.AddUser(domain.User{ID: 2, Email: "owner@test.com"})
	store.AddUser(domain.User{ID: 3, Email: "renter@test.com"})
	store.AddProduct(domain.Product{ID: 100, OwnerID: 2, Title: "Camping Tent", PricePerDay: 10000})

	booking := service.NewBookingService(store, service.NewAvailabilityChecker(store.Rentals()), service.BookingOptions{})
	ledger := service.NewLedgerService(store)
	tm := security.NewTokenManager("test-secret")

	srv := apigrpc.NewServer(tm, apigrpc.Handlers{
		Booking:      apigrpc.NewBookingHandler(booking),
		Ledger:       apigrpc.NewLedgerHandler(ledger),
		Review:       apigrpc.NewReviewHandler(service.NewReviewService(store.CompletedRentals(), store.Reviews())),
		Notification: apigrpc.NewNotificationHandler(service.NewNotificationService(store.Notifications())),
	})

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(apigrpc.CodecName)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &testEnv{conn: conn, tokens: tm, store: store}
}

func (e *testEnv) authCtx(t *testing.T, userID int64, role domain.Role) context.Context {
	t.Helper()
	token, err := e.tokens.GenerateAccessToken(userID, role, time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+token)
}

func (e *testEnv) invoke(ctx context.Context, service, method string, req, resp any, opts ...grpc.CallOption) error {
	return e.conn.Invoke(ctx, apigrpc.FullMethod(service, method), req, resp, opts...)
}

func futureDates(offsetDays, days int) (string, string) {
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, offsetDays)
	return utils.FormatDate(start), utils.FormatDate(start.AddDate(0, 0, days))
}

func TestQuotePrice_Public(t *testing.T) {
	env := newTestEnv(t)
	start, end := futureDates(30, 3)

	var resp wire.QuotePriceResponse
	err := env.invoke(context.Background(), "BookingService", "QuotePrice",
		&wire.QuotePriceRequest{ProductID: 100, StartDate: start, EndDate: end}, &resp)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), resp.TotalPrice)
}

func TestCreateBooking(t *testing.T) {
	env := newTestEnv(t)
	start, end := futureDates(30, 3)
	req := &wire.CreateBookingRequest{ProductID: 100, StartDate: start, EndDate: end, HowToReceive: "PICKUP"}

	t.Run("Missing token", func(t *testing.T) {
		var resp wire.BookingResponse
		err := env.invoke(context.Background(), "BookingService", "CreateBooking", req, &resp)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("Insufficient balance carries the domain code", func(t *testing.T) {
		var resp wire.BookingResponse
		var trailer metadata.MD
		err := env.invoke(env.authCtx(t, 3, domain.RoleUser), "BookingService", "CreateBooking", req, &resp, grpc.Trailer(&trailer))
		assert.Equal(t, codes.FailedPrecondition, status.Code(err))
		assert.Equal(t, []string{string(domain.CodeInsufficientBalance)}, trailer.Get(interceptor.ErrorCodeTrailer))
	})

	t.Run("Invalid receive method", func(t *testing.T) {
		bad := *req
		bad.HowToReceive = "TELEPORT"
		var resp wire.BookingResponse
		err := env.invoke(env.authCtx(t, 3, domain.RoleUser), "BookingService", "CreateBooking", &bad, &resp)
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("Success ignores client supplied user-id", func(t *testing.T) {
		var dep wire.PaymentLogResponse
		require.NoError(t, env.invoke(env.authCtx(t, 1, domain.RoleAdmin), "LedgerService", "Deposit",
			&wire.DepositRequest{UserID: 3, Amount: 50000}, &dep))

		ctx := metadata.AppendToOutgoingContext(env.authCtx(t, 3, domain.RoleUser), "user-id", "2")
		var resp wire.BookingResponse
		require.NoError(t, env.invoke(ctx, "BookingService", "CreateBooking", req, &resp))
		require.NotNil(t, resp.Booking)
		assert.Equal(t, int64(3), resp.Booking.UserID)
		assert.Equal(t, "PENDING", resp.Booking.Status)
		assert.Equal(t, int64(30000), resp.Booking.TotalPrice)

		var bal wire.BalanceResponse
		require.NoError(t, env.invoke(env.authCtx(t, 3, domain.RoleUser), "LedgerService", "GetBalance", &wire.GetBalanceRequest{}, &bal))
		assert.Equal(t, int64(20000), bal.Balance)
	})
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)

	var dep wire.PaymentLogResponse
	err := env.invoke(env.authCtx(t, 3, domain.RoleUser), "LedgerService", "Deposit", &wire.DepositRequest{UserID: 3, Amount: 1000}, &dep)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	require.NoError(t, env.invoke(env.authCtx(t, 1, domain.RoleAdmin), "LedgerService", "Deposit", &wire.DepositRequest{UserID: 3, Amount: 1000}, &dep))
	require.NotNil(t, dep.Entry)
	assert.Equal(t, "ETC", dep.Entry.Kind)
	assert.Equal(t, int64(1000), dep.Entry.BalanceAfter)

	var rec wire.ReconcileResponse
	require.NoError(t, env.invoke(env.authCtx(t, 1, domain.RoleAdmin), "LedgerService", "Reconcile", &wire.ReconcileRequest{}, &rec))
	assert.True(t, rec.Consistent)

	env.store.ForcePlatformBalance(999)
	require.NoError(t, env.invoke(env.authCtx(t, 1, domain.RoleAdmin), "LedgerService", "Reconcile", &wire.ReconcileRequest{}, &rec))
	assert.False(t, rec.Consistent)
	require.Len(t, rec.Mismatches, 1)
	assert.Equal(t, "PLATFORM", rec.Mismatches[0].AccountType)
}

func TestBookingLifecycle(t *testing.T) {
	env := newTestEnv(t)
	renter := env.authCtx(t, 3, domain.RoleUser)
	owner := env.authCtx(t, 2, domain.RoleUser)

	var dep wire.PaymentLogResponse
	require.NoError(t, env.invoke(env.authCtx(t, 1, domain.RoleAdmin), "LedgerService", "Deposit", &wire.DepositRequest{UserID: 3, Amount: 50000}, &dep))

	start, end := futureDates(30, 2)
	var created wire.BookingResponse
	require.NoError(t, env.invoke(renter, "BookingService", "CreateBooking",
		&wire.CreateBookingRequest{ProductID: 100, StartDate: start, EndDate: end, HowToReceive: "DELIVERY"}, &created))
	id := created.Booking.ID

	var approved wire.BookingResponse
	err := env.invoke(renter, "BookingService", "ApproveBooking", &wire.BookingIDRequest{ID: id}, &approved)
	assert.Equal(t, codes.PermissionDenied, status.Code(err), "renter cannot approve")

	require.NoError(t, env.invoke(owner, "BookingService", "ApproveBooking", &wire.BookingIDRequest{ID: id}, &approved))
	assert.Equal(t, "APPROVED", approved.Booking.Status)

	var again wire.BookingResponse
	err = env.invoke(owner, "BookingService", "ApproveBooking", &wire.BookingIDRequest{ID: id}, &again)
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	var list wire.ListBookingsResponse
	require.NoError(t, env.invoke(renter, "BookingService", "ListMyBookings", &wire.ListMyBookingsRequest{Status: "APPROVED"}, &list))
	assert.Equal(t, int64(1), list.Total)

	var refund wire.RefundResponse
	require.NoError(t, env.invoke(renter, "BookingService", "CancelBooking", &wire.BookingIDRequest{ID: id}, &refund))
	assert.Equal(t, int64(20000), refund.RefundedAmount)
	assert.Equal(t, "CANCELED", refund.Status)

	var missing wire.BookingResponse
	err = env.invoke(renter, "BookingService", "GetBooking", &wire.BookingIDRequest{ID: 9999}, &missing)
	assert.Equal(t, codes.NotFound, status.Code(err))
}
