package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/repository/memory"
	"rental-ledger-backend/internal/security"
	"rental-ledger-backend/internal/service"
	"rental-ledger-backend/internal/utils"
)

type apiEnv struct {
	router http.Handler
	tokens security.TokenManager
	store  *memory.Store
}

func newAPIEnv(t *testing.T, rate string, health HealthCheck) *apiEnv {
	t.Helper()

	store := memory.NewStore()
	store.AddUser(domain.User{ID: 1, Email: "admin@test.com", Role: domain.RoleAdmin})
	store.AddUser(domain.User{ID: 2, Email: "owner@test.com"})
	store.AddUser(domain.User{ID: 3, Email: "renter@test.com"})
	store.AddProduct(domain.Product{ID: 100, OwnerID: 2, Title: "Camping Tent", PricePerDay: 10000})

	tm := security.NewTokenManager("test-secret")
	svc := Services{
		Booking:      service.NewBookingService(store, service.NewAvailabilityChecker(store.Rentals()), service.BookingOptions{}),
		Ledger:       service.NewLedgerService(store),
		Review:       service.NewReviewService(store.CompletedRentals(), store.Reviews()),
		Notification: service.NewNotificationService(store.Notifications()),
	}

	l, err := NewRateLimiter(rate)
	require.NoError(t, err)

	return &apiEnv{router: NewRouter(svc, tm, l, health), tokens: tm, store: store}
}

func (e *apiEnv) token(t *testing.T, userID int64, role domain.Role) string {
	t.Helper()
	tok, err := e.tokens.GenerateAccessToken(userID, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func bookingDates(offsetDays, days int) (string, string) {
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, offsetDays)
	return utils.FormatDate(start), utils.FormatDate(start.AddDate(0, 0, days))
}

func TestHealthz(t *testing.T) {
	env := newAPIEnv(t, "100-M", nil)
	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	down := newAPIEnv(t, "100-M", func(ctx context.Context) error { return errors.New("db down") })
	rec = down.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBookingFlow(t *testing.T) {
	env := newAPIEnv(t, "1000-M", nil)
	adminTok := env.token(t, 1, domain.RoleAdmin)
	ownerTok := env.token(t, 2, domain.RoleUser)
	renterTok := env.token(t, 3, domain.RoleUser)
	start, end := bookingDates(30, 3)

	// public quote
	rec := env.do(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/quote?product_id=100&start_date=%s&end_date=%s", start, end), "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(30000), decode[wire.QuotePriceResponse](t, rec).TotalPrice)

	create := wire.CreateBookingRequest{ProductID: 100, StartDate: start, EndDate: end, HowToReceive: "PICKUP"}

	rec = env.do(t, http.MethodPost, "/api/v1/bookings", "", create)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/bookings", renterTok, create)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Equal(t, "INSUFFICIENT_BALANCE", decode[wire.ErrorResponse](t, rec).Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/ledger/deposits", renterTok, wire.DepositRequest{UserID: 3, Amount: 50000})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/ledger/deposits", adminTok, wire.DepositRequest{UserID: 3, Amount: 50000})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/bookings", renterTok, create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[wire.BookingResponse](t, rec).Booking
	assert.Equal(t, "PENDING", booking.Status)

	rec = env.do(t, http.MethodPost, "/api/v1/bookings", renterTok, create)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "DUPLICATE_REQUEST", decode[wire.ErrorResponse](t, rec).Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/approve", booking.ID), ownerTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "APPROVED", decode[wire.BookingResponse](t, rec).Booking.Status)

	rec = env.do(t, http.MethodGet, "/api/v1/ledger/balance", renterTok, nil)
	assert.Equal(t, int64(20000), decode[wire.BalanceResponse](t, rec).Balance)

	rec = env.do(t, http.MethodGet, "/api/v1/ledger/payment-logs?kind=RENTAL_PAYMENT", renterTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	logs := decode[wire.PaymentLogsResponse](t, rec)
	require.Equal(t, int64(1), logs.Total)
	assert.Equal(t, int64(-30000), logs.Entries[0].Amount)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/admin/bookings/%d/reject", booking.ID), adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "REJECTED", decode[wire.RefundResponse](t, rec).Status)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", booking.ID), renterTok, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/admin/ledger/reconcile", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[wire.ReconcileResponse](t, rec).Consistent)

	rec = env.do(t, http.MethodGet, "/api/v1/admin/ledger/payment-logs", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[wire.PaymentLogsResponse](t, rec).Total, "income then refund")
}

func TestValidationErrors(t *testing.T) {
	env := newAPIEnv(t, "1000-M", nil)
	renterTok := env.token(t, 3, domain.RoleUser)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
	}{
		{"Unknown field", http.MethodPost, "/api/v1/bookings", map[string]any{"product_id": 100, "nights": 2}},
		{"Bad receive method", http.MethodPost, "/api/v1/bookings", wire.CreateBookingRequest{ProductID: 100, StartDate: "2030-01-01", EndDate: "2030-01-02", HowToReceive: "DRONE"}},
		{"Bad page", http.MethodGet, "/api/v1/bookings?page=abc", nil},
		{"Bad status", http.MethodGet, "/api/v1/bookings?status=LOST", nil},
		{"Bad review rating", http.MethodPost, "/api/v1/reviews", wire.CreateReviewRequest{CompletedRentalID: 1, Rating: 0}},
		{"Bad log window", http.MethodGet, "/api/v1/ledger/payment-logs?from=yesterday", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, renterTok, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.Equal(t, "VALIDATION", decode[wire.ErrorResponse](t, rec).Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	env := newAPIEnv(t, "2-M", nil)
	path := "/api/v1/bookings/quote?product_id=100&start_date=2030-01-01&end_date=2030-01-02"

	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, path, "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(t, http.MethodGet, path, "", nil).Code)

	// health checks are not limited
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/healthz", "", nil).Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  *domain.Error
		want int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrCancelTooLate, http.StatusConflict},
		{domain.ErrNoPermission, http.StatusForbidden},
		{domain.ErrInsufficientBalance, http.StatusPaymentRequired},
		{domain.ErrPlatformAccountMissing, http.StatusInternalServerError},
		{domain.ErrProductUnavailable, http.StatusNotFound},
		{domain.ErrRetryable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), string(tt.err.Code))
	}
}
