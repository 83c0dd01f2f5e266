package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"rental-ledger-backend/internal/security"
	"rental-ledger-backend/internal/service"
)

// Services are the application services the REST API exposes
type Services struct {
	Booking      service.BookingService
	Ledger       service.LedgerService
	Review       service.ReviewService
	Notification service.NotificationService
}

// HealthCheck reports whether the backing store is reachable
type HealthCheck func(ctx context.Context) error

// NewRateLimiter builds an in-memory per-IP limiter from a formatted rate such as "300-M"
func NewRateLimiter(rate string) (*limiter.Limiter, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}
	return limiter.New(memory.NewStore(), r), nil
}

// NewRouter registers the REST endpoints. A nil limiter disables rate limiting.
func NewRouter(svc Services, tm security.TokenManager, l *limiter.Limiter, health HealthCheck) *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogging)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	if l != nil {
		api.Use(rateLimit(l))
	}

	bookings := NewBookingHandler(svc.Booking)
	ledger := NewLedgerHandler(svc.Ledger)
	reviews := NewReviewHandler(svc.Review)
	notes := NewNotificationHandler(svc.Notification)

	// Public
	api.HandleFunc("/bookings/quote", bookings.Quote).Methods(http.MethodGet)

	authed := api.NewRoute().Subrouter()
	authed.Use(authenticate(tm))
	authed.HandleFunc("/bookings", bookings.Create).Methods(http.MethodPost)
	authed.HandleFunc("/bookings", bookings.ListMine).Methods(http.MethodGet)
	authed.HandleFunc("/bookings/{id:[0-9]+}", bookings.Get).Methods(http.MethodGet)
	authed.HandleFunc("/bookings/{id:[0-9]+}/approve", bookings.Approve).Methods(http.MethodPost)
	authed.HandleFunc("/bookings/{id:[0-9]+}/cancel", bookings.Cancel).Methods(http.MethodPost)
	authed.HandleFunc("/bookings/{id:[0-9]+}/complete", bookings.Complete).Methods(http.MethodPost)
	authed.HandleFunc("/ledger/balance", ledger.Balance).Methods(http.MethodGet)
	authed.HandleFunc("/ledger/payment-logs", ledger.PaymentLogs).Methods(http.MethodGet)
	authed.HandleFunc("/reviews", reviews.Create).Methods(http.MethodPost)
	authed.HandleFunc("/notifications", notes.List).Methods(http.MethodGet)
	authed.HandleFunc("/notifications/{id:[0-9]+}/read", notes.MarkRead).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authenticate(tm), requireAdmin)
	admin.HandleFunc("/bookings/{id:[0-9]+}/reject", bookings.Reject).Methods(http.MethodPost)
	admin.HandleFunc("/ledger/payment-logs", ledger.PlatformPaymentLogs).Methods(http.MethodGet)
	admin.HandleFunc("/ledger/deposits", ledger.Deposit).Methods(http.MethodPost)
	admin.HandleFunc("/ledger/reconcile", ledger.Reconcile).Methods(http.MethodPost)

	return router
}
