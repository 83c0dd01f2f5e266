package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ulule/limiter/v3"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
	"rental-ledger-backend/internal/security"
)

const requestIDHeader = "X-Request-ID"

type principalKey struct{}

func principalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// statusRecorder remembers the status code written by the wrapped handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// requestLogging assigns every request an id, echoes it back and logs the outcome
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := logger.ContextWithRequestID(r.Context(), requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))
		logger.InfoContext(ctx, "HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

// rateLimit rejects clients that exceed the configured per-IP rate
func rateLimit(l *limiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			lctx, err := l.Get(r.Context(), ip)
			if err != nil {
				logger.ErrorContext(r.Context(), "Failed to get rate limit context", "ip", ip, "error", err)
				writeJSON(w, http.StatusInternalServerError, wire.ErrorResponse{Code: "INTERNAL", Message: "internal error"})
				return
			}

			if lctx.Reached {
				logger.WarnContext(r.Context(), "Rate limit exceeded", "ip", ip, "limit", lctx.Limit)
				writeJSON(w, http.StatusTooManyRequests, wire.ErrorResponse{Code: "RATE_LIMITED", Message: "too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// authenticate resolves the bearer token into a principal on the request context
func authenticate(tm security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if len(header) <= 7 || !strings.EqualFold(header[:7], "Bearer ") {
				writeJSON(w, http.StatusUnauthorized, wire.ErrorResponse{Code: "UNAUTHENTICATED", Message: "authorization token is not provided"})
				return
			}

			claims, err := tm.ValidateToken(header[7:])
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, wire.ErrorResponse{Code: "UNAUTHENTICATED", Message: err.Error()})
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, claims.Principal())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAdmin must run after authenticate
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFrom(r.Context())
		if !ok || !p.IsAdmin() {
			writeError(w, r, domain.Newf(domain.ErrNoPermission, "admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
