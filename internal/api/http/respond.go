package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/logger"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

// writeError maps err onto an HTTP status and a stable error code.
// Unexpected errors are logged and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	de, ok := domain.AsError(err)
	if !ok {
		logger.ErrorContext(r.Context(), "Unexpected error in HTTP handler", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, wire.ErrorResponse{Code: "INTERNAL", Message: "internal error"})
		return
	}

	status := statusFor(de)
	if de.Expected() {
		logger.DebugContext(r.Context(), "Request refused", "path", r.URL.Path, "code", de.Code, "error", de.Msg)
	} else {
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "code", de.Code, "error", de.Msg)
	}
	writeJSON(w, status, wire.ErrorResponse{Code: string(de.Code), Message: de.Msg})
}

func statusFor(de *domain.Error) int {
	switch de.Category {
	case domain.CategoryValidation:
		return http.StatusBadRequest
	case domain.CategoryConflict:
		return http.StatusConflict
	case domain.CategoryPermission:
		return http.StatusForbidden
	case domain.CategoryInsufficiency:
		return http.StatusPaymentRequired
	case domain.CategoryNotFound:
		return http.StatusNotFound
	case domain.CategoryRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Newf(domain.ErrValidation, "request body is required")
		}
		return domain.Newf(domain.ErrValidation, "malformed request body: %s", err.Error())
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Newf(domain.ErrValidation, "invalid %s", name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Newf(domain.ErrValidation, "invalid %s: %s", name, raw)
	}
	return v, nil
}

func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.Newf(domain.ErrValidation, "invalid %s: %s", name, raw)
	}
	return v, nil
}

// paging reads the page and page_size query parameters
func paging(r *http.Request) (int, int, error) {
	page, err := queryInt(r, "page")
	if err != nil {
		return 0, 0, err
	}
	pageSize, err := queryInt(r, "page_size")
	if err != nil {
		return 0, 0, err
	}
	return page, pageSize, nil
}
