package domain

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeValidation                  ErrorCode = "VALIDATION"
	CodeNotFound                    ErrorCode = "NOT_FOUND"
	CodeProductUnavailable          ErrorCode = "PRODUCT_UNAVAILABLE"
	CodeDateConflict                ErrorCode = "DATE_CONFLICT"
	CodeDuplicateRequest            ErrorCode = "DUPLICATE_REQUEST"
	CodeAlreadyProcessed            ErrorCode = "ALREADY_PROCESSED"
	CodeInvalidState                ErrorCode = "INVALID_STATE"
	CodeRentalNotEnded              ErrorCode = "RENTAL_NOT_ENDED"
	CodeAlreadyReviewed             ErrorCode = "ALREADY_REVIEWED"
	CodeCancelTooLate               ErrorCode = "CANCEL_TOO_LATE"
	CodeNoPermission                ErrorCode = "NO_PERMISSION"
	CodeInsufficientBalance         ErrorCode = "INSUFFICIENT_BALANCE"
	CodePlatformBalanceInsufficient ErrorCode = "PLATFORM_BALANCE_INSUFFICIENT"
	CodePlatformAccountMissing      ErrorCode = "PLATFORM_ACCOUNT_MISSING"
	CodeRetryable                   ErrorCode = "RETRYABLE"
)

type ErrorCategory int

const (
	CategoryInternal ErrorCategory = iota
	CategoryValidation
	CategoryConflict
	CategoryPermission
	CategoryInsufficiency
	CategoryIntegrity
	CategoryNotFound
	CategoryRetryable
)

// Error is a domain failure with a stable code that transports map to their own status codes.
type Error struct {
	Code     ErrorCode
	Category ErrorCategory
	Msg      string
}

func (e *Error) Error() string {
	return e.Msg
}

// Is matches any *Error with the same code so that detailed errors built by
// Newf still satisfy errors.Is against the sentinels below.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrValidation                  = &Error{Code: CodeValidation, Category: CategoryValidation, Msg: "validation failed"}
	ErrNotFound                    = &Error{Code: CodeNotFound, Category: CategoryNotFound, Msg: "not found"}
	ErrProductUnavailable          = &Error{Code: CodeProductUnavailable, Category: CategoryNotFound, Msg: "product is missing or deleted"}
	ErrDateConflict                = &Error{Code: CodeDateConflict, Category: CategoryConflict, Msg: "product is already booked for the requested dates"}
	ErrDuplicateRequest            = &Error{Code: CodeDuplicateRequest, Category: CategoryConflict, Msg: "an active request for these dates already exists"}
	ErrAlreadyProcessed            = &Error{Code: CodeAlreadyProcessed, Category: CategoryConflict, Msg: "rental request already processed"}
	ErrInvalidState                = &Error{Code: CodeInvalidState, Category: CategoryConflict, Msg: "rental request is not in a valid state for this operation"}
	ErrRentalNotEnded              = &Error{Code: CodeRentalNotEnded, Category: CategoryConflict, Msg: "rental period has not ended"}
	ErrAlreadyReviewed             = &Error{Code: CodeAlreadyReviewed, Category: CategoryConflict, Msg: "completed rental already reviewed"}
	ErrCancelTooLate               = &Error{Code: CodeCancelTooLate, Category: CategoryConflict, Msg: "too late to cancel this booking"}
	ErrNoPermission                = &Error{Code: CodeNoPermission, Category: CategoryPermission, Msg: "no permission"}
	ErrInsufficientBalance         = &Error{Code: CodeInsufficientBalance, Category: CategoryInsufficiency, Msg: "insufficient balance"}
	ErrPlatformBalanceInsufficient = &Error{Code: CodePlatformBalanceInsufficient, Category: CategoryIntegrity, Msg: "platform balance insufficient for refund"}
	ErrPlatformAccountMissing      = &Error{Code: CodePlatformAccountMissing, Category: CategoryIntegrity, Msg: "platform account missing"}
	ErrRetryable                   = &Error{Code: CodeRetryable, Category: CategoryRetryable, Msg: "transaction conflict, retry"}
)

// Newf returns an error carrying the code and category of base with a detailed message
func Newf(base *Error, format string, args ...any) error {
	return &Error{Code: base.Code, Category: base.Category, Msg: fmt.Sprintf(format, args...)}
}

// AsError extracts the domain error from err, if any
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// CodeOf returns the domain code of err, or "" for unexpected errors
func CodeOf(err error) ErrorCode {
	if de, ok := AsError(err); ok {
		return de.Code
	}
	return ""
}

// IsRetryable reports whether the caller may retry the whole operation
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRetryable)
}

// Expected reports whether the error is a refused request rather than a fault
func (e *Error) Expected() bool {
	switch e.Category {
	case CategoryInternal, CategoryIntegrity:
		return false
	}
	return true
}
