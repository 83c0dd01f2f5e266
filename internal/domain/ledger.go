package domain

import (
	"math"
	"time"
)

type PaymentKind string

const (
	PaymentKindRentalPayment PaymentKind = "RENTAL_PAYMENT"
	PaymentKindRefund        PaymentKind = "REFUND"
	PaymentKindOwnerPayout   PaymentKind = "OWNER_PAYOUT"
	PaymentKindIncome        PaymentKind = "INCOME"
	PaymentKindOutcome       PaymentKind = "OUTCOME"
	PaymentKindEtc           PaymentKind = "ETC"
)

func (k PaymentKind) Valid() bool {
	switch k {
	case PaymentKindRentalPayment, PaymentKindRefund, PaymentKindOwnerPayout,
		PaymentKindIncome, PaymentKindOutcome, PaymentKindEtc:
		return true
	}
	return false
}

type AccountType string

const (
	AccountTypeUser     AccountType = "USER"
	AccountTypePlatform AccountType = "PLATFORM"
)

// AccountRef identifies one side of a fund movement. UserID is zero for the platform.
type AccountRef struct {
	Type   AccountType `json:"type"`
	UserID int64       `json:"user_id,omitempty"`
}

func UserAccount(userID int64) AccountRef {
	return AccountRef{Type: AccountTypeUser, UserID: userID}
}

func PlatformAccountRef() AccountRef {
	return AccountRef{Type: AccountTypePlatform}
}

type Account struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlatformAccountID is the primary key of the singleton platform row
const PlatformAccountID int64 = 1

type PlatformAccount struct {
	ID        int64     `json:"id"`
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckAmount rejects fund movements that are not strictly positive
func CheckAmount(amount int64) error {
	if amount <= 0 {
		return Newf(ErrValidation, "amount must be positive, got %d", amount)
	}
	return nil
}

// CheckCredit rejects a credit that would push balance past the int64 range
func CheckCredit(balance, amount int64) error {
	if err := CheckAmount(amount); err != nil {
		return err
	}
	if balance > math.MaxInt64-amount {
		return Newf(ErrValidation, "crediting %d to balance %d exceeds the supported range", amount, balance)
	}
	return nil
}

// BalanceChange is the before/after pair of a single balance update
type BalanceChange struct {
	Before int64
	After  int64
}

type PaymentLogEntry struct {
	ID              int64       `json:"id"`
	Account         AccountRef  `json:"account"`
	RentalRequestID *int64      `json:"rental_request_id,omitempty"`
	Amount          int64       `json:"amount"` // signed
	Kind            PaymentKind `json:"kind"`
	BalanceBefore   int64       `json:"balance_before"`
	BalanceAfter    int64       `json:"balance_after"`
	Memo            string      `json:"memo"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Reconciles reports whether the entry's balances agree with its amount
func (e *PaymentLogEntry) Reconciles() bool {
	return e.BalanceAfter-e.BalanceBefore == e.Amount
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaymentLogFilter struct {
	Account         AccountRef
	Kind            *PaymentKind
	RentalRequestID *int64
	From            *time.Time
	To              *time.Time
	Page            int
	PageSize        int
}

// Normalize applies paging defaults and bounds
func (f *PaymentLogFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

func (f *PaymentLogFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Mismatch is one account whose balance differs from the sum of its log entries
type Mismatch struct {
	Account   AccountRef `json:"account"`
	Balance   int64      `json:"balance"`
	LedgerSum int64      `json:"ledger_sum"`
}
