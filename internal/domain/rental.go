package domain

import "time"

type RentalStatus string

const (
	RentalStatusPending   RentalStatus = "PENDING"
	RentalStatusApproved  RentalStatus = "APPROVED"
	RentalStatusRejected  RentalStatus = "REJECTED"
	RentalStatusCanceled  RentalStatus = "CANCELED"
	RentalStatusCompleted RentalStatus = "COMPLETED"
)

// IsTerminal reports whether no further transition may leave the status
func (s RentalStatus) IsTerminal() bool {
	switch s {
	case RentalStatusRejected, RentalStatusCanceled, RentalStatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo encodes the booking state machine
func (s RentalStatus) CanTransitionTo(next RentalStatus) bool {
	switch s {
	case RentalStatusPending:
		return next == RentalStatusApproved || next == RentalStatusRejected || next == RentalStatusCanceled
	case RentalStatusApproved:
		return next == RentalStatusCompleted || next == RentalStatusCanceled || next == RentalStatusRejected
	}
	return false
}

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusPending, RentalStatusApproved, RentalStatusRejected, RentalStatusCanceled, RentalStatusCompleted:
		return true
	}
	return false
}

// NonTerminalStatuses are the statuses that still hold escrowed funds
var NonTerminalStatuses = []RentalStatus{RentalStatusPending, RentalStatusApproved}

type HowToReceive string

const (
	HowToReceivePickup   HowToReceive = "PICKUP"
	HowToReceiveDelivery HowToReceive = "DELIVERY"
)

func (h HowToReceive) Valid() bool {
	return h == HowToReceivePickup || h == HowToReceiveDelivery
}

type RentalRequest struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"product_id"`
	UserID    int64 `json:"user_id"`
	// OwnerID is the product owner at the time the request was made.
	OwnerID      int64        `json:"owner_id"`
	StartDate    time.Time    `json:"start_date"`
	EndDate      time.Time    `json:"end_date"`
	TotalPrice   int64        `json:"total_price"`
	Status       RentalStatus `json:"status"`
	HowToReceive HowToReceive `json:"how_to_receive"`
	Memo         string       `json:"memo"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty"`
}

// Overlaps uses inclusive bounds on both ends
func (r *RentalRequest) Overlaps(start, end time.Time) bool {
	return !r.StartDate.After(end) && !r.EndDate.Before(start)
}

// RefundResult is returned by cancel and admin reject
type RefundResult struct {
	RentalRequestID int64        `json:"rental_request_id"`
	RefundedAmount  int64        `json:"refunded_amount"`
	Status          RentalStatus `json:"status"`
}

type CompletedRental struct {
	ID              int64     `json:"id"`
	RentalRequestID int64     `json:"rental_request_id"`
	UserID          int64     `json:"user_id"`
	ProductID       int64     `json:"product_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	TotalPrice      int64     `json:"total_price"`
	CreatedAt       time.Time `json:"created_at"`
}

type Review struct {
	ID                int64     `json:"id"`
	CompletedRentalID int64     `json:"completed_rental_id"`
	UserID            int64     `json:"user_id"`
	ProductID         int64     `json:"product_id"`
	Rating            int       `json:"rating"`
	Content           string    `json:"content"`
	CreatedAt         time.Time `json:"created_at"`
}

const (
	MinReviewRating = 1
	MaxReviewRating = 5
)

type Product struct {
	ID          int64      `json:"id"`
	OwnerID     int64      `json:"owner_id"`
	Title       string     `json:"title"`
	PricePerDay int64      `json:"price_per_day"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}
