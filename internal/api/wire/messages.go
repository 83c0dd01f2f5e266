// Package wire holds the request and response messages shared by the gRPC and
// REST transports, together with their mapping from domain types.
package wire

import "time"

type Booking struct {
	ID           int64     `json:"id"`
	ProductID    int64     `json:"product_id"`
	UserID       int64     `json:"user_id"`
	OwnerID      int64     `json:"owner_id"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	TotalPrice   int64     `json:"total_price"`
	Status       string    `json:"status"`
	HowToReceive string    `json:"how_to_receive"`
	Memo         string    `json:"memo,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type CreateBookingRequest struct {
	ProductID    int64  `json:"product_id" validate:"required,gt=0"`
	StartDate    string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate      string `json:"end_date" validate:"required,datetime=2006-01-02"`
	HowToReceive string `json:"how_to_receive" validate:"required,oneof=PICKUP DELIVERY"`
	Memo         string `json:"memo" validate:"max=1000"`
}

type BookingIDRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type BookingResponse struct {
	Booking *Booking `json:"booking"`
}

type RefundResponse struct {
	RentalRequestID int64  `json:"rental_request_id"`
	RefundedAmount  int64  `json:"refunded_amount"`
	Status          string `json:"status"`
}

type CompletedRental struct {
	ID              int64     `json:"id"`
	RentalRequestID int64     `json:"rental_request_id"`
	UserID          int64     `json:"user_id"`
	ProductID       int64     `json:"product_id"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	TotalPrice      int64     `json:"total_price"`
	CreatedAt       time.Time `json:"created_at"`
}

type CompletedRentalResponse struct {
	CompletedRental *CompletedRental `json:"completed_rental"`
}

type ListMyBookingsRequest struct {
	Status   string `json:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED CANCELED COMPLETED"`
	Page     int    `json:"page" validate:"gte=0"`
	PageSize int    `json:"page_size" validate:"gte=0,lte=100"`
}

type ListBookingsResponse struct {
	Bookings []*Booking `json:"bookings"`
	Total    int64      `json:"total"`
}

type QuotePriceRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type QuotePriceResponse struct {
	TotalPrice int64 `json:"total_price"`
}

type GetBalanceRequest struct{}

type BalanceResponse struct {
	UserID  int64 `json:"user_id"`
	Balance int64 `json:"balance"`
}

type PaymentLog struct {
	ID              int64     `json:"id"`
	AccountType     string    `json:"account_type"`
	UserID          int64     `json:"user_id,omitempty"`
	RentalRequestID *int64    `json:"rental_request_id,omitempty"`
	Amount          int64     `json:"amount"`
	Kind            string    `json:"kind"`
	BalanceBefore   int64     `json:"balance_before"`
	BalanceAfter    int64     `json:"balance_after"`
	Memo            string    `json:"memo,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type PaymentLogsRequest struct {
	Kind            string `json:"kind" validate:"omitempty,oneof=RENTAL_PAYMENT REFUND OWNER_PAYOUT INCOME OUTCOME ETC"`
	RentalRequestID int64  `json:"rental_request_id" validate:"gte=0"`
	From            string `json:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To              string `json:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Page            int    `json:"page" validate:"gte=0"`
	PageSize        int    `json:"page_size" validate:"gte=0,lte=100"`
}

type PaymentLogsResponse struct {
	Entries []*PaymentLog `json:"entries"`
	Total   int64         `json:"total"`
}

type DepositRequest struct {
	UserID int64  `json:"user_id" validate:"required,gt=0"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
	Memo   string `json:"memo" validate:"max=255"`
}

type PaymentLogResponse struct {
	Entry *PaymentLog `json:"entry"`
}

type ReconcileRequest struct{}

type Mismatch struct {
	AccountType string `json:"account_type"`
	UserID      int64  `json:"user_id,omitempty"`
	Balance     int64  `json:"balance"`
	LedgerSum   int64  `json:"ledger_sum"`
}

type ReconcileResponse struct {
	Consistent bool        `json:"consistent"`
	Mismatches []*Mismatch `json:"mismatches"`
}

type CreateReviewRequest struct {
	CompletedRentalID int64  `json:"completed_rental_id" validate:"required,gt=0"`
	Rating            int    `json:"rating" validate:"required,min=1,max=5"`
	Content           string `json:"content" validate:"max=2000"`
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

type ReviewResponse struct {
	Review *Review `json:"review"`
}

type GetNotificationsRequest struct {
	Page     int `json:"page" validate:"gte=0"`
	PageSize int `json:"page_size" validate:"gte=0,lte=100"`
}

type Notification struct {
	ID         int64             `json:"id"`
	Type       string            `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	URL        string            `json:"url,omitempty"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedOn  time.Time         `json:"created_on"`
}

type NotificationsResponse struct {
	Notifications []*Notification `json:"notifications"`
	Total         int64           `json:"total"`
}

type MarkNotificationReadRequest struct {
	NotificationID int64 `json:"notification_id" validate:"required,gt=0"`
}

type MarkNotificationReadResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the REST error body
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
