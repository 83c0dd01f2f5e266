package domain

import "time"

type NotificationType string

const (
	NotificationRentalRequested NotificationType = "RENTAL_REQUESTED"
	NotificationRentalApproved  NotificationType = "RENTAL_APPROVED"
	NotificationRentalCanceled  NotificationType = "RENTAL_CANCELED"
	NotificationRentalRejected  NotificationType = "RENTAL_REJECTED"
	NotificationReviewRequested NotificationType = "REVIEW_REQUESTED"
)

type Notification struct {
	ID         int64             `json:"id"`
	UserID     int64             `json:"user_id"`
	Type       NotificationType  `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	URL        string            `json:"url"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  time.Time         `json:"created_on"`
}

type OutboxStatus string

const (
	OutboxStatusPending OutboxStatus = "PENDING"
	OutboxStatusSent    OutboxStatus = "SENT"
	OutboxStatusFailed  OutboxStatus = "FAILED"
)

// OutboxEvent is a notification recorded in the same transaction as the state
// change it describes and delivered after commit.
type OutboxEvent struct {
	ID           string            `json:"id"`
	UserID       int64             `json:"user_id"`
	Type         NotificationType  `json:"type"`
	Title        string            `json:"title"`
	Message      string            `json:"message"`
	URL          string            `json:"url"`
	Refs         map[string]string `json:"refs"`
	Status       OutboxStatus      `json:"status"`
	Attempts     int               `json:"attempts"`
	LastError    string            `json:"last_error,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	DispatchedAt *time.Time        `json:"dispatched_at,omitempty"`
}

// Notification converts the event into the inbox row delivered to the user
func (e *OutboxEvent) Notification() Notification {
	return Notification{
		UserID:     e.UserID,
		Type:       e.Type,
		Title:      e.Title,
		Message:    e.Message,
		URL:        e.URL,
		Attributes: e.Refs,
		CreatedOn:  e.CreatedAt,
	}
}
