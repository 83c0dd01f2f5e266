// Package notification delivers committed outbox events to users. The in-app
// inbox is the durable channel; email and push are best-effort copies.
package notification

import (
	"context"

	"rental-ledger-backend/internal/domain"
)

// Channel is an external delivery route such as email or push
type Channel interface {
	Name() string
	Deliver(ctx context.Context, recipient *domain.User, n domain.Notification) error
}
