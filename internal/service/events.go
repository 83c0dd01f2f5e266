package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"rental-ledger-backend/internal/domain"
	"rental-ledger-backend/internal/repository"
	"rental-ledger-backend/internal/utils"
)

// eventBuilder renders outbox events for booking transitions
type eventBuilder struct {
	baseURL string
}

func (b eventBuilder) rentalURL(id int64) string {
	return fmt.Sprintf("%s/rentals/%d", strings.TrimRight(b.baseURL, "/"), id)
}

func rentalRefs(rt *domain.RentalRequest) map[string]string {
	return map[string]string{
		"rental_request_id": strconv.FormatInt(rt.ID, 10),
		"product_id":        strconv.FormatInt(rt.ProductID, 10),
		"status":            string(rt.Status),
	}
}

func (b eventBuilder) rentalRequested(rt *domain.RentalRequest, title string) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		UserID:  rt.OwnerID,
		Type:    domain.NotificationRentalRequested,
		Title:   "New Rental Request",
		Message: fmt.Sprintf("A rental of %s was requested from %s to %s", title, utils.FormatDate(rt.StartDate), utils.FormatDate(rt.EndDate)),
		URL:     b.rentalURL(rt.ID),
		Refs:    rentalRefs(rt),
	}
}

func (b eventBuilder) rentalApproved(rt *domain.RentalRequest, title string) []*domain.OutboxEvent {
	return []*domain.OutboxEvent{
		{
			UserID:  rt.UserID,
			Type:    domain.NotificationRentalApproved,
			Title:   "Rental Approved",
			Message: fmt.Sprintf("Your rental request for %s was approved", title),
			URL:     b.rentalURL(rt.ID),
			Refs:    rentalRefs(rt),
		},
		{
			UserID:  rt.OwnerID,
			Type:    domain.NotificationRentalApproved,
			Title:   "Rental Confirmed",
			Message: fmt.Sprintf("You approved the rental of %s", title),
			URL:     b.rentalURL(rt.ID),
			Refs:    rentalRefs(rt),
		},
	}
}

func (b eventBuilder) rentalCanceled(rt *domain.RentalRequest, title string) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		UserID:  rt.UserID,
		Type:    domain.NotificationRentalCanceled,
		Title:   "Rental Canceled",
		Message: fmt.Sprintf("Your rental of %s was canceled and %d was refunded", title, rt.TotalPrice),
		URL:     b.rentalURL(rt.ID),
		Refs:    rentalRefs(rt),
	}
}

func (b eventBuilder) rentalRejected(rt *domain.RentalRequest, title string) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		UserID:  rt.UserID,
		Type:    domain.NotificationRentalRejected,
		Title:   "Rental Rejected",
		Message: fmt.Sprintf("Your rental request for %s was rejected and %d was refunded", title, rt.TotalPrice),
		URL:     b.rentalURL(rt.ID),
		Refs:    rentalRefs(rt),
	}
}

func (b eventBuilder) reviewRequested(rt *domain.RentalRequest, completed *domain.CompletedRental, title string) *domain.OutboxEvent {
	refs := rentalRefs(rt)
	refs["completed_rental_id"] = strconv.FormatInt(completed.ID, 10)
	return &domain.OutboxEvent{
		UserID:  rt.UserID,
		Type:    domain.NotificationReviewRequested,
		Title:   "How was your rental?",
		Message: fmt.Sprintf("Your rental of %s has ended. Leave a review", title),
		URL:     fmt.Sprintf("%s/reviews/new?completed_rental_id=%d", strings.TrimRight(b.baseURL, "/"), completed.ID),
		Refs:    refs,
	}
}

func enqueue(ctx context.Context, tx repository.Tx, events ...*domain.OutboxEvent) error {
	for _, e := range events {
		if err := tx.Outbox().Enqueue(ctx, e); err != nil {
			return fmt.Errorf("enqueue %s for user %d: %w", e.Type, e.UserID, err)
		}
	}
	return nil
}

// productTitle never fails; notifications fall back to the product id
func productTitle(ctx context.Context, tx repository.Tx, productID int64) string {
	p, err := tx.Products().GetByID(ctx, productID)
	if err != nil || p.Title == "" {
		return fmt.Sprintf("product #%d", productID)
	}
	return p.Title
}
