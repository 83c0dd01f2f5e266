package grpc

import (
	"context"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/service"
)

type NotificationHandler struct {
	noteSvc service.NotificationService
}

func NewNotificationHandler(noteSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{noteSvc: noteSvc}
}

func (h *NotificationHandler) GetNotifications(ctx context.Context, req *wire.GetNotificationsRequest) (*wire.NotificationsResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	notes, count, err := h.noteSvc.GetNotifications(ctx, principal.UserID, req.Page, req.PageSize)
	if err != nil {
		return nil, err
	}
	return &wire.NotificationsResponse{
		Notifications: wire.MapDomainNotificationsToWire(notes),
		Total:         count,
	}, nil
}

func (h *NotificationHandler) MarkNotificationRead(ctx context.Context, req *wire.MarkNotificationReadRequest) (*wire.MarkNotificationReadResponse, error) {
	principal, err := GetPrincipalFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := wire.Validate(req); err != nil {
		return nil, err
	}
	if err := h.noteSvc.MarkAsRead(ctx, principal.UserID, req.NotificationID); err != nil {
		return nil, err
	}
	return &wire.MarkNotificationReadResponse{Success: true}, nil
}
