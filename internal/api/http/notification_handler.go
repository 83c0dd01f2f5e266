package http

import (
	"net/http"

	"rental-ledger-backend/internal/api/wire"
	"rental-ledger-backend/internal/service"
)

type NotificationHandler struct {
	noteSvc service.NotificationService
}

func NewNotificationHandler(noteSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{noteSvc: noteSvc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	page, pageSize, err := paging(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req := wire.GetNotificationsRequest{Page: page, PageSize: pageSize}
	if err := wire.Validate(&req); err != nil {
		writeError(w, r, err)
		return
	}
	notes, total, err := h.noteSvc.GetNotifications(r.Context(), principal.UserID, req.Page, req.PageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.NotificationsResponse{Notifications: wire.MapDomainNotificationsToWire(notes), Total: total})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	principal, _ := principalFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.noteSvc.MarkAsRead(r.Context(), principal.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.MarkNotificationReadResponse{Success: true})
}
