package http

import (
	"net/http"

	"rentiva-backend/internal/service"
)

type NotificationHandler struct {
	notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, pageSize := pagination(q.Get("page"), q.Get("page_size"))
	notes, total, err := h.notifications.GetNotifications(r.Context(), actorFrom(r).UserID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, pageData{Items: notes, Total: total, Page: page})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkAsRead(r.Context(), actorFrom(r).UserID, id); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, nil)
}
