package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// NotificationsHandler serves the caller's in-app inbox.
type NotificationsHandler struct {
	DB *sql.DB
}

// List handles GET /api/notifications. Pass ?unread=1 for unread only.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	unreadOnly := r.URL.Query().Get("unread") != ""

	list, err := store.ListNotifications(r.Context(), h.DB, claims.UserID, unreadOnly)
	if err != nil {
		slog.Error("failed to list notifications", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := store.CountUnreadNotifications(r.Context(), h.DB, GetClaims(r.Context()).UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to count notifications")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"count": n})
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ok, err := store.MarkNotificationRead(r.Context(), h.DB, id, GetClaims(r.Context()).UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update notification")
		return
	}
	if !ok {
		jsonError(w, http.StatusNotFound, "notification not found")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := store.MarkAllNotificationsRead(r.Context(), h.DB, GetClaims(r.Context()).UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to update notifications")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"updated": n})
}

// Delete handles DELETE /api/notifications/{id}.
func (h *NotificationsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	ok, err := store.DeleteNotification(r.Context(), h.DB, id, GetClaims(r.Context()).UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete notification")
		return
	}
	if !ok {
		jsonError(w, http.StatusNotFound, "notification not found")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification deleted"})
}
