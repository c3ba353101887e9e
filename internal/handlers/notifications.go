package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aurelia-health/aurelia-backend/internal/models"
)

type NotificationsResponse struct {
	Success       bool                  `json:"success"`
	Message       string                `json:"message,omitempty"`
	Notifications []models.Notification `json:"notifications"`
}

type UnreadCountResponse struct {
	Success bool `json:"success"`
	Unread  int  `json:"unread"`
}

// GetNotifications lists the acting user's notifications, newest first.
func GetNotifications(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}

	notifications, err := dispatcher.List(r.Context(), identity.UserID, limit)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, NotificationsResponse{Success: true, Notifications: notifications})
}

// GetUnreadCount returns the live unread badge count.
func GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	count, err := dispatcher.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UnreadCountResponse{Success: true, Unread: count})
}

// MarkNotificationRead marks one notification read. Re-marking is a no-op.
func MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAuth(r); !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	notificationID := chi.URLParam(r, "id")
	if err := dispatcher.MarkRead(r.Context(), notificationID); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// MarkAllNotificationsRead clears the acting user's unread set.
func MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := dispatcher.MarkAllRead(r.Context(), identity.UserID); err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
